package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"guestbook/internal/app"
	"guestbook/internal/transport/http/middleware"
	"guestbook/internal/transport/http/response"
)

type HealthHandler struct {
	guestbook *app.GuestbookService
	appName   string
	startedAt time.Time
	log       logrus.FieldLogger
}

func NewHealthHandler(guestbook *app.GuestbookService, appName string, startedAt time.Time, log logrus.FieldLogger) *HealthHandler {
	return &HealthHandler{
		guestbook: guestbook,
		appName:   appName,
		startedAt: startedAt,
		log:       log,
	}
}

// Check reports database reachability. Every failure looks the same to the
// caller.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	body := response.HealthResponse{
		Status:    response.StatusHealthy,
		Database:  response.DatabaseConnected,
		App:       h.appName,
		UptimeSec: int(time.Since(h.startedAt).Seconds()),
	}
	statusCode := http.StatusOK

	if err := h.guestbook.Health(ctx); err != nil {
		h.log.WithError(err).
			WithField("request_id", middleware.RequestIDFrom(c)).
			Warn("health check failed")
		body.Status = response.StatusUnhealthy
		body.Database = response.DatabaseDisconnected
		statusCode = http.StatusInternalServerError
	}

	c.JSON(statusCode, body)
}
