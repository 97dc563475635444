package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"guestbook/internal/app"
	"guestbook/internal/observability"
	"guestbook/internal/transport/http/middleware"
	"guestbook/internal/transport/http/response"
	"guestbook/web"
)

const (
	errMessageRequired = "Message is required"
	errSubmitFailed    = "Failed to submit message"
)

type GuestbookHandler struct {
	guestbook *app.GuestbookService
	metrics   *observability.Metrics
	log       logrus.FieldLogger
}

// SubmitRequest binds from a JSON body or a form body, depending on the
// request content type.
type SubmitRequest struct {
	NewMessage string `json:"new_message" form:"new_message" binding:"required"`
}

func NewGuestbookHandler(guestbook *app.GuestbookService, metrics *observability.Metrics, log logrus.FieldLogger) *GuestbookHandler {
	return &GuestbookHandler{
		guestbook: guestbook,
		metrics:   metrics,
		log:       log,
	}
}

// Index renders the page. A store failure degrades to an empty list.
func (h *GuestbookHandler) Index(c *gin.Context) {
	messages, err := h.guestbook.ListRecent(c.Request.Context())
	if err != nil {
		h.log.WithError(err).
			WithField("request_id", middleware.RequestIDFrom(c)).
			Error("fetch messages failed, rendering empty list")
		h.metrics.ListingsDegraded.Inc()
		messages = nil
	}

	c.HTML(http.StatusOK, web.IndexTemplate, gin.H{
		"messages": messages,
	})
}

func (h *GuestbookHandler) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBind(&req); err != nil {
		h.metrics.SubmitFailures.WithLabelValues(observability.SubmitFailureValidation).Inc()
		response.Error(c, http.StatusBadRequest, errMessageRequired)
		return
	}

	message, err := h.guestbook.Submit(c.Request.Context(), req.NewMessage)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrMessageEmpty):
			h.metrics.SubmitFailures.WithLabelValues(observability.SubmitFailureValidation).Inc()
			response.Error(c, http.StatusBadRequest, errMessageRequired)
		default:
			h.log.WithError(err).
				WithField("request_id", middleware.RequestIDFrom(c)).
				Error("submit message failed")
			h.metrics.SubmitFailures.WithLabelValues(observability.SubmitFailureStore).Inc()
			response.Error(c, http.StatusInternalServerError, errSubmitFailed)
		}
		return
	}

	h.metrics.MessagesPosted.Inc()
	response.Submitted(c, message.Content)
}
