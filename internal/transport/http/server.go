package http

import (
	"github.com/gin-gonic/gin"

	appsvc "guestbook/internal/app"
	"guestbook/internal/bootstrap"
	"guestbook/internal/transport/http/handler"
	"guestbook/internal/transport/http/middleware"
	"guestbook/web"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.AccessLog(app.Logger),
		middleware.Metrics(app.Metrics),
	)
	router.SetHTMLTemplate(web.Templates())

	guestbook := appsvc.NewGuestbookService(
		app.Store,
		app.RecentCache,
		app.Publisher,
		app.Logger,
		app.Config.Guestbook.RecentLimit,
	)
	guestbookHandler := handler.NewGuestbookHandler(guestbook, app.Metrics, app.Logger)
	healthHandler := handler.NewHealthHandler(guestbook, app.Config.App.Name, app.StartedAt, app.Logger)

	router.GET("/", guestbookHandler.Index)
	router.POST("/submit", guestbookHandler.Submit)
	router.GET("/health", healthHandler.Check)
	router.GET("/metrics", gin.WrapH(app.Metrics.Handler()))

	return router
}
