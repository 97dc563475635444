package response

import "github.com/gin-gonic/gin"

const (
	StatusSuccess   = "success"
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"

	DatabaseConnected    = "connected"
	DatabaseDisconnected = "disconnected"
)

type SubmitResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	App       string `json:"app,omitempty"`
	UptimeSec int    `json:"uptime_sec"`
}

func Submitted(c *gin.Context, message string) {
	c.JSON(200, SubmitResponse{
		Message: message,
		Status:  StatusSuccess,
	})
}

func Error(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, ErrorResponse{Error: message})
}
