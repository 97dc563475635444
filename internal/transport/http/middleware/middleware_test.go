package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

func TestRequestIDAndAccessLog(t *testing.T) {
	req := require.New(t)
	gin.SetMode(gin.TestMode)
	log, hook := logtest.NewNullLogger()

	router := gin.New()
	router.Use(RequestID(), AccessLog(log))
	var seen string
	router.GET("/ok", func(c *gin.Context) {
		seen = RequestIDFrom(c)
		c.Status(http.StatusOK)
	})
	router.GET("/boom", func(c *gin.Context) {
		c.Status(http.StatusInternalServerError)
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ok?x=1", nil))

	req.NotEmpty(seen)
	req.Equal(seen, rr.Header().Get(HeaderRequestID))
	entry := hook.LastEntry()
	req.NotNil(entry)
	req.Equal(logrus.InfoLevel, entry.Level)
	req.Equal(seen, entry.Data["request_id"])
	req.Equal("/ok?x=1", entry.Data["path"])
	req.Equal(http.StatusOK, entry.Data["status"])

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/boom", nil))
	req.NotEqual(seen, rr.Header().Get(HeaderRequestID))
	req.Equal(logrus.WarnLevel, hook.LastEntry().Level)
}
