package server

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const principalKey = "admin"

// RequestLogger пишет по строке на запрос.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		}
		if errs := c.Errors.ByType(gin.ErrorTypePrivate).String(); errs != "" {
			fields = append(fields, zap.String("errors", errs))
		}

		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			logger.Error("request", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("request", fields...)
		default:
			logger.Info("request", fields...)
		}
	}
}

// Recovery превращает панику обработчика в 500 без подробностей для клиента.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		logger.Error("panic recovered",
			zap.Any("panic", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.Stack("stack"),
		)
		c.String(http.StatusInternalServerError, "Internal Server Error")
		c.Abort()
	})
}

// RequireAdmin пропускает только запросы с действующей сессией администратора.
func RequireAdmin(sessions *SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := sessions.Current(c)
		if !ok {
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}
		c.Set(principalKey, principal)
		c.Next()
	}
}

// internalError логирует причину и отдает клиенту общий ответ.
func internalError(c *gin.Context, logger *zap.Logger, msg string, err error) {
	_ = c.Error(err)
	logger.Error(msg, zap.String("path", c.Request.URL.Path), zap.Error(err))
	c.String(http.StatusInternalServerError, "Internal Server Error")
	c.Abort()
}
