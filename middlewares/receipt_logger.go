package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ReceiptLoggerMiddleware logs downloads of order documents (receipts and
// pickup codes).
func ReceiptLoggerMiddleware(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		entry := log.WithFields(logrus.Fields{
			"order_id": c.Param("id"),
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
		})
		if c.Writer.Status() == 200 {
			entry.Info("order document served")
		} else {
			entry.Warn("order document request failed")
		}
	}
}
