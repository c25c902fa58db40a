package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
)

// NewRelicAttributes tags the nrgin transaction with the caller and reports
// handler errors. It is a no-op when New Relic is disabled.
func NewRelicAttributes() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		txn := nrgin.Transaction(c)
		if txn == nil {
			return
		}

		if userID := UserID(c); userID != "" {
			txn.AddAttribute("user_id", userID)
		}
		if role := Role(c); role != "" {
			txn.AddAttribute("user_role", string(role))
		}

		if c.Writer.Status() >= http.StatusInternalServerError {
			for _, err := range c.Errors {
				txn.NoticeError(err.Err)
			}
			if len(c.Errors) == 0 {
				txn.NoticeError(errors.New(http.StatusText(c.Writer.Status())))
			}
		}
	}
}
