package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/scg/portal/internal/infrastructure/logger"
	"github.com/scg/portal/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// CustomerIDParam is the route parameter naming the selected customer
const CustomerIDParam = "customer_id"

// CustomerAccess guards /customers/:customer_id/... routes. Staff may
// select any customer, everybody else only customers they belong to.
func CustomerAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			denyUnauthenticated(c)
			return
		}

		raw := c.Param(CustomerIDParam)
		customerID, err := uuid.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeInvalidInput, "Invalid customer ID format", c.GetString(logger.GinRequestIDKey)))
			return
		}

		if !claims.CanAccessCustomer(customerID) {
			logger.GetGinLogger(c).Warn("Customer access denied",
				zap.String("user_id", claims.UserID),
				zap.String("customer_id", raw),
			)
			abortForbidden(c, "You do not have access to this customer")
			return
		}

		c.Set(logger.GinCustomerIDKey, customerID.String())
		ctx := logger.WithCustomerID(c.Request.Context(), customerID.String())
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetCustomerID returns the customer selected by CustomerAccess
func GetCustomerID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.GetString(logger.GinCustomerIDKey))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
