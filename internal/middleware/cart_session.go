package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lumeatelie/lume-backend/internal/errors"
)

// Header carrying the opaque cart session token. The storefront stores the
// token client-side and sends it with every cart request.
const CartSessionHeader = "X-Cart-Session"

const cartSessionKey = "cart_session"

// CartSession reads the cart session token from the request header. When the
// client has no token yet, a fresh one is issued and echoed back in the
// response header so the client can persist it.
func CartSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(CartSessionHeader)
		if token == "" {
			token = uuid.New().String()
			log := GetLoggerFromContext(c)
			log.Debug("Issued new cart session", map[string]interface{}{
				"cart_session": token,
			})
		} else if _, err := uuid.Parse(token); err != nil {
			log := GetLoggerFromContext(c)
			log.Warn("Rejected malformed cart session token", map[string]interface{}{
				"cart_session": token,
			})
			errors.BadRequest(c, errors.CartSessionRequired, "Sessão de carrinho inválida")
			c.Abort()
			return
		}

		c.Header(CartSessionHeader, token)
		c.Set(cartSessionKey, token)

		c.Next()
	}
}

// GetCartSession extracts the cart session token from context
func GetCartSession(c *gin.Context) (string, bool) {
	token, exists := c.Get(cartSessionKey)
	if !exists {
		return "", false
	}
	return token.(string), true
}
