package middlewares

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"shopcrew.com/shopcrew/security"
	"shopcrew.com/shopcrew/web/common"
)

// OwnerSession guards owner-level routes. It accepts the 30-minute session
// token minted by the owner PIN verifier and checks that it was issued for
// the shop in the route.
func OwnerSession(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, common.NewErrorResponse("owner session required"))
			return
		}

		claims, err := security.ParseOwnerSessionToken(parts[1], secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, common.NewErrorResponse("invalid or expired owner session"))
			return
		}

		if shopParam := c.Param("shopId"); shopParam != "" {
			shopID, convErr := strconv.ParseUint(shopParam, 10, 32)
			if convErr != nil || uint(shopID) != claims.ShopID {
				c.AbortWithStatusJSON(http.StatusForbidden, common.NewErrorResponse("owner session is for a different shop"))
				return
			}
		}

		c.Set("ownerSession", claims)
		c.Next()
	}
}
