package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sbekbolat/maglink/internal/session"
)

const errUnauthorized = "Unauthorized"

// Session validates the session token set at redemption (the cookie by
// default, a Bearer header as the API alternative) and sets "userID" and
// "email" in the gin context.
func Session(jwtKey []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawToken, err := c.Cookie(session.CookieName)
		if err != nil || rawToken == "" {
			header := c.GetHeader("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
				return
			}
			rawToken = strings.TrimPrefix(header, "Bearer ")
		}

		token, err := jwt.Parse(rawToken, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return jwtKey, nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
			return
		}

		sub, _ := claims["sub"].(string)
		userID, err := strconv.ParseInt(sub, 10, 64)
		if err != nil || userID <= 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
			return
		}

		email, _ := claims["email"].(string)

		c.Set("userID", userID)
		c.Set("email", email)
		c.Next()
	}
}
