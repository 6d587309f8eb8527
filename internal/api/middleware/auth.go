package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/openrides/openrides/internal/domain/user"
	"github.com/openrides/openrides/internal/service/profile"
	"github.com/openrides/openrides/pkg/logger"
)

// ProfileKey is the gin context key holding the authenticated *user.Profile
const ProfileKey = "profile"

// Claims are the token claims the platform issues at signup
type Claims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Auth validates the bearer token, resolves the caller's profile (creating
// it on first contact) and rejects suspended accounts.
func Auth(secret string, profiles *profile.Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		tokenStr := strings.TrimPrefix(header, "Bearer ")

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token subject"})
			return
		}

		p, err := profiles.EnsureProfile(c.Request.Context(), userID, claims.Name, claims.Email)
		if err != nil {
			log.Error("failed to resolve profile", logger.Err(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve profile"})
			return
		}
		if p.Status == user.StatusSuspended {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "account suspended"})
			return
		}

		c.Set(ProfileKey, p)
		c.Next()
	}
}

// CallerProfile extracts the authenticated profile from the gin context
func CallerProfile(c *gin.Context) *user.Profile {
	v, ok := c.Get(ProfileKey)
	if !ok {
		return nil
	}
	p, _ := v.(*user.Profile)
	return p
}

// RequireAdmin rejects non-admin callers. Runs after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		p := CallerProfile(c)
		if p == nil || !p.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin privileges required"})
			return
		}
		c.Next()
	}
}
