package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"trackjob-backend/internal/shared/server/respond"
)

const (
	userIDKey    = "userId"
	userEmailKey = "userEmail"
)

var errMissingSubject = errors.New("token has no subject")

// Claims is the identity carried by tokens from the external identity provider.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Auth verifies HS256 bearer tokens when secret is set and stores the subject
// as the request's user id. An empty secret disables verification; identity
// then comes from request bodies and params. publicPrefixes bypass the check:
// an entry ending in "/" covers its subtree, any other entry (including "/")
// matches only that exact path.
func Auth(secret string, publicPrefixes ...string) gin.HandlerFunc {
	key := []byte(strings.TrimSpace(secret))
	return func(c *gin.Context) {
		if len(key) == 0 || c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}
		path := c.Request.URL.Path
		if isPublicPath(path, publicPrefixes) {
			c.Next()
			return
		}

		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if !strings.HasPrefix(header, "Bearer ") {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token")
			return
		}
		claims, err := VerifyToken(strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")), key)
		if err != nil {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token")
			return
		}

		c.Set(userIDKey, claims.Subject)
		if claims.Email != "" {
			c.Set(userEmailKey, claims.Email)
		}
		c.Next()
	}
}

func isPublicPath(path string, publicPrefixes []string) bool {
	for _, prefix := range publicPrefixes {
		if path == prefix {
			return true
		}
		if prefix != "/" && strings.HasSuffix(prefix, "/") && strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// VerifyToken parses and validates an HS256 token.
func VerifyToken(raw string, key []byte) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, errMissingSubject
	}
	return claims, nil
}

// UserIDFromContext fetches the verified user ID set by the auth middleware.
func UserIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}

// OwnerAllowed reports whether the caller may act on behalf of ownerID.
// Anonymous requests (verification disabled) are always allowed.
func OwnerAllowed(c *gin.Context, ownerID string) bool {
	subject := UserIDFromContext(c)
	return subject == "" || subject == ownerID
}

// UserEmailFromContext returns the email claim of a verified token, if any.
func UserEmailFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(userEmailKey)
}
