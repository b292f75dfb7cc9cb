package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	appErrors "github.com/furukawa-sg/sg-reserve-api/pkg/errors"
	"github.com/furukawa-sg/sg-reserve-api/pkg/response"
)

// Context keys for the relayed credential and its derived subject.
const (
	ContextAuthKey    = "relayAuth"
	ContextSubjectKey = "relaySubject"
)

// Auth requires an Authorization header and attaches it for relay. The
// gateway never verifies signatures; tokens are minted and checked upstream.
// JWT-shaped tokens are screened locally for expiry so an obviously dead
// credential fails fast without a network round trip. Opaque tokens pass.
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		token := header
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			token = parts[1]
		}

		subject := subjectOf(token)
		if claims, ok := unverifiedClaims(token); ok {
			if exp, err := claims.GetExpirationTime(); err == nil && exp != nil && exp.Before(time.Now()) {
				response.Error(c, appErrors.ErrTokenExpired)
				c.Abort()
				return
			}
			if sub, err := claims.GetSubject(); err == nil && sub != "" {
				subject = sub
			}
		}

		c.Set(ContextAuthKey, header)
		c.Set(ContextSubjectKey, subject)
		c.Next()
	}
}

// unverifiedClaims decodes a JWT's claims without checking the signature.
// Returns false for opaque (non-JWT) tokens.
func unverifiedClaims(token string) (jwt.MapClaims, bool) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, false
	}
	return claims, true
}

// subjectOf derives a stable per-credential key for preference storage when
// the token carries no usable subject claim.
func subjectOf(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:8])
}
