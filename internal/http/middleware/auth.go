package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/yungbote/recharge-backend/internal/http/response"
	"github.com/yungbote/recharge-backend/internal/platform/ctxutil"
	"github.com/yungbote/recharge-backend/internal/platform/logger"
	"github.com/yungbote/recharge-backend/internal/services"
)

const DefaultIdentityHeader = "X-User-Email"

// IdentityClaims is the bearer token shape accepted when a signing secret
// is configured.
type IdentityClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type AuthMiddleware struct {
	log    *logger.Logger
	header string
	secret []byte
	authz  services.AdminAuthorizer
}

func NewAuthMiddleware(log *logger.Logger, authz services.AdminAuthorizer, header, jwtSecret string) *AuthMiddleware {
	header = strings.TrimSpace(header)
	if header == "" {
		header = DefaultIdentityHeader
	}
	var secret []byte
	if s := strings.TrimSpace(jwtSecret); s != "" {
		secret = []byte(s)
	}
	return &AuthMiddleware{
		log:    log.With("middleware", "AuthMiddleware"),
		header: header,
		secret: secret,
		authz:  authz,
	}
}

// AttachIdentity puts the asserted caller identity on the request context.
// With a secret configured only a valid bearer token counts and the plain
// header is ignored. A missing identity is not an error here.
func (am *AuthMiddleware) AttachIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		var id *ctxutil.Identity
		if am.secret != nil {
			if tok := bearerToken(c); tok != "" {
				email, err := am.parseToken(tok)
				if err != nil {
					am.log.Debug("rejected bearer token", "error", err)
				} else {
					id = &ctxutil.Identity{Email: email, Source: "jwt"}
				}
			}
		} else if email := strings.TrimSpace(c.GetHeader(am.header)); email != "" {
			id = &ctxutil.Identity{Email: email, Source: "header"}
		}
		if id != nil {
			c.Request = c.Request.WithContext(ctxutil.WithIdentity(c.Request.Context(), id))
		}
		c.Next()
	}
}

// RequireAdmin rejects callers outside the admin allow-list with 403.
func (am *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := am.authz.Require(c.Request.Context()); err != nil {
			response.Fail(c, am.log, err)
			return
		}
		c.Next()
	}
}

func (am *AuthMiddleware) parseToken(raw string) (string, error) {
	parsed, err := jwt.ParseWithClaims(raw, &IdentityClaims{}, func(token *jwt.Token) (interface{}, error) {
		return am.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	claims, ok := parsed.Claims.(*IdentityClaims)
	if !ok || !parsed.Valid {
		return "", errors.New("invalid token")
	}
	email := strings.TrimSpace(claims.Email)
	if email == "" {
		return "", errors.New("token has no email claim")
	}
	return email, nil
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
