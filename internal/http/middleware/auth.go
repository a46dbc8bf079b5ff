package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yungbote/careercoach-backend/internal/http/response"
	"github.com/yungbote/careercoach-backend/internal/platform/ctxutil"
	"github.com/yungbote/careercoach-backend/internal/platform/logger"
)

var (
	errMissingSecret = errors.New("jwt secret not configured")
	errMissingToken  = errors.New("missing or invalid token")
	errBadSubject    = errors.New("invalid user id in token")
)

// AuthMiddleware verifies HS256 bearer tokens whose subject is the user id.
// A jti that parses as a uuid becomes the session id.
type AuthMiddleware struct {
	log    *logger.Logger
	secret []byte
	parser *jwt.Parser
}

func NewAuthMiddleware(log *logger.Logger, secret string) *AuthMiddleware {
	return &AuthMiddleware{
		log:    log.With("middleware", "AuthMiddleware"),
		secret: []byte(secret),
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})),
	}
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		rd, err := am.authenticate(bearerToken(c))
		if err != nil {
			am.log.Debug("Rejected request", "path", c.Request.URL.Path, "error", err)
			response.RespondError(c, http.StatusUnauthorized, "unauthorized", err)
			return
		}
		c.Request = c.Request.WithContext(ctxutil.WithRequestData(c.Request.Context(), rd))
		c.Next()
	}
}

func (am *AuthMiddleware) authenticate(raw string) (*ctxutil.RequestData, error) {
	if raw == "" {
		return nil, errMissingToken
	}
	if len(am.secret) == 0 {
		return nil, errMissingSecret
	}
	var claims jwt.RegisteredClaims
	if _, err := am.parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return am.secret, nil
	}); err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil || userID == uuid.Nil {
		return nil, errBadSubject
	}
	rd := &ctxutil.RequestData{UserID: userID}
	if sid, err := uuid.Parse(claims.ID); err == nil {
		rd.SessionID = sid
	}
	return rd, nil
}

// bearerToken reads the Authorization header, falling back to ?token= for
// EventSource clients that cannot set headers.
func bearerToken(c *gin.Context) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(c.GetHeader("Authorization")), " ")
	if ok && strings.EqualFold(scheme, "Bearer") {
		if token = strings.TrimSpace(token); token != "" {
			return token
		}
	}
	return strings.TrimSpace(c.Query("token"))
}
