package middleware

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/grantpulse/agentgate/utils"
)

// AdminMiddleware gates the audit query boundary. The admin credential is
// deliberately distinct from the per-tenant gateway credentials: either a
// static admin token or an HS256 JWT carrying role=admin.
type AdminMiddleware struct {
	staticToken string
	jwtKey      []byte
	logger      *zap.Logger
}

// NewAdminMiddleware creates an AdminMiddleware. Either credential source may
// be empty; a request passes when it satisfies one of the configured ones.
func NewAdminMiddleware(staticToken, jwtKey string, logger *zap.Logger) *AdminMiddleware {
	return &AdminMiddleware{
		staticToken: staticToken,
		jwtKey:      []byte(jwtKey),
		logger:      logger,
	}
}

// adminClaims are the JWT claims the admin boundary understands.
type adminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// RequireAdmin is a middleware that requires a privileged credential.
func (m *AdminMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			m.logger.Warn("admin request without credential", zap.String("path", r.URL.Path))
			_ = utils.WriteUnauthorized(w, "", "admin credential required")
			return
		}

		subject, err := m.authenticate(token)
		if err != nil {
			m.logger.Warn("admin authentication failed",
				zap.String("path", r.URL.Path),
				zap.Error(err))
			_ = utils.WriteUnauthorized(w, "", "admin credential required")
			return
		}

		ctx := WithAdminSubject(r.Context(), subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// authenticate accepts the static token or a valid admin JWT.
func (m *AdminMiddleware) authenticate(token string) (string, error) {
	if m.staticToken != "" &&
		subtle.ConstantTimeCompare([]byte(token), []byte(m.staticToken)) == 1 {
		return "admin-token", nil
	}

	if len(m.jwtKey) > 0 {
		claims := &adminClaims{}
		parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return m.jwtKey, nil
		})
		if err != nil {
			return "", fmt.Errorf("invalid admin token: %w", err)
		}
		if !parsed.Valid || claims.Role != "admin" {
			return "", fmt.Errorf("token does not carry the admin role")
		}
		subject := claims.Subject
		if subject == "" {
			subject = "admin-jwt"
		}
		return subject, nil
	}

	return "", fmt.Errorf("credential matched no configured admin credential")
}

// extractBearerToken extracts the Bearer token from the Authorization header
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
