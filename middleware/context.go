package middleware

import "context"

// Context key type to avoid collisions
type contextKey string

const (
	// AdminSubjectKey is the context key for the authenticated admin subject
	AdminSubjectKey contextKey = "admin_subject"
)

// WithAdminSubject adds the authenticated admin subject to the context
func WithAdminSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, AdminSubjectKey, subject)
}

// GetAdminSubjectFromContext retrieves the admin subject from context
func GetAdminSubjectFromContext(ctx context.Context) string {
	if val := ctx.Value(AdminSubjectKey); val != nil {
		if subject, ok := val.(string); ok {
			return subject
		}
	}
	return ""
}
