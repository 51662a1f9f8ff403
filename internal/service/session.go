package service

import (
	"context"
	"errors"

	"sagepos/backend/internal/domain"
)

var (
	ErrAuthentication = errors.New("invalid username or password")
	ErrAuthorization  = errors.New("admin position required")
)

type sessionContextKey struct{}

func WithSession(ctx context.Context, session domain.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, session)
}

func SessionFromContext(ctx context.Context) (domain.Session, bool) {
	session, ok := ctx.Value(sessionContextKey{}).(domain.Session)
	return session, ok
}

func requireSession(ctx context.Context) (domain.Session, error) {
	session, ok := SessionFromContext(ctx)
	if !ok || session.EmployeeID == "" {
		return domain.Session{}, ErrAuthentication
	}
	return session, nil
}

func requireAdmin(ctx context.Context) (domain.Session, error) {
	session, err := requireSession(ctx)
	if err != nil {
		return domain.Session{}, err
	}
	if !session.IsAdmin() {
		return domain.Session{}, ErrAuthorization
	}
	return session, nil
}
