package httpapi

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"sagepos/backend/internal/cache"
	"sagepos/backend/internal/domain"
	"sagepos/backend/internal/service"
	"sagepos/backend/internal/store"
	"sagepos/backend/internal/xid"
)

const tokenIssuer = "sagepos"

var errInvalidToken = errors.New("invalid or expired token")

// Authenticator checks employee credentials and reloads the employee behind
// a live session.
type Authenticator interface {
	Authenticate(ctx context.Context, username string, password string) (*domain.Employee, error)
	CurrentEmployee(ctx context.Context, employeeID string) (*domain.Employee, error)
}

// AuthManager issues signed access tokens. Every token names a server-side
// session, so logging out revokes the token before it expires.
type AuthManager struct {
	secret        []byte
	tokenTTL      time.Duration
	sessions      *cache.SessionStore
	authenticator Authenticator
	now           func() time.Time
}

type posCustomClaims struct {
	jwtlib.RegisteredClaims
	Username string `json:"username"`
	Position string `json:"position"`
}

func NewAuthManager(secret string, tokenTTL time.Duration, sessions *cache.SessionStore, authenticator Authenticator) *AuthManager {
	if secret == "" {
		secret = "dev-change-me"
	}
	if tokenTTL <= 0 {
		tokenTTL = 8 * time.Hour
	}
	if sessions == nil {
		sessions = cache.NewSessionStore(nil, tokenTTL)
	}
	return &AuthManager{
		secret:        []byte(secret),
		tokenTTL:      tokenTTL,
		sessions:      sessions,
		authenticator: authenticator,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (a *AuthManager) Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error) {
	employee, err := a.authenticator.Authenticate(ctx, strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		return domain.LoginResponse{}, err
	}

	issuedAt := a.now()
	session := domain.Session{
		ID:         xid.New("sess"),
		EmployeeID: employee.ID,
		Username:   employee.Username,
		Name:       employee.Name,
		Position:   employee.Position,
		IssuedAt:   issuedAt,
	}
	if err := a.sessions.Save(ctx, session); err != nil {
		return domain.LoginResponse{}, store.Persistence("save session", err)
	}

	expiresAt := issuedAt.Add(a.tokenTTL)
	token, err := a.sign(session, expiresAt)
	if err != nil {
		return domain.LoginResponse{}, err
	}

	return domain.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt.Format(time.RFC3339),
		Employee:    *employee,
	}, nil
}

// ParseToken verifies the token signature and expiry, then loads the session
// it names. A revoked session or a deleted employee invalidates the token.
// The session carries the employee's current name and position.
func (a *AuthManager) ParseToken(ctx context.Context, tokenStr string) (domain.Session, error) {
	claims := &posCustomClaims{}
	token, err := jwtlib.ParseWithClaims(tokenStr, claims, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	}, jwtlib.WithValidMethods([]string{"HS256"}), jwtlib.WithIssuer(tokenIssuer))
	if err != nil || !token.Valid {
		return domain.Session{}, errInvalidToken
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" || claims.ID == "" {
		return domain.Session{}, errInvalidToken
	}

	session, err := a.sessions.Get(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, cache.ErrSessionNotFound) {
			return domain.Session{}, errInvalidToken
		}
		return domain.Session{}, store.Persistence("load session", err)
	}
	if session.EmployeeID != sub {
		return domain.Session{}, errInvalidToken
	}

	employee, err := a.authenticator.CurrentEmployee(ctx, session.EmployeeID)
	if err != nil {
		if errors.Is(err, service.ErrAuthentication) {
			if delErr := a.sessions.Delete(ctx, session.ID); delErr != nil {
				log.Printf("[auth] WARN: failed to drop session %s: %v", session.ID, delErr)
			}
			return domain.Session{}, errInvalidToken
		}
		return domain.Session{}, err
	}
	session.Name = employee.Name
	session.Position = employee.Position
	return *session, nil
}

func (a *AuthManager) Revoke(ctx context.Context, sessionID string) error {
	if err := a.sessions.Delete(ctx, sessionID); err != nil {
		return store.Persistence("delete session", err)
	}
	return nil
}

func (a *AuthManager) sign(session domain.Session, expiresAt time.Time) (string, error) {
	claims := posCustomClaims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			ID:        session.ID,
			Subject:   session.EmployeeID,
			IssuedAt:  jwtlib.NewNumericDate(session.IssuedAt),
			ExpiresAt: jwtlib.NewNumericDate(expiresAt),
			Issuer:    tokenIssuer,
		},
		Username: session.Username,
		Position: session.Position,
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}
