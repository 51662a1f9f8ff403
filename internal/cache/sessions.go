package cache

import (
	"context"
	"errors"
	"time"

	"sagepos/backend/internal/domain"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionStore keeps live login sessions. A session outlives its token only
// until the same TTL elapses.
type SessionStore struct {
	store Store
	ttl   time.Duration
}

func NewSessionStore(store Store, ttl time.Duration) *SessionStore {
	if store == nil {
		store = NewMemoryStore()
	}
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &SessionStore{store: store, ttl: ttl}
}

func (s *SessionStore) Save(ctx context.Context, session domain.Session) error {
	return s.store.Set(ctx, sessionKey(session.ID), session, s.ttl)
}

func (s *SessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	var session domain.Session
	found, err := s.store.Get(ctx, sessionKey(id), &session)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrSessionNotFound
	}
	return &session, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, sessionKey(id))
}

func sessionKey(id string) string {
	return "session:" + id
}

// DraftStore keeps at most one in-progress draft per employee.
type DraftStore struct {
	store Store
	ttl   time.Duration
}

func NewDraftStore(store Store, ttl time.Duration) *DraftStore {
	if store == nil {
		store = NewMemoryStore()
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &DraftStore{store: store, ttl: ttl}
}

func (d *DraftStore) Save(ctx context.Context, draft domain.Draft) error {
	return d.store.Set(ctx, draftKey(draft.EmployeeID), draft, d.ttl)
}

// Load returns nil without error when the employee has no draft.
func (d *DraftStore) Load(ctx context.Context, employeeID string) (*domain.Draft, error) {
	var draft domain.Draft
	found, err := d.store.Get(ctx, draftKey(employeeID), &draft)
	if err != nil || !found {
		return nil, err
	}
	return &draft, nil
}

func (d *DraftStore) Clear(ctx context.Context, employeeID string) error {
	return d.store.Delete(ctx, draftKey(employeeID))
}

func draftKey(employeeID string) string {
	return "draft:" + employeeID
}
