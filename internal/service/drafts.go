package service

import (
	"context"

	"sagepos/backend/internal/domain"
	"sagepos/backend/internal/store"
	"sagepos/backend/internal/validation"
)

// SaveDraft replaces the employee's in-progress draft.
func (s *Service) SaveDraft(ctx context.Context, req domain.DraftSaveRequest) (*domain.Draft, error) {
	session, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	req.CustomerPhone = validation.NormalizePhone(req.CustomerPhone)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	draft := domain.Draft{
		EmployeeID:    session.EmployeeID,
		Type:          req.Type,
		Cart:          req.Cart,
		CustomerPhone: req.CustomerPhone,
		ReturnDate:    req.ReturnDate,
		SavedAt:       s.now(),
	}
	if draft.Cart == nil {
		draft.Cart = []domain.CartItemRef{}
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if err := s.drafts.Save(ctx, draft); err != nil {
		return nil, store.Persistence("save draft", err)
	}
	return &draft, nil
}

func (s *Service) LoadDraft(ctx context.Context) (*domain.Draft, error) {
	session, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	draft, err := s.drafts.Load(ctx, session.EmployeeID)
	if err != nil {
		return nil, store.Persistence("load draft", err)
	}
	if draft == nil {
		return nil, store.NotFound("draft", session.EmployeeID)
	}
	return draft, nil
}

func (s *Service) ClearDraft(ctx context.Context) error {
	session, err := requireSession(ctx)
	if err != nil {
		return err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if err := s.drafts.Clear(ctx, session.EmployeeID); err != nil {
		return store.Persistence("clear draft", err)
	}
	return nil
}
