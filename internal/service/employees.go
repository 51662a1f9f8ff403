package service

import (
	"context"
	"fmt"
	"strings"

	"sagepos/backend/internal/domain"
	"sagepos/backend/internal/lookup"
	"sagepos/backend/internal/store"
	"sagepos/backend/internal/validation"
	"sagepos/backend/internal/xid"
)

const (
	defaultLogLimit = 100
	maxLogLimit     = 500
)

func (s *Service) ListEmployees(ctx context.Context) ([]domain.Employee, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return lookup.Retry(ctx, func() ([]domain.Employee, error) {
		return s.repo.ListEmployees(ctx)
	})
}

func (s *Service) CreateEmployee(ctx context.Context, req domain.EmployeeCreateRequest) (*domain.Employee, error) {
	session, err := requireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Name = strings.TrimSpace(req.Name)
	req.Position = strings.TrimSpace(req.Position)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	now := s.now()
	created, err := s.repo.CreateEmployee(ctx, domain.Employee{
		ID:           xid.New("emp"),
		Username:     req.Username,
		Name:         req.Name,
		PasswordHash: hash,
		Position:     req.Position,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	s.writeEmployeeLog(ctx, session.EmployeeID, domain.LogActionEmployeeCreate,
		fmt.Sprintf("username=%s,position=%s", created.Username, created.Position))
	return created, nil
}

// UpdateEmployee changes the fields present in req. The username is the key
// and never changes.
func (s *Service) UpdateEmployee(ctx context.Context, username string, req domain.EmployeeUpdateRequest) (*domain.Employee, error) {
	session, err := requireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		req.Name = &trimmed
	}
	if req.Position != nil {
		trimmed := strings.TrimSpace(*req.Position)
		req.Position = &trimmed
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if req.Name == nil && req.Password == nil && req.Position == nil {
		return nil, store.Invalid("", "no fields to update")
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	employee, err := lookup.Retry(ctx, func() (*domain.Employee, error) {
		return s.repo.GetEmployeeByUsername(ctx, strings.TrimSpace(username))
	})
	if err != nil {
		return nil, err
	}

	changed := make([]string, 0, 3)
	if req.Name != nil {
		employee.Name = *req.Name
		changed = append(changed, "name")
	}
	if req.Position != nil {
		if employee.ID == session.EmployeeID && *req.Position != domain.PositionAdmin {
			return nil, store.Invalid("position", "cannot remove your own admin position")
		}
		employee.Position = *req.Position
		changed = append(changed, "position")
	}
	if req.Password != nil {
		hash, err := hashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		employee.PasswordHash = hash
		changed = append(changed, "password")
	}
	employee.UpdatedAt = s.now()

	updated, err := s.repo.UpdateEmployee(ctx, *employee)
	if err != nil {
		return nil, err
	}

	s.writeEmployeeLog(ctx, session.EmployeeID, domain.LogActionEmployeeUpdate,
		fmt.Sprintf("username=%s,fields=%s", updated.Username, strings.Join(changed, "|")))
	return updated, nil
}

func (s *Service) DeleteEmployee(ctx context.Context, username string) error {
	session, err := requireAdmin(ctx)
	if err != nil {
		return err
	}
	username = strings.TrimSpace(username)
	if strings.EqualFold(username, session.Username) {
		return store.Invalid("username", "cannot delete your own account")
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.repo.DeleteEmployee(ctx, username); err != nil {
		return err
	}
	s.writeEmployeeLog(ctx, session.EmployeeID, domain.LogActionEmployeeDelete, "username="+username)
	return nil
}

// ListEmployeeLogs returns the newest entries first. An empty employeeID
// lists every employee.
func (s *Service) ListEmployeeLogs(ctx context.Context, employeeID string, limit int) ([]domain.EmployeeLog, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	limit = clampRequestLimit(limit, defaultLogLimit, maxLogLimit)
	employeeID = strings.TrimSpace(employeeID)

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return lookup.Retry(ctx, func() ([]domain.EmployeeLog, error) {
		return s.repo.ListEmployeeLogs(ctx, employeeID, limit)
	})
}

func clampRequestLimit(limit int, fallback int, max int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > max {
		return max
	}
	return limit
}
