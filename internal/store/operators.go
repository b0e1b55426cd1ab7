// Package store persists operators and the audit trail with gorm
package store

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/aethra/catalog-admin/internal/errors"
	"github.com/aethra/catalog-admin/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OperatorStore handles operator accounts
type OperatorStore struct {
	db *gorm.DB
}

// NewOperatorStore creates a new operator store
func NewOperatorStore(db *gorm.DB) *OperatorStore {
	return &OperatorStore{db: db}
}

// NormalizeEmail lowercases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Count returns the number of operators
func (s *OperatorStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Operator{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count operators: %w", err)
	}
	return count, nil
}

// FindByEmail returns the operator with an email address
func (s *OperatorStore) FindByEmail(ctx context.Context, email string) (*models.Operator, error) {
	var op models.Operator
	err := s.db.WithContext(ctx).
		Where("LOWER(email) = ?", NormalizeEmail(email)).
		First(&op).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NewNotFoundError("operator")
		}
		return nil, fmt.Errorf("find operator: %w", err)
	}
	return &op, nil
}

// FindByID returns an operator by id
func (s *OperatorStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Operator, error) {
	var op models.Operator
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&op).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NewNotFoundError("operator")
		}
		return nil, fmt.Errorf("find operator: %w", err)
	}
	return &op, nil
}

// List returns all operators ordered by email
func (s *OperatorStore) List(ctx context.Context) ([]models.Operator, error) {
	var ops []models.Operator
	if err := s.db.WithContext(ctx).Order("email").Find(&ops).Error; err != nil {
		return nil, fmt.Errorf("list operators: %w", err)
	}
	return ops, nil
}

// Create stores a new operator. The email must not be taken.
func (s *OperatorStore) Create(ctx context.Context, op *models.Operator) error {
	op.Email = NormalizeEmail(op.Email)
	if !op.Role.Valid() {
		return errors.NewValidationError("role", fmt.Sprintf("unknown role %q", op.Role))
	}

	var existing int64
	if err := s.db.WithContext(ctx).Model(&models.Operator{}).
		Where("LOWER(email) = ?", op.Email).
		Count(&existing).Error; err != nil {
		return fmt.Errorf("check operator email: %w", err)
	}
	if existing > 0 {
		return errors.NewConflictError("operator " + op.Email)
	}

	if op.ID == uuid.Nil {
		op.ID = uuid.New()
	}
	if err := s.db.WithContext(ctx).Create(op).Error; err != nil {
		return fmt.Errorf("create operator: %w", err)
	}
	return nil
}

// Delete removes the operator with an email address
func (s *OperatorStore) Delete(ctx context.Context, email string) error {
	res := s.db.WithContext(ctx).
		Where("LOWER(email) = ?", NormalizeEmail(email)).
		Delete(&models.Operator{})
	if res.Error != nil {
		return fmt.Errorf("delete operator: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return errors.NewNotFoundError("operator")
	}
	return nil
}

// TouchLogin records a successful login
func (s *OperatorStore) TouchLogin(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	return s.db.WithContext(ctx).Model(&models.Operator{}).
		Where("id = ?", id).
		Update("last_login_at", &now).Error
}
