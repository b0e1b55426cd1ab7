package store

import (
	"context"
	"fmt"

	"github.com/aethra/catalog-admin/internal/models"
	"github.com/aethra/catalog-admin/internal/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultAuditLimit caps audit listings
const DefaultAuditLimit = 100

var auditSearchColumns = []string{"kind", "record_id", "operator_email"}

// AuditStore appends and queries audit entries
type AuditStore struct {
	db *gorm.DB
}

// NewAuditStore creates a new audit store
func NewAuditStore(db *gorm.DB) *AuditStore {
	return &AuditStore{db: db}
}

// Record appends an entry
func (s *AuditStore) Record(ctx context.Context, entry *models.AuditEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("record audit entry: %w", err)
	}
	return nil
}

// Search returns the newest entries whose kind, record id or operator email
// contains term. An empty term lists everything.
func (s *AuditStore) Search(ctx context.Context, term string, limit int) ([]models.AuditEntry, error) {
	if limit <= 0 || limit > DefaultAuditLimit {
		limit = DefaultAuditLimit
	}

	query := searchScope(s.db.WithContext(ctx), term)

	var entries []models.AuditEntry
	if err := query.Order("created_at DESC").Limit(limit).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("search audit entries: %w", err)
	}
	return entries, nil
}

func searchScope(db *gorm.DB, term string) *gorm.DB {
	cond, params := security.BuildMultiSearchCondition(auditSearchColumns, term)
	if cond == "" {
		return db
	}
	return db.Where(cond, params...)
}
