// Package models contains the panel's persisted types and the catalog record shape
package models

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// OPERATORS
// =============================================================================

// Role is the permission level of a panel operator
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEditor, RoleViewer:
		return true
	}
	return false
}

// Operator is a person allowed to log into the admin panel
type Operator struct {
	ID           uuid.UUID  `json:"id" gorm:"primaryKey;size:36"`
	Email        string     `json:"email" gorm:"uniqueIndex;not null;size:255"`
	PasswordHash string     `json:"-" gorm:"not null;size:255"`
	DisplayName  string     `json:"display_name" gorm:"size:100"`
	Role         Role       `json:"role" gorm:"not null;size:20"`
	IsActive     bool       `json:"is_active" gorm:"default:true"`
	LastLoginAt  *time.Time `json:"last_login_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TableName returns the table name for Operator
func (Operator) TableName() string {
	return "operators"
}

// Name returns the display name, falling back to the email
func (o *Operator) Name() string {
	if o.DisplayName != "" {
		return o.DisplayName
	}
	return o.Email
}

// =============================================================================
// AUDIT
// =============================================================================

// AuditAction is a write action taken through the panel
type AuditAction string

const (
	AuditSave   AuditAction = "save"
	AuditDelete AuditAction = "delete"
)

// AuditEntry records one save or delete attempt against the catalog API
type AuditEntry struct {
	ID            uuid.UUID   `json:"id" gorm:"primaryKey;size:36"`
	OperatorID    uuid.UUID   `json:"operator_id" gorm:"size:36;index"`
	OperatorEmail string      `json:"operator_email" gorm:"size:255"`
	Action        AuditAction `json:"action" gorm:"not null;size:20"`
	Kind          string      `json:"kind" gorm:"not null;size:20;index"`
	RecordID      string      `json:"record_id" gorm:"not null;size:64"`
	Payload       JSONB       `json:"payload"`
	Success       bool        `json:"success"`
	Error         string      `json:"error"`
	CreatedAt     time.Time   `json:"created_at" gorm:"index"`
}

// TableName returns the table name for AuditEntry
func (AuditEntry) TableName() string {
	return "audit_entries"
}
