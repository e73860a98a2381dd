package models

import (
	"time"

	"github.com/google/uuid"
)

// AccountMaster is one chart-of-accounts row in a tenant's registry.
// LastUsedAt feeds the matching engine's recency tie-break.
type AccountMaster struct {
	ID          uuid.UUID  `db:"id"`
	TenantID    uuid.UUID  `db:"tenant_id"`
	Code        string     `db:"code"`
	Name        string     `db:"name"`
	AccountType string     `db:"account_type"` // expense / income / asset / liability
	LastUsedAt  *time.Time `db:"last_used_at"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

type VendorMaster struct {
	ID         uuid.UUID  `db:"id"`
	TenantID   uuid.UUID  `db:"tenant_id"`
	Code       string     `db:"code"`
	Name       string     `db:"name"`
	Active     bool       `db:"active"`
	LastUsedAt *time.Time `db:"last_used_at"`
	CreatedAt  time.Time  `db:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at"`
}
