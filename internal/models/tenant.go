package models

import (
	"time"

	"github.com/google/uuid"
)

// Tenant is the root of data isolation; every downstream entity is
// scoped by exactly one tenant. The nullable threshold columns override
// the config defaults per tenant.
type Tenant struct {
	ID                      uuid.UUID  `db:"id"`
	Code                    string     `db:"code"`
	Name                    string     `db:"name"`
	CountryCode             string     `db:"country_code"`
	MatchThreshold          *float64   `db:"match_threshold"`
	ReconcileTolerance      *string    `db:"reconcile_tolerance"`
	ReconcileDateWindowDays *int       `db:"reconcile_date_window_days"`
	CreatedAt               time.Time  `db:"created_at"`
	UpdatedAt               time.Time  `db:"updated_at"`
}

type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleMember UserRole = "member"
)

type User struct {
	ID        uuid.UUID  `db:"id"`
	TenantID  *uuid.UUID `db:"tenant_id"` // nil only for cross-tenant admins
	Username  string     `db:"username"`
	Email     string     `db:"email"`
	Password  string     `db:"password"`
	Role      UserRole   `db:"role"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
}
