package domain

import (
	"time"

	"github.com/google/uuid"
)

// User roles
const (
	RoleCustomer = "customer"
	RoleSeller   = "seller"
	RoleAdmin    = "admin"
)

// User represents a storefront account. Guest checkouts are resolved into
// real user rows, so every purchase belongs to a user. PasswordHash and
// ProviderUID are nullable: social-login accounts have no password, and
// password accounts have no provider UID until linked.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash *string   `json:"-" db:"password_hash"`
	ProviderUID  *string   `json:"-" db:"provider_uid"`
	Role         string    `json:"role" db:"role"`
	Phone        *string   `json:"phone" db:"phone"`
	Address      *string   `json:"address" db:"address"`
	City         *string   `json:"city" db:"city"`
	State        *string   `json:"state" db:"state"`
	Zip          *string   `json:"zip" db:"zip"`
	Points       int       `json:"points" db:"points"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// ContactInfo is the address/contact detail supplied at checkout or on a
// profile update. Nil fields are left untouched (COALESCE semantics).
type ContactInfo struct {
	Phone   *string
	Address *string
	City    *string
	State   *string
	Zip     *string
}

// RefreshToken is a stored, revocable token backing the access-token flow.
type RefreshToken struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Token     string    `json:"token" db:"token"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	Revoked   bool      `json:"revoked" db:"revoked"`
}
