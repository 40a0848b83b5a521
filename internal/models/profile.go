package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleSalesRep  Role = "sales_rep"
	RoleDataEntry Role = "data_entry"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSalesRep, RoleDataEntry:
		return true
	}
	return false
}

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// Profile is the application-side record of an identity. Its ID is always the
// identity's ID.
type Profile struct {
	ID               uuid.UUID `json:"id"`
	Email            string    `json:"email"`
	Name             string    `json:"name"`
	Role             Role      `json:"role"`
	Status           Status    `json:"status"`
	Phone            *string   `json:"phone,omitempty"`
	AllowedProvinces []string  `json:"allowed_provinces"`
	AllowedBrands    []string  `json:"allowed_brands"`
	AvatarURL        *string   `json:"avatar_url,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (p *Profile) IsActive() bool {
	return p.Status == StatusActive
}

func (p *Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// Normalize fills the defaults a stored profile must carry: an active status
// and non-nil scope lists.
func (p *Profile) Normalize() {
	if p.Status == "" {
		p.Status = StatusActive
	}
	if p.AllowedProvinces == nil {
		p.AllowedProvinces = []string{}
	}
	if p.AllowedBrands == nil {
		p.AllowedBrands = []string{}
	}
}

// ProfileUpdate carries the self-service fields of a profile. Nil fields are left unchanged.
type ProfileUpdate struct {
	Name      *string
	Phone     *string
	AvatarURL *string
}
