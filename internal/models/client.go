package models

import (
	"time"

	"github.com/google/uuid"
)

type Stage string

const (
	StageLead        Stage = "lead"
	StageContacted   Stage = "contacted"
	StageQualified   Stage = "qualified"
	StageProposal    Stage = "proposal"
	StageNegotiation Stage = "negotiation"
	StageWon         Stage = "won"
	StageLost        Stage = "lost"
)

// Stages lists the pipeline in board order.
var Stages = []Stage{
	StageLead, StageContacted, StageQualified, StageProposal, StageNegotiation, StageWon, StageLost,
}

func (s Stage) Valid() bool {
	for _, st := range Stages {
		if st == s {
			return true
		}
	}
	return false
}

type Client struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Company   *string    `json:"company,omitempty"`
	Email     *string    `json:"email,omitempty"`
	Phone     *string    `json:"phone,omitempty"`
	Province  *string    `json:"province,omitempty"`
	Brand     *string    `json:"brand,omitempty"`
	Stage     Stage      `json:"stage"`
	Value     float64    `json:"value"`
	OwnerID   *uuid.UUID `json:"owner_id,omitempty"`
	Notes     *string    `json:"notes,omitempty"`
	CreatedBy *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ClientUpdate carries a partial update; nil fields are left unchanged.
type ClientUpdate struct {
	Name     *string
	Company  *string
	Email    *string
	Phone    *string
	Province *string
	Brand    *string
	Stage    *Stage
	Value    *float64
	OwnerID  *uuid.UUID
	Notes    *string
}

// ClientScope restricts which clients a caller can see. The zero value sees everything.
type ClientScope struct {
	Restricted bool
	OwnerID    uuid.UUID
	Provinces  []string
	Brands     []string
}

// ScopeFor derives the client visibility of a profile.
func ScopeFor(p *Profile) ClientScope {
	if p.Role != RoleSalesRep {
		return ClientScope{}
	}
	return ClientScope{
		Restricted: true,
		OwnerID:    p.ID,
		Provinces:  p.AllowedProvinces,
		Brands:     p.AllowedBrands,
	}
}

// Allows reports whether a client is visible under the scope.
func (s ClientScope) Allows(c *Client) bool {
	if !s.Restricted {
		return true
	}
	if c.OwnerID != nil && *c.OwnerID == s.OwnerID {
		return true
	}
	if c.Province != nil && contains(s.Provinces, *c.Province) {
		return true
	}
	return c.Brand != nil && contains(s.Brands, *c.Brand)
}

type ClientFilter struct {
	Stage   Stage
	OwnerID *uuid.UUID
	Search  string
}

type StageSummary struct {
	Stage Stage   `json:"stage"`
	Count int     `json:"count"`
	Value float64 `json:"value"`
}

type OwnerSummary struct {
	OwnerID  uuid.UUID `json:"owner_id"`
	Name     string    `json:"name"`
	Clients  int       `json:"clients"`
	Value    float64   `json:"value"`
	WonValue float64   `json:"won_value"`
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
