package dto

import "github.com/google/uuid"

type CreateClientRequest struct {
	Name     string     `json:"name"`
	Company  *string    `json:"company,omitempty"`
	Email    *string    `json:"email,omitempty"`
	Phone    *string    `json:"phone,omitempty"`
	Province *string    `json:"province,omitempty"`
	Brand    *string    `json:"brand,omitempty"`
	Stage    string     `json:"stage,omitempty"`
	Value    float64    `json:"value"`
	OwnerID  *uuid.UUID `json:"owner_id,omitempty"`
	Notes    *string    `json:"notes,omitempty"`
}

// UpdateClientRequest is a partial update. Omitted fields keep their value.
type UpdateClientRequest struct {
	Name     *string    `json:"name,omitempty"`
	Company  *string    `json:"company,omitempty"`
	Email    *string    `json:"email,omitempty"`
	Phone    *string    `json:"phone,omitempty"`
	Province *string    `json:"province,omitempty"`
	Brand    *string    `json:"brand,omitempty"`
	Stage    *string    `json:"stage,omitempty"`
	Value    *float64   `json:"value,omitempty"`
	OwnerID  *uuid.UUID `json:"owner_id,omitempty"`
	Notes    *string    `json:"notes,omitempty"`
}
