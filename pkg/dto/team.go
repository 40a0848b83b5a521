package dto

import "github.com/google/uuid"

// CreateMemberRequest is the body of the team member action.
type CreateMemberRequest struct {
	Name             string   `json:"name"`
	Email            string   `json:"email"`
	Password         string   `json:"password,omitempty"`
	Role             string   `json:"role"`
	Phone            *string  `json:"phone,omitempty"`
	AllowedProvinces []string `json:"allowedProvinces,omitempty"`
	AllowedBrands    []string `json:"allowedBrands,omitempty"`
}

type UpdateMemberRequest struct {
	Role             *string   `json:"role,omitempty"`
	Status           *string   `json:"status,omitempty"`
	AllowedProvinces *[]string `json:"allowedProvinces,omitempty"`
	AllowedBrands    *[]string `json:"allowedBrands,omitempty"`
}

type ActionResponse struct {
	Success bool       `json:"success"`
	UserID  *uuid.UUID `json:"userId,omitempty"`
	Message string     `json:"message,omitempty"`
	Error   string     `json:"error,omitempty"`
}
