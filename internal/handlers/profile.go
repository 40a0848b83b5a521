package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dimitrije/salesdesk/internal/middleware"
	"github.com/dimitrije/salesdesk/internal/models"
	"github.com/dimitrije/salesdesk/internal/services"
	"github.com/dimitrije/salesdesk/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type ProfileHandler struct {
	profiles ProfileServiceInterface
}

func NewProfileHandler(profiles ProfileServiceInterface) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

func (h *ProfileHandler) GetMe(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	profile, err := h.profiles.GetByID(c.Request.Context(), userID)
	if err != nil {
		c.NotFound("profile not found")
		return
	}

	_ = c.JSON(http.StatusOK, profile)
}

// UpdateMe changes the caller's own name, phone and avatar. Role, status and
// scopes are managed through the team endpoints only.
func (h *ProfileHandler) UpdateMe(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		c.BadRequest("name cannot be empty")
		return
	}

	profile, err := h.profiles.Update(c.Request.Context(), userID, models.ProfileUpdate{
		Name:      req.Name,
		Phone:     req.Phone,
		AvatarURL: req.AvatarURL,
	})
	if errors.Is(err, services.ErrProfileNotFound) {
		c.NotFound("profile not found")
		return
	}
	if err != nil {
		c.InternalServerError("failed to update profile")
		return
	}

	_ = c.JSON(http.StatusOK, profile)
}
