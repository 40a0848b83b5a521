package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dimitrije/salesdesk/internal/middleware"
	"github.com/dimitrije/salesdesk/internal/models"
	"github.com/dimitrije/salesdesk/internal/provision"
	"github.com/dimitrije/salesdesk/internal/services"
	"github.com/dimitrije/salesdesk/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

// TeamHandler serves the admin team endpoints. Writes go through the
// privileged provisioning action; reads come from the listing cache when warm.
type TeamHandler struct {
	profiles ProfileServiceInterface
	cache    TeamCacheInterface
	members  MembersInterface
	logger   *slog.Logger
}

func NewTeamHandler(profiles ProfileServiceInterface, cache TeamCacheInterface, members MembersInterface, logger *slog.Logger) *TeamHandler {
	return &TeamHandler{
		profiles: profiles,
		cache:    cache,
		members:  members,
		logger:   logger,
	}
}

func (h *TeamHandler) List(c *drift.Context) {
	ctx := c.Request.Context()

	profiles, hit, err := h.cache.Get(ctx)
	if err != nil {
		h.logger.Warn("team cache read failed", "error", err)
	}
	if hit {
		_ = c.JSON(http.StatusOK, profiles)
		return
	}

	profiles, err = h.profiles.List(ctx)
	if err != nil {
		c.InternalServerError("failed to list team")
		return
	}

	if err := h.cache.Set(ctx, profiles); err != nil {
		h.logger.Warn("team cache write failed", "error", err)
	}

	_ = c.JSON(http.StatusOK, profiles)
}

func (h *TeamHandler) Create(c *drift.Context) {
	var req dto.CreateMemberRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	result := h.members.Create(c.Request.Context(), provision.MemberRequest{
		Name:             req.Name,
		Email:            req.Email,
		Password:         req.Password,
		Role:             models.Role(req.Role),
		Phone:            req.Phone,
		AllowedProvinces: req.AllowedProvinces,
		AllowedBrands:    req.AllowedBrands,
	})
	if !result.Success {
		_ = c.JSON(actionStatus(result.Err), actionResponse(result))
		return
	}

	_ = c.JSON(http.StatusCreated, actionResponse(result))
}

func (h *TeamHandler) Update(c *drift.Context) {
	memberID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid member id")
		return
	}

	var req dto.UpdateMemberRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	var upd provision.MemberUpdate
	if req.Role != nil {
		role := models.Role(*req.Role)
		if !role.Valid() {
			c.BadRequest("invalid role")
			return
		}
		upd.Role = &role
	}
	if req.Status != nil {
		status := models.Status(*req.Status)
		if !status.Valid() {
			c.BadRequest("invalid status")
			return
		}
		if status == models.StatusInactive && memberID == middleware.GetUserID(c) {
			c.BadRequest("you cannot deactivate your own account")
			return
		}
		upd.Status = &status
	}
	upd.AllowedProvinces = req.AllowedProvinces
	upd.AllowedBrands = req.AllowedBrands

	profile, err := h.members.Update(c.Request.Context(), memberID, upd)
	if err != nil {
		switch {
		case errors.Is(err, provision.ErrInvalidRequest):
			c.BadRequest("nothing to update")
		case errors.Is(err, services.ErrProfileNotFound), provision.IsNotFound(err):
			c.NotFound("member not found")
		case provision.StageOf(err) == provision.StageConfig:
			_ = c.JSON(http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		default:
			h.logger.Error("team member update failed", "member_id", memberID, "error", err)
			c.InternalServerError("failed to update member")
		}
		return
	}

	_ = c.JSON(http.StatusOK, profile)
}

func (h *TeamHandler) Delete(c *drift.Context) {
	memberID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid member id")
		return
	}

	if memberID == middleware.GetUserID(c) {
		c.BadRequest("you cannot delete your own account")
		return
	}

	result := h.members.Delete(c.Request.Context(), memberID)
	if !result.Success {
		_ = c.JSON(actionStatus(result.Err), actionResponse(result))
		return
	}

	_ = c.JSON(http.StatusOK, actionResponse(result))
}

// actionStatus maps a failed provisioning action to an HTTP status.
func actionStatus(err error) int {
	switch {
	case provision.StageOf(err) == provision.StageConfig:
		return http.StatusServiceUnavailable
	case errors.Is(err, provision.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrIdentityExists):
		return http.StatusConflict
	case provision.IsNotFound(err):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func actionResponse(r provision.Result) dto.ActionResponse {
	return dto.ActionResponse{
		Success: r.Success,
		UserID:  r.UserID,
		Message: r.Message,
		Error:   r.Error,
	}
}
