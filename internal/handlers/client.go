package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dimitrije/salesdesk/internal/middleware"
	"github.com/dimitrije/salesdesk/internal/models"
	"github.com/dimitrije/salesdesk/internal/services"
	"github.com/dimitrije/salesdesk/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

// ClientHandler serves client and pipeline endpoints. Every read and write is
// limited to the clients the caller's profile can see.
type ClientHandler struct {
	clients ClientServiceInterface
	events  ClientEventsInterface
	logger  *slog.Logger
}

func NewClientHandler(clients ClientServiceInterface, events ClientEventsInterface, logger *slog.Logger) *ClientHandler {
	return &ClientHandler{
		clients: clients,
		events:  events,
		logger:  logger,
	}
}

func (h *ClientHandler) List(c *drift.Context) {
	profile := middleware.GetProfile(c)
	if profile == nil {
		c.Forbidden("no profile for this account")
		return
	}

	filter := models.ClientFilter{
		Stage:  models.Stage(c.QueryParam("stage")),
		Search: c.QueryParam("q"),
	}
	if filter.Stage != "" && !filter.Stage.Valid() {
		c.BadRequest("invalid stage")
		return
	}
	if owner := c.QueryParam("owner_id"); owner != "" {
		ownerID, err := uuid.Parse(owner)
		if err != nil {
			c.BadRequest("invalid owner id")
			return
		}
		filter.OwnerID = &ownerID
	}

	clients, err := h.clients.List(c.Request.Context(), models.ScopeFor(profile), filter)
	if err != nil {
		c.InternalServerError("failed to list clients")
		return
	}

	_ = c.JSON(http.StatusOK, clients)
}

func (h *ClientHandler) Create(c *drift.Context) {
	profile := middleware.GetProfile(c)
	if profile == nil {
		c.Forbidden("no profile for this account")
		return
	}

	var req dto.CreateClientRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	owner := req.OwnerID
	if owner == nil && profile.Role == models.RoleSalesRep {
		owner = &profile.ID
	}

	client, err := h.clients.Create(c.Request.Context(), &models.Client{
		Name:      req.Name,
		Company:   req.Company,
		Email:     req.Email,
		Phone:     req.Phone,
		Province:  req.Province,
		Brand:     req.Brand,
		Stage:     models.Stage(req.Stage),
		Value:     req.Value,
		OwnerID:   owner,
		Notes:     req.Notes,
		CreatedBy: &profile.ID,
	})
	if err != nil {
		h.writeError(c, err, "failed to create client")
		return
	}

	h.events.BroadcastClientCreated(client)
	_ = c.JSON(http.StatusCreated, client)
}

func (h *ClientHandler) Get(c *drift.Context) {
	profile := middleware.GetProfile(c)
	if profile == nil {
		c.Forbidden("no profile for this account")
		return
	}

	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid client id")
		return
	}

	client, err := h.clients.GetByID(c.Request.Context(), models.ScopeFor(profile), clientID)
	if err != nil {
		h.writeError(c, err, "failed to get client")
		return
	}

	_ = c.JSON(http.StatusOK, client)
}

func (h *ClientHandler) Update(c *drift.Context) {
	profile := middleware.GetProfile(c)
	if profile == nil {
		c.Forbidden("no profile for this account")
		return
	}

	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid client id")
		return
	}

	var req dto.UpdateClientRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	upd := models.ClientUpdate{
		Name:     req.Name,
		Company:  req.Company,
		Email:    req.Email,
		Phone:    req.Phone,
		Province: req.Province,
		Brand:    req.Brand,
		Value:    req.Value,
		OwnerID:  req.OwnerID,
		Notes:    req.Notes,
	}
	if req.Stage != nil {
		stage := models.Stage(*req.Stage)
		upd.Stage = &stage
	}

	client, err := h.clients.Update(c.Request.Context(), models.ScopeFor(profile), clientID, upd)
	if err != nil {
		h.writeError(c, err, "failed to update client")
		return
	}

	h.events.BroadcastClientUpdated(client)
	_ = c.JSON(http.StatusOK, client)
}

func (h *ClientHandler) Delete(c *drift.Context) {
	profile := middleware.GetProfile(c)
	if profile == nil {
		c.Forbidden("no profile for this account")
		return
	}
	if profile.Role == models.RoleDataEntry {
		c.Forbidden("data entry accounts cannot delete clients")
		return
	}

	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid client id")
		return
	}

	ctx := c.Request.Context()
	scope := models.ScopeFor(profile)

	client, err := h.clients.GetByID(ctx, scope, clientID)
	if err != nil {
		h.writeError(c, err, "failed to delete client")
		return
	}
	if err := h.clients.Delete(ctx, scope, clientID); err != nil {
		h.writeError(c, err, "failed to delete client")
		return
	}

	h.events.BroadcastClientDeleted(client, profile.ID)
	_ = c.JSON(http.StatusOK, map[string]string{"message": "client deleted"})
}

// Pipeline returns per-stage totals of the visible clients.
func (h *ClientHandler) Pipeline(c *drift.Context) {
	profile := middleware.GetProfile(c)
	if profile == nil {
		c.Forbidden("no profile for this account")
		return
	}

	pipeline, err := h.clients.Pipeline(c.Request.Context(), models.ScopeFor(profile))
	if err != nil {
		c.InternalServerError("failed to build pipeline")
		return
	}

	_ = c.JSON(http.StatusOK, pipeline)
}

func (h *ClientHandler) OwnerReport(c *drift.Context) {
	summaries, err := h.clients.OwnerSummaries(c.Request.Context())
	if err != nil {
		c.InternalServerError("failed to build owner report")
		return
	}

	_ = c.JSON(http.StatusOK, summaries)
}

func (h *ClientHandler) writeError(c *drift.Context, err error, msg string) {
	switch {
	case errors.Is(err, services.ErrClientNotFound):
		c.NotFound("client not found")
	case errors.Is(err, services.ErrClientName),
		errors.Is(err, services.ErrInvalidStage),
		errors.Is(err, services.ErrUnknownOwner):
		c.BadRequest(err.Error())
	default:
		h.logger.Error(msg, "error", err)
		c.InternalServerError(msg)
	}
}
