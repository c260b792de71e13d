package http

import (
	"context"
	nethttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"

	"github.com/Apurer/dealership-sync/internal/domains/easycars/application"
	"github.com/Apurer/dealership-sync/internal/domains/easycars/domain"
	"github.com/Apurer/dealership-sync/internal/domains/easycars/ports"
	leads "github.com/Apurer/dealership-sync/internal/domains/leads/domain"
	apierrors "github.com/Apurer/dealership-sync/internal/shared/errors"
)

// Handler exposes EasyCars sync triggers and read models over HTTP.
type Handler struct {
	service   ports.Service
	workflows ports.WorkflowOrchestrator
	responder *apierrors.ChainedResponder
}

// NewHandler wires the sync service. workflows may be nil, in which case pushes run inline.
func NewHandler(service ports.Service, workflows ports.WorkflowOrchestrator) *Handler {
	return &Handler{
		service:   service,
		workflows: workflows,
		responder: apierrors.NewChainedResponder("", serviceErrorMappers...),
	}
}

// Register mounts the routes on r.
func (h *Handler) Register(r gin.IRouter) {
	v1 := r.Group("/v1")
	dealership := v1.Group("/dealerships/:dealershipId/easycars")
	dealership.POST("/sync", h.SyncDealership)
	dealership.POST("/stock-sync", h.SyncStock)
	dealership.POST("/lead-status-sync", h.SyncLeadStatuses)
	dealership.POST("/leads/:leadNumber/import", h.ImportLead)
	dealership.GET("/sync-logs", h.ListSyncLogs)
	dealership.GET("/conflicts", h.ListConflicts)
	v1.POST("/leads/:leadId/easycars/push", h.PushLead)
	v1.POST("/easycars/conflicts/:conflictId/resolve", h.ResolveConflict)
}

// Post /v1/dealerships/:dealershipId/easycars/sync
// Runs stock sync then lead-status sync, durably when Temporal is configured.
func (h *Handler) SyncDealership(c *gin.Context) {
	id, ok := h.pathID(c, "dealershipId")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if h.workflows == nil {
		c.JSON(nethttp.StatusOK, DealershipSync{
			Stock:      fromResult(h.service.SyncStock(ctx, id)),
			LeadStatus: fromResult(h.service.SyncLeadStatuses(ctx, id)),
		})
		return
	}
	out, err := h.workflows.SyncDealership(ctx, id)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, fromDealershipSync(out))
}

// Post /v1/dealerships/:dealershipId/easycars/stock-sync
func (h *Handler) SyncStock(c *gin.Context) {
	id, ok := h.pathID(c, "dealershipId")
	if !ok {
		return
	}
	c.JSON(nethttp.StatusOK, fromResult(h.service.SyncStock(c.Request.Context(), id)))
}

// Post /v1/dealerships/:dealershipId/easycars/lead-status-sync
func (h *Handler) SyncLeadStatuses(c *gin.Context) {
	id, ok := h.pathID(c, "dealershipId")
	if !ok {
		return
	}
	c.JSON(nethttp.StatusOK, fromResult(h.service.SyncLeadStatuses(c.Request.Context(), id)))
}

// Post /v1/leads/:leadId/easycars/push
func (h *Handler) PushLead(c *gin.Context) {
	id, ok := h.pathID(c, "leadId")
	if !ok {
		return
	}
	result, err := h.pushLead(c.Request.Context(), id)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, fromResult(result))
}

func (h *Handler) pushLead(ctx context.Context, leadID int64) (*domain.SyncResult, error) {
	if h.workflows != nil {
		return h.workflows.PushLead(ctx, leadID)
	}
	return h.service.PushLead(ctx, leadID), nil
}

// Post /v1/dealerships/:dealershipId/easycars/leads/:leadNumber/import
func (h *Handler) ImportLead(c *gin.Context) {
	id, ok := h.pathID(c, "dealershipId")
	if !ok {
		return
	}
	var leadNumber string
	if err := runtime.BindStyledParameterWithLocation("simple", false, "leadNumber", runtime.ParamLocationPath, c.Param("leadNumber"), &leadNumber); err != nil {
		h.responder.BadRequest(c, err.Error())
		return
	}
	lead, result := h.service.ImportLead(c.Request.Context(), id, leadNumber)
	c.JSON(nethttp.StatusOK, ImportedLead{Lead: fromLead(lead), Result: fromResult(result)})
}

// Get /v1/dealerships/:dealershipId/easycars/sync-logs
func (h *Handler) ListSyncLogs(c *gin.Context) {
	id, ok := h.pathID(c, "dealershipId")
	if !ok {
		return
	}
	var limit int
	if err := runtime.BindQueryParameter("form", true, false, "limit", c.Request.URL.Query(), &limit); err != nil {
		h.responder.ValidationFailed(c, map[string]string{"limit": err.Error()})
		return
	}
	logs, err := h.service.ListSyncLogs(c.Request.Context(), id, limit)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, fromSyncLogs(logs))
}

// Get /v1/dealerships/:dealershipId/easycars/conflicts
func (h *Handler) ListConflicts(c *gin.Context) {
	id, ok := h.pathID(c, "dealershipId")
	if !ok {
		return
	}
	conflicts, err := h.service.ListOpenConflicts(c.Request.Context(), id)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, fromConflicts(conflicts))
}

// Post /v1/easycars/conflicts/:conflictId/resolve
func (h *Handler) ResolveConflict(c *gin.Context) {
	var payload resolveConflictRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.responder.BadRequest(c, err.Error())
		return
	}
	conflict, err := h.service.ResolveConflict(c.Request.Context(), c.Param("conflictId"), leads.Resolution(payload.Resolution))
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, fromConflict(conflict))
}

func (h *Handler) pathID(c *gin.Context, name string) (int64, bool) {
	var id int64
	if err := runtime.BindStyledParameterWithLocation("simple", false, name, runtime.ParamLocationPath, c.Param(name), &id); err != nil {
		h.responder.ValidationFailed(c, map[string]string{name: err.Error()})
		return 0, false
	}
	if id <= 0 {
		h.responder.ValidationFailed(c, map[string]string{name: "must be a positive integer"})
		return 0, false
	}
	return id, true
}

var serviceErrorMappers = []apierrors.ErrorMapper{
	apierrors.MapSentinel(apierrors.ErrValidation, application.ErrInvalidInput),
	apierrors.MapSentinel(apierrors.ErrNotFound, application.ErrNotFound),
	apierrors.MapSentinel(apierrors.ErrConflict, application.ErrConflictAlreadyResolved, leads.ErrCannotUndelete),
}
