package http

import (
	"net/http"

	"ictloan-backend/internal/domain/asset"
	"ictloan-backend/internal/domain/ticket"
	"ictloan-backend/internal/usecase/integration"

	"github.com/labstack/echo/v4"
)

type MaintenanceHandler struct{ engine *integration.Engine }

func NewMaintenanceHandler(engine *integration.Engine) *MaintenanceHandler {
	return &MaintenanceHandler{engine: engine}
}

type damageReq struct {
	ApplicationNumber string `json:"application_number" validate:"required"`
	ConditionAfter    string `json:"condition_after"    validate:"required,oneof=excellent good fair poor damaged"`
	DamageReport      string `json:"damage_report"      validate:"required"`
	ReportedBy        string `json:"reported_by"        validate:"max=150"`
}

type scheduleReq struct {
	ScheduledFor string `json:"scheduled_for" validate:"required,datetime=2006-01-02"`
	Description  string `json:"description"`
	Priority     string `json:"priority" validate:"omitempty,oneof=low normal high urgent"`
}

type completeTicketReq struct {
	ResolutionNotes     string `json:"resolution_notes"      validate:"required"`
	Condition           string `json:"condition"             validate:"omitempty,oneof=excellent good fair poor damaged"`
	ResolvedBy          string `json:"resolved_by"           validate:"required,max=150"`
	NextMaintenanceDate string `json:"next_maintenance_date" validate:"omitempty,datetime=2006-01-02"`
}

func (h *MaintenanceHandler) ReportDamage(c echo.Context) error {
	assetID, ok := uintParam(c, "id")
	if !ok {
		return badRequest(c, "invalid asset id")
	}
	var req damageReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.engine.CreateMaintenanceTicket(c.Request().Context(), assetID, req.ApplicationNumber, integration.DamageData{
		ConditionAfter: asset.Condition(req.ConditionAfter),
		DamageReport:   req.DamageReport,
		ReportedBy:     req.ReportedBy,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *MaintenanceHandler) Schedule(c echo.Context) error {
	assetID, ok := uintParam(c, "id")
	if !ok {
		return badRequest(c, "invalid asset id")
	}
	var req scheduleReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.engine.ScheduleMaintenance(c.Request().Context(), assetID, integration.ScheduleInput{
		ScheduledFor: mustDate(req.ScheduledFor),
		Description:  req.Description,
		Priority:     ticket.Priority(req.Priority),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *MaintenanceHandler) TriggerPreventive(c echo.Context) error {
	assetID, ok := uintParam(c, "id")
	if !ok {
		return badRequest(c, "invalid asset id")
	}
	dto, err := h.engine.TriggerPreventiveMaintenance(c.Request().Context(), assetID)
	if err != nil {
		return writeError(c, err)
	}
	if dto == nil {
		return c.JSON(http.StatusOK, map[string]any{"created": false})
	}
	return c.JSON(http.StatusCreated, map[string]any{"created": true, "ticket": dto})
}

func (h *MaintenanceHandler) Sync(c echo.Context) error {
	assetID, ok := uintParam(c, "id")
	if !ok {
		return badRequest(c, "invalid asset id")
	}
	status, err := h.engine.SyncAssetStatus(c.Request().Context(), assetID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"asset_id": assetID, "status": status})
}

func (h *MaintenanceHandler) CompleteTicket(c echo.Context) error {
	ticketID, ok := uintParam(c, "id")
	if !ok {
		return badRequest(c, "invalid ticket id")
	}
	var req completeTicketReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.engine.CompleteMaintenanceTicket(c.Request().Context(), ticketID, integration.CompletionInput{
		ResolutionNotes:     req.ResolutionNotes,
		Condition:           asset.Condition(req.Condition),
		ResolvedBy:          req.ResolvedBy,
		NextMaintenanceDate: optionalDate(req.NextMaintenanceDate),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *MaintenanceHandler) Stats(c echo.Context) error {
	assetID, ok := uintParam(c, "id")
	if !ok {
		return badRequest(c, "invalid asset id")
	}
	stats, err := h.engine.GetAssetMaintenanceStats(c.Request().Context(), assetID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *MaintenanceHandler) History(c echo.Context) error {
	assetID, ok := uintParam(c, "id")
	if !ok {
		return badRequest(c, "invalid asset id")
	}
	entries, err := h.engine.GetUnifiedAssetHistory(c.Request().Context(), assetID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"asset_id": assetID, "history": entries})
}

func (h *MaintenanceHandler) Lifecycle(c echo.Context) error {
	assetID, ok := uintParam(c, "id")
	if !ok {
		return badRequest(c, "invalid asset id")
	}
	report, err := h.engine.GetAssetLifecycleReport(c.Request().Context(), assetID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, report)
}
