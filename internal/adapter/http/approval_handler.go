package http

import (
	"net/http"

	"ictloan-backend/internal/adapter/middleware"
	"ictloan-backend/internal/domain/loan"
	"ictloan-backend/internal/usecase/approval"

	"github.com/labstack/echo/v4"
)

type ApprovalHandler struct{ uc *approval.Usecase }

func NewApprovalHandler(uc *approval.Usecase) *ApprovalHandler { return &ApprovalHandler{uc: uc} }

type emailDecisionReq struct {
	Token   string `param:"token" json:"-" validate:"token64"`
	Remarks string `json:"remarks" validate:"max=1000"`
}

type portalDecisionReq struct {
	Approved *bool  `json:"approved" validate:"required"`
	Remarks  string `json:"remarks"  validate:"max=1000"`
}

// EmailApprove and EmailDecline serve the links in the approval email. The
// token is the only credential on this channel.
func (h *ApprovalHandler) EmailApprove(c echo.Context) error { return h.email(c, true) }

func (h *ApprovalHandler) EmailDecline(c echo.Context) error { return h.email(c, false) }

func (h *ApprovalHandler) email(c echo.Context, approved bool) error {
	var req emailDecisionReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		// malformed tokens are reported exactly like unknown ones
		return writeError(c, loan.ErrInvalidToken)
	}
	dto, err := h.uc.ProcessEmailApproval(c.Request().Context(), req.Token, approved, req.Remarks)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// Portal records a decision made by a signed-in approver.
func (h *ApprovalHandler) Portal(c echo.Context) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return writeError(c, loan.ErrUnauthorized)
	}
	var req portalDecisionReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.ProcessPortalApproval(c.Request().Context(), c.Param("number"), approval.Actor{
		ID:    actor.ID,
		Name:  actor.Name,
		Email: actor.Email,
		Grade: actor.Grade,
	}, *req.Approved, req.Remarks)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
