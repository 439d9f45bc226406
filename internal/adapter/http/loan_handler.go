package http

import (
	"net/http"

	"ictloan-backend/internal/domain/asset"
	"ictloan-backend/internal/usecase/loan"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type LoanHandler struct{ uc *loan.Usecase }

func NewLoanHandler(uc *loan.Usecase) *LoanHandler { return &LoanHandler{uc: uc} }

type createLoanReq struct {
	UserID         *uint64  `json:"user_id"`
	ApplicantName  string   `json:"applicant_name"  validate:"required,max=150"`
	ApplicantEmail string   `json:"applicant_email" validate:"required,email"`
	ApplicantPhone string   `json:"applicant_phone" validate:"max=32"`
	StaffID        string   `json:"staff_id"        validate:"max=32"`
	ApplicantGrade int      `json:"applicant_grade" validate:"gte=1,lte=99"`
	Purpose        string   `json:"purpose"`
	StartDate      string   `json:"loan_start_date" validate:"required,datetime=2006-01-02"`
	EndDate        string   `json:"loan_end_date"   validate:"required,datetime=2006-01-02"`
	TotalValue     string   `json:"total_value"     validate:"required,money"`
	AssetIDs       []uint64 `json:"asset_ids"       validate:"required,min=1,dive,gte=1"`
}

type issueReq struct {
	Items []struct {
		AssetID     uint64   `json:"asset_id"  validate:"required"`
		Condition   string   `json:"condition" validate:"omitempty,oneof=excellent good fair poor damaged"`
		Accessories []string `json:"accessories"`
	} `json:"items" validate:"dive"`
}

type returnReq struct {
	ReturnedBy string `json:"returned_by" validate:"required,max=150"`
	Items      []struct {
		AssetID      uint64   `json:"asset_id"  validate:"required"`
		Condition    string   `json:"condition" validate:"omitempty,oneof=excellent good fair poor damaged"`
		Accessories  []string `json:"accessories"`
		DamageReport string   `json:"damage_report"`
	} `json:"items" validate:"dive"`
}

func (h *LoanHandler) CreateLoan(c echo.Context) error {
	var req createLoanReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Create(c.Request().Context(), loan.CreateLoanInput{
		UserID:         req.UserID,
		ApplicantName:  req.ApplicantName,
		ApplicantEmail: req.ApplicantEmail,
		ApplicantPhone: req.ApplicantPhone,
		StaffID:        req.StaffID,
		ApplicantGrade: req.ApplicantGrade,
		Purpose:        req.Purpose,
		StartDate:      mustDate(req.StartDate),
		EndDate:        mustDate(req.EndDate),
		TotalValue:     decimal.RequireFromString(req.TotalValue),
		AssetIDs:       req.AssetIDs,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *LoanHandler) GetLoan(c echo.Context) error {
	dto, err := h.uc.Get(c.Request().Context(), c.Param("number"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) Submit(c echo.Context) error {
	dto, err := h.uc.Submit(c.Request().Context(), c.Param("number"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) Issue(c echo.Context) error {
	var req issueReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	items := make([]loan.IssueItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, loan.IssueItem{
			AssetID:     it.AssetID,
			Condition:   asset.Condition(it.Condition),
			Accessories: it.Accessories,
		})
	}
	dto, err := h.uc.Issue(c.Request().Context(), c.Param("number"), items)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) MarkInUse(c echo.Context) error {
	dto, err := h.uc.MarkInUse(c.Request().Context(), c.Param("number"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) MarkOverdue(c echo.Context) error {
	dto, err := h.uc.MarkOverdue(c.Request().Context(), c.Param("number"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) Return(c echo.Context) error {
	var req returnReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	items := make([]loan.ReturnItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, loan.ReturnItem{
			AssetID:      it.AssetID,
			Condition:    asset.Condition(it.Condition),
			Accessories:  it.Accessories,
			DamageReport: it.DamageReport,
		})
	}
	dto, err := h.uc.Return(c.Request().Context(), c.Param("number"), items, req.ReturnedBy)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) Complete(c echo.Context) error {
	dto, err := h.uc.Complete(c.Request().Context(), c.Param("number"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
