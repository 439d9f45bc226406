package http

import (
	"net/http"
	"strconv"

	"ictloan-backend/internal/usecase/availability"

	"github.com/labstack/echo/v4"
)

type AvailabilityHandler struct{ uc *availability.Usecase }

func NewAvailabilityHandler(uc *availability.Usecase) *AvailabilityHandler {
	return &AvailabilityHandler{uc: uc}
}

type checkReq struct {
	AssetIDs  []uint64 `json:"asset_ids"  validate:"required,min=1,dive,gte=1"`
	StartDate string   `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string   `json:"end_date"   validate:"required,datetime=2006-01-02"`
}

type checkResp struct {
	Results      availability.Result `json:"results"`
	AllAvailable bool                `json:"all_available"`
}

func (h *AvailabilityHandler) Check(c echo.Context) error {
	var req checkReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	res, err := h.uc.CheckAvailability(c.Request().Context(), availability.CheckInput{
		AssetIDs:  req.AssetIDs,
		StartDate: mustDate(req.StartDate),
		EndDate:   mustDate(req.EndDate),
	})
	if err != nil {
		return writeError(c, err)
	}
	all := true
	for _, ok := range res {
		all = all && ok
	}
	return c.JSON(http.StatusOK, checkResp{Results: res, AllAvailable: all})
}

func (h *AvailabilityHandler) Calendar(c echo.Context) error {
	assetID, ok := uintParam(c, "id")
	if !ok {
		return badRequest(c, "invalid asset id")
	}
	start, end, ok := dateRangeQuery(c)
	if !ok {
		return badRequest(c, "start and end must be YYYY-MM-DD")
	}
	cal, err := h.uc.GetAvailabilityCalendar(c.Request().Context(), assetID, start, end)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, cal)
}

func (h *AvailabilityHandler) Alternatives(c echo.Context) error {
	categoryID, ok := uintParam(c, "id")
	if !ok {
		return badRequest(c, "invalid category id")
	}
	start, end, ok := dateRangeQuery(c)
	if !ok {
		return badRequest(c, "start and end must be YYYY-MM-DD")
	}
	limit := 0
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 50 {
			return badRequest(c, "limit must be between 1 and 50")
		}
		limit = n
	}
	list, err := h.uc.GetAlternativeAssets(c.Request().Context(), categoryID, start, end, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"category_id": categoryID, "alternatives": list})
}
