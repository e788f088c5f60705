package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking-api/internal/model"
	"github.com/iliyamo/hotel-booking-api/internal/repository"
)

type PricingStore interface {
	List(ctx context.Context, f repository.PricingFilter) ([]model.SeasonalPricing, error)
	Add(ctx context.Context, in repository.PricingInput) (model.SeasonalPricing, error)
	GetByID(ctx context.Context, id uint64) (model.SeasonalPricing, error)
	Update(ctx context.Context, id uint64, in repository.PricingInput) error
	Delete(ctx context.Context, id uint64) error
	Quote(ctx context.Context, roomTypeID uint64, date string) (model.PriceQuote, error)
}

// PricingHandler serves /seasonal-pricing. Reads are public, writes are
// mounted behind the admin role.
type PricingHandler struct {
	Pricing PricingStore
}

func NewPricingHandler(p PricingStore) *PricingHandler { return &PricingHandler{Pricing: p} }

type pricingReq struct {
	RoomTypeID      uint64  `json:"room_type_id" validate:"required,min=1" msg:"Valid room_type_id required"`
	SeasonName      string  `json:"season_name" validate:"min=3,max=50" msg:"Season name must be 3-50 characters"`
	Description     *string `json:"description" validate:"omitempty,max=500" msg:"Description must be max 500 characters"`
	StartDate       string  `json:"start_date" validate:"required,date" msg:"Valid start_date required (YYYY-MM-DD)"`
	EndDate         string  `json:"end_date" validate:"required,date" msg:"Valid end_date required (YYYY-MM-DD)"`
	PriceMultiplier float64 `json:"price_multiplier" validate:"gte=0.1,lte=5" msg:"Price multiplier must be between 0.1 and 5.0"`
	Priority        *int    `json:"priority" validate:"omitempty,min=1,max=10" msg:"Priority must be between 1 and 10"`
	IsActive        *bool   `json:"is_active"`
}

func (h *PricingHandler) bind(c echo.Context) (repository.PricingInput, error) {
	var req pricingReq
	if err := bindJSON(c, &req); err != nil {
		return repository.PricingInput{}, err
	}
	req.SeasonName = strings.TrimSpace(req.SeasonName)
	if req.Description != nil {
		d := strings.TrimSpace(*req.Description)
		req.Description = &d
	}
	if err := c.Validate(&req); err != nil {
		return repository.PricingInput{}, err
	}
	in := repository.PricingInput{
		RoomTypeID:      req.RoomTypeID,
		SeasonName:      req.SeasonName,
		Description:     req.Description,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		PriceMultiplier: req.PriceMultiplier,
		Priority:        1,
		IsActive:        true,
	}
	if req.Priority != nil {
		in.Priority = *req.Priority
	}
	if req.IsActive != nil {
		in.IsActive = *req.IsActive
	}
	return in, nil
}

// List filters by room_type_id, hotel_id, is_active and a date the rule
// must cover.
func (h *PricingHandler) List(c echo.Context) error {
	var f repository.PricingFilter
	if v := c.QueryParam("room_type_id"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid room_type_id")
		}
		f.RoomTypeID = n
	}
	if v := c.QueryParam("hotel_id"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid hotel_id")
		}
		f.HotelID = n
	}
	if v := c.QueryParam("is_active"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid is_active")
		}
		f.IsActive = &b
	}
	if v := c.QueryParam("date"); v != "" {
		if _, err := parseDate(v); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Valid date required (YYYY-MM-DD)")
		}
		f.Date = strings.TrimSpace(v)
	}

	ctx, cancel := dbCtx(c)
	defer cancel()
	rules, err := h.Pricing.List(ctx, f)
	if err != nil {
		return internalError(err, "Failed to fetch seasonal pricing")
	}
	return respond(c, http.StatusOK, "", rules)
}

func (h *PricingHandler) Create(c echo.Context) error {
	in, err := h.bind(c)
	if err != nil {
		return err
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	p, err := h.Pricing.Add(ctx, in)
	switch {
	case errors.Is(err, repository.ErrInvalidDateRange):
		return echo.NewHTTPError(http.StatusBadRequest, "Start date must be before end date")
	case errors.Is(err, repository.ErrMultiplierRange):
		return echo.NewHTTPError(http.StatusBadRequest, "Price multiplier must be between 0 and 5.0")
	case errors.Is(err, repository.ErrRoomTypeNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Room type not found")
	case err != nil:
		return internalError(err, "Failed to create seasonal pricing")
	}
	return respond(c, http.StatusCreated, "Seasonal pricing created successfully", p)
}

func (h *PricingHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id", "pricing ID")
	if err != nil {
		return err
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	p, err := h.Pricing.GetByID(ctx, id)
	if errors.Is(err, repository.ErrPricingNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Seasonal pricing rule not found")
	}
	if err != nil {
		return internalError(err, "Failed to fetch pricing rule")
	}
	return respond(c, http.StatusOK, "", p)
}

// Update replaces every editable field; is_active defaults to true when
// omitted.
func (h *PricingHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id", "pricing ID")
	if err != nil {
		return err
	}
	in, err := h.bind(c)
	if err != nil {
		return err
	}
	start, _ := parseDate(in.StartDate)
	end, _ := parseDate(in.EndDate)
	if !start.Before(end) {
		return echo.NewHTTPError(http.StatusBadRequest, "Start date must be before end date")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()
	err = h.Pricing.Update(ctx, id, in)
	if errors.Is(err, repository.ErrPricingNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Seasonal pricing rule not found")
	}
	if err != nil {
		return internalError(err, "Failed to update seasonal pricing")
	}
	return respond(c, http.StatusOK, "Seasonal pricing updated successfully", nil)
}

func (h *PricingHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id", "pricing ID")
	if err != nil {
		return err
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	err = h.Pricing.Delete(ctx, id)
	if errors.Is(err, repository.ErrPricingNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Seasonal pricing rule not found")
	}
	if err != nil {
		return internalError(err, "Failed to delete seasonal pricing")
	}
	return respond(c, http.StatusOK, "Seasonal pricing deleted successfully", nil)
}

// CurrentPrice quotes a room type on ?date, today when omitted.
func (h *PricingHandler) CurrentPrice(c echo.Context) error {
	id, err := parseID(c, "id", "room type ID")
	if err != nil {
		return err
	}
	date := today().Format(dateLayout)
	if v := c.QueryParam("date"); v != "" {
		d, err := parseDate(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Valid date required (YYYY-MM-DD)")
		}
		date = d.Format(dateLayout)
	}

	ctx, cancel := dbCtx(c)
	defer cancel()
	q, err := h.Pricing.Quote(ctx, id, date)
	if errors.Is(err, repository.ErrRoomTypeNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Room type not found")
	}
	if err != nil {
		return internalError(err, "Failed to get current price")
	}
	return respond(c, http.StatusOK, "", q)
}
