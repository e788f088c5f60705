package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking-api/internal/model"
	"github.com/iliyamo/hotel-booking-api/internal/repository"
)

type ReviewStore interface {
	Add(ctx context.Context, bookingID, userID uint64, in repository.ReviewInput) (model.Review, error)
	GetByID(ctx context.Context, id uint64) (model.Review, error)
	OwnerOf(ctx context.Context, id uint64) (uint64, error)
	MarkHelpful(ctx context.Context, reviewID, userID uint64) error
	Update(ctx context.Context, id uint64, in repository.ReviewInput) error
	Delete(ctx context.Context, id uint64) error
	ListRecent(ctx context.Context, page, limit int) ([]model.Review, int64, error)
}

type ReviewHandler struct {
	Reviews ReviewStore
}

func NewReviewHandler(r ReviewStore) *ReviewHandler { return &ReviewHandler{Reviews: r} }

type reviewBody struct {
	Rating int    `json:"rating" validate:"required,min=1,max=5" msg:"Rating must be between 1 and 5"`
	Title  string `json:"review_title" validate:"min=5,max=200" msg:"Review title must be 5-200 characters"`
	Text   string `json:"review_text" validate:"min=10,max=2000" msg:"Review text must be 10-2000 characters"`
}

type createReviewReq struct {
	BookingID uint64 `json:"booking_id" validate:"required,min=1" msg:"Valid booking_id required"`
	reviewBody
}

// bindReview trims title and text before the length rules run.
func bindReview(c echo.Context, req any, body *reviewBody) error {
	if err := bindJSON(c, req); err != nil {
		return err
	}
	body.Title = strings.TrimSpace(body.Title)
	body.Text = strings.TrimSpace(body.Text)
	return c.Validate(req)
}

func (b reviewBody) input() repository.ReviewInput {
	return repository.ReviewInput{Rating: b.Rating, Title: b.Title, Text: b.Text}
}

// Create stores a verified review for one of the caller's stays.
// AddReview enforces ownership, one review per booking and the
// cancelled-booking rule.
func (h *ReviewHandler) Create(c echo.Context) error {
	uid, err := mustUserID(c)
	if err != nil {
		return err
	}
	var req createReviewReq
	if err := bindReview(c, &req, &req.reviewBody); err != nil {
		return err
	}

	ctx, cancel := dbCtx(c)
	defer cancel()
	rv, err := h.Reviews.Add(ctx, req.BookingID, uid, req.input())
	switch {
	case errors.Is(err, repository.ErrReviewExists):
		return echo.NewHTTPError(http.StatusConflict, "You have already reviewed this booking")
	case errors.Is(err, repository.ErrNotBookingOwner):
		return echo.NewHTTPError(http.StatusForbidden, "You can only review your own bookings")
	case errors.Is(err, repository.ErrBookingCancelled):
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot review a cancelled booking")
	case errors.Is(err, repository.ErrBookingNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Booking not found")
	case err != nil:
		return internalError(err, "Failed to add review")
	}
	return respond(c, http.StatusCreated, "Review added successfully", rv)
}

func (h *ReviewHandler) Recent(c echo.Context) error {
	page, limit := pageQuery(c, 10, 50)
	ctx, cancel := dbCtx(c)
	defer cancel()
	reviews, total, err := h.Reviews.ListRecent(ctx, page, limit)
	if err != nil {
		return internalError(err, "Failed to fetch recent reviews")
	}
	return respond(c, http.StatusOK, "", echo.Map{
		"reviews":    reviews,
		"pagination": model.NewPagination(page, limit, total),
	})
}

func (h *ReviewHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id", "review ID")
	if err != nil {
		return err
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	rv, err := h.Reviews.GetByID(ctx, id)
	if errors.Is(err, repository.ErrReviewNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Review not found")
	}
	if err != nil {
		return internalError(err, "Failed to fetch review")
	}
	return respond(c, http.StatusOK, "", rv)
}

func (h *ReviewHandler) Helpful(c echo.Context) error {
	uid, err := mustUserID(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id", "review ID")
	if err != nil {
		return err
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	err = h.Reviews.MarkHelpful(ctx, id, uid)
	switch {
	case errors.Is(err, repository.ErrAlreadyMarkedHelpful):
		return echo.NewHTTPError(http.StatusConflict, "You have already marked this review as helpful")
	case errors.Is(err, repository.ErrReviewNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Review not found")
	case err != nil:
		return internalError(err, "Failed to mark review as helpful")
	}
	return respond(c, http.StatusOK, "Review marked as helpful", nil)
}

// Update is restricted to the author; admins may only delete.
func (h *ReviewHandler) Update(c echo.Context) error {
	uid, err := mustUserID(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id", "review ID")
	if err != nil {
		return err
	}
	var req reviewBody
	if err := bindReview(c, &req, &req); err != nil {
		return err
	}

	ctx, cancel := dbCtx(c)
	defer cancel()
	owner, err := h.Reviews.OwnerOf(ctx, id)
	if errors.Is(err, repository.ErrReviewNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Review not found")
	}
	if err != nil {
		return internalError(err, "Failed to update review")
	}
	if owner != uid {
		return echo.NewHTTPError(http.StatusForbidden, "You can only update your own reviews")
	}
	err = h.Reviews.Update(ctx, id, req.input())
	if errors.Is(err, repository.ErrReviewNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Review not found")
	}
	if err != nil {
		return internalError(err, "Failed to update review")
	}
	return respond(c, http.StatusOK, "Review updated successfully", nil)
}

func (h *ReviewHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id", "review ID")
	if err != nil {
		return err
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	owner, err := h.Reviews.OwnerOf(ctx, id)
	if errors.Is(err, repository.ErrReviewNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Review not found")
	}
	if err != nil {
		return internalError(err, "Failed to delete review")
	}
	if !canAccess(c, owner) {
		return echo.NewHTTPError(http.StatusForbidden, "Access denied")
	}
	err = h.Reviews.Delete(ctx, id)
	if errors.Is(err, repository.ErrReviewNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Review not found")
	}
	if err != nil {
		return internalError(err, "Failed to delete review")
	}
	return respond(c, http.StatusOK, "Review deleted successfully", nil)
}
