/**
 * @description
 * This file contains the HTTP handler functions for the booking service.
 * Handlers parse incoming requests, call the appropriate business logic in
 * the app layer, and write the HTTP response. Coupon validation outcomes are
 * returned as data so the client can render the specific reason.
 */

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MightWarriorNo1/kioskads-booking-service/internal/app"
	"github.com/MightWarriorNo1/kioskads-booking-service/internal/domain"
	"github.com/MightWarriorNo1/kioskads-booking-service/internal/store"
)

// dateLayout is the wire format for calendar dates in request bodies.
const dateLayout = "2006-01-02"

// Handler holds the application services that handlers interact with.
type Handler struct {
	service   *app.Service
	lifecycle *app.Lifecycle
	jobs      *app.Jobs
	repo      store.Repository
	tracker   app.Tracker
	loc       *time.Location
}

// NewHandler creates a new Handler with the given services.
func NewHandler(service *app.Service, lifecycle *app.Lifecycle, jobs *app.Jobs, repo store.Repository, tracker app.Tracker, loc *time.Location) *Handler {
	return &Handler{
		service:   service,
		lifecycle: lifecycle,
		jobs:      jobs,
		repo:      repo,
		tracker:   tracker,
		loc:       loc,
	}
}

func (h *Handler) parseDate(s string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, s, h.loc)
}

// handleListResources returns the kiosks currently open for booking.
func (h *Handler) handleListResources(w http.ResponseWriter, r *http.Request) {
	resources, err := h.repo.ListActiveResources(r.Context())
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, resources)
}

type availabilityRequest struct {
	ResourceID     string   `json:"resource_id"`
	Date           string   `json:"date"`
	Mode           string   `json:"mode"`
	DurationMonths int      `json:"duration_months"`
	EditingStarts  []string `json:"editing_starts,omitempty"`
}

// handleCheckAvailability reports whether a candidate date is selectable on
// a kiosk, excluding the windows the caller is currently editing.
func (h *Handler) handleCheckAvailability(w http.ResponseWriter, r *http.Request) {
	var req availabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	resourceID, err := uuid.Parse(req.ResourceID)
	if err != nil {
		http.Error(w, "Invalid resource id", http.StatusBadRequest)
		return
	}
	candidate, err := h.parseDate(req.Date)
	if err != nil {
		http.Error(w, "Invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	editing := make([]domain.SelectedWindow, 0, len(req.EditingStarts))
	for _, s := range req.EditingStarts {
		start, err := h.parseDate(s)
		if err != nil {
			http.Error(w, "Invalid editing window date, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		editing = append(editing, domain.SelectedWindow{StartDate: start})
	}

	mode := app.BookingMode(req.Mode)
	if mode != app.ModeMonthly {
		mode = app.ModeWeekly
	}

	blocked, err := h.service.CheckAvailability(r.Context(), resourceID, candidate, time.Now(), editing, mode, req.DurationMonths)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]bool{"blocked": blocked})
}

type blocksRequest struct {
	Starts       []string `json:"starts"`
	DurationDays int      `json:"duration_days"`
}

// handleCampaignBlocks coalesces selected windows into campaign blocks.
func (h *Handler) handleCampaignBlocks(w http.ResponseWriter, r *http.Request) {
	var req blocksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.DurationDays <= 0 {
		req.DurationDays = app.WeeklyWindowDays
	}

	windows := make([]domain.SelectedWindow, 0, len(req.Starts))
	for _, s := range req.Starts {
		start, err := h.parseDate(s)
		if err != nil {
			http.Error(w, "Invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		windows = append(windows, domain.SelectedWindow{StartDate: start})
	}

	blocks := h.tracker.CoalesceBlocks(windows, req.DurationDays)
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"blocks": blocks})
}

type quoteRequest struct {
	ResourceIDs    []string `json:"resource_ids"`
	Slots          int      `json:"slots"`
	DurationMonths int      `json:"duration_months"`
}

// handleQuote prices a candidate campaign.
func (h *Handler) handleQuote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ids, err := parseUUIDs(req.ResourceIDs)
	if err != nil {
		http.Error(w, "Invalid resource id", http.StatusBadRequest)
		return
	}

	total, err := h.service.QuoteBooking(r.Context(), ids, req.Slots, req.DurationMonths)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]float64{"total_cost": total})
}

type validateCouponRequest struct {
	Code             string   `json:"code"`
	Amount           float64  `json:"amount"`
	ResourceIDs      []string `json:"resource_ids"`
	ProductType      string   `json:"product_type"`
	SubscriptionTier string   `json:"subscription_tier"`
}

// handleValidateCoupon checks a code for the authenticated user. The outcome
// is always a 200 with the validation payload; only infrastructure failures
// surface as errors.
func (h *Handler) handleValidateCoupon(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req validateCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ids, err := parseUUIDs(req.ResourceIDs)
	if err != nil {
		http.Error(w, "Invalid resource id", http.StatusBadRequest)
		return
	}

	cc := domain.CouponContext{
		UserID:           actor.ID,
		UserRole:         actor.Role,
		Amount:           req.Amount,
		ResourceIDs:      ids,
		ProductType:      req.ProductType,
		SubscriptionTier: req.SubscriptionTier,
	}

	validation, err := h.service.ValidateCoupon(r.Context(), req.Code, cc)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, validation)
}

type createBookingRequest struct {
	Name           string   `json:"name"`
	ResourceIDs    []string `json:"resource_ids"`
	StartDate      string   `json:"start_date"`
	EndDate        string   `json:"end_date"`
	Slots          int      `json:"slots"`
	DurationMonths int      `json:"duration_months"`
	AssetID        *string  `json:"asset_id,omitempty"`
}

// handleCreateBooking assembles and persists a priced draft.
func (h *Handler) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ids, err := parseUUIDs(req.ResourceIDs)
	if err != nil {
		http.Error(w, "Invalid resource id", http.StatusBadRequest)
		return
	}
	start, err := h.parseDate(req.StartDate)
	if err != nil {
		http.Error(w, "Invalid start date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	end, err := h.parseDate(req.EndDate)
	if err != nil {
		http.Error(w, "Invalid end date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	var assetID *uuid.UUID
	if req.AssetID != nil {
		parsed, err := uuid.Parse(*req.AssetID)
		if err != nil {
			http.Error(w, "Invalid asset id", http.StatusBadRequest)
			return
		}
		assetID = &parsed
	}

	booking, err := h.service.CreateDraft(r.Context(), actor.ID, app.CreateDraftRequest{
		Name:           req.Name,
		ResourceIDs:    ids,
		StartDate:      start,
		EndDate:        end,
		Slots:          req.Slots,
		DurationMonths: req.DurationMonths,
		AssetID:        assetID,
	})
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, booking)
}

// handleListBookings returns the caller's bookings.
func (h *Handler) handleListBookings(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	bookings, err := h.repo.ListBookingsByOwner(r.Context(), actor.ID)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, bookings)
}

// handleGetBooking returns one booking, owner or admin only.
func (h *Handler) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	_, booking, ok := h.loadBookingForActor(w, r)
	if !ok {
		return
	}
	respondWithJSON(w, http.StatusOK, booking)
}

type updateBookingRequest struct {
	StartDate *string `json:"start_date,omitempty"`
	EndDate   *string `json:"end_date,omitempty"`
	AssetID   *string `json:"asset_id,omitempty"`
}

// handleUpdateBooking edits the restricted field subset of a draft.
func (h *Handler) handleUpdateBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	bookingID, err := uuid.Parse(chi.URLParam(r, "bookingID"))
	if err != nil {
		http.Error(w, "Invalid booking id", http.StatusBadRequest)
		return
	}

	var req updateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var update domain.DraftUpdate
	if req.StartDate != nil {
		start, err := h.parseDate(*req.StartDate)
		if err != nil {
			http.Error(w, "Invalid start date, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		update.StartDate = &start
	}
	if req.EndDate != nil {
		end, err := h.parseDate(*req.EndDate)
		if err != nil {
			http.Error(w, "Invalid end date, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		update.EndDate = &end
	}
	if req.AssetID != nil {
		parsed, err := uuid.Parse(*req.AssetID)
		if err != nil {
			http.Error(w, "Invalid asset id", http.StatusBadRequest)
			return
		}
		update.AssetID = &parsed
	}

	booking, err := h.lifecycle.UpdateDraft(r.Context(), bookingID, actor, update)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, booking)
}

type submitBookingRequest struct {
	CouponCode         string `json:"coupon_code,omitempty"`
	ProductType        string `json:"product_type,omitempty"`
	SubscriptionTier   string `json:"subscription_tier,omitempty"`
	CreateSubscription bool   `json:"create_subscription,omitempty"`
	AutoRenewal        bool   `json:"auto_renewal,omitempty"`
}

// handleSubmitBooking drives the payment flow and promotes a draft to
// pending. An invalid coupon is reported as data with a 422 status.
func (h *Handler) handleSubmitBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	bookingID, err := uuid.Parse(chi.URLParam(r, "bookingID"))
	if err != nil {
		http.Error(w, "Invalid booking id", http.StatusBadRequest)
		return
	}

	var req submitBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.service.Submit(r.Context(), bookingID, actor, app.SubmitRequest{
		CouponCode: req.CouponCode,
		CouponContext: domain.CouponContext{
			UserRole:         actor.Role,
			ProductType:      req.ProductType,
			SubscriptionTier: req.SubscriptionTier,
		},
		CreateSubscription: req.CreateSubscription,
		AutoRenewal:        req.AutoRenewal,
	})
	if err != nil {
		var rejected *app.CouponRejected
		if errors.As(err, &rejected) {
			respondWithJSON(w, http.StatusUnprocessableEntity, rejected.Validation)
			return
		}
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// handlePauseBooking suspends an active booking.
func (h *Handler) handlePauseBooking(w http.ResponseWriter, r *http.Request) {
	h.manualTransition(w, r, h.lifecycle.Pause)
}

// handleResumeBooking reactivates a paused booking.
func (h *Handler) handleResumeBooking(w http.ResponseWriter, r *http.Request) {
	h.manualTransition(w, r, h.lifecycle.Resume)
}

// handleCancelBooking terminally cancels a booking.
func (h *Handler) handleCancelBooking(w http.ResponseWriter, r *http.Request) {
	h.manualTransition(w, r, h.lifecycle.Cancel)
}

// handleRejectBooking terminally rejects a booking (admin only; enforced in
// the lifecycle controller).
func (h *Handler) handleRejectBooking(w http.ResponseWriter, r *http.Request) {
	h.manualTransition(w, r, h.lifecycle.Reject)
}

// handleDeleteBooking removes a draft; any other status fails with 409.
func (h *Handler) handleDeleteBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	bookingID, err := uuid.Parse(chi.URLParam(r, "bookingID"))
	if err != nil {
		http.Error(w, "Invalid booking id", http.StatusBadRequest)
		return
	}

	if err := h.lifecycle.Delete(r.Context(), bookingID, actor); err != nil {
		respondWithError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleCancelSubscription stops a subscription from renewing.
func (h *Handler) handleCancelSubscription(w http.ResponseWriter, r *http.Request) {
	h.subscriptionAction(w, r, h.service.CancelSubscription)
}

// handlePauseSubscription suspends a subscription's billing.
func (h *Handler) handlePauseSubscription(w http.ResponseWriter, r *http.Request) {
	h.subscriptionAction(w, r, h.service.PauseSubscription)
}

// handleResumeSubscription reactivates a paused subscription.
func (h *Handler) handleResumeSubscription(w http.ResponseWriter, r *http.Request) {
	h.subscriptionAction(w, r, h.service.ResumeSubscription)
}

func (h *Handler) subscriptionAction(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, subID uuid.UUID, actor app.Actor) error) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	subID, err := uuid.Parse(chi.URLParam(r, "subscriptionID"))
	if err != nil {
		http.Error(w, "Invalid subscription id", http.StatusBadRequest)
		return
	}

	if err := fn(r.Context(), subID, actor); err != nil {
		respondWithError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleRunLifecycle is the administrative "run now" trigger. It produces
// results identical to a scheduled run.
func (h *Handler) handleRunLifecycle(w http.ResponseWriter, r *http.Request) {
	summary := h.jobs.RunLifecyclePass(r.Context(), time.Now())
	respondWithJSON(w, http.StatusOK, summary)
}

func (h *Handler) manualTransition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, bookingID uuid.UUID, actor app.Actor) (*domain.Booking, error)) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	bookingID, err := uuid.Parse(chi.URLParam(r, "bookingID"))
	if err != nil {
		http.Error(w, "Invalid booking id", http.StatusBadRequest)
		return
	}

	booking, err := fn(r.Context(), bookingID, actor)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, booking)
}

func (h *Handler) loadBookingForActor(w http.ResponseWriter, r *http.Request) (app.Actor, *domain.Booking, bool) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return app.Actor{}, nil, false
	}
	bookingID, err := uuid.Parse(chi.URLParam(r, "bookingID"))
	if err != nil {
		http.Error(w, "Invalid booking id", http.StatusBadRequest)
		return actor, nil, false
	}

	booking, err := h.repo.GetBookingByID(r.Context(), bookingID)
	if err != nil {
		respondWithError(w, err)
		return actor, nil, false
	}
	if booking.OwnerID != actor.ID && !actor.IsAdmin() {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return actor, nil, false
	}
	return actor, booking, true
}

func parseUUIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// respondWithError maps app and store errors onto HTTP statuses.
func respondWithError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrBookingNotFound),
		errors.Is(err, store.ErrResourceNotFound),
		errors.Is(err, store.ErrCouponNotFound),
		errors.Is(err, store.ErrSubscriptionNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, app.ErrBookingLocked), errors.Is(err, app.ErrInvalidTransition):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, app.ErrForbidden):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, app.ErrInvalidDateRange):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// respondWithJSON is a helper function to write JSON responses.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
