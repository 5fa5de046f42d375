package http

import (
	"context"
	"net/http"

	"atv-rental-backend/internal/domain"
	"atv-rental-backend/internal/repository"
	"atv-rental-backend/internal/service"
)

type RentalHandler struct {
	rentalSvc service.RentalService
}

func NewRentalHandler(rentalSvc service.RentalService) *RentalHandler {
	return &RentalHandler{rentalSvc: rentalSvc}
}

// rentalResponse flattens a rental for the wire: dates as ISO strings,
// plus the display label and the transitions the rental may take next.
type rentalResponse struct {
	*domain.Rental
	StartDate          string   `json:"start_date"`
	EndDate            string   `json:"end_date"`
	StatusLabel        string   `json:"status_label"`
	AllowedTransitions []string `json:"allowed_transitions"`
}

func toRentalResponse(rt *domain.Rental) rentalResponse {
	allowed := []string{}
	for _, s := range domain.AllowedTransitions(rt.Status) {
		allowed = append(allowed, string(s))
	}
	return rentalResponse{
		Rental:             rt,
		StartDate:          rt.StartDate.String(),
		EndDate:            rt.EndDate.String(),
		StatusLabel:        rt.Status.Label(),
		AllowedTransitions: allowed,
	}
}

type createRentalRequest struct {
	VehicleID int32  `json:"vehicle_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Notes     string `json:"notes"`
}

func (h *RentalHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
		return
	}
	var req createRentalRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.VehicleID <= 0 {
		badRequest(w, "vehicle_id is required")
		return
	}

	rental, err := h.rentalSvc.RequestRental(r.Context(), actor, req.VehicleID, req.StartDate, req.EndDate, req.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRentalResponse(rental))
}

func (h *RentalHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
		return
	}
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid rental id")
		return
	}
	rental, err := h.rentalSvc.GetRental(r.Context(), actor, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRentalResponse(rental))
}

func (h *RentalHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
		return
	}

	q := r.URL.Query()
	filter := repository.RentalFilter{
		UserID:    queryInt32(r, "user_id"),
		VehicleID: queryInt32(r, "vehicle_id"),
		Status:    domain.RentalStatus(q.Get("status")),
		Page:      queryInt32(r, "page"),
		PageSize:  queryInt32(r, "page_size"),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		badRequest(w, "invalid rental status filter")
		return
	}
	if from := q.Get("from"); from != "" {
		d, err := domain.ParseDate(from)
		if err != nil {
			badRequest(w, "invalid from date")
			return
		}
		filter.From = d
	}
	if to := q.Get("to"); to != "" {
		d, err := domain.ParseDate(to)
		if err != nil {
			badRequest(w, "invalid to date")
			return
		}
		filter.To = d
	}

	rentals, total, err := h.rentalSvc.ListRentals(r.Context(), actor, filter)
	if err != nil {
		writeError(w, err)
		return
	}

	items := make([]rentalResponse, 0, len(rentals))
	for i := range rentals {
		items = append(items, toRentalResponse(&rentals[i]))
	}
	writeJSON(w, http.StatusOK, listResponse{
		Items:    items,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	})
}

type transitionRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

// UpdateStatus is the staff-driven transition endpoint. The requested
// status must name a known lifecycle status; whether the edge is legal
// is the service's call.
func (h *RentalHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
		return
	}
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid rental id")
		return
	}
	var req transitionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	target := domain.RentalStatus(req.Status)
	if !target.Valid() {
		badRequest(w, "invalid rental status")
		return
	}

	rental, err := h.rentalSvc.Transition(r.Context(), actor, id, target, req.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRentalResponse(rental))
}

func (h *RentalHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.customerAction(w, r, h.rentalSvc.Cancel)
}

func (h *RentalHandler) RequestPickup(w http.ResponseWriter, r *http.Request) {
	h.customerAction(w, r, h.rentalSvc.RequestPickup)
}

func (h *RentalHandler) RequestReturn(w http.ResponseWriter, r *http.Request) {
	h.customerAction(w, r, h.rentalSvc.RequestReturn)
}

func (h *RentalHandler) customerAction(w http.ResponseWriter, r *http.Request,
	action func(ctx context.Context, actor domain.Actor, rentalID int32) (*domain.Rental, error)) {
	actor, ok := actorFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
		return
	}
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid rental id")
		return
	}
	rental, err := action(r.Context(), actor, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRentalResponse(rental))
}
