package http

import (
	"net/http"
	"strconv"

	"atv-rental-backend/internal/domain"
	"atv-rental-backend/internal/repository"
	"atv-rental-backend/internal/service"
	"atv-rental-backend/internal/storage"

	"github.com/gorilla/mux"
)

// maxImageUploadBytes caps vehicle image uploads at 5 MiB.
const maxImageUploadBytes = 5 << 20

type VehicleHandler struct {
	vehicleSvc service.VehicleService
	blobs      storage.BlobStorage
}

func NewVehicleHandler(vehicleSvc service.VehicleService, blobs storage.BlobStorage) *VehicleHandler {
	return &VehicleHandler{vehicleSvc: vehicleSvc, blobs: blobs}
}

type vehicleResponse struct {
	*domain.Vehicle
	ImageURL string `json:"image_url,omitempty"`
}

func (h *VehicleHandler) toResponse(v *domain.Vehicle) vehicleResponse {
	resp := vehicleResponse{Vehicle: v}
	if v.ImageKey != "" {
		resp.ImageURL = h.blobs.URL(v.ImageKey)
	}
	return resp
}

type listResponse struct {
	Items    interface{} `json:"items"`
	Total    int32       `json:"total"`
	Page     int32       `json:"page"`
	PageSize int32       `json:"page_size"`
}

func pathID(r *http.Request) (int32, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 32)
	if err != nil || id <= 0 {
		return 0, false
	}
	return int32(id), true
}

func queryInt32(r *http.Request, name string) int32 {
	v, err := strconv.ParseInt(r.URL.Query().Get(name), 10, 32)
	if err != nil {
		return 0
	}
	return int32(v)
}

func (h *VehicleHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.VehicleFilter{
		Search:        q.Get("search"),
		Type:          q.Get("type"),
		Status:        domain.VehicleStatus(q.Get("status")),
		MinPriceCents: queryInt32(r, "min_price"),
		MaxPriceCents: queryInt32(r, "max_price"),
		SortBy:        q.Get("sort_by"),
		SortOrder:     q.Get("sort_order"),
		Page:          queryInt32(r, "page"),
		PageSize:      queryInt32(r, "page_size"),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		badRequest(w, "invalid vehicle status filter")
		return
	}

	vehicles, total, err := h.vehicleSvc.ListVehicles(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	items := make([]vehicleResponse, 0, len(vehicles))
	for i := range vehicles {
		items = append(items, h.toResponse(&vehicles[i]))
	}
	writeJSON(w, http.StatusOK, listResponse{
		Items:    items,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	})
}

func (h *VehicleHandler) ListTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.vehicleSvc.ListTypes(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"types": types})
}

func (h *VehicleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid vehicle id")
		return
	}
	vehicle, err := h.vehicleSvc.GetVehicle(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toResponse(vehicle))
}

type vehicleRequest struct {
	Name            string `json:"name"`
	Type            string `json:"type"`
	SerialNumber    string `json:"serial_number"`
	DailyPriceCents int32  `json:"daily_price_cents"`
	Status          string `json:"status"`
	Description     string `json:"description"`
}

func (h *VehicleHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
		return
	}
	var req vehicleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" || req.Type == "" {
		badRequest(w, "name and type are required")
		return
	}

	vehicle := &domain.Vehicle{
		Name:            req.Name,
		Type:            req.Type,
		SerialNumber:    req.SerialNumber,
		DailyPriceCents: req.DailyPriceCents,
		Status:          domain.VehicleStatus(req.Status),
		Description:     req.Description,
	}
	if err := h.vehicleSvc.CreateVehicle(r.Context(), actor, vehicle); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.toResponse(vehicle))
}

func (h *VehicleHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
		return
	}
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid vehicle id")
		return
	}
	var req vehicleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	status := domain.VehicleStatus(req.Status)
	if status != "" && !status.Valid() {
		badRequest(w, "invalid vehicle status")
		return
	}

	vehicle := &domain.Vehicle{
		ID:              id,
		Name:            req.Name,
		Type:            req.Type,
		SerialNumber:    req.SerialNumber,
		DailyPriceCents: req.DailyPriceCents,
		Status:          status,
		Description:     req.Description,
	}
	updated, err := h.vehicleSvc.UpdateVehicle(r.Context(), actor, vehicle)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toResponse(updated))
}

func (h *VehicleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
		return
	}
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid vehicle id")
		return
	}
	if err := h.vehicleSvc.DeleteVehicle(r.Context(), actor, id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "vehicle deleted"})
}

func (h *VehicleHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
		return
	}
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid vehicle id")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageUploadBytes)
	if err := r.ParseMultipartForm(maxImageUploadBytes); err != nil {
		badRequest(w, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		badRequest(w, "image file is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	switch contentType {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
	default:
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "unsupported image type"})
		return
	}

	vehicle, err := h.vehicleSvc.UploadImage(r.Context(), actor, id, header.Filename, contentType, file)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toResponse(vehicle))
}
