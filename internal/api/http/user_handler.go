package http

import (
	"net/http"

	"atv-rental-backend/internal/domain"
	"atv-rental-backend/internal/service"
)

type UserHandler struct {
	userSvc service.UserService
}

func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
		return
	}
	page := queryInt32(r, "page")
	pageSize := queryInt32(r, "page_size")

	users, total, err := h.userSvc.ListUsers(r.Context(), actor, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{
		Items:    users,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
		return
	}
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid user id")
		return
	}
	user, err := h.userSvc.GetUser(r.Context(), actor, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type createUserRequest struct {
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
		return
	}
	var req createUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		badRequest(w, "username, email and password are required")
		return
	}
	role := domain.Role(req.Role)
	if role == "" {
		role = domain.RoleCustomer
	}
	if !role.Valid() {
		badRequest(w, "invalid role")
		return
	}

	user := &domain.User{
		Username: req.Username,
		FullName: req.FullName,
		Email:    req.Email,
		Role:     role,
	}
	if err := h.userSvc.CreateUser(r.Context(), actor, user, req.Password); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

type updateUserRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
		return
	}
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid user id")
		return
	}
	var req updateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	role := domain.Role(req.Role)
	if role != "" && !role.Valid() {
		badRequest(w, "invalid role")
		return
	}

	user := &domain.User{
		ID:       id,
		FullName: req.FullName,
		Email:    req.Email,
		Role:     role,
	}
	updated, err := h.userSvc.UpdateUser(r.Context(), actor, user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
