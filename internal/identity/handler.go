package identity

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/taarez/taarez-backend/internal/domain"
	"github.com/taarez/taarez-backend/internal/identity/password"
	"github.com/taarez/taarez-backend/internal/pkg/httputil"
)

// Error messages surfaced to clients.
const (
	msgIncorrectCredentials = "Incorrect email or password"
	msgEmailRegistered      = "Email already registered"
)

var errorMappings = []httputil.ErrorMapping{
	{Error: ErrEmailExists, Status: http.StatusBadRequest, Message: msgEmailRegistered},
	{Error: password.ErrTooLong, Status: http.StatusBadRequest},
	{Error: ErrPasswordTooShort, Status: http.StatusBadRequest},
	{Error: ErrInvalidRole, Status: http.StatusBadRequest},
	{Error: ErrUserNotFound, Status: http.StatusNotFound, Message: "User not found"},
	{Error: httputil.ErrInvalidID, Status: http.StatusNotFound, Message: "User not found"},
}

// Handler handles HTTP requests for the identity module.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new identity handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterRoutes registers public identity routes. loginLimiter wraps the
// login endpoints; pass a no-op middleware to disable rate limiting.
func (h *Handler) RegisterRoutes(r chi.Router, loginLimiter func(http.Handler) http.Handler) {
	r.Post("/auth/register", h.Register)
	r.Post("/users/", h.Register)

	r.Group(func(r chi.Router) {
		r.Use(loginLimiter)
		r.Post("/auth/login", h.Login)
		r.Post("/login/access-token", h.Login)
	})
}

// RegisterProtectedRoutes registers routes that require authentication.
func (h *Handler) RegisterProtectedRoutes(r chi.Router) {
	r.Get("/me", h.Me)
	r.Get("/users/me", h.Me)
}

// RegisterAdminRoutes registers user management routes (admin only).
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/users", h.ListUsers)
	r.Get("/users/{id}", h.GetUser)
	r.Patch("/users/{id}", h.UpdateUser)
}

// RegisterRequest represents registration request body.
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"max=100"`
	LastName  string `json:"last_name" validate:"max=100"`
}

// Register handles POST /auth/register and POST /users/.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	user, err := h.service.Register(r.Context(), RegisterInput(req))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusCreated, user)
}

// LoginRequest represents the OAuth2 password form.
type LoginRequest struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

// Login handles POST /auth/login with form-encoded username and password.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<16)
	if err := r.ParseForm(); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid form")
		return
	}

	req := LoginRequest{
		Username: r.PostForm.Get("username"),
		Password: r.PostForm.Get("password"),
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	token, err := h.service.Login(r.Context(), LoginInput{
		Email:    req.Username,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			httputil.Unauthorized(w, msgIncorrectCredentials)
			return
		}
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	httputil.JSON(w, http.StatusOK, token)
}

// Me handles GET /me and GET /users/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user := httputil.GetUser(r.Context())
	if user == nil {
		httputil.Unauthorized(w, httputil.MsgNotAuthenticated)
		return
	}

	httputil.Success(w, http.StatusOK, user)
}

// ListUsers handles GET /users.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, users)
}

// GetUser handles GET /users/{id}.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	user, err := h.service.GetUserByID(r.Context(), id)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, user)
}

// UpdateUserRequest represents the admin user update body.
type UpdateUserRequest struct {
	Role        *string `json:"role" validate:"omitempty,oneof=admin customer designer tailor"`
	IsActive    *bool   `json:"is_active"`
	IsSuperuser *bool   `json:"is_superuser"`
}

// UpdateUser handles PATCH /users/{id}.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	var req UpdateUserRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	input := UpdateUserInput{
		IsActive:    req.IsActive,
		IsSuperuser: req.IsSuperuser,
	}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		input.Role = &role
	}

	user, err := h.service.UpdateUser(r.Context(), id, input)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, user)
}
