package designs

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/taarez/taarez-backend/internal/domain"
	"github.com/taarez/taarez-backend/internal/pkg/httputil"
)

var errorMappings = []httputil.ErrorMapping{
	{Error: ErrDesignNotFound, Status: http.StatusNotFound, Message: "Design not found"},
	{Error: httputil.ErrInvalidID, Status: http.StatusNotFound, Message: "Not found"},
	{Error: ErrCategoryNameExists, Status: http.StatusBadRequest, Message: "Category with this name already exists"},
	{Error: ErrFabricNameExists, Status: http.StatusBadRequest, Message: "Fabric with this name already exists in the category"},
	{Error: ErrInvalidReference, Status: http.StatusBadRequest, Message: "Invalid category or fabric"},
	{Error: ErrFabricCategoryMismatch, Status: http.StatusBadRequest, Message: "Fabric does not belong to the category"},
	{Error: ErrInvalidStatusTransition, Status: http.StatusBadRequest},
}

// Handler handles HTTP requests for the designs module.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new designs handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterRoutes registers public catalogue routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/design/categories", h.ListCategories)
	r.Get("/design/fabrics/{category_id}", h.ListFabrics)
}

// RegisterProtectedRoutes registers routes for any authenticated user.
func (h *Handler) RegisterProtectedRoutes(r chi.Router) {
	r.Post("/design/save", h.SaveDesign)
	r.Get("/design/my", h.ListMyDesigns)
}

// RegisterTailorRoutes registers the work queue routes (tailor only).
func (h *Handler) RegisterTailorRoutes(r chi.Router) {
	r.Get("/design/queue", h.Queue)
	r.Patch("/design/{id}/status", h.UpdateStatus)
}

// RegisterAdminRoutes registers catalogue management routes (admin only).
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/design/categories", h.CreateCategory)
	r.Post("/design/fabrics", h.CreateFabric)
}

// CreateCategoryRequest represents the request body for creating a category.
type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=255"`
	Description string `json:"description"`
}

// CreateFabricRequest represents the request body for creating a fabric.
type CreateFabricRequest struct {
	CategoryID    string  `json:"category_id" validate:"required,uuid"`
	Name          string  `json:"name" validate:"required,min=1,max=255"`
	Color         string  `json:"color" validate:"max=50"`
	PricePerMeter float64 `json:"price_per_meter" validate:"gte=0"`
}

// SaveDesignRequest represents the request body for saving a design.
type SaveDesignRequest struct {
	Name          string         `json:"name" validate:"required,min=1,max=255"`
	CategoryID    string         `json:"category_id" validate:"required,uuid"`
	FabricID      string         `json:"fabric_id" validate:"required,uuid"`
	Customization map[string]any `json:"customization"`
}

// UpdateStatusRequest represents the request body for a status change.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending in_progress completed"`
}

// ListCategories handles GET /design/categories.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, categories)
}

// CreateCategory handles POST /design/categories.
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	category, err := h.service.CreateCategory(r.Context(), CategoryInput(req))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusCreated, category)
}

// ListFabrics handles GET /design/fabrics/{category_id}.
func (h *Handler) ListFabrics(w http.ResponseWriter, r *http.Request) {
	categoryID, err := httputil.IDParam(r, "category_id")
	if err != nil {
		httputil.Error(w, http.StatusNotFound, "Category not found")
		return
	}

	fabrics, err := h.service.ListFabrics(r.Context(), categoryID)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, fabrics)
}

// CreateFabric handles POST /design/fabrics.
func (h *Handler) CreateFabric(w http.ResponseWriter, r *http.Request) {
	var req CreateFabricRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	fabric, err := h.service.CreateFabric(r.Context(), FabricInput(req))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusCreated, fabric)
}

// SaveDesign handles POST /design/save.
func (h *Handler) SaveDesign(w http.ResponseWriter, r *http.Request) {
	var req SaveDesignRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	design, err := h.service.SaveDesign(r.Context(), httputil.GetUserID(r.Context()), DesignInput(req))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusCreated, design)
}

// ListMyDesigns handles GET /design/my.
func (h *Handler) ListMyDesigns(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListUserDesigns(r.Context(), httputil.GetUserID(r.Context()))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, list)
}

// Queue handles GET /design/queue with optional repeated ?status= filters.
func (h *Handler) Queue(w http.ResponseWriter, r *http.Request) {
	var statuses []domain.DesignStatus
	for _, v := range r.URL.Query()["status"] {
		status := domain.DesignStatus(v)
		if !status.Valid() {
			httputil.Error(w, http.StatusBadRequest, "invalid status filter: "+v)
			return
		}
		statuses = append(statuses, status)
	}

	list, err := h.service.Queue(r.Context(), statuses)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, list)
}

// UpdateStatus handles PATCH /design/{id}/status.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.Error(w, http.StatusNotFound, "Design not found")
		return
	}

	var req UpdateStatusRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	design, err := h.service.UpdateStatus(r.Context(), id, domain.DesignStatus(req.Status))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, design)
}
