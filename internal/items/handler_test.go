package items

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taarez/taarez-backend/internal/domain"
	"github.com/taarez/taarez-backend/internal/pkg/httputil"
)

type mockRepository struct {
	mu     sync.Mutex
	items  map[string]domain.Item
	nextID int
	clock  time.Time
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		items: make(map[string]domain.Item),
		clock: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *mockRepository) CreateItem(_ context.Context, item *domain.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	m.clock = m.clock.Add(time.Minute)
	item.ID = fmt.Sprintf("00000000-0000-4000-8000-%012d", m.nextID)
	item.CreatedAt = m.clock
	item.UpdatedAt = m.clock
	m.items[item.ID] = *item
	return nil
}

func (m *mockRepository) GetItem(_ context.Context, id string) (*domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[id]
	if !ok {
		return nil, ErrItemNotFound
	}
	return &item, nil
}

func (m *mockRepository) ListItems(_ context.Context, filter ListFilter) ([]domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := make([]domain.Item, 0, len(m.items))
	for _, item := range m.items {
		list = append(list, item)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })

	if filter.Offset >= len(list) {
		return []domain.Item{}, nil
	}
	list = list[filter.Offset:]
	if len(list) > filter.Limit {
		list = list[:filter.Limit]
	}
	return list, nil
}

func (m *mockRepository) UpdateItem(_ context.Context, item *domain.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[item.ID]; !ok {
		return ErrItemNotFound
	}
	m.items[item.ID] = *item
	return nil
}

func (m *mockRepository) DeleteItem(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[id]; !ok {
		return ErrItemNotFound
	}
	delete(m.items, id)
	return nil
}

var testUsers = map[string]*domain.User{
	"designer": {ID: "d", Role: domain.RoleDesigner, IsActive: true},
	"customer": {ID: "c", Role: domain.RoleCustomer, IsActive: true},
	"root":     {ID: "r", Role: domain.RoleAdmin, IsSuperuser: true, IsActive: true},
}

// fakeAuth resolves the X-Test-User header to a user, standing in for AuthMiddleware.
func fakeAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := testUsers[r.Header.Get("X-Test-User")]
		if !ok {
			httputil.Unauthorized(w, httputil.MsgNotAuthenticated)
			return
		}
		next.ServeHTTP(w, r.WithContext(httputil.WithUser(r.Context(), user)))
	})
}

func newTestRouter(repo Repository) http.Handler {
	handler := NewHandler(NewService(repo))

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	r.Group(func(r chi.Router) {
		r.Use(fakeAuth)
		r.Use(httputil.RequireRole(domain.RoleDesigner))
		handler.RegisterDesignerRoutes(r)
	})
	return r
}

func send(t *testing.T, h http.Handler, method, path, user string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeItem(t *testing.T, rec *httptest.ResponseRecorder) domain.Item {
	t.Helper()

	var resp struct {
		Data domain.Item `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Data
}

func TestItemsCRUD(t *testing.T) {
	router := newTestRouter(newMockRepository())

	rec := send(t, router, http.MethodPost, "/items", "designer", ItemRequest{
		Name:        "Linen Thobe",
		Description: "Summer cut",
		Style:       "thobe",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeItem(t, rec)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Linen Thobe", created.Name)

	rec = send(t, router, http.MethodGet, "/items/"+created.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created.ID, decodeItem(t, rec).ID)

	rec = send(t, router, http.MethodPut, "/items/"+created.ID, "designer", ItemRequest{
		Name:  "Linen Thobe II",
		Style: "thobe",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Linen Thobe II", decodeItem(t, rec).Name)

	rec = send(t, router, http.MethodDelete, "/items/"+created.ID, "designer", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = send(t, router, http.MethodGet, "/items/"+created.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestItemsWriteAccess(t *testing.T) {
	router := newTestRouter(newMockRepository())
	body := ItemRequest{Name: "Abaya"}

	tests := []struct {
		user       string
		wantStatus int
	}{
		{"", http.StatusUnauthorized},
		{"customer", http.StatusForbidden},
		{"designer", http.StatusCreated},
		{"root", http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run("user="+tt.user, func(t *testing.T) {
			rec := send(t, router, http.MethodPost, "/items", tt.user, body)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestListItems(t *testing.T) {
	repo := newMockRepository()
	router := newTestRouter(repo)

	for i := 1; i <= 3; i++ {
		rec := send(t, router, http.MethodPost, "/items", "designer", ItemRequest{Name: fmt.Sprintf("item-%d", i)})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := send(t, router, http.MethodGet, "/items", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []domain.Item `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 3)
	assert.Equal(t, "item-3", resp.Data[0].Name, "newest first")

	rec = send(t, router, http.MethodGet, "/items?skip=1&limit=1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "item-2", resp.Data[0].Name)

	rec = send(t, router, http.MethodGet, "/items?limit=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestItemsValidationAndLookup(t *testing.T) {
	router := newTestRouter(newMockRepository())

	rec := send(t, router, http.MethodPost, "/items", "designer", ItemRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = send(t, router, http.MethodGet, "/items/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = send(t, router, http.MethodPut, "/items/00000000-0000-4000-8000-000000000999", "designer", ItemRequest{Name: "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = send(t, router, http.MethodDelete, "/items/00000000-0000-4000-8000-000000000999", "designer", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListItems_ClampsLimit(t *testing.T) {
	service := NewService(newMockRepository())
	ctx := context.Background()

	for i := 0; i < MaxLimit+5; i++ {
		_, err := service.CreateItem(ctx, ItemInput{Name: fmt.Sprintf("bulk-%d", i)})
		require.NoError(t, err)
	}

	list, err := service.ListItems(ctx, ListFilter{Limit: 1000, Offset: -3})
	require.NoError(t, err)
	assert.Len(t, list, MaxLimit)
}
