//go:build integration

package app_test

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taarez/taarez-backend/internal/testutil"
)

type designView struct {
	ID            string         `json:"id"`
	UserID        string         `json:"user_id"`
	Name          string         `json:"name"`
	CategoryID    string         `json:"category_id"`
	FabricID      string         `json:"fabric_id"`
	Customization map[string]any `json:"customization"`
	Status        string         `json:"status"`
}

type idView struct {
	ID string `json:"id"`
}

// createCatalogue creates one category with one fabric as the seeded admin.
func createCatalogue(t *testing.T) (categoryID, fabricID string) {
	t.Helper()

	admin := newTestClient(t)
	admin.LoginAsAdmin(t)

	resp, err := admin.POST("/api/v1/design/categories", map[string]string{
		"name": "Suits " + uuid.NewString()[:8],
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var category idView
	testutil.DecodeData(t, resp, &category)

	resp, err = admin.POST("/api/v1/design/fabrics", map[string]interface{}{
		"category_id":     category.ID,
		"name":            "Wool",
		"color":           "navy",
		"price_per_meter": 42.5,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var fabric idView
	testutil.DecodeData(t, resp, &fabric)

	return category.ID, fabric.ID
}

func TestDesigns_Catalogue(t *testing.T) {
	categoryID, fabricID := createCatalogue(t)
	anon := newTestClient(t)

	resp, err := anon.GET("/api/v1/design/fabrics/" + categoryID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var fabrics []idView
	testutil.DecodeData(t, resp, &fabrics)
	assert.Equal(t, []idView{{ID: fabricID}}, fabrics)

	resp, err = anon.GET("/api/v1/design/fabrics/" + uuid.NewString())
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	testutil.DecodeData(t, resp, &fabrics)
	assert.Empty(t, fabrics)

	customer := newTestClient(t)
	customer.LoginAsCustomer(t)
	resp, err = customer.POST("/api/v1/design/categories", map[string]string{"name": "Nope"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestDesigns_SaveAndProduce(t *testing.T) {
	categoryID, fabricID := createCatalogue(t)

	customer := newTestClient(t)
	customer.RegisterAndLogin(t, "orders")

	resp, err := customer.POST("/api/v1/design/save", map[string]interface{}{
		"name":          "Wedding suit",
		"category_id":   categoryID,
		"fabric_id":     fabricID,
		"customization": map[string]interface{}{"lapel": "peak"},
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var design designView
	testutil.DecodeData(t, resp, &design)
	assert.Equal(t, "pending", design.Status)
	assert.Equal(t, "peak", design.Customization["lapel"])

	resp, err = customer.GET("/api/v1/design/my")
	require.NoError(t, err)
	var mine []designView
	testutil.DecodeData(t, resp, &mine)
	require.Len(t, mine, 1)
	assert.Equal(t, design.ID, mine[0].ID)

	resp, err = customer.GET("/api/v1/design/queue")
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "The user is not a tailor", errorMessage(t, resp))

	tailor := newTestClient(t)
	tailor.LoginAsTailor(t)

	resp, err = tailor.GET("/api/v1/design/queue?status=pending")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var queue []designView
	testutil.DecodeData(t, resp, &queue)
	assert.Contains(t, queue, design)

	path := "/api/v1/design/" + design.ID + "/status"

	resp, err = tailor.PATCH(path, map[string]string{"status": "in_progress"})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	testutil.DecodeData(t, resp, &design)
	assert.Equal(t, "in_progress", design.Status)

	resp, err = tailor.PATCH(path, map[string]string{"status": "completed"})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp, err = tailor.PATCH(path, map[string]string{"status": "pending"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "completed is final")
	_ = resp.Body.Close()

	resp, err = tailor.GET("/api/v1/design/queue")
	require.NoError(t, err)
	testutil.DecodeData(t, resp, &queue)
	for _, d := range queue {
		assert.NotEqual(t, design.ID, d.ID, "completed designs leave the default queue")
	}
}

func TestDesigns_SaveRejectsBadReferences(t *testing.T) {
	categoryID, fabricID := createCatalogue(t)
	otherCategoryID, _ := createCatalogue(t)

	customer := newTestClient(t)
	customer.LoginAsCustomer(t)

	tests := []struct {
		name       string
		categoryID string
		fabricID   string
		wantMsg    string
	}{
		{"unknown fabric", categoryID, uuid.NewString(), "Invalid category or fabric"},
		{"fabric from another category", otherCategoryID, fabricID, "Fabric does not belong to the category"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := customer.POST("/api/v1/design/save", map[string]string{
				"name":        "Broken",
				"category_id": tt.categoryID,
				"fabric_id":   tt.fabricID,
			})
			require.NoError(t, err)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, tt.wantMsg, errorMessage(t, resp))
		})
	}

	anon := newTestClient(t)
	resp, err := anon.POST("/api/v1/design/save", map[string]string{
		"name":        "Anonymous",
		"category_id": categoryID,
		"fabric_id":   fabricID,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	_ = resp.Body.Close()
}
