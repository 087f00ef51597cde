// tests/integration/main_test.go
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equiptrack/internal/catalog"
	"equiptrack/internal/directory"
	"equiptrack/internal/postgres"
	"equiptrack/internal/reference"
)

// setup connects to the database named by TEST_DATABASE_URL, applies the
// schema, wipes it and serves the full API in-process. The test is skipped
// when no database is configured.
func setup(t *testing.T) *httptest.Server {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := postgres.Open(url)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, postgres.Migrate(ctx, db))
	_, err = db.Exec("TRUNCATE TABLE products, users, categories, brands, locations CASCADE")
	require.NoError(t, err)

	categories := reference.NewService(
		reference.NewPostgresRepository(db, reference.KindCategory), reference.KindCategory)
	brands := reference.NewService(
		reference.NewPostgresRepository(db, reference.KindBrand), reference.KindBrand)
	locations := reference.NewService(
		reference.NewPostgresRepository(db, reference.KindLocation), reference.KindLocation)
	require.NoError(t, categories.Seed(ctx, reference.SystemCategories))

	users := directory.NewService(directory.NewPostgresRepository(db))
	products := catalog.NewService(catalog.NewPostgresRepository(db))

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/products", catalog.NewHandler(products, categories, brands, locations).Routes())
		r.Mount("/categories", reference.NewHandler(categories).Routes())
		r.Mount("/brands", reference.NewHandler(brands).Routes())
		r.Mount("/locations", reference.NewHandler(locations).Routes())
		r.Mount("/users", directory.NewHandler(users).Routes())
	})

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, url string, body interface{}, out interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	resp, err := http.Post(url, "application/json", &buf)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	if out != nil && resp.StatusCode < 300 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func getJSON(t *testing.T, url string, out interface{}) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	if out != nil && resp.StatusCode < 300 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestInventoryLifecycle(t *testing.T) {
	server := setup(t)
	base := server.URL + "/api/v1"

	// System categories were seeded at startup.
	var system []reference.Entity
	resp := getJSON(t, base+"/categories/system", &system)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, system, len(reference.SystemCategories))

	var notebook reference.Entity
	resp = getJSON(t, base+"/categories/name/Notebook", &notebook)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Custom brand and location.
	var brand reference.Entity
	resp = postJSON(t, base+"/brands", reference.Input{Name: "Dell"}, &brand)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var location reference.Entity
	resp = postJSON(t, base+"/locations", reference.Input{Name: "Lab 3"}, &location)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Register a product with five units.
	var product catalog.Product
	resp = postJSON(t, base+"/products", map[string]interface{}{
		"name":           "Latitude 5430",
		"code":           "NB-0001",
		"category_id":    notebook.ID,
		"brand_id":       brand.ID,
		"location_id":    location.ID,
		"quantity_total": 5,
	}, &product)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, 5, product.QuantityAvailable)
	assert.Equal(t, "Notebook", product.CategoryName)
	require.NotNil(t, product.BrandName)
	assert.Equal(t, "Dell", *product.BrandName)

	// Loan three, fail to loan three more, return one.
	var after catalog.Product
	resp = postJSON(t, fmt.Sprintf("%s/products/%s/loan?quantity=3", base, product.ID), nil, &after)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, after.QuantityAvailable)

	resp = postJSON(t, fmt.Sprintf("%s/products/%s/loan?quantity=3", base, product.ID), nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, fmt.Sprintf("%s/products/%s/return?quantity=1", base, product.ID), nil, &after)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, after.QuantityAvailable)

	// Duplicate code is a conflict.
	resp = postJSON(t, base+"/products", map[string]interface{}{
		"name":           "Another Latitude",
		"code":           "NB-0001",
		"category_id":    notebook.ID,
		"quantity_total": 1,
	}, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Reports see the outstanding loans.
	var totals catalog.Totals
	resp = getJSON(t, base+"/products/stats/summary", &totals)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 5, totals.TotalItems)
	assert.Equal(t, 3, totals.TotalAvailable)
	assert.Equal(t, 2, totals.TotalLoaned)

	var counts map[string]int64
	resp = getJSON(t, base+"/products/stats/category", &counts)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(1), counts["Notebook"])
}

func TestUserLifecycle(t *testing.T) {
	server := setup(t)
	base := server.URL + "/api/v1"

	reg := "REG-1001"
	var user directory.User
	resp := postJSON(t, base+"/users", directory.Input{
		Name:           "Ana Souza",
		Email:          "ana@example.edu",
		RegistrationID: &reg,
		Department:     "Physics",
	}, &user)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = postJSON(t, base+"/users", directory.Input{
		Name:  "Impostor",
		Email: "ana@example.edu",
	}, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var found directory.User
	resp = getJSON(t, base+"/users/registration/"+reg, &found)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, user.ID, found.ID)

	var exists bool
	resp = getJSON(t, base+"/users/check/email/ana@example.edu", &exists)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, exists)
}

func TestSystemCategoryProtection(t *testing.T) {
	server := setup(t)
	base := server.URL + "/api/v1"

	var notebook reference.Entity
	resp := getJSON(t, base+"/categories/name/Notebook", &notebook)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Updates to a system category are silently ignored.
	var after reference.Entity
	resp = postPut(t, base+"/categories/"+notebook.ID.String(), reference.Input{Name: "Laptop"}, &after)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Notebook", after.Name)

	// So is deletion.
	req, err := http.NewRequest(http.MethodDelete, base+"/categories/"+notebook.ID.String()+"/hard", nil)
	require.NoError(t, err)
	del, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	del.Body.Close()
	assert.Equal(t, http.StatusNoContent, del.StatusCode)

	resp = getJSON(t, base+"/categories/"+notebook.ID.String(), &after)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func postPut(t *testing.T, url string, body interface{}, out interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req, err := http.NewRequest(http.MethodPut, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	if out != nil && resp.StatusCode < 300 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}
