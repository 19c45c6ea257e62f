package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	catalogapp "github.com/ppm/backend/internal/application/catalog"
	syncapp "github.com/ppm/backend/internal/application/sync"
	"github.com/ppm/backend/internal/domain/bulk"
	"github.com/ppm/backend/internal/domain/catalog"
	"github.com/ppm/backend/internal/domain/shared"
	"github.com/ppm/backend/internal/interfaces/http/router"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// devTenantID matches the header fallback used by getTenantID
var devTenantID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// ---------------------------------------------------------------------------
// In-memory fakes
// ---------------------------------------------------------------------------

type memProductRepo struct {
	mu       sync.Mutex
	products map[int64]*catalog.Product
	nextID   int64
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{products: make(map[int64]*catalog.Product)}
}

func (r *memProductRepo) FindByID(ctx context.Context, tenantID uuid.UUID, id int64) (*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.products[id]; ok && p.TenantID == tenantID {
		clone := *p
		clone.CategoryMappings = p.CategoryMappings.Clone()
		return &clone, nil
	}
	return nil, catalog.ErrProductNotFound
}

func (r *memProductRepo) FindBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.TenantID == tenantID && p.SKU == sku {
			clone := *p
			return &clone, nil
		}
	}
	return nil, catalog.ErrProductNotFound
}

func (r *memProductRepo) FindByCategory(ctx context.Context, tenantID uuid.UUID, categoryID int64) ([]catalog.Product, error) {
	return nil, nil
}

func (r *memProductRepo) Save(ctx context.Context, product *catalog.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if product.ID == 0 {
		r.nextID++
		product.ID = r.nextID
	}
	clone := *product
	clone.CategoryMappings = product.CategoryMappings.Clone()
	r.products[product.ID] = &clone
	return nil
}

func (r *memProductRepo) Delete(ctx context.Context, tenantID uuid.UUID, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.products, id)
	return nil
}

type memCategoryRepo struct {
	mu         sync.Mutex
	categories map[int64]*catalog.Category
	nextID     int64
}

func newMemCategoryRepo() *memCategoryRepo {
	return &memCategoryRepo{categories: make(map[int64]*catalog.Category)}
}

func (r *memCategoryRepo) FindByID(ctx context.Context, tenantID uuid.UUID, id int64) (*catalog.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.findByIDLocked(tenantID, id)
}

func (r *memCategoryRepo) findByIDLocked(tenantID uuid.UUID, id int64) (*catalog.Category, error) {
	if c, ok := r.categories[id]; ok && c.TenantID == tenantID {
		clone := *c
		return &clone, nil
	}
	return nil, catalog.ErrCategoryNotFound
}

func (r *memCategoryRepo) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*catalog.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.categories {
		if c.TenantID == tenantID && c.Code == code {
			clone := *c
			return &clone, nil
		}
	}
	return nil, catalog.ErrCategoryNotFound
}

func (r *memCategoryRepo) FindChildren(ctx context.Context, tenantID uuid.UUID, parentID int64) ([]catalog.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.findChildrenLocked(tenantID, parentID), nil
}

func (r *memCategoryRepo) findChildrenLocked(tenantID uuid.UUID, parentID int64) []catalog.Category {
	var out []catalog.Category
	for _, c := range r.categories {
		if c.TenantID == tenantID && c.ParentID != nil && *c.ParentID == parentID {
			out = append(out, *c)
		}
	}
	return out
}

func (r *memCategoryRepo) FindSubtree(ctx context.Context, tenantID uuid.UUID, rootID int64) ([]catalog.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	root, err := r.findByIDLocked(tenantID, rootID)
	if err != nil {
		return nil, err
	}
	subtree := []catalog.Category{*root}
	frontier := []int64{rootID}
	for len(frontier) > 0 {
		var next []int64
		for _, parentID := range frontier {
			for _, child := range r.findChildrenLocked(tenantID, parentID) {
				subtree = append(subtree, child)
				next = append(next, child.ID)
			}
		}
		frontier = next
	}
	return subtree, nil
}

func (r *memCategoryRepo) FindAll(ctx context.Context, tenantID uuid.UUID) ([]catalog.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []catalog.Category
	for _, c := range r.categories {
		if c.TenantID == tenantID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *memCategoryRepo) Save(ctx context.Context, category *catalog.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if category.ID == 0 {
		r.nextID++
		category.ID = r.nextID
	}
	clone := *category
	r.categories[category.ID] = &clone
	return nil
}

func (r *memCategoryRepo) Delete(ctx context.Context, tenantID uuid.UUID, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.categories, id)
	return nil
}

type memProgressRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*bulk.JobProgress
}

func newMemProgressRepo() *memProgressRepo {
	return &memProgressRepo{rows: make(map[uuid.UUID]*bulk.JobProgress)}
}

func (r *memProgressRepo) FindByJobID(ctx context.Context, tenantID, jobID uuid.UUID) (*bulk.JobProgress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.rows[jobID]; ok && p.TenantID == tenantID {
		clone := *p
		return &clone, nil
	}
	return nil, bulk.ErrJobProgressNotFound
}

func (r *memProgressRepo) FindRunning(ctx context.Context, tenantID uuid.UUID) ([]bulk.JobProgress, error) {
	return nil, nil
}

func (r *memProgressRepo) Save(ctx context.Context, progress *bulk.JobProgress) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if progress.ID == 0 {
		progress.ID = int64(len(r.rows) + 1)
	}
	clone := *progress
	r.rows[progress.JobID] = &clone
	return nil
}

func (r *memProgressRepo) Delete(ctx context.Context, tenantID, jobID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, jobID)
	return nil
}

type nopPublisher struct{}

func (nopPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error { return nil }

type memUnitOfWork struct {
	repo catalog.CategoryRepository
}

func (u *memUnitOfWork) Execute(ctx context.Context, fn func(repo catalog.CategoryRepository) error) error {
	return fn(u.repo)
}

// ---------------------------------------------------------------------------
// Fixture
// ---------------------------------------------------------------------------

type apiFixture struct {
	engine     *gin.Engine
	products   *memProductRepo
	categories *memCategoryRepo
	progress   *memProgressRepo
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	logger := zap.NewNop()
	products := newMemProductRepo()
	categories := newMemCategoryRepo()
	progressRepo := newMemProgressRepo()

	categoryService := catalogapp.NewCategoryService(categories, nopPublisher{}, logger)
	productService := catalogapp.NewProductService(products, categories, nopPublisher{}, logger)
	progressService := syncapp.NewProgressService(progressRepo, logger)
	bulkService := syncapp.NewCategoryBulkService(categories, &memUnitOfWork{repo: categories},
		progressService, nopPublisher{}, logger)

	engine := gin.New()
	r := router.NewRouter(engine)
	r.Register(NewCategoryHandler(categoryService, bulkService, logger))
	r.Register(NewProductHandler(productService))
	r.Register(NewJobHandler(progressService))
	r.Setup()

	return &apiFixture{
		engine:     engine,
		products:   products,
		categories: categories,
		progress:   progressRepo,
	}
}

func (f *apiFixture) request(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp struct {
		Success bool           `json:"success"`
		Data    map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	return resp.Data
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestCategoryHandler_CRUD(t *testing.T) {
	t.Run("creates and fetches a category", func(t *testing.T) {
		f := newAPIFixture(t)

		w := f.request(t, http.MethodPost, "/api/v1/catalog/categories",
			`{"code":"shoes","name":"Shoes"}`)
		require.Equal(t, http.StatusCreated, w.Code)
		data := decodeData(t, w)
		assert.Equal(t, "shoes", data["code"])

		w = f.request(t, http.MethodGet, "/api/v1/catalog/categories/1", "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing category yields 404", func(t *testing.T) {
		f := newAPIFixture(t)

		w := f.request(t, http.MethodGet, "/api/v1/catalog/categories/99", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("unknown parent is rejected", func(t *testing.T) {
		f := newAPIFixture(t)

		w := f.request(t, http.MethodPost, "/api/v1/catalog/categories",
			`{"code":"shoes","name":"Shoes","parent_id":42}`)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCategoryHandler_BulkDelete(t *testing.T) {
	t.Run("accepts the job and completes it in the background", func(t *testing.T) {
		f := newAPIFixture(t)
		require.Equal(t, http.StatusCreated, f.request(t, http.MethodPost,
			"/api/v1/catalog/categories", `{"code":"root","name":"Root"}`).Code)
		require.Equal(t, http.StatusCreated, f.request(t, http.MethodPost,
			"/api/v1/catalog/categories", `{"code":"child","name":"Child","parent_id":1}`).Code)

		w := f.request(t, http.MethodPost, "/api/v1/catalog/categories/1/bulk-delete", "")

		require.Equal(t, http.StatusAccepted, w.Code)
		data := decodeData(t, w)
		jobID, err := uuid.Parse(data["job_id"].(string))
		require.NoError(t, err)

		require.Eventually(t, func() bool {
			progress, err := f.progress.FindByJobID(context.Background(), devTenantID, jobID)
			return err == nil && progress.Status == bulk.JobStatusCompleted
		}, 2*time.Second, 10*time.Millisecond)

		_, err = f.categories.FindByID(context.Background(), devTenantID, 1)
		assert.ErrorIs(t, err, catalog.ErrCategoryNotFound)
		_, err = f.categories.FindByID(context.Background(), devTenantID, 2)
		assert.ErrorIs(t, err, catalog.ErrCategoryNotFound)
	})
}

func TestProductHandler_CategoryMappings(t *testing.T) {
	t.Run("unset mapping returns the canonical empty structure", func(t *testing.T) {
		f := newAPIFixture(t)
		w := f.request(t, http.MethodPost, "/api/v1/catalog/products",
			`{"sku":"SKU-1","name":"Shirt","price":49}`)
		require.Equal(t, http.StatusCreated, w.Code)

		w = f.request(t, http.MethodGet, "/api/v1/catalog/products/1/category-mappings/prestashop:shop-1", "")

		require.Equal(t, http.StatusOK, w.Code)
		data := decodeData(t, w)
		ui, ok := data["ui"].(map[string]any)
		require.True(t, ok)
		assert.Empty(t, ui["selected"])
		metadata, ok := data["metadata"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "empty", metadata["source"])
	})

	t.Run("selection round-trips with explicit nulls for unmapped entries", func(t *testing.T) {
		f := newAPIFixture(t)
		require.Equal(t, http.StatusCreated, f.request(t, http.MethodPost,
			"/api/v1/catalog/products", `{"sku":"SKU-1","name":"Shirt","price":49}`).Code)
		require.Equal(t, http.StatusCreated, f.request(t, http.MethodPost,
			"/api/v1/catalog/categories", `{"code":"shoes","name":"Shoes"}`).Code)
		require.Equal(t, http.StatusCreated, f.request(t, http.MethodPost,
			"/api/v1/catalog/categories", `{"code":"men","name":"Men"}`).Code)

		w := f.request(t, http.MethodPut, "/api/v1/catalog/products/1/category-mappings/prestashop:shop-1",
			`{"selected":[1,2],"primary":1}`)

		require.Equal(t, http.StatusOK, w.Code)
		data := decodeData(t, w)
		mappings, ok := data["mappings"].(map[string]any)
		require.True(t, ok)
		require.Contains(t, mappings, "1")
		require.Contains(t, mappings, "2")
		assert.Nil(t, mappings["1"])
		assert.Nil(t, mappings["2"])
	})

	t.Run("selecting a missing category yields 404", func(t *testing.T) {
		f := newAPIFixture(t)
		require.Equal(t, http.StatusCreated, f.request(t, http.MethodPost,
			"/api/v1/catalog/products", `{"sku":"SKU-1","name":"Shirt","price":49}`).Code)

		w := f.request(t, http.MethodPut, "/api/v1/catalog/products/1/category-mappings/prestashop:shop-1",
			`{"selected":[77]}`)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("primary outside the selection is a validation error", func(t *testing.T) {
		f := newAPIFixture(t)
		require.Equal(t, http.StatusCreated, f.request(t, http.MethodPost,
			"/api/v1/catalog/products", `{"sku":"SKU-1","name":"Shirt","price":49}`).Code)
		require.Equal(t, http.StatusCreated, f.request(t, http.MethodPost,
			"/api/v1/catalog/categories", `{"code":"shoes","name":"Shoes"}`).Code)

		w := f.request(t, http.MethodPut, "/api/v1/catalog/products/1/category-mappings/prestashop:shop-1",
			`{"selected":[1],"primary":9}`)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestJobHandler_GetProgress(t *testing.T) {
	t.Run("returns the live progress of a running job", func(t *testing.T) {
		f := newAPIFixture(t)
		jobID := uuid.New()
		progress, err := bulk.NewJobProgress(devTenantID, jobID, bulk.JobKindCategoryBulkDelete, "5")
		require.NoError(t, err)
		require.NoError(t, progress.Start(10))
		require.NoError(t, progress.UpdateProgress(7, nil))
		require.NoError(t, f.progress.Save(context.Background(), progress))

		w := f.request(t, http.MethodGet, "/api/v1/jobs/"+jobID.String()+"/progress", "")

		require.Equal(t, http.StatusOK, w.Code)
		data := decodeData(t, w)
		assert.Equal(t, "running", data["status"])
		assert.InDelta(t, 70.0, data["percentage"], 0.01)
		assert.Equal(t, float64(7), data["processed_count"])
	})

	t.Run("unknown job yields 404", func(t *testing.T) {
		f := newAPIFixture(t)

		w := f.request(t, http.MethodGet, "/api/v1/jobs/"+uuid.NewString()+"/progress", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("malformed job ID yields 400", func(t *testing.T) {
		f := newAPIFixture(t)

		w := f.request(t, http.MethodGet, "/api/v1/jobs/not-a-uuid/progress", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
