package sync

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ppm/backend/internal/domain/bulk"
	"github.com/ppm/backend/internal/domain/catalog"
	"github.com/ppm/backend/internal/domain/integration"
	"github.com/ppm/backend/internal/domain/shared"
	"github.com/ppm/backend/internal/infrastructure/syncqueue"
)

// ---------------------------------------------------------------------------
// Queue and target fakes
// ---------------------------------------------------------------------------

type fakeSubmitter struct {
	mu    sync.Mutex
	tasks []*syncqueue.SyncTask
	err   error
}

func (f *fakeSubmitter) Submit(task *syncqueue.SyncTask) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.tasks = append(f.tasks, task)
	return nil
}

func (f *fakeSubmitter) submitted() []*syncqueue.SyncTask {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*syncqueue.SyncTask(nil), f.tasks...)
}

type fakeTargetProvider struct {
	targets []integration.Target
	err     error
}

func (f *fakeTargetProvider) ActiveTargets(ctx context.Context, tenantID uuid.UUID) ([]integration.Target, error) {
	if f.err != nil {
		return nil, f.err
	}
	active := make([]integration.Target, 0, len(f.targets))
	for _, t := range f.targets {
		if t.Active && t.TenantID == tenantID {
			active = append(active, t)
		}
	}
	return active, nil
}

func (f *fakeTargetProvider) FindTarget(ctx context.Context, tenantID uuid.UUID,
	integrationType integration.IntegrationType, identifier string) (*integration.Target, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, t := range f.targets {
		if t.TenantID == tenantID && t.Type == integrationType && t.Identifier == identifier {
			target := t
			return &target, nil
		}
	}
	return nil, integration.ErrTargetNotFound
}

type fakeDedupStore struct {
	mu   sync.Mutex
	seen map[string]bool
	err  error
}

func newFakeDedupStore() *fakeDedupStore {
	return &fakeDedupStore{seen: make(map[string]bool)}
}

func (f *fakeDedupStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	if f.seen[eventID] {
		return false, nil
	}
	f.seen[eventID] = true
	return true, nil
}

func (f *fakeDedupStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen[eventID], nil
}

func (f *fakeDedupStore) Close() error { return nil }

var _ shared.IdempotencyStore = (*fakeDedupStore)(nil)

// ---------------------------------------------------------------------------
// Mapping repository fake
// ---------------------------------------------------------------------------

type mappingKey struct {
	tenant     uuid.UUID
	mType      integration.MappableType
	mID        int64
	iType      integration.IntegrationType
	identifier string
}

type fakeMappingRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   map[mappingKey]*integration.IntegrationMapping
}

func newFakeMappingRepo() *fakeMappingRepo {
	return &fakeMappingRepo{rows: make(map[mappingKey]*integration.IntegrationMapping)}
}

func keyOf(m *integration.IntegrationMapping) mappingKey {
	return mappingKey{m.TenantID, m.MappableType, m.MappableID, m.IntegrationType, m.IntegrationIdentifier}
}

func (f *fakeMappingRepo) FindByID(ctx context.Context, id int64) (*integration.IntegrationMapping, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.rows {
		if m.ID == id {
			clone := *m
			return &clone, nil
		}
	}
	return nil, integration.ErrMappingNotFound
}

func (f *fakeMappingRepo) Find(ctx context.Context, tenantID uuid.UUID, mappableType integration.MappableType,
	mappableID int64, integrationType integration.IntegrationType, identifier string) (*integration.IntegrationMapping, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := f.rows[mappingKey{tenantID, mappableType, mappableID, integrationType, identifier}]; ok {
		clone := *m
		return &clone, nil
	}
	return nil, integration.ErrMappingNotFound
}

func (f *fakeMappingRepo) FindByExternalID(ctx context.Context, tenantID uuid.UUID,
	integrationType integration.IntegrationType, identifier, externalID string) (*integration.IntegrationMapping, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.rows {
		if m.TenantID == tenantID && m.IntegrationType == integrationType &&
			m.IntegrationIdentifier == identifier && m.ExternalID != nil && *m.ExternalID == externalID {
			clone := *m
			return &clone, nil
		}
	}
	return nil, integration.ErrMappingNotFound
}

func (f *fakeMappingRepo) FindForMappable(ctx context.Context, tenantID uuid.UUID,
	mappableType integration.MappableType, mappableID int64) ([]integration.IntegrationMapping, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []integration.IntegrationMapping
	for _, m := range f.rows {
		if m.TenantID == tenantID && m.MappableType == mappableType && m.MappableID == mappableID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeMappingRepo) FindByStatus(ctx context.Context, tenantID uuid.UUID,
	integrationType integration.IntegrationType, identifier string, status integration.SyncStatus) ([]integration.IntegrationMapping, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []integration.IntegrationMapping
	for _, m := range f.rows {
		if m.TenantID == tenantID && m.IntegrationType == integrationType &&
			m.IntegrationIdentifier == identifier && m.SyncStatus == status {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeMappingRepo) CountByStatus(ctx context.Context, tenantID uuid.UUID,
	integrationType integration.IntegrationType, identifier string) (map[integration.SyncStatus]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[integration.SyncStatus]int64)
	for _, m := range f.rows {
		if m.TenantID == tenantID && m.IntegrationType == integrationType && m.IntegrationIdentifier == identifier {
			counts[m.SyncStatus]++
		}
	}
	return counts, nil
}

func (f *fakeMappingRepo) FindOrCreate(ctx context.Context, mapping *integration.IntegrationMapping) (*integration.IntegrationMapping, error) {
	if err := mapping.Validate(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := keyOf(mapping)
	if existing, ok := f.rows[key]; ok {
		clone := *existing
		return &clone, nil
	}
	f.nextID++
	stored := *mapping
	stored.ID = f.nextID
	f.rows[key] = &stored
	clone := stored
	return &clone, nil
}

func (f *fakeMappingRepo) Save(ctx context.Context, mapping *integration.IntegrationMapping) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if mapping.ID == 0 {
		return integration.ErrMappingNotFound
	}
	stored := *mapping
	f.rows[keyOf(mapping)] = &stored
	return nil
}

func (f *fakeMappingRepo) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, m := range f.rows {
		if m.ID == id {
			delete(f.rows, k)
		}
	}
	return nil
}

func (f *fakeMappingRepo) DeleteForMappable(ctx context.Context, tenantID uuid.UUID,
	mappableType integration.MappableType, mappableID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, m := range f.rows {
		if m.TenantID == tenantID && m.MappableType == mappableType && m.MappableID == mappableID {
			delete(f.rows, k)
		}
	}
	return nil
}

var _ integration.IntegrationMappingRepository = (*fakeMappingRepo)(nil)

// ---------------------------------------------------------------------------
// Target client fake
// ---------------------------------------------------------------------------

type clientCall struct {
	obj integration.RemoteObject
}

type fakeClient struct {
	mu        sync.Mutex
	calls     []clientCall
	results   []string
	errs      []error
	err       error // returned on every call when set
	callIndex int
}

func (c *fakeClient) Type() integration.IntegrationType {
	return integration.IntegrationTypePrestashop
}

func (c *fakeClient) CreateOrUpdate(ctx context.Context, target integration.Target, obj integration.RemoteObject) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, clientCall{obj: obj})
	if c.err != nil {
		return "", c.err
	}
	i := c.callIndex
	c.callIndex++
	if i < len(c.errs) && c.errs[i] != nil {
		return "", c.errs[i]
	}
	if i < len(c.results) {
		return c.results[i], nil
	}
	return "1", nil
}

func (c *fakeClient) Get(ctx context.Context, target integration.Target, remoteType integration.RemoteType, externalID string) (*integration.RemoteObject, error) {
	return nil, integration.ErrUnsupportedRemote
}

func (c *fakeClient) Delete(ctx context.Context, target integration.Target, remoteType integration.RemoteType, externalID string) error {
	return nil
}

var _ integration.TargetClient = (*fakeClient)(nil)

// ---------------------------------------------------------------------------
// Catalog repository fakes
// ---------------------------------------------------------------------------

type fakeCategoryRepo struct {
	mu         sync.Mutex
	nextID     int64
	categories map[int64]*catalog.Category
	deleteErr  map[int64]error
	deleted    []int64
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{
		categories: make(map[int64]*catalog.Category),
		deleteErr:  make(map[int64]error),
	}
}

func (f *fakeCategoryRepo) add(c *catalog.Category) *catalog.Category {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c.ID == 0 {
		f.nextID++
		c.ID = f.nextID
	}
	f.categories[c.ID] = c
	return c
}

func (f *fakeCategoryRepo) FindByID(ctx context.Context, tenantID uuid.UUID, id int64) (*catalog.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.categories[id]; ok && c.TenantID == tenantID {
		clone := *c
		return &clone, nil
	}
	return nil, catalog.ErrCategoryNotFound
}

func (f *fakeCategoryRepo) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*catalog.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.categories {
		if c.TenantID == tenantID && c.Code == code {
			clone := *c
			return &clone, nil
		}
	}
	return nil, catalog.ErrCategoryNotFound
}

func (f *fakeCategoryRepo) FindChildren(ctx context.Context, tenantID uuid.UUID, parentID int64) ([]catalog.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []catalog.Category
	for _, c := range f.categories {
		if c.TenantID == tenantID && c.ParentID != nil && *c.ParentID == parentID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCategoryRepo) FindSubtree(ctx context.Context, tenantID uuid.UUID, rootID int64) ([]catalog.Category, error) {
	root, err := f.FindByID(ctx, tenantID, rootID)
	if err != nil {
		return nil, err
	}
	subtree := []catalog.Category{*root}
	frontier := []int64{rootID}
	for len(frontier) > 0 {
		var next []int64
		for _, parentID := range frontier {
			children, _ := f.FindChildren(ctx, tenantID, parentID)
			for _, child := range children {
				subtree = append(subtree, child)
				next = append(next, child.ID)
			}
		}
		frontier = next
	}
	return subtree, nil
}

func (f *fakeCategoryRepo) FindAll(ctx context.Context, tenantID uuid.UUID) ([]catalog.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []catalog.Category
	for _, c := range f.categories {
		if c.TenantID == tenantID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCategoryRepo) Save(ctx context.Context, category *catalog.Category) error {
	f.add(category)
	return nil
}

func (f *fakeCategoryRepo) Delete(ctx context.Context, tenantID uuid.UUID, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.deleteErr[id]; ok {
		return err
	}
	delete(f.categories, id)
	f.deleted = append(f.deleted, id)
	return nil
}

var _ catalog.CategoryRepository = (*fakeCategoryRepo)(nil)

// fakeUnitOfWork hands the same repository to the callback; rollback is
// simulated only through the error return
type fakeUnitOfWork struct {
	repo catalog.CategoryRepository
}

func (f *fakeUnitOfWork) Execute(ctx context.Context, fn func(repo catalog.CategoryRepository) error) error {
	return fn(f.repo)
}

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[int64]*catalog.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[int64]*catalog.Product)}
}

func (f *fakeProductRepo) add(p *catalog.Product) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products[p.ID] = p
}

func (f *fakeProductRepo) FindByID(ctx context.Context, tenantID uuid.UUID, id int64) (*catalog.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.products[id]; ok && p.TenantID == tenantID {
		clone := *p
		clone.CategoryMappings = p.CategoryMappings.Clone()
		return &clone, nil
	}
	return nil, catalog.ErrProductNotFound
}

func (f *fakeProductRepo) FindBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*catalog.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.products {
		if p.TenantID == tenantID && p.SKU == sku {
			clone := *p
			return &clone, nil
		}
	}
	return nil, catalog.ErrProductNotFound
}

func (f *fakeProductRepo) FindByCategory(ctx context.Context, tenantID uuid.UUID, categoryID int64) ([]catalog.Product, error) {
	return nil, nil
}

var _ catalog.ProductReader = (*fakeProductRepo)(nil)

// ---------------------------------------------------------------------------
// Job progress repository fake
// ---------------------------------------------------------------------------

type fakeProgressRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   map[uuid.UUID]*bulk.JobProgress
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{rows: make(map[uuid.UUID]*bulk.JobProgress)}
}

func (f *fakeProgressRepo) FindByJobID(ctx context.Context, tenantID, jobID uuid.UUID) (*bulk.JobProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.rows[jobID]; ok && p.TenantID == tenantID {
		clone := *p
		clone.ErrorDetails = append([]bulk.ProgressErrorDetail(nil), p.ErrorDetails...)
		return &clone, nil
	}
	return nil, bulk.ErrJobProgressNotFound
}

func (f *fakeProgressRepo) FindRunning(ctx context.Context, tenantID uuid.UUID) ([]bulk.JobProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []bulk.JobProgress
	for _, p := range f.rows {
		if p.TenantID == tenantID && !p.IsTerminal() {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProgressRepo) Save(ctx context.Context, progress *bulk.JobProgress) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if progress.ID == 0 {
		f.nextID++
		progress.ID = f.nextID
	}
	clone := *progress
	clone.ErrorDetails = append([]bulk.ProgressErrorDetail(nil), progress.ErrorDetails...)
	f.rows[progress.JobID] = &clone
	return nil
}

func (f *fakeProgressRepo) Delete(ctx context.Context, tenantID, jobID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, jobID)
	return nil
}

var _ bulk.JobProgressRepository = (*fakeProgressRepo)(nil)

// ---------------------------------------------------------------------------
// Event publisher fake
// ---------------------------------------------------------------------------

type fakePublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (f *fakePublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, events...)
	return nil
}

func (f *fakePublisher) published() []shared.DomainEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]shared.DomainEvent(nil), f.events...)
}

var _ shared.EventPublisher = (*fakePublisher)(nil)
