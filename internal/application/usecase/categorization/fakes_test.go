package categorization

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/finance-tracker/bookkeeping/internal/application/adapter"
	"github.com/finance-tracker/bookkeeping/internal/application/usecase/category"
	"github.com/finance-tracker/bookkeeping/internal/application/usecase/patternrule"
	"github.com/finance-tracker/bookkeeping/internal/domain/entity"
	domainerror "github.com/finance-tracker/bookkeeping/internal/domain/error"
	"github.com/finance-tracker/bookkeeping/internal/domain/rules"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeTransactionRepo struct {
	mu           sync.Mutex
	transactions map[uuid.UUID]*entity.Transaction
	aiUpdates    int
	userUpdates  int
}

func newFakeTransactionRepo(txs ...*entity.Transaction) *fakeTransactionRepo {
	r := &fakeTransactionRepo{transactions: make(map[uuid.UUID]*entity.Transaction)}
	for _, tx := range txs {
		r.transactions[tx.ID] = tx
	}
	return r
}

func (r *fakeTransactionRepo) FindByID(_ context.Context, workspaceID, id uuid.UUID) (*entity.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.transactions[id]
	if !ok || tx.WorkspaceID != workspaceID {
		return nil, domainerror.ErrTransactionNotFound
	}
	return tx.Clone(), nil
}

func (r *fakeTransactionRepo) FindByWorkspace(_ context.Context, workspaceID uuid.UUID) ([]*entity.Transaction, error) {
	return r.filter(func(tx *entity.Transaction) bool { return tx.WorkspaceID == workspaceID }), nil
}

func (r *fakeTransactionRepo) FindPendingAICategorization(_ context.Context, workspaceID uuid.UUID) ([]*entity.Transaction, error) {
	return r.filter(func(tx *entity.Transaction) bool {
		return tx.WorkspaceID == workspaceID && !tx.UserCategory.IsSet() && !tx.AICategory.IsSet()
	}), nil
}

func (r *fakeTransactionRepo) FindOutflowsBetween(_ context.Context, workspaceID uuid.UUID, start, end time.Time) ([]*entity.Transaction, error) {
	return r.filter(func(tx *entity.Transaction) bool {
		return tx.WorkspaceID == workspaceID && tx.IsPostedOutflow() && !tx.Date.Before(start) && !tx.Date.After(end)
	}), nil
}

func (r *fakeTransactionRepo) UpdateAICategory(_ context.Context, tx *entity.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.aiUpdates++
	r.transactions[tx.ID] = tx
	return nil
}

func (r *fakeTransactionRepo) UpdateUserCategory(_ context.Context, tx *entity.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.userUpdates++
	r.transactions[tx.ID] = tx
	return nil
}

func (r *fakeTransactionRepo) CountUncategorized(ctx context.Context, workspaceID uuid.UUID) (int, error) {
	pending, _ := r.FindPendingAICategorization(ctx, workspaceID)
	return len(pending), nil
}

func (r *fakeTransactionRepo) ListWorkspaceIDs(context.Context) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[uuid.UUID]struct{})
	var ids []uuid.UUID
	for _, tx := range r.transactions {
		if _, ok := seen[tx.WorkspaceID]; !ok {
			seen[tx.WorkspaceID] = struct{}{}
			ids = append(ids, tx.WorkspaceID)
		}
	}
	return ids, nil
}

func (r *fakeTransactionRepo) filter(keep func(*entity.Transaction) bool) []*entity.Transaction {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Transaction
	for _, tx := range r.transactions {
		if keep(tx) {
			out = append(out, tx.Clone())
		}
	}
	return out
}

func (r *fakeTransactionRepo) get(id uuid.UUID) *entity.Transaction {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.transactions[id]
}

type fakeCategoryRepo struct {
	categories []*entity.Category
}

func (r *fakeCategoryRepo) Create(_ context.Context, c *entity.Category) error {
	r.categories = append(r.categories, c)
	return nil
}

func (r *fakeCategoryRepo) CreateBatch(_ context.Context, cs []*entity.Category) error {
	r.categories = append(r.categories, cs...)
	return nil
}

func (r *fakeCategoryRepo) FindByID(_ context.Context, _ uuid.UUID, id uuid.UUID) (*entity.Category, error) {
	for _, c := range r.categories {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, domainerror.ErrCategoryNotFound
}

func (r *fakeCategoryRepo) FindByWorkspace(context.Context, uuid.UUID) ([]*entity.Category, error) {
	return r.categories, nil
}

func (r *fakeCategoryRepo) Update(context.Context, *entity.Category) error { return nil }

func (r *fakeCategoryRepo) Delete(context.Context, uuid.UUID, uuid.UUID) error { return nil }

func (r *fakeCategoryRepo) ExistsByNameAndParent(context.Context, uuid.UUID, string, *uuid.UUID) (bool, error) {
	return false, nil
}

func (r *fakeCategoryRepo) byName(t *testing.T, name string) uuid.UUID {
	t.Helper()
	for _, c := range r.categories {
		if c.Name == name {
			return c.ID
		}
	}
	t.Fatalf("category %q not seeded", name)
	return uuid.Nil
}

// seededCategories builds the default taxonomy for a workspace.
func seededCategories(t *testing.T, workspaceID uuid.UUID) *fakeCategoryRepo {
	t.Helper()
	table, err := rules.DefaultTable()
	if err != nil {
		t.Fatalf("DefaultTable() error = %v", err)
	}
	repo := &fakeCategoryRepo{}
	for _, seed := range table.Categories {
		root := entity.NewCategory(workspaceID, seed.Name, nil, seed.Color)
		repo.categories = append(repo.categories, root)
		for _, child := range seed.Children {
			repo.categories = append(repo.categories, entity.NewCategory(workspaceID, child, &root.ID, seed.Color))
		}
	}
	return repo
}

type fakePatternRuleRepo struct {
	rules []*entity.PatternRule
}

func (r *fakePatternRuleRepo) Create(_ context.Context, rule *entity.PatternRule) error {
	r.rules = append(r.rules, rule)
	return nil
}

func (r *fakePatternRuleRepo) FindByID(_ context.Context, _ uuid.UUID, id uuid.UUID) (*entity.PatternRule, error) {
	for _, rule := range r.rules {
		if rule.ID == id {
			return rule, nil
		}
	}
	return nil, domainerror.ErrPatternRuleNotFound
}

func (r *fakePatternRuleRepo) FindByWorkspace(context.Context, uuid.UUID) ([]*entity.PatternRule, error) {
	return r.rules, nil
}

func (r *fakePatternRuleRepo) FindActiveByWorkspace(context.Context, uuid.UUID) ([]*entity.PatternRule, error) {
	return r.rules, nil
}

func (r *fakePatternRuleRepo) Delete(context.Context, uuid.UUID, uuid.UUID) error { return nil }

type fakeLearningRepo struct {
	stats map[string][]*entity.MerchantCategoryStat
	err   error
}

func (r *fakeLearningRepo) Record(context.Context, entity.LearningSignal) error { return nil }

func (r *fakeLearningRepo) FindByMerchant(_ context.Context, _ uuid.UUID, key string) ([]*entity.MerchantCategoryStat, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.stats[key], nil
}

type fakeAIService struct {
	available bool
	choose    func(tx *adapter.TransactionForAI) uuid.UUID
	err       error
	calls     int
}

func (s *fakeAIService) IsAvailable() bool { return s.available }

func (s *fakeAIService) Classify(_ context.Context, req *adapter.AICategorizationRequest) ([]*adapter.AICategorizationResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	results := make([]*adapter.AICategorizationResult, 0, len(req.Transactions))
	for _, tx := range req.Transactions {
		results = append(results, &adapter.AICategorizationResult{
			TransactionID: tx.ID,
			CategoryID:    s.choose(tx),
			Confidence:    0.7,
		})
	}
	return results, nil
}

type recordingSink struct {
	signals chan entity.LearningSignal
}

func newRecordingSink() *recordingSink {
	return &recordingSink{signals: make(chan entity.LearningSignal, 8)}
}

func (s *recordingSink) Notify(_ context.Context, signal entity.LearningSignal) {
	s.signals <- signal
}

func outflowAt(workspaceID uuid.UUID, merchantName string, amount int64) *entity.Transaction {
	name := merchantName
	tx := entity.NewTransaction(workspaceID, fixedNow.AddDate(0, 0, -3), amount, entity.DirectionOutflow, &name, merchantName)
	return tx
}

type harness struct {
	workspaceID uuid.UUID
	txRepo      *fakeTransactionRepo
	catRepo     *fakeCategoryRepo
	ruleRepo    *fakePatternRuleRepo
	tracker     *InMemoryProcessingTracker
	taxLoader   *category.TaxonomyLoader
	rulesLoader *patternrule.RuleSetLoader
}

func newHarness(t *testing.T, txs ...*entity.Transaction) *harness {
	t.Helper()
	workspaceID := uuid.New()
	for _, tx := range txs {
		tx.WorkspaceID = workspaceID
	}
	catRepo := seededCategories(t, workspaceID)
	ruleRepo := &fakePatternRuleRepo{}
	return &harness{
		workspaceID: workspaceID,
		txRepo:      newFakeTransactionRepo(txs...),
		catRepo:     catRepo,
		ruleRepo:    ruleRepo,
		tracker:     NewInMemoryProcessingTracker(),
		taxLoader:   category.NewTaxonomyLoader(catRepo, nil, 0),
		rulesLoader: patternrule.NewRuleSetLoader(ruleRepo),
	}
}

func (h *harness) run(learning adapter.LearningSignalRepository, ai adapter.AICategorizationService, useAI bool) *RunCategorizationUseCase {
	return NewRunCategorizationUseCase(h.txRepo, learning, ai, h.taxLoader, h.rulesLoader, h.tracker, Options{
		UseAI: useAI,
		Now:   func() time.Time { return fixedNow },
	})
}

var errBoom = errors.New("boom")
