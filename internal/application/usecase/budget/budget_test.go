package budget

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/finance-tracker/bookkeeping/internal/application/usecase/category"
	"github.com/finance-tracker/bookkeeping/internal/domain/entity"
	domainerror "github.com/finance-tracker/bookkeeping/internal/domain/error"
	"github.com/finance-tracker/bookkeeping/internal/domain/valueobject"
)

type memoryBudgetRepo struct {
	lines     []entity.BudgetLine
	groups    []entity.BudgetGroup
	overrides map[uuid.UUID]entity.BudgetOverride
	computed  map[uuid.UUID]entity.LinePerformance
	writes    int
}

func newMemoryBudgetRepo() *memoryBudgetRepo {
	return &memoryBudgetRepo{
		overrides: make(map[uuid.UUID]entity.BudgetOverride),
		computed:  make(map[uuid.UUID]entity.LinePerformance),
	}
}

func (r *memoryBudgetRepo) FindLines(context.Context, uuid.UUID) ([]entity.BudgetLine, error) {
	return r.lines, nil
}

func (r *memoryBudgetRepo) FindLineByID(_ context.Context, _ uuid.UUID, id uuid.UUID) (*entity.BudgetLine, error) {
	for _, l := range r.lines {
		if l.ID == id {
			line := l
			return &line, nil
		}
	}
	return nil, domainerror.ErrBudgetLineNotFound
}

func (r *memoryBudgetRepo) FindGroups(context.Context, uuid.UUID) ([]entity.BudgetGroup, error) {
	return r.groups, nil
}

func (r *memoryBudgetRepo) FindOverrides(context.Context, uuid.UUID) ([]entity.BudgetOverride, error) {
	out := make([]entity.BudgetOverride, 0, len(r.overrides))
	for _, o := range r.overrides {
		out = append(out, o)
	}
	return out, nil
}

func (r *memoryBudgetRepo) UpdateComputed(_ context.Context, lines []entity.LinePerformance) error {
	r.writes++
	for _, lp := range lines {
		r.computed[lp.LineID] = lp
	}
	return nil
}

func (r *memoryBudgetRepo) UpsertOverride(_ context.Context, o *entity.BudgetOverride) error {
	r.overrides[o.TransactionID] = *o
	return nil
}

func (r *memoryBudgetRepo) DeleteOverride(_ context.Context, _ uuid.UUID, transactionID uuid.UUID) error {
	if _, ok := r.overrides[transactionID]; !ok {
		return domainerror.ErrBudgetOverrideNotFound
	}
	delete(r.overrides, transactionID)
	return nil
}

type stubTransactionRepo struct {
	transactions []*entity.Transaction
}

func (r *stubTransactionRepo) FindByID(_ context.Context, _ uuid.UUID, id uuid.UUID) (*entity.Transaction, error) {
	for _, tx := range r.transactions {
		if tx.ID == id {
			return tx, nil
		}
	}
	return nil, domainerror.ErrTransactionNotFound
}

func (r *stubTransactionRepo) FindByWorkspace(context.Context, uuid.UUID) ([]*entity.Transaction, error) {
	return r.transactions, nil
}

func (r *stubTransactionRepo) FindPendingAICategorization(context.Context, uuid.UUID) ([]*entity.Transaction, error) {
	return nil, nil
}

func (r *stubTransactionRepo) FindOutflowsBetween(_ context.Context, _ uuid.UUID, start, end time.Time) ([]*entity.Transaction, error) {
	var out []*entity.Transaction
	for _, tx := range r.transactions {
		if tx.IsPostedOutflow() && !tx.Date.Before(start) && !tx.Date.After(end) {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (r *stubTransactionRepo) UpdateAICategory(context.Context, *entity.Transaction) error { return nil }

func (r *stubTransactionRepo) UpdateUserCategory(context.Context, *entity.Transaction) error {
	return nil
}

func (r *stubTransactionRepo) CountUncategorized(context.Context, uuid.UUID) (int, error) {
	return 0, nil
}

func (r *stubTransactionRepo) ListWorkspaceIDs(context.Context) ([]uuid.UUID, error) { return nil, nil }

type stubCategoryRepo struct {
	categories []*entity.Category
}

func (r *stubCategoryRepo) Create(context.Context, *entity.Category) error        { return nil }
func (r *stubCategoryRepo) CreateBatch(context.Context, []*entity.Category) error { return nil }
func (r *stubCategoryRepo) FindByID(context.Context, uuid.UUID, uuid.UUID) (*entity.Category, error) {
	return nil, domainerror.ErrCategoryNotFound
}
func (r *stubCategoryRepo) FindByWorkspace(context.Context, uuid.UUID) ([]*entity.Category, error) {
	return r.categories, nil
}
func (r *stubCategoryRepo) Update(context.Context, *entity.Category) error      { return nil }
func (r *stubCategoryRepo) Delete(context.Context, uuid.UUID, uuid.UUID) error { return nil }
func (r *stubCategoryRepo) ExistsByNameAndParent(context.Context, uuid.UUID, string, *uuid.UUID) (bool, error) {
	return false, nil
}

type budgetFixture struct {
	workspaceID         uuid.UUID
	housing, rent, food uuid.UUID
	rentLine, foodLine  entity.BudgetLine
	rentTx, dinnerTx    *entity.Transaction
	txRepo              *stubTransactionRepo
	budgetRepo          *memoryBudgetRepo
	performance         *GetPerformanceUseCase
	start, end          time.Time
}

func newBudgetFixture() *budgetFixture {
	f := &budgetFixture{
		workspaceID: uuid.New(),
		start:       time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		end:         time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC),
	}

	housing := entity.NewCategory(f.workspaceID, "Housing", nil, "")
	rent := entity.NewCategory(f.workspaceID, "Rent", &housing.ID, "")
	food := entity.NewCategory(f.workspaceID, "Food & Dining", nil, "")
	f.housing, f.rent, f.food = housing.ID, rent.ID, food.ID

	groupID := uuid.New()
	f.rentLine = entity.BudgetLine{ID: uuid.New(), WorkspaceID: f.workspaceID, GroupID: &groupID, CategoryID: f.housing, Budgeted: 150000}
	f.foodLine = entity.BudgetLine{ID: uuid.New(), WorkspaceID: f.workspaceID, GroupID: &groupID, CategoryID: f.food, Budgeted: 50000}

	name := "Merchant"
	f.rentTx = entity.NewTransaction(f.workspaceID, f.start.AddDate(0, 0, 1), 125000, entity.DirectionOutflow, &name, "")
	f.rentTx.AICategory = entity.AICategory{PrimaryID: &f.housing, SecondaryID: &f.rent, Method: entity.MethodMerchantRule}
	f.dinnerTx = entity.NewTransaction(f.workspaceID, f.start.AddDate(0, 0, 4), 42000, entity.DirectionOutflow, &name, "")
	f.dinnerTx.UserCategory = entity.UserCategory{PrimaryID: &f.food}

	f.txRepo = &stubTransactionRepo{transactions: []*entity.Transaction{f.rentTx, f.dinnerTx}}
	f.budgetRepo = newMemoryBudgetRepo()
	f.budgetRepo.lines = []entity.BudgetLine{f.rentLine, f.foodLine}
	f.budgetRepo.groups = []entity.BudgetGroup{{ID: groupID, WorkspaceID: f.workspaceID, Name: "Essentials"}}

	loader := category.NewTaxonomyLoader(&stubCategoryRepo{categories: []*entity.Category{housing, rent, food}}, nil, 0)
	f.performance = NewGetPerformanceUseCase(f.txRepo, f.budgetRepo, loader, valueobject.DefaultBudgetThresholds())
	return f
}

func (f *budgetFixture) input() GetPerformanceInput {
	return GetPerformanceInput{WorkspaceID: f.workspaceID, Start: f.start, End: f.end}
}

func TestGetPerformance_ComputesAndWritesBack(t *testing.T) {
	f := newBudgetFixture()

	out, err := f.performance.Execute(context.Background(), f.input())
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if len(out.Lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(out.Lines))
	}
	rent := out.Lines[0]
	if rent.Spent.String() != "1250" || rent.Remaining.String() != "250" || rent.PercentageUsed != "83.33" || rent.Status != entity.BudgetStatusNearLimit {
		t.Errorf("rent line = %+v", rent)
	}
	food := out.Lines[1]
	if food.Spent.String() != "420" || food.Status != entity.BudgetStatusNearLimit || food.CategoryName != "Food & Dining" {
		t.Errorf("food line = %+v", food)
	}

	if len(out.Groups) != 1 || out.Groups[0].Spent.String() != "1670" || out.Groups[0].PercentageUsed != "83.50" {
		t.Errorf("groups = %+v", out.Groups)
	}

	if got := f.budgetRepo.computed[f.rentLine.ID]; got.Spent != 125000 || got.Remaining != 25000 {
		t.Errorf("written back = %+v", got)
	}
}

func TestGetPerformance_OverrideMovesSpend(t *testing.T) {
	f := newBudgetFixture()
	set := NewSetOverrideUseCase(f.txRepo, f.budgetRepo)
	clearOverride := NewClearOverrideUseCase(f.budgetRepo)

	if _, err := set.Execute(context.Background(), SetOverrideInput{WorkspaceID: f.workspaceID, TransactionID: f.dinnerTx.ID, BudgetLineID: f.rentLine.ID}); err != nil {
		t.Fatalf("SetOverride error = %v", err)
	}

	out, err := f.performance.Execute(context.Background(), f.input())
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if out.Lines[0].Spent.String() != "1670" || out.Lines[0].Status != entity.BudgetStatusOver || out.Lines[1].Spent.String() != "0" {
		t.Errorf("with override: rent = %+v, food = %+v", out.Lines[0], out.Lines[1])
	}

	if err := clearOverride.Execute(context.Background(), ClearOverrideInput{WorkspaceID: f.workspaceID, TransactionID: f.dinnerTx.ID}); err != nil {
		t.Fatalf("ClearOverride error = %v", err)
	}
	out, err = f.performance.Execute(context.Background(), f.input())
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if out.Lines[1].Spent.String() != "420" {
		t.Errorf("after clear: food = %+v", out.Lines[1])
	}
	if f.budgetRepo.writes != 2 {
		t.Errorf("writes = %d, want 2", f.budgetRepo.writes)
	}
}

func TestGetPerformance_InvalidPeriod(t *testing.T) {
	f := newBudgetFixture()
	input := f.input()
	input.Start, input.End = input.End, input.Start

	_, err := f.performance.Execute(context.Background(), input)
	if !errors.Is(err, domainerror.ErrInvalidBudgetPeriod) || !errors.Is(err, domainerror.ErrValidation) {
		t.Errorf("Execute() error = %v", err)
	}
	if f.budgetRepo.writes != 0 {
		t.Error("invalid period wrote results")
	}
}

func TestOverride_Errors(t *testing.T) {
	f := newBudgetFixture()
	set := NewSetOverrideUseCase(f.txRepo, f.budgetRepo)

	_, err := set.Execute(context.Background(), SetOverrideInput{WorkspaceID: f.workspaceID, TransactionID: uuid.New(), BudgetLineID: f.rentLine.ID})
	if !errors.Is(err, domainerror.ErrTransactionNotFound) {
		t.Errorf("unknown transaction error = %v", err)
	}

	_, err = set.Execute(context.Background(), SetOverrideInput{WorkspaceID: f.workspaceID, TransactionID: f.rentTx.ID, BudgetLineID: uuid.New()})
	var budgetErr *domainerror.BudgetError
	if !errors.As(err, &budgetErr) || budgetErr.Code != domainerror.ErrCodeBudgetLineNotFound {
		t.Errorf("unknown line error = %v", err)
	}

	err = NewClearOverrideUseCase(f.budgetRepo).Execute(context.Background(), ClearOverrideInput{WorkspaceID: f.workspaceID, TransactionID: f.rentTx.ID})
	if !errors.Is(err, domainerror.ErrNotFound) {
		t.Errorf("missing override error = %v", err)
	}
}

func TestMonthBounds(t *testing.T) {
	tests := []struct {
		in        time.Time
		wantStart string
		wantEnd   string
	}{
		{time.Date(2026, 2, 14, 18, 30, 0, 0, time.UTC), "2026-02-01", "2026-02-28"},
		{time.Date(2028, 2, 1, 0, 0, 0, 0, time.UTC), "2028-02-01", "2028-02-29"},
		{time.Date(2026, 12, 31, 23, 59, 0, 0, time.UTC), "2026-12-01", "2026-12-31"},
	}
	for _, tt := range tests {
		start, end := MonthBounds(tt.in)
		if start.Format(time.DateOnly) != tt.wantStart || end.Format(time.DateOnly) != tt.wantEnd {
			t.Errorf("MonthBounds(%s) = %s..%s, want %s..%s", tt.in, start.Format(time.DateOnly), end.Format(time.DateOnly), tt.wantStart, tt.wantEnd)
		}
	}
}
