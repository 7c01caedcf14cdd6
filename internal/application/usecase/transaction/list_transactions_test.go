package transaction

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/finance-tracker/bookkeeping/internal/application/usecase/category"
	"github.com/finance-tracker/bookkeeping/internal/domain/entity"
	domainerror "github.com/finance-tracker/bookkeeping/internal/domain/error"
	"github.com/finance-tracker/bookkeeping/internal/domain/resolver"
)

type stubTransactionRepo struct {
	transactions []*entity.Transaction
}

func (r *stubTransactionRepo) FindByID(context.Context, uuid.UUID, uuid.UUID) (*entity.Transaction, error) {
	return nil, domainerror.ErrTransactionNotFound
}

func (r *stubTransactionRepo) FindByWorkspace(context.Context, uuid.UUID) ([]*entity.Transaction, error) {
	return r.transactions, nil
}

func (r *stubTransactionRepo) FindPendingAICategorization(context.Context, uuid.UUID) ([]*entity.Transaction, error) {
	return nil, nil
}

func (r *stubTransactionRepo) FindOutflowsBetween(context.Context, uuid.UUID, time.Time, time.Time) ([]*entity.Transaction, error) {
	return nil, nil
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

type listFixture struct {
	workspaceID                                 uuid.UUID
	living, housing, rent, food, groceries      uuid.UUID
	rentTx, groceriesTx, housingTx, uncatTx, in *entity.Transaction
	uc                                          *ListTransactionsUseCase
}

func newListFixture() *listFixture {
	f := &listFixture{workspaceID: uuid.New()}

	living := entity.NewCategory(f.workspaceID, "Living", nil, "")
	housing := entity.NewCategory(f.workspaceID, "Housing", &living.ID, "")
	rent := entity.NewCategory(f.workspaceID, "Rent", &housing.ID, "")
	food := entity.NewCategory(f.workspaceID, "Food & Dining", nil, "")
	groceries := entity.NewCategory(f.workspaceID, "Groceries", &food.ID, "")
	f.living, f.housing, f.rent, f.food, f.groceries = living.ID, housing.ID, rent.ID, food.ID, groceries.ID

	day := func(d int) time.Time { return time.Date(2026, 5, d, 0, 0, 0, 0, time.UTC) }
	newTx := func(d int, amount int64, dir entity.Direction) *entity.Transaction {
		name := "Merchant"
		return entity.NewTransaction(f.workspaceID, day(d), amount, dir, &name, "")
	}

	f.rentTx = newTx(1, 120000, entity.DirectionOutflow)
	f.rentTx.UserCategory = entity.UserCategory{PrimaryID: &f.housing, SecondaryID: &f.rent}

	f.groceriesTx = newTx(3, 8400, entity.DirectionOutflow)
	f.groceriesTx.AICategory = entity.AICategory{PrimaryID: &f.food, SecondaryID: &f.groceries, Confidence: 0.85, Method: entity.MethodMerchantRule}

	f.housingTx = newTx(5, 9900, entity.DirectionOutflow)
	f.housingTx.AICategory = entity.AICategory{PrimaryID: &f.living, SecondaryID: &f.housing, Confidence: 0.7, Method: entity.MethodProviderFallback}

	f.uncatTx = newTx(7, 500, entity.DirectionOutflow)
	f.in = newTx(9, 300000, entity.DirectionInflow)

	txRepo := &stubTransactionRepo{transactions: []*entity.Transaction{f.rentTx, f.groceriesTx, f.housingTx, f.uncatTx, f.in}}
	catRepo := &stubCategoryRepo{categories: []*entity.Category{living, housing, rent, food, groceries}}
	f.uc = NewListTransactionsUseCase(txRepo, category.NewTaxonomyLoader(catRepo, nil, 0))
	return f
}

func ids(out *ListTransactionsOutput) []uuid.UUID {
	result := make([]uuid.UUID, len(out.Transactions))
	for i, tx := range out.Transactions {
		result[i] = tx.ID
	}
	return result
}

func TestListTransactions_CategoryFilter(t *testing.T) {
	f := newListFixture()

	tests := []struct {
		name   string
		filter uuid.UUID
		want   []uuid.UUID
	}{
		{name: "root includes grandchildren", filter: f.living, want: []uuid.UUID{f.housingTx.ID, f.rentTx.ID}},
		{name: "middle includes children", filter: f.housing, want: []uuid.UUID{f.housingTx.ID, f.rentTx.ID}},
		{name: "leaf is exact", filter: f.rent, want: []uuid.UUID{f.rentTx.ID}},
		{name: "other root", filter: f.food, want: []uuid.UUID{f.groceriesTx.ID}},
		{name: "unknown id matches nothing", filter: uuid.New(), want: []uuid.UUID{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter := tt.filter
			out, err := f.uc.Execute(context.Background(), ListTransactionsInput{WorkspaceID: f.workspaceID, CategoryID: &filter})
			if err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			got := ids(out)
			if len(got) != len(tt.want) {
				t.Fatalf("ids = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ids[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestListTransactions_ResolvedCategory(t *testing.T) {
	f := newListFixture()

	out, err := f.uc.Execute(context.Background(), ListTransactionsInput{WorkspaceID: f.workspaceID})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	byID := make(map[uuid.UUID]*TransactionOutput)
	for _, tx := range out.Transactions {
		byID[tx.ID] = tx
	}

	if c := byID[f.rentTx.ID].Category; c.Source != resolver.SourceUser || c.Name != "Living > Housing > Rent" {
		t.Errorf("rent category = %+v", c)
	}
	if c := byID[f.groceriesTx.ID].Category; c.Source != resolver.SourceAI || c.Method != entity.MethodMerchantRule {
		t.Errorf("groceries category = %+v", c)
	}
	if c := byID[f.uncatTx.ID].Category; c.Source != resolver.SourceNone || c.Name != resolver.UncategorizedName || c.ID != nil {
		t.Errorf("uncategorized category = %+v", c)
	}
	if out.Totals.OutflowTotal.String() != "1388" || out.Totals.InflowTotal.String() != "3000" {
		t.Errorf("totals = %+v", out.Totals)
	}
}

func TestListTransactions_Pagination(t *testing.T) {
	f := newListFixture()

	out, err := f.uc.Execute(context.Background(), ListTransactionsInput{WorkspaceID: f.workspaceID, Page: 2, Limit: 2})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if out.Pagination.Total != 5 || out.Pagination.TotalPages != 3 || len(out.Transactions) != 2 {
		t.Errorf("pagination = %+v, page size %d", out.Pagination, len(out.Transactions))
	}
	if out.Transactions[0].ID != f.housingTx.ID {
		t.Errorf("page 2 starts with %v, want housing transaction", out.Transactions[0].ID)
	}

	out, err = f.uc.Execute(context.Background(), ListTransactionsInput{WorkspaceID: f.workspaceID, Page: 9, Limit: 500})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if out.Pagination.Limit != MaxLimit || len(out.Transactions) != 0 {
		t.Errorf("pagination = %+v, page size %d", out.Pagination, len(out.Transactions))
	}
}

func TestListTransactions_InvalidInput(t *testing.T) {
	f := newListFixture()
	nilID := uuid.Nil

	tests := []struct {
		name  string
		input ListTransactionsInput
		want  error
	}{
		{name: "negative page", input: ListTransactionsInput{WorkspaceID: f.workspaceID, Page: -1}, want: domainerror.ErrInvalidPagination},
		{name: "negative limit", input: ListTransactionsInput{WorkspaceID: f.workspaceID, Limit: -5}, want: domainerror.ErrInvalidPagination},
		{name: "empty category filter", input: ListTransactionsInput{WorkspaceID: f.workspaceID, CategoryID: &nilID}, want: domainerror.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.Execute(context.Background(), tt.input)
			if !errors.Is(err, tt.want) {
				t.Errorf("Execute() error = %v, want %v", err, tt.want)
			}
		})
	}
}
