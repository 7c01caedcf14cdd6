package steps

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cucumber/godog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finance-tracker/bookkeeping/internal/domain/entity"
	"github.com/finance-tracker/bookkeeping/internal/domain/merchant"
	"github.com/finance-tracker/bookkeeping/internal/integration/persistence/model"
	"github.com/finance-tracker/bookkeeping/test/integration/mock"
)

// registerDataSteps registers steps that arrange and inspect stored state.
func registerDataSteps(ctx *godog.ScenarioContext) {
	ctx.Step(`^the default categories are seeded$`, theDefaultCategoriesAreSeeded)
	ctx.Step(`^the following transactions exist:$`, theFollowingTransactionsExist)
	ctx.Step(`^a budget line for "([^"]*)" of "([^"]*)" in group "([^"]*)"$`, aBudgetLineFor)
	ctx.Step(`^the classifier places "([^"]*)" in "([^"]*)" with confidence ([\d.]+)$`, theClassifierPlaces)
	ctx.Step(`^the classifier fails with status (\d+)$`, theClassifierFailsWithStatus)
	ctx.Step(`^the classifier should have been called (\d+) times?$`, theClassifierShouldHaveBeenCalled)
	ctx.Step(`^the table "([^"]*)" should contain (\d+) rows?$`, theTableShouldContainRows)
	ctx.Step(`^the learning store should record (\d+) hits? for merchant "([^"]*)"$`, theLearningStoreShouldRecordHits)
	ctx.Step(`^the category cache should be populated$`, theCategoryCacheShouldBePopulated)
}

func theDefaultCategoriesAreSeeded(ctx context.Context) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	if err := tc.send(http.MethodPost, "/api/v1/categories/seed", nil); err != nil {
		return err
	}
	if tc.response.StatusCode != http.StatusOK {
		return fmt.Errorf("seeding failed with status %d: %s", tc.response.StatusCode, string(tc.responseBody))
	}
	return nil
}

// theFollowingTransactionsExist inserts posted transactions. Columns: alias,
// merchant, amount (major units), direction, date, and optionally description
// and provider_code.
func theFollowingTransactionsExist(ctx context.Context, table *godog.Table) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	if len(table.Rows) < 2 {
		return fmt.Errorf("transactions table needs a header and at least one row")
	}

	header := make(map[string]int)
	for i, cell := range table.Rows[0].Cells {
		header[cell.Value] = i
	}

	for _, r := range table.Rows[1:] {
		values := make([]string, len(r.Cells))
		for i, c := range r.Cells {
			values[i] = strings.TrimSpace(c.Value)
		}
		cell := func(name string) string {
			i, ok := header[name]
			if !ok || i >= len(values) {
				return ""
			}
			return values[i]
		}

		alias := cell("alias")
		merchantName := cell("merchant")

		amount, err := decimal.NewFromString(cell("amount"))
		if err != nil {
			return fmt.Errorf("transaction %s: invalid amount: %w", alias, err)
		}
		date, err := time.Parse(time.DateOnly, cell("date"))
		if err != nil {
			return fmt.Errorf("transaction %s: invalid date: %w", alias, err)
		}
		direction := entity.DirectionOutflow
		if d := cell("direction"); d != "" {
			direction = entity.Direction(d)
		}
		description := cell("description")
		if description == "" {
			description = "card purchase"
		}

		tx := entity.NewTransaction(tc.workspaceID, date, amount.Shift(2).IntPart(), direction, &merchantName, description)
		if code := cell("provider_code"); code != "" {
			tx.ProviderCategory = entity.ProviderCategory{Code: code, Confidence: 0.8}
		}
		if err := tc.db.DbConn.Create(model.TransactionFromEntity(tx)).Error; err != nil {
			return fmt.Errorf("failed to insert transaction %s: %w", alias, err)
		}
		if alias != "" {
			tc.transactions[alias] = tx.ID
		}
	}
	return nil
}

func aBudgetLineFor(ctx context.Context, categoryPath, budgeted, groupName string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}

	categoryID, err := tc.categoryID(categoryPath)
	if err != nil {
		return err
	}
	amount, err := decimal.NewFromString(budgeted)
	if err != nil {
		return fmt.Errorf("invalid budgeted amount: %w", err)
	}

	now := time.Now().UTC()
	groupID, ok := tc.budgetGroups[groupName]
	if !ok {
		groupID = uuid.New()
		group := &model.BudgetGroupModel{
			ID:          groupID,
			WorkspaceID: tc.workspaceID,
			Name:        groupName,
			CreatedAt:   now,
		}
		if err := tc.db.DbConn.Create(group).Error; err != nil {
			return fmt.Errorf("failed to insert budget group: %w", err)
		}
		tc.budgetGroups[groupName] = groupID
	}

	line := entity.BudgetLine{
		ID:          uuid.New(),
		WorkspaceID: tc.workspaceID,
		GroupID:     &groupID,
		CategoryID:  categoryID,
		Budgeted:    amount.Shift(2).IntPart(),
		UpdatedAt:   now,
	}
	if err := tc.db.DbConn.Create(model.BudgetLineFromEntity(line)).Error; err != nil {
		return fmt.Errorf("failed to insert budget line: %w", err)
	}
	tc.budgetLines[categoryPath] = line.ID
	return nil
}

// theClassifierPlaces adds an answer to the canned Gemini response.
func theClassifierPlaces(ctx context.Context, alias, categoryPath, confidence string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}

	txID, ok := tc.transactions[alias]
	if !ok {
		return fmt.Errorf("unknown transaction %q", alias)
	}
	categoryID, err := tc.categoryID(categoryPath)
	if err != nil {
		return err
	}
	value, err := strconv.ParseFloat(confidence, 64)
	if err != nil {
		return fmt.Errorf("invalid confidence: %w", err)
	}

	tc.classifications = append(tc.classifications, map[string]any{
		"transaction_id": txID.String(),
		"category_id":    categoryID.String(),
		"confidence":     value,
		"reasoning":      "matched by test",
	})

	text, err := json.Marshal(tc.classifications)
	if err != nil {
		return err
	}
	tc.gemini.SetResponse(-1, http.MethodPost, geminiPath, http.StatusOK, geminiResponse(string(text)))
	return nil
}

func theClassifierFailsWithStatus(ctx context.Context, status int) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	tc.gemini.SetResponse(-1, http.MethodPost, geminiPath, status, map[string]any{
		"error": map[string]any{
			"code":    status,
			"message": "classifier unavailable",
			"status":  "UNAVAILABLE",
		},
	})
	return nil
}

func theClassifierShouldHaveBeenCalled(ctx context.Context, times int) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	if got := tc.gemini.RequestCount(http.MethodPost, geminiPath); got != times {
		return fmt.Errorf("classifier called %d times, want %d", got, times)
	}
	return nil
}

func theTableShouldContainRows(ctx context.Context, table string, quantity int) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	count, err := tc.db.Count(table)
	if err != nil {
		return err
	}
	if count != int64(quantity) {
		return fmt.Errorf("table %s has %d rows, want %d", table, count, quantity)
	}
	return nil
}

// theLearningStoreShouldRecordHits polls because corrections are recorded
// asynchronously.
func theLearningStoreShouldRecordHits(ctx context.Context, hits int, merchantName string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}

	key := merchant.Normalize(merchantName)
	deadline := time.Now().Add(3 * time.Second)
	var total int64
	for {
		err := tc.db.DbConn.Model(&model.MerchantCategoryStatModel{}).
			Where("workspace_id = ? AND merchant_key = ?", tc.workspaceID, key).
			Select("COALESCE(SUM(hit_count), 0)").
			Scan(&total).Error
		if err != nil {
			return err
		}
		if total == int64(hits) {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("merchant %s has %d learned hits, want %d", key, total, hits)
		}
		time.Sleep(50 * time.Millisecond)
	}
}

func theCategoryCacheShouldBePopulated(ctx context.Context) error {
	if keys := mock.RedisKeys("bookkeeping:categories:*"); len(keys) == 0 {
		return fmt.Errorf("no category cache entries found")
	}
	return nil
}

// categoryID resolves "Parent" or "Parent > Child" to a live category of the
// scenario's workspace.
func (tc *TestContext) categoryID(path string) (uuid.UUID, error) {
	names := strings.Split(path, ">")
	for i := range names {
		names[i] = strings.TrimSpace(names[i])
	}

	var parent model.CategoryModel
	err := tc.db.DbConn.
		Where("workspace_id = ? AND parent_id IS NULL AND name = ?", tc.workspaceID, names[0]).
		First(&parent).Error
	if err != nil {
		return uuid.Nil, fmt.Errorf("category %q not found: %w", names[0], err)
	}
	if len(names) == 1 {
		return parent.ID, nil
	}

	var child model.CategoryModel
	err = tc.db.DbConn.
		Where("workspace_id = ? AND parent_id = ? AND name = ?", tc.workspaceID, parent.ID, names[1]).
		First(&child).Error
	if err != nil {
		return uuid.Nil, fmt.Errorf("category %q not found: %w", path, err)
	}
	return child.ID, nil
}

// geminiResponse wraps text in the generateContent response envelope.
func geminiResponse(text string) map[string]any {
	return map[string]any{
		"candidates": []any{
			map[string]any{
				"content": map[string]any{
					"role":  "model",
					"parts": []any{map[string]any{"text": text}},
				},
				"finishReason": "STOP",
				"index":        0,
			},
		},
	}
}
