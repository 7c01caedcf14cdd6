package resolver

import (
	"testing"

	"github.com/google/uuid"

	"github.com/finance-tracker/bookkeeping/internal/domain/entity"
)

func TestMatchesCategoryFilter(t *testing.T) {
	tr := newTree(t)
	deleted := uuid.New()

	withUser := func(primary, secondary *uuid.UUID) *entity.Transaction {
		tx := newTransaction()
		tx.UserCategory = entity.UserCategory{PrimaryID: primary, SecondaryID: secondary}
		return tx
	}
	withAI := func(primary, secondary *uuid.UUID) *entity.Transaction {
		tx := newTransaction()
		tx.AICategory = entity.AICategory{PrimaryID: primary, SecondaryID: secondary}
		return tx
	}

	tests := []struct {
		name   string
		tx     *entity.Transaction
		filter uuid.UUID
		want   bool
	}{
		{name: "root matches grandchild", tx: withUser(&tr.housing, &tr.rent), filter: tr.living, want: true},
		{name: "root matches child", tx: withUser(&tr.living, &tr.utilities), filter: tr.living, want: true},
		{name: "root matches itself", tx: withUser(&tr.living, nil), filter: tr.living, want: true},
		{name: "middle matches child", tx: withUser(&tr.housing, &tr.rent), filter: tr.housing, want: true},
		{name: "middle matches itself", tx: withUser(&tr.living, &tr.housing), filter: tr.housing, want: true},
		{name: "middle skips sibling", tx: withUser(&tr.living, &tr.utilities), filter: tr.housing, want: false},
		{name: "leaf matches itself", tx: withUser(&tr.housing, &tr.rent), filter: tr.rent, want: true},
		{name: "leaf skips parent", tx: withUser(&tr.living, &tr.housing), filter: tr.rent, want: false},
		{name: "other tree", tx: withAI(&tr.food, &tr.groceries), filter: tr.living, want: false},
		{name: "ai slot used when user empty", tx: withAI(&tr.food, &tr.groceries), filter: tr.food, want: true},
		{name: "user slot wins over ai", tx: func() *entity.Transaction {
			tx := withAI(&tr.food, &tr.groceries)
			tx.UserCategory = entity.UserCategory{PrimaryID: &tr.housing, SecondaryID: &tr.rent}
			return tx
		}(), filter: tr.food, want: false},
		{name: "uncategorized never matches", tx: newTransaction(), filter: tr.living, want: false},
		{name: "deleted category matches only itself", tx: withUser(&deleted, nil), filter: tr.living, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchesCategoryFilter(tt.tx, tt.filter, tr.tax); got != tt.want {
				t.Errorf("MatchesCategoryFilter() = %v, want %v", got, tt.want)
			}
		})
	}
}
