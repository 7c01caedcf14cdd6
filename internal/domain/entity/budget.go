// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BudgetStatus represents how a line or group is tracking against its budget.
type BudgetStatus string

const (
	BudgetStatusOnTrack   BudgetStatus = "on_track"
	BudgetStatusNearLimit BudgetStatus = "near_limit"
	BudgetStatusOver      BudgetStatus = "over_budget"
)

// BudgetPeriod is the inclusive date range a budget covers.
type BudgetPeriod struct {
	ID          uuid.UUID
	WorkspaceID uuid.UUID
	Start       time.Time
	End         time.Time
}

// Contains reports whether t falls inside the period, both ends inclusive.
func (p BudgetPeriod) Contains(t time.Time) bool {
	return !t.Before(p.Start) && !t.After(p.End)
}

// BudgetGroup groups budget lines for roll-up reporting.
type BudgetGroup struct {
	ID          uuid.UUID
	WorkspaceID uuid.UUID
	Name        string
}

// BudgetLine is a budgeted amount for one category.
// Spent and Remaining are derived and overwritten on every recomputation.
type BudgetLine struct {
	ID          uuid.UUID
	WorkspaceID uuid.UUID
	GroupID     *uuid.UUID
	CategoryID  uuid.UUID
	Budgeted    int64
	Spent       int64
	Remaining   int64
	UpdatedAt   time.Time
}

// BudgetOverride assigns a transaction to a line irrespective of its category.
type BudgetOverride struct {
	TransactionID uuid.UUID
	BudgetLineID  uuid.UUID
	WorkspaceID   uuid.UUID
	CreatedAt     time.Time
}

// LinePerformance is the computed state of a budget line for a period.
type LinePerformance struct {
	LineID           uuid.UUID
	GroupID          *uuid.UUID
	CategoryID       uuid.UUID
	Budgeted         int64
	Spent            int64
	Remaining        int64
	PercentageUsed   decimal.Decimal
	Status           BudgetStatus
	Unbudgeted       bool
	CategoryMissing  bool
	TransactionCount int
}

// GroupPerformance rolls up the lines of a budget group.
type GroupPerformance struct {
	GroupID        uuid.UUID
	Name           string
	Budgeted       int64
	Spent          int64
	Remaining      int64
	PercentageUsed decimal.Decimal
	Status         BudgetStatus
	Lines          []LinePerformance
}

// BudgetPerformance is the full result of a budget aggregation.
type BudgetPerformance struct {
	Period          BudgetPeriod
	Lines           []LinePerformance
	Groups          []GroupPerformance
	TotalBudgeted   int64
	TotalSpent      int64
	TotalRemaining  int64
	UnassignedSpent int64
	Skipped         int
	StaleOverrides  int
	LineErrors      map[uuid.UUID]error
}
