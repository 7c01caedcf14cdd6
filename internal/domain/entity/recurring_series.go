// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Cadence is the detected repetition interval of a series.
type Cadence string

const (
	CadenceWeekly   Cadence = "weekly"
	CadenceBiweekly Cadence = "biweekly"
	CadenceMonthly  Cadence = "monthly"
)

// DetectionPass identifies which grouping produced a series.
type DetectionPass string

const (
	DetectionPassAmount  DetectionPass = "amount"
	DetectionPassKeyword DetectionPass = "keyword"
)

// RecurringSeries is an advisory detected recurring payment.
// It is recomputed on every detection run and never authoritative.
type RecurringSeries struct {
	ID               uuid.UUID
	WorkspaceID      uuid.UUID
	MerchantKey      string
	AmountMin        int64
	AmountMax        int64
	Cadence          Cadence
	Confidence       float64
	OccurrenceCount  int
	FirstSeenDate    time.Time
	LastSeenDate     time.Time
	MeanIntervalDays float64
	NextExpectedDate time.Time
	Pass             DetectionPass
	TransactionIDs   []uuid.UUID
	DetectedAt       time.Time
}
