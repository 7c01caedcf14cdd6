package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/finance-tracker/bookkeeping/internal/domain/entity"
)

// RecurringSeriesModel represents the recurring_series table in the database.
// Rows are replaced wholesale by every detection run.
type RecurringSeriesModel struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey"`
	WorkspaceID      uuid.UUID      `gorm:"type:uuid;not null;index"`
	MerchantKey      string         `gorm:"type:varchar(255);not null"`
	AmountMin        int64          `gorm:"type:bigint;not null"`
	AmountMax        int64          `gorm:"type:bigint;not null"`
	Cadence          string         `gorm:"type:varchar(10);not null"`
	Confidence       float64        `gorm:"not null"`
	OccurrenceCount  int            `gorm:"not null"`
	FirstSeenDate    time.Time      `gorm:"type:date;not null"`
	LastSeenDate     time.Time      `gorm:"type:date;not null"`
	MeanIntervalDays float64        `gorm:"not null"`
	NextExpectedDate time.Time      `gorm:"type:date;not null"`
	Pass             string         `gorm:"type:varchar(10);not null"`
	TransactionIDs   pq.StringArray `gorm:"type:uuid[]"`
	DetectedAt       time.Time      `gorm:"not null"`
}

// TableName returns the table name for the RecurringSeriesModel.
func (RecurringSeriesModel) TableName() string {
	return "recurring_series"
}

// ToEntity converts a RecurringSeriesModel to a domain RecurringSeries entity.
// Malformed stored ids are dropped.
func (m *RecurringSeriesModel) ToEntity() entity.RecurringSeries {
	ids := make([]uuid.UUID, 0, len(m.TransactionIDs))
	for _, raw := range m.TransactionIDs {
		if id, err := uuid.Parse(raw); err == nil {
			ids = append(ids, id)
		}
	}

	return entity.RecurringSeries{
		ID:               m.ID,
		WorkspaceID:      m.WorkspaceID,
		MerchantKey:      m.MerchantKey,
		AmountMin:        m.AmountMin,
		AmountMax:        m.AmountMax,
		Cadence:          entity.Cadence(m.Cadence),
		Confidence:       m.Confidence,
		OccurrenceCount:  m.OccurrenceCount,
		FirstSeenDate:    m.FirstSeenDate,
		LastSeenDate:     m.LastSeenDate,
		MeanIntervalDays: m.MeanIntervalDays,
		NextExpectedDate: m.NextExpectedDate,
		Pass:             entity.DetectionPass(m.Pass),
		TransactionIDs:   ids,
		DetectedAt:       m.DetectedAt,
	}
}

// RecurringSeriesFromEntity creates a RecurringSeriesModel from a domain RecurringSeries entity.
func RecurringSeriesFromEntity(series entity.RecurringSeries) *RecurringSeriesModel {
	ids := make(pq.StringArray, len(series.TransactionIDs))
	for i, id := range series.TransactionIDs {
		ids[i] = id.String()
	}

	return &RecurringSeriesModel{
		ID:               series.ID,
		WorkspaceID:      series.WorkspaceID,
		MerchantKey:      series.MerchantKey,
		AmountMin:        series.AmountMin,
		AmountMax:        series.AmountMax,
		Cadence:          string(series.Cadence),
		Confidence:       series.Confidence,
		OccurrenceCount:  series.OccurrenceCount,
		FirstSeenDate:    series.FirstSeenDate,
		LastSeenDate:     series.LastSeenDate,
		MeanIntervalDays: series.MeanIntervalDays,
		NextExpectedDate: series.NextExpectedDate,
		Pass:             string(series.Pass),
		TransactionIDs:   ids,
		DetectedAt:       series.DetectedAt,
	}
}
