package dto

import (
	"time"

	"github.com/finance-tracker/bookkeeping/internal/application/usecase/recurring"
)

// RecurringSeriesResponse represents a detected recurring series in API responses.
type RecurringSeriesResponse struct {
	ID               string    `json:"id"`
	MerchantKey      string    `json:"merchant_key"`
	AmountMin        string    `json:"amount_min"`
	AmountMax        string    `json:"amount_max"`
	Cadence          string    `json:"cadence"`
	Confidence       float64   `json:"confidence"`
	OccurrenceCount  int       `json:"occurrence_count"`
	FirstSeenDate    string    `json:"first_seen_date"`
	LastSeenDate     string    `json:"last_seen_date"`
	NextExpectedDate string    `json:"next_expected_date"`
	Pass             string    `json:"pass"`
	DetectedAt       time.Time `json:"detected_at"`
}

// RecurringSeriesListResponse represents the response for listing series.
type RecurringSeriesListResponse struct {
	Series []RecurringSeriesResponse `json:"series"`
}

// DetectRecurringResponse represents the result of a detection run.
type DetectRecurringResponse struct {
	Series      []RecurringSeriesResponse `json:"series"`
	Scanned     int                       `json:"scanned"`
	Skipped     int                       `json:"skipped"`
	WindowStart string                    `json:"window_start"`
	WindowEnd   string                    `json:"window_end"`
}

// ToRecurringSeriesResponse converts a SeriesOutput to a RecurringSeriesResponse DTO.
func ToRecurringSeriesResponse(output *recurring.SeriesOutput) RecurringSeriesResponse {
	return RecurringSeriesResponse{
		ID:               output.ID.String(),
		MerchantKey:      output.MerchantKey,
		AmountMin:        formatMinorUnits(output.AmountMin),
		AmountMax:        formatMinorUnits(output.AmountMax),
		Cadence:          string(output.Cadence),
		Confidence:       output.Confidence,
		OccurrenceCount:  output.OccurrenceCount,
		FirstSeenDate:    output.FirstSeenDate.Format("2006-01-02"),
		LastSeenDate:     output.LastSeenDate.Format("2006-01-02"),
		NextExpectedDate: output.NextExpectedDate.Format("2006-01-02"),
		Pass:             string(output.Pass),
		DetectedAt:       output.DetectedAt,
	}
}

func toRecurringSeriesResponses(outputs []*recurring.SeriesOutput) []RecurringSeriesResponse {
	series := make([]RecurringSeriesResponse, len(outputs))
	for i, output := range outputs {
		series[i] = ToRecurringSeriesResponse(output)
	}
	return series
}

// ToRecurringSeriesListResponse converts a ListRecurringSeriesOutput to its response DTO.
func ToRecurringSeriesListResponse(output *recurring.ListRecurringSeriesOutput) RecurringSeriesListResponse {
	return RecurringSeriesListResponse{
		Series: toRecurringSeriesResponses(output.Series),
	}
}

// ToDetectRecurringResponse converts a DetectRecurringSeriesOutput to its response DTO.
func ToDetectRecurringResponse(output *recurring.DetectRecurringSeriesOutput) DetectRecurringResponse {
	return DetectRecurringResponse{
		Series:      toRecurringSeriesResponses(output.Series),
		Scanned:     output.Scanned,
		Skipped:     output.Skipped,
		WindowStart: output.WindowStart.Format("2006-01-02"),
		WindowEnd:   output.WindowEnd.Format("2006-01-02"),
	}
}
