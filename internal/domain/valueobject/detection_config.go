// Package valueobject contains domain value objects for the bookkeeping engine.
package valueobject

import "time"

// Cadence bands, in mean days between occurrences, both ends inclusive.
const (
	WeeklyMinDays   = 6
	WeeklyMaxDays   = 8
	BiweeklyMinDays = 13
	BiweeklyMaxDays = 16
	MonthlyMinDays  = 25
	MonthlyMaxDays  = 35
)

// DefaultRecurringKeywords are merchant fragments of utility and subscription
// payees whose amounts vary too much for amount bucketing.
var DefaultRecurringKeywords = []string{
	"ELECTRIC",
	"ENERGY",
	"POWER",
	"WATER",
	"UTILITIES",
	"COMCAST",
	"XFINITY",
	"VERIZON",
	"AT T",
	"T MOBILE",
	"SPECTRUM",
	"INTERNET",
	"NETFLIX",
	"SPOTIFY",
	"HULU",
	"INSURANCE",
}

// DetectionConfig contains the tunables of the recurring series detector.
type DetectionConfig struct {
	// Snapshot instant; transactions dated after it are ignored.
	AsOf time.Time

	// Lookback window in calendar months before AsOf.
	LookbackMonths int // 6

	// Amount pass: only outflows at or above MinAmount, grouped into buckets of AmountBucket.
	MinAmount    int64 // 50000 = $500.00 in cents
	AmountBucket int64 // 5000 = $50.00 in cents

	// Keyword pass: merchants containing any keyword, grouped by merchant only.
	Keywords []string

	MinOccurrences int     // 2
	MaxGapCV       float64 // 0.25: gap stddev / mean above this is irregular

	// Fuzzy merge of near-identical merchant keys before grouping.
	MergeSimilarMerchants bool
	MerchantSimilarity    float64 // 0.9
}

// DefaultDetectionConfig returns the default detection configuration as of asOf.
func DefaultDetectionConfig(asOf time.Time) DetectionConfig {
	keywords := make([]string, len(DefaultRecurringKeywords))
	copy(keywords, DefaultRecurringKeywords)

	return DetectionConfig{
		AsOf:                  asOf,
		LookbackMonths:        6,
		MinAmount:             50000,
		AmountBucket:          5000,
		Keywords:              keywords,
		MinOccurrences:        2,
		MaxGapCV:              0.25,
		MergeSimilarMerchants: true,
		MerchantSimilarity:    0.9,
	}
}

// WindowStart returns the first instant inside the lookback window.
func (c DetectionConfig) WindowStart() time.Time {
	return c.AsOf.AddDate(0, -c.LookbackMonths, 0)
}

// InWindow reports whether t falls in [WindowStart, AsOf].
func (c DetectionConfig) InWindow(t time.Time) bool {
	return !t.Before(c.WindowStart()) && !t.After(c.AsOf)
}

// Bucket returns the amount bucket index, rounding to the nearest bucket.
func (c DetectionConfig) Bucket(amount int64) int64 {
	if c.AmountBucket <= 0 {
		return amount
	}
	return (amount + c.AmountBucket/2) / c.AmountBucket
}
