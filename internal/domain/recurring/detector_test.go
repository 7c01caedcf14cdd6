package recurring

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/finance-tracker/bookkeeping/internal/domain/entity"
	"github.com/finance-tracker/bookkeeping/internal/domain/valueobject"
)

var asOf = time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)

func outflow(merchantName string, date time.Time, amount int64) *entity.Transaction {
	name := merchantName
	return &entity.Transaction{
		ID:           uuid.New(),
		Date:         date,
		Amount:       amount,
		Direction:    entity.DirectionOutflow,
		Status:       entity.TransactionStatusPosted,
		MerchantName: &name,
	}
}

func day(month time.Month, d int) time.Time {
	return time.Date(2026, month, d, 0, 0, 0, 0, time.UTC)
}

func monthlyRent(amounts ...int64) []*entity.Transaction {
	txs := make([]*entity.Transaction, 0, len(amounts))
	for i, amount := range amounts {
		txs = append(txs, outflow("Acme Property Mgmt", day(time.Month(i+1), 1), amount))
	}
	return txs
}

func TestDetect_MonthlyRent(t *testing.T) {
	txs := monthlyRent(120000, 120000, 120000, 120000, 120000, 120000)

	got := Detect(txs, valueobject.DefaultDetectionConfig(asOf))
	if len(got.Series) != 1 {
		t.Fatalf("Detect() series = %d, want 1: %+v", len(got.Series), got.Series)
	}

	s := got.Series[0]
	if s.MerchantKey != "ACME PROPERTY MGMT" {
		t.Errorf("MerchantKey = %q", s.MerchantKey)
	}
	if s.Cadence != entity.CadenceMonthly {
		t.Errorf("Cadence = %v, want monthly", s.Cadence)
	}
	if s.Confidence < 0.8 {
		t.Errorf("Confidence = %v, want >= 0.8", s.Confidence)
	}
	if s.OccurrenceCount != 6 || s.AmountMin != 120000 || s.AmountMax != 120000 {
		t.Errorf("series = %+v", s)
	}
	if !s.LastSeenDate.Equal(day(time.June, 1)) || !s.FirstSeenDate.Equal(day(time.January, 1)) {
		t.Errorf("seen dates = %v .. %v", s.FirstSeenDate, s.LastSeenDate)
	}
	if s.Pass != entity.DetectionPassAmount {
		t.Errorf("Pass = %v, want amount", s.Pass)
	}
	if s.NextExpectedDate.Before(day(time.June, 25)) || s.NextExpectedDate.After(day(time.July, 5)) {
		t.Errorf("NextExpectedDate = %v", s.NextExpectedDate)
	}
}

func TestDetect_IrregularIsOmitted(t *testing.T) {
	txs := []*entity.Transaction{
		outflow("Acme Property Mgmt", day(time.January, 3), 120000),
		outflow("Acme Property Mgmt", day(time.January, 20), 5000),
		outflow("Acme Property Mgmt", day(time.February, 20), 120000),
		outflow("Acme Property Mgmt", day(time.March, 5), 90000),
		outflow("Acme Property Mgmt", day(time.April, 1), 120000),
	}

	got := Detect(txs, valueobject.DefaultDetectionConfig(asOf))
	for _, s := range got.Series {
		if s.Cadence == entity.CadenceMonthly && s.Confidence >= 0.8 {
			t.Errorf("irregular history produced %+v", s)
		}
	}
	if len(got.Series) != 0 {
		t.Errorf("Detect() series = %+v, want none", got.Series)
	}
}

func TestDetect_BucketWidths(t *testing.T) {
	amounts := []int64{120000, 119500, 121000, 120400, 119900, 120100}

	for _, width := range []int64{2500, 5000, 10000} {
		cfg := valueobject.DefaultDetectionConfig(asOf)
		cfg.AmountBucket = width

		got := Detect(monthlyRent(amounts...), cfg)
		if len(got.Series) != 1 {
			t.Errorf("width %d: series = %d, want 1", width, len(got.Series))
			continue
		}
		s := got.Series[0]
		if s.AmountMin != 119500 || s.AmountMax != 121000 || s.OccurrenceCount != 6 {
			t.Errorf("width %d: series = %+v", width, s)
		}
	}
}

func TestDetect_AmountAcrossBucketEdge(t *testing.T) {
	cfg := valueobject.DefaultDetectionConfig(asOf)
	if cfg.Bucket(122400) == cfg.Bucket(122600) {
		t.Fatalf("amounts share bucket %d, want neighbouring buckets", cfg.Bucket(122400))
	}

	got := Detect(monthlyRent(122400, 122600, 122400, 122600, 122400, 122600), cfg)
	if len(got.Series) != 1 {
		t.Fatalf("Detect() series = %d, want 1: %+v", len(got.Series), got.Series)
	}
	s := got.Series[0]
	if s.OccurrenceCount != 6 || s.AmountMin != 122400 || s.AmountMax != 122600 || s.Cadence != entity.CadenceMonthly {
		t.Errorf("series = %+v", s)
	}
}

func TestDetect_DistinctAmountsInNeighbouringBuckets(t *testing.T) {
	var txs []*entity.Transaction
	for m := time.January; m <= time.March; m++ {
		txs = append(txs,
			outflow("Acme Property Mgmt", day(m, 1), 120000),
			outflow("Acme Property Mgmt", day(m, 15), 127000),
		)
	}

	got := Detect(txs, valueobject.DefaultDetectionConfig(asOf))
	if len(got.Series) != 2 {
		t.Fatalf("Detect() series = %d, want 2: %+v", len(got.Series), got.Series)
	}
	for _, s := range got.Series {
		if s.AmountMin != s.AmountMax || s.OccurrenceCount != 3 {
			t.Errorf("series mixes amounts: %+v", s)
		}
	}
}

func TestDetect_Cadences(t *testing.T) {
	start := day(time.February, 2)

	tests := []struct {
		name     string
		merchant string
		every    int
		count    int
		amount   int64
		want     entity.Cadence
	}{
		{name: "weekly", merchant: "Little Sprouts Daycare", every: 7, count: 10, amount: 60000, want: entity.CadenceWeekly},
		{name: "biweekly", merchant: "Little Sprouts Daycare", every: 14, count: 8, amount: 60000, want: entity.CadenceBiweekly},
		{name: "monthly by days", merchant: "Little Sprouts Daycare", every: 30, count: 4, amount: 60000, want: entity.CadenceMonthly},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txs := make([]*entity.Transaction, 0, tt.count)
			for i := 0; i < tt.count; i++ {
				txs = append(txs, outflow(tt.merchant, start.AddDate(0, 0, i*tt.every), tt.amount))
			}

			got := Detect(txs, valueobject.DefaultDetectionConfig(asOf))
			if len(got.Series) != 1 {
				t.Fatalf("series = %d, want 1", len(got.Series))
			}
			if got.Series[0].Cadence != tt.want {
				t.Errorf("Cadence = %v, want %v", got.Series[0].Cadence, tt.want)
			}
		})
	}
}

func TestDetect_KeywordPassIgnoresAmountThreshold(t *testing.T) {
	amounts := []int64{4512, 5230, 6100, 4875, 3990}
	txs := make([]*entity.Transaction, 0, len(amounts))
	for i, amount := range amounts {
		txs = append(txs, outflow("CITY WATER DEPT 03-14-2026", day(time.Month(i+1), 14), amount))
	}

	got := Detect(txs, valueobject.DefaultDetectionConfig(asOf))
	if len(got.Series) != 1 {
		t.Fatalf("series = %d, want 1", len(got.Series))
	}
	s := got.Series[0]
	if s.Pass != entity.DetectionPassKeyword || s.Cadence != entity.CadenceMonthly {
		t.Errorf("series = %+v", s)
	}
	if s.AmountMin != 3990 || s.AmountMax != 6100 {
		t.Errorf("amount range = %d..%d", s.AmountMin, s.AmountMax)
	}
}

func TestDetect_KeywordsMatchWholeTokens(t *testing.T) {
	var txs []*entity.Transaction
	for i := 0; i < 4; i++ {
		txs = append(txs, outflow("Cat Toys Emporium", day(time.Month(i+1), 10), 2500))
	}

	got := Detect(txs, valueobject.DefaultDetectionConfig(asOf))
	if len(got.Series) != 0 {
		t.Errorf("small non-keyword merchant produced %+v", got.Series)
	}
}

func TestDetect_ConfidenceMonotoneInCount(t *testing.T) {
	previous := 0.0
	for count := 2; count <= 9; count++ {
		txs := make([]*entity.Transaction, 0, count)
		for i := 0; i < count; i++ {
			txs = append(txs, outflow("Little Sprouts Daycare", day(time.March, 1).AddDate(0, 0, 7*i), 60000))
		}

		got := Detect(txs, valueobject.DefaultDetectionConfig(asOf))
		if len(got.Series) != 1 {
			t.Fatalf("count %d: series = %d, want 1", count, len(got.Series))
		}
		c := got.Series[0].Confidence
		if c < previous {
			t.Errorf("count %d: confidence %v dropped below %v", count, c, previous)
		}
		previous = c
	}
}

func TestDetect_ConfidenceMonotoneInVariance(t *testing.T) {
	jitters := []int{0, 1, 2}
	previous := 1.1
	for _, jitter := range jitters {
		offsets := []int{0, 14 + jitter, 28 - jitter, 42 + jitter, 56 - jitter, 70}
		txs := make([]*entity.Transaction, 0, len(offsets))
		for _, off := range offsets {
			txs = append(txs, outflow("Little Sprouts Daycare", day(time.February, 1).AddDate(0, 0, off), 60000))
		}

		got := Detect(txs, valueobject.DefaultDetectionConfig(asOf))
		if len(got.Series) != 1 {
			t.Fatalf("jitter %d: series = %d, want 1", jitter, len(got.Series))
		}
		c := got.Series[0].Confidence
		if c > previous {
			t.Errorf("jitter %d: confidence %v rose above %v", jitter, c, previous)
		}
		previous = c
	}
}

func TestDetect_WindowAndSnapshot(t *testing.T) {
	txs := monthlyRent(120000, 120000, 120000, 120000, 120000, 120000)
	txs = append(txs,
		outflow("Acme Property Mgmt", day(time.July, 1), 120000),
		outflow("Acme Property Mgmt", time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC), 120000),
	)

	got := Detect(txs, valueobject.DefaultDetectionConfig(asOf))
	if len(got.Series) != 1 || got.Series[0].OccurrenceCount != 6 {
		t.Fatalf("series = %+v, want one series of 6", got.Series)
	}
}

func TestDetect_IneligibleAndMalformed(t *testing.T) {
	txs := monthlyRent(120000, 120000, 120000)

	pending := outflow("Acme Property Mgmt", day(time.April, 1), 120000)
	pending.Status = entity.TransactionStatusPending
	inflow := outflow("Acme Property Mgmt", day(time.May, 1), 120000)
	inflow.Direction = entity.DirectionInflow
	negative := outflow("Acme Property Mgmt", day(time.June, 1), -120000)
	undated := outflow("Acme Property Mgmt", time.Time{}, 120000)

	txs = append(txs, pending, inflow, negative, undated, nil)

	got := Detect(txs, valueobject.DefaultDetectionConfig(asOf))
	if got.Skipped != 3 {
		t.Errorf("Skipped = %d, want 3", got.Skipped)
	}
	if len(got.Series) != 1 || got.Series[0].OccurrenceCount != 3 {
		t.Errorf("series = %+v, want one series of 3", got.Series)
	}
}

func TestDetect_MergesNearDuplicateMerchants(t *testing.T) {
	names := []string{"Acme Property Mgmt", "Acme Property Mgt", "Acme Property Mgmt", "Acme Property Mgt", "Acme Property Mgmt", "Acme Property Mgt"}
	txs := make([]*entity.Transaction, 0, len(names))
	for i, name := range names {
		txs = append(txs, outflow(name, day(time.Month(i+1), 1), 120000))
	}

	cfg := valueobject.DefaultDetectionConfig(asOf)
	got := Detect(txs, cfg)
	if len(got.Series) != 1 || got.Series[0].OccurrenceCount != 6 {
		t.Errorf("merged: series = %+v, want one series of 6", got.Series)
	}

	cfg.MergeSimilarMerchants = false
	got = Detect(txs, cfg)
	if len(got.Series) != 0 {
		t.Errorf("unmerged: series = %+v, want none", got.Series)
	}
}

func TestDetect_Deterministic(t *testing.T) {
	txs := monthlyRent(120000, 120000, 120000, 120000)
	for i := 0; i < 4; i++ {
		txs = append(txs, outflow("Little Sprouts Daycare", day(time.March, 2).AddDate(0, 0, 14*i), 60000))
	}
	cfg := valueobject.DefaultDetectionConfig(asOf)

	first := Detect(txs, cfg)
	reversed := make([]*entity.Transaction, len(txs))
	for i, tx := range txs {
		reversed[len(txs)-1-i] = tx
	}
	second := Detect(reversed, cfg)

	if len(first.Series) != 2 || len(second.Series) != 2 {
		t.Fatalf("series counts = %d, %d, want 2", len(first.Series), len(second.Series))
	}
	for i := range first.Series {
		a, b := first.Series[i], second.Series[i]
		if a.MerchantKey != b.MerchantKey || a.Confidence != b.Confidence || a.Cadence != b.Cadence {
			t.Errorf("series %d differs: %+v vs %+v", i, a, b)
		}
	}
}
