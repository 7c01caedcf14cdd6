// Package recurring detects recurring payment series in a workspace's
// transaction history. Its output is advisory and recomputed on every run.
package recurring

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/google/uuid"

	"github.com/finance-tracker/bookkeeping/internal/domain/entity"
	"github.com/finance-tracker/bookkeeping/internal/domain/merchant"
	"github.com/finance-tracker/bookkeeping/internal/domain/valueobject"
)

// Confidence weights. Count and regularity only ever push confidence up as
// occurrences grow and down as gaps spread out.
const (
	baseConfidence     = 0.5
	countWeight        = 0.3
	countSaturation    = 5
	regularityWeight   = 0.15
	largeAmountBonus   = 0.05
	minimumOccurrences = 2
	hoursPerDay        = 24.0
	defaultSimilarity  = 0.9
)

// Result is the output of a detection run.
type Result struct {
	Series  []entity.RecurringSeries
	Skipped int
}

type occurrence struct {
	id     uuid.UUID
	date   time.Time
	amount int64
}

type group struct {
	merchant    string
	pass        entity.DetectionPass
	bucket      int64
	occurrences []occurrence
}

// Detect finds recurring series among posted outflows inside the configured
// window. Transactions dated after cfg.AsOf are ignored; malformed ones are
// skipped and counted. The result is deterministic for a given input.
func Detect(transactions []*entity.Transaction, cfg valueobject.DetectionConfig) Result {
	result := Result{}

	eligible := make([]*entity.Transaction, 0, len(transactions))
	for _, tx := range transactions {
		if tx == nil || tx.Amount < 0 || tx.Date.IsZero() {
			result.Skipped++
			continue
		}
		if !tx.IsPostedOutflow() || !cfg.InWindow(tx.Date) {
			continue
		}
		eligible = append(eligible, tx)
	}

	keys := make(map[uuid.UUID]string, len(eligible))
	for _, tx := range eligible {
		keys[tx.ID] = merchant.Key(tx)
	}
	if cfg.MergeSimilarMerchants {
		mergeSimilar(keys, cfg.MerchantSimilarity)
	}

	keywords := canonicalKeywords(cfg.Keywords)
	keywordGroups := make(map[string]*group)
	amountGroups := make(map[string]*group)

	for _, tx := range eligible {
		key := keys[tx.ID]
		occ := occurrence{id: tx.ID, date: tx.Date, amount: tx.Amount}

		if containsKeyword(key, keywords) {
			addTo(keywordGroups, key, key, entity.DetectionPassKeyword, occ)
			continue
		}
		if tx.Amount < cfg.MinAmount {
			continue
		}
		bucket := cfg.Bucket(tx.Amount)
		addTo(amountGroups, bucketKey(key, bucket), key, entity.DetectionPassAmount, occ)
		amountGroups[bucketKey(key, bucket)].bucket = bucket
	}
	amountGroups = joinAdjacentBuckets(amountGroups, cfg.AmountBucket)

	minCount := max(cfg.MinOccurrences, minimumOccurrences)
	for _, groups := range []map[string]*group{keywordGroups, amountGroups} {
		for _, g := range groups {
			if len(g.occurrences) < minCount {
				continue
			}
			if series, ok := analyze(g, cfg); ok {
				result.Series = append(result.Series, series)
			}
		}
	}

	sort.Slice(result.Series, func(i, j int) bool {
		a, b := result.Series[i], result.Series[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if a.MerchantKey != b.MerchantKey {
			return a.MerchantKey < b.MerchantKey
		}
		return a.AmountMin < b.AmountMin
	})

	return result
}

func addTo(groups map[string]*group, groupKey, merchantKey string, pass entity.DetectionPass, occ occurrence) {
	g, ok := groups[groupKey]
	if !ok {
		g = &group{merchant: merchantKey, pass: pass}
		groups[groupKey] = g
	}
	g.occurrences = append(g.occurrences, occ)
}

func bucketKey(merchantKey string, bucket int64) string {
	return merchantKey + "|" + strconv.FormatInt(bucket, 10)
}

// joinAdjacentBuckets merges a merchant's groups in neighbouring buckets while
// their combined amounts stay within one bucket width, so a steady amount
// that wobbles across a bucket edge stays a single series.
func joinAdjacentBuckets(groups map[string]*group, width int64) map[string]*group {
	if width <= 0 {
		return groups
	}

	byMerchant := make(map[string][]*group)
	for _, g := range groups {
		byMerchant[g.merchant] = append(byMerchant[g.merchant], g)
	}

	joined := make(map[string]*group, len(groups))
	for merchantKey, gs := range byMerchant {
		sort.Slice(gs, func(i, j int) bool { return gs[i].bucket < gs[j].bucket })

		current := gs[0]
		for _, next := range gs[1:] {
			if next.bucket == current.bucket+1 && amountSpread(current, next) <= width {
				current.occurrences = append(current.occurrences, next.occurrences...)
				current.bucket = next.bucket
				continue
			}
			joined[bucketKey(merchantKey, current.bucket)] = current
			current = next
		}
		joined[bucketKey(merchantKey, current.bucket)] = current
	}
	return joined
}

func amountSpread(groups ...*group) int64 {
	lowest, highest := int64(math.MaxInt64), int64(math.MinInt64)
	for _, g := range groups {
		for _, o := range g.occurrences {
			lowest = min(lowest, o.amount)
			highest = max(highest, o.amount)
		}
	}
	return highest - lowest
}

// analyze classifies the gaps of a group. Groups whose mean gap falls outside
// every cadence band, or whose gaps vary too much, are irregular.
func analyze(g *group, cfg valueobject.DetectionConfig) (entity.RecurringSeries, bool) {
	occ := g.occurrences
	sort.Slice(occ, func(i, j int) bool {
		if !occ[i].date.Equal(occ[j].date) {
			return occ[i].date.Before(occ[j].date)
		}
		return occ[i].id.String() < occ[j].id.String()
	})

	gaps := make([]float64, 0, len(occ)-1)
	for i := 1; i < len(occ); i++ {
		gaps = append(gaps, occ[i].date.Sub(occ[i-1].date).Hours()/hoursPerDay)
	}

	mean, stddev := meanStddev(gaps)
	if mean <= 0 {
		return entity.RecurringSeries{}, false
	}
	cadence, ok := classifyCadence(mean)
	if !ok {
		return entity.RecurringSeries{}, false
	}
	cv := stddev / mean
	if cv > cfg.MaxGapCV {
		return entity.RecurringSeries{}, false
	}

	amountMin, amountMax, amountTotal := occ[0].amount, occ[0].amount, int64(0)
	ids := make([]uuid.UUID, 0, len(occ))
	for _, o := range occ {
		amountMin = min(amountMin, o.amount)
		amountMax = max(amountMax, o.amount)
		amountTotal += o.amount
		ids = append(ids, o.id)
	}
	meanAmount := amountTotal / int64(len(occ))

	last := occ[len(occ)-1].date
	return entity.RecurringSeries{
		MerchantKey:      g.merchant,
		AmountMin:        amountMin,
		AmountMax:        amountMax,
		Cadence:          cadence,
		Confidence:       confidence(len(occ), cv, cfg.MaxGapCV, meanAmount >= cfg.MinAmount && cfg.MinAmount > 0),
		OccurrenceCount:  len(occ),
		FirstSeenDate:    occ[0].date,
		LastSeenDate:     last,
		MeanIntervalDays: mean,
		NextExpectedDate: last.AddDate(0, 0, int(math.Round(mean))),
		Pass:             g.pass,
		TransactionIDs:   ids,
		DetectedAt:       cfg.AsOf,
	}, true
}

// confidence is non-decreasing in count and non-increasing in cv.
func confidence(count int, cv, maxCV float64, largeAmount bool) float64 {
	countScore := math.Min(1, float64(count-1)/countSaturation)

	regularity := 1.0
	if maxCV > 0 {
		regularity = math.Max(0, 1-cv/maxCV)
	} else if cv > 0 {
		regularity = 0
	}

	c := baseConfidence + countWeight*countScore + regularityWeight*regularity
	if largeAmount {
		c += largeAmountBonus
	}
	return math.Min(c, 1.0)
}

func classifyCadence(meanDays float64) (entity.Cadence, bool) {
	switch {
	case meanDays >= valueobject.WeeklyMinDays && meanDays <= valueobject.WeeklyMaxDays:
		return entity.CadenceWeekly, true
	case meanDays >= valueobject.BiweeklyMinDays && meanDays <= valueobject.BiweeklyMaxDays:
		return entity.CadenceBiweekly, true
	case meanDays >= valueobject.MonthlyMinDays && meanDays <= valueobject.MonthlyMaxDays:
		return entity.CadenceMonthly, true
	default:
		return "", false
	}
}

func meanStddev(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var sq float64
	for _, v := range values {
		sq += (v - mean) * (v - mean)
	}
	return mean, math.Sqrt(sq / float64(len(values)))
}

// mergeSimilar rewrites near-identical merchant keys onto one representative.
// Keys are visited in sorted order so the representative is stable.
func mergeSimilar(keys map[uuid.UUID]string, threshold float64) {
	if threshold <= 0 || threshold > 1 {
		threshold = defaultSimilarity
	}

	unique := make(map[string]struct{})
	for _, k := range keys {
		unique[k] = struct{}{}
	}
	sorted := make([]string, 0, len(unique))
	for k := range unique {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	canonical := make(map[string]string, len(sorted))
	reps := make([]string, 0, len(sorted))
	for _, k := range sorted {
		canonical[k] = k
		for _, rep := range reps {
			if similarity(k, rep) >= threshold {
				canonical[k] = rep
				break
			}
		}
		if canonical[k] == k {
			reps = append(reps, k)
		}
	}

	for id, k := range keys {
		keys[id] = canonical[k]
	}
}

func similarity(a, b string) float64 {
	longest := max(len(a), len(b))
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

func canonicalKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if c := merchant.Canonicalize(kw); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// containsKeyword matches whole tokens so "AT T" does not match "CAT TOYS".
func containsKeyword(key string, keywords []string) bool {
	padded := " " + key + " "
	for _, kw := range keywords {
		if strings.Contains(padded, " "+kw+" ") {
			return true
		}
	}
	return false
}

