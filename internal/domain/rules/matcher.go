package rules

import (
	"strings"

	"github.com/google/uuid"

	"github.com/finance-tracker/bookkeeping/internal/domain/entity"
	"github.com/finance-tracker/bookkeeping/internal/domain/merchant"
)

// Input is what the matcher looks at for one transaction.
type Input struct {
	Merchant     string // normalized merchant key
	Amount       int64  // minor units, non-negative
	ProviderCode string
}

// Match is the category the matcher assigned, expressed as taxonomy names.
type Match struct {
	Parent     string
	Child      string
	Confidence float64
	Method     entity.CategorizationMethod
	RuleID     uuid.UUID
	RuleName   string
}

// IsDefault reports whether nothing more specific than the fallback matched.
func (m Match) IsDefault() bool {
	return m.Method == entity.MethodDefault
}

// DefaultMatch is the result when neither a rule nor a provider code matches.
func DefaultMatch() Match {
	return Match{
		Parent:     entity.FallbackParentName,
		Child:      entity.FallbackChildName,
		Confidence: DefaultConfidence,
		Method:     entity.MethodDefault,
	}
}

// Match returns the first rule with a keyword starting at a token of the
// merchant and whose amount guards pass. Provider codes are consulted next,
// then the default. An empty rule set always yields the default.
func (rs *RuleSet) Match(in Input) Match {
	if rs == nil {
		return DefaultMatch()
	}

	for _, rule := range rs.rules {
		if !rule.matchesMerchant(in.Merchant) || !rule.amountAllowed(in.Amount) {
			continue
		}
		confidence := rule.confidence
		if rule.corroboration != nil && in.Amount >= *rule.corroboration {
			confidence = min(confidence+CorroborationBoost, 1.0)
		}
		return Match{
			Parent:     rule.parent,
			Child:      rule.child,
			Confidence: confidence,
			Method:     entity.MethodMerchantRule,
			RuleID:     rule.id,
			RuleName:   rule.name,
		}
	}

	if m, ok := rs.lookupProvider(in.ProviderCode); ok {
		return Match{
			Parent:     m.parent,
			Child:      m.child,
			Confidence: m.confidence,
			Method:     entity.MethodProviderFallback,
		}
	}

	return DefaultMatch()
}

// MatchTransaction normalizes the transaction's merchant and matches it.
func (rs *RuleSet) MatchTransaction(tx *entity.Transaction) Match {
	return rs.Match(Input{
		Merchant:     merchant.Key(tx),
		Amount:       tx.Amount,
		ProviderCode: tx.ProviderCategory.Code,
	})
}

// lookupProvider tries the exact code, then ever shorter prefixes cut at "_".
func (rs *RuleSet) lookupProvider(code string) (compiledMapping, bool) {
	key := canonicalCode(code)
	for key != "" {
		if m, ok := rs.mappings[key]; ok {
			return m, true
		}
		idx := strings.LastIndex(key, "_")
		if idx < 0 {
			break
		}
		key = key[:idx]
	}
	return compiledMapping{}, false
}

func (r compiledRule) matchesMerchant(key string) bool {
	for _, kw := range r.keywords {
		if containsAtTokenStart(key, kw) {
			return true
		}
	}
	return false
}

// containsAtTokenStart reports whether kw occurs in key starting at the
// beginning of a token. "MOBIL" matches "MOBIL OIL" but not "PARKMOBILE".
func containsAtTokenStart(key, kw string) bool {
	for offset := 0; offset <= len(key)-len(kw); {
		i := strings.Index(key[offset:], kw)
		if i < 0 {
			return false
		}
		at := offset + i
		if at == 0 || key[at-1] == ' ' {
			return true
		}
		offset = at + 1
	}
	return false
}

func (r compiledRule) amountAllowed(amount int64) bool {
	if r.minAmount != nil && amount < *r.minAmount {
		return false
	}
	if r.maxAmount != nil && amount > *r.maxAmount {
		return false
	}
	return true
}
