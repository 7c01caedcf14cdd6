// Package rules assigns a category to a normalized merchant using an ordered
// table of keyword rules, a provider-code fallback and a fixed default.
package rules

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/finance-tracker/bookkeeping/internal/domain/entity"
	domainerror "github.com/finance-tracker/bookkeeping/internal/domain/error"
	"github.com/finance-tracker/bookkeeping/internal/domain/merchant"
)

const (
	// MaxKeywordLength is the maximum length of a single merchant keyword.
	MaxKeywordLength = 255

	// ProviderConfidenceCap keeps provider-code matches below keyword matches.
	ProviderConfidenceCap = 0.8

	// DefaultConfidence is the confidence of the Miscellaneous/General fallback.
	DefaultConfidence = 0.4

	// CorroborationBoost is added when the amount corroborates a rule.
	CorroborationBoost = 0.05
)

var nonCodePattern = regexp.MustCompile(`[^A-Z0-9]+`)

type compiledRule struct {
	id            uuid.UUID
	name          string
	priority      int
	keywords      []string
	parent        string
	child         string
	confidence    float64
	minAmount     *int64
	maxAmount     *int64
	corroboration *int64
}

type compiledMapping struct {
	parent     string
	child      string
	confidence float64
}

// RuleSet is an immutable, validated rule table. It is safe for concurrent use.
type RuleSet struct {
	rules    []compiledRule
	mappings map[string]compiledMapping
}

// NewRuleSet validates and orders rules, highest priority first.
// Inactive rules are ignored. Two active rules sharing a priority make the
// order undefined and are rejected as ambiguous.
func NewRuleSet(rules []entity.PatternRule, mappings []entity.ProviderMapping) (*RuleSet, error) {
	compiled, err := compileLayer(rules)
	if err != nil {
		return nil, err
	}

	rs := &RuleSet{
		rules:    compiled,
		mappings: make(map[string]compiledMapping, len(mappings)),
	}

	for _, m := range mappings {
		code := canonicalCode(m.Code)
		if code == "" || strings.TrimSpace(m.TargetParent) == "" {
			return nil, domainerror.NewPatternRuleError(
				domainerror.ErrCodeRuleTableInvalid,
				fmt.Sprintf("provider mapping %q needs a code and a target", m.Code),
				domainerror.ErrProviderMappingInvalid,
			)
		}
		if _, exists := rs.mappings[code]; exists {
			return nil, domainerror.NewPatternRuleError(
				domainerror.ErrCodeRuleTableInvalid,
				fmt.Sprintf("provider code %q is mapped twice", code),
				domainerror.ErrProviderMappingInvalid,
			)
		}
		if m.Confidence <= 0 || m.Confidence > 1 {
			return nil, domainerror.NewPatternRuleError(
				domainerror.ErrCodeRuleInvalidConfidence,
				fmt.Sprintf("provider code %q has confidence %.2f", code, m.Confidence),
				domainerror.ErrRuleInvalidConfidence,
			)
		}
		rs.mappings[code] = compiledMapping{
			parent:     strings.TrimSpace(m.TargetParent),
			child:      strings.TrimSpace(m.TargetChild),
			confidence: min(m.Confidence, ProviderConfidenceCap),
		}
	}

	return rs, nil
}

// WithOverrides returns a new rule set whose workspace rules are evaluated
// before every rule of rs. Priorities only need to be unique within a layer.
func (rs *RuleSet) WithOverrides(overrides []entity.PatternRule) (*RuleSet, error) {
	compiled, err := compileLayer(overrides)
	if err != nil {
		return nil, err
	}

	layered := &RuleSet{
		rules:    make([]compiledRule, 0, len(compiled)+len(rs.rules)),
		mappings: rs.mappings,
	}
	layered.rules = append(layered.rules, compiled...)
	layered.rules = append(layered.rules, rs.rules...)
	return layered, nil
}

// Len returns the number of active keyword rules.
func (rs *RuleSet) Len() int {
	return len(rs.rules)
}

// ValidateRule checks a single rule the way NewRuleSet does.
func ValidateRule(rule entity.PatternRule) error {
	_, err := compileRule(rule)
	return err
}

func compileLayer(rules []entity.PatternRule) ([]compiledRule, error) {
	compiled := make([]compiledRule, 0, len(rules))
	byPriority := make(map[int]string, len(rules))

	for _, rule := range rules {
		if !rule.IsActive {
			continue
		}
		c, err := compileRule(rule)
		if err != nil {
			return nil, err
		}
		if other, exists := byPriority[c.priority]; exists {
			return nil, domainerror.NewPatternRuleError(
				domainerror.ErrCodeDuplicateRulePriority,
				fmt.Sprintf("rules %q and %q share priority %d", other, c.name, c.priority),
				domainerror.ErrDuplicateRulePriority,
			)
		}
		byPriority[c.priority] = c.name
		compiled = append(compiled, c)
	}

	sort.Slice(compiled, func(i, j int) bool {
		return compiled[i].priority > compiled[j].priority
	})
	return compiled, nil
}

func compileRule(rule entity.PatternRule) (compiledRule, error) {
	name := rule.Name
	if name == "" {
		name = rule.ID.String()
	}

	if strings.TrimSpace(rule.TargetParent) == "" {
		return compiledRule{}, domainerror.NewPatternRuleError(
			domainerror.ErrCodeRuleMissingTarget,
			fmt.Sprintf("rule %q has no target category", name),
			domainerror.ErrRuleMissingTarget,
		)
	}

	keywords := make([]string, 0, len(rule.MerchantKeywords))
	for _, kw := range rule.MerchantKeywords {
		if len(kw) > MaxKeywordLength {
			return compiledRule{}, domainerror.NewPatternRuleError(
				domainerror.ErrCodeRuleKeywordTooLong,
				fmt.Sprintf("rule %q has a keyword longer than %d characters", name, MaxKeywordLength),
				domainerror.ErrRuleKeywordTooLong,
			)
		}
		if key := keywordKey(kw); key != "" {
			keywords = append(keywords, key)
		}
	}
	if len(keywords) == 0 {
		return compiledRule{}, domainerror.NewPatternRuleError(
			domainerror.ErrCodeRuleMissingKeywords,
			fmt.Sprintf("rule %q has no merchant keywords", name),
			domainerror.ErrRuleMissingKeywords,
		)
	}

	if rule.BaseConfidence <= 0 || rule.BaseConfidence > 1 {
		return compiledRule{}, domainerror.NewPatternRuleError(
			domainerror.ErrCodeRuleInvalidConfidence,
			fmt.Sprintf("rule %q has confidence %.2f outside (0, 1]", name, rule.BaseConfidence),
			domainerror.ErrRuleInvalidConfidence,
		)
	}

	if rule.MinAmount != nil && rule.MaxAmount != nil && *rule.MinAmount > *rule.MaxAmount {
		return compiledRule{}, domainerror.NewPatternRuleError(
			domainerror.ErrCodeRuleInvalidAmountRange,
			fmt.Sprintf("rule %q has min amount %d above max amount %d", name, *rule.MinAmount, *rule.MaxAmount),
			domainerror.ErrRuleInvalidAmountRange,
		)
	}

	return compiledRule{
		id:            rule.ID,
		name:          name,
		priority:      rule.Priority,
		keywords:      keywords,
		parent:        strings.TrimSpace(rule.TargetParent),
		child:         strings.TrimSpace(rule.TargetChild),
		confidence:    rule.BaseConfidence,
		minAmount:     copyAmount(rule.MinAmount),
		maxAmount:     copyAmount(rule.MaxAmount),
		corroboration: copyAmount(rule.CorroborationAmount),
	}, nil
}

// keywordKey cleans a keyword the way merchant names are cleaned, so a
// keyword copied from a statement line matches the merchant it came from.
func keywordKey(kw string) string {
	if merchant.Canonicalize(kw) == "" {
		return ""
	}
	return merchant.Normalize(kw)
}

func copyAmount(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// canonicalCode maps provider codes like "Food and Drink" onto "FOOD_AND_DRINK".
func canonicalCode(code string) string {
	upper := strings.ToUpper(strings.TrimSpace(code))
	return strings.Trim(nonCodePattern.ReplaceAllString(upper, "_"), "_")
}
