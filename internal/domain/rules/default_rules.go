package rules

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/finance-tracker/bookkeeping/internal/domain/entity"
	domainerror "github.com/finance-tracker/bookkeeping/internal/domain/error"
)

//go:embed default_rules.yaml
var defaultRulesYAML []byte

// builtinNamespace derives stable ids for built-in rules from their names.
var builtinNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("bookkeeping:builtin-rules"))

// CategorySeed is a root category and its children in the built-in taxonomy.
type CategorySeed struct {
	Name     string   `yaml:"name"`
	Color    string   `yaml:"color"`
	Children []string `yaml:"children"`
}

type ruleDocument struct {
	Name                string   `yaml:"name"`
	Priority            int      `yaml:"priority"`
	Keywords            []string `yaml:"keywords"`
	Parent              string   `yaml:"parent"`
	Child               string   `yaml:"child"`
	Confidence          float64  `yaml:"confidence"`
	MinAmount           *int64   `yaml:"min_amount"`
	MaxAmount           *int64   `yaml:"max_amount"`
	CorroborationAmount *int64   `yaml:"corroboration_amount"`
}

type mappingDocument struct {
	Code       string  `yaml:"code"`
	Parent     string  `yaml:"parent"`
	Child      string  `yaml:"child"`
	Confidence float64 `yaml:"confidence"`
}

type tableDocument struct {
	Categories       []CategorySeed    `yaml:"categories"`
	Rules            []ruleDocument    `yaml:"rules"`
	ProviderMappings []mappingDocument `yaml:"provider_mappings"`
}

// Table is a parsed rule table with the taxonomy it was written against.
type Table struct {
	RuleSet    *RuleSet
	Rules      []entity.PatternRule
	Mappings   []entity.ProviderMapping
	Categories []CategorySeed
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
	defaultErr   error
)

// DefaultTable returns the built-in table, parsed once per process.
func DefaultTable() (*Table, error) {
	defaultOnce.Do(func() {
		defaultTable, defaultErr = ParseTable(defaultRulesYAML)
	})
	return defaultTable, defaultErr
}

// ParseTable parses and validates a YAML rule table.
func ParseTable(data []byte) (*Table, error) {
	var doc tableDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, domainerror.NewPatternRuleError(
			domainerror.ErrCodeRuleTableInvalid,
			fmt.Sprintf("failed to parse rule table: %v", err),
			domainerror.ErrRuleTableInvalid,
		)
	}

	rules := make([]entity.PatternRule, 0, len(doc.Rules))
	for _, r := range doc.Rules {
		rules = append(rules, entity.PatternRule{
			ID:                  uuid.NewSHA1(builtinNamespace, []byte(r.Name)),
			Name:                r.Name,
			Priority:            r.Priority,
			MerchantKeywords:    r.Keywords,
			TargetParent:        r.Parent,
			TargetChild:         r.Child,
			BaseConfidence:      r.Confidence,
			MinAmount:           r.MinAmount,
			MaxAmount:           r.MaxAmount,
			CorroborationAmount: r.CorroborationAmount,
			IsActive:            true,
		})
	}

	mappings := make([]entity.ProviderMapping, 0, len(doc.ProviderMappings))
	for _, m := range doc.ProviderMappings {
		mappings = append(mappings, entity.ProviderMapping{
			Code:         m.Code,
			TargetParent: m.Parent,
			TargetChild:  m.Child,
			Confidence:   m.Confidence,
		})
	}

	rs, err := NewRuleSet(rules, mappings)
	if err != nil {
		return nil, err
	}

	return &Table{
		RuleSet:    rs,
		Rules:      rules,
		Mappings:   mappings,
		Categories: doc.Categories,
	}, nil
}
