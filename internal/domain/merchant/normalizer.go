// Package merchant turns raw merchant strings from bank feeds into stable
// uppercase keys used for rule matching and recurring-series grouping.
package merchant

import (
	"regexp"
	"strings"

	"github.com/finance-tracker/bookkeeping/internal/domain/entity"
)

// Unknown is the key for a missing or blank merchant.
const Unknown = "UNKNOWN"

const minKeyLength = 2

var (
	slashDatePattern = regexp.MustCompile(`\b\d{1,2}/\d{1,2}(?:/\d{2,4})?\b`)
	dashDatePattern  = regexp.MustCompile(`\b\d{1,2}-\d{1,2}-\d{2,4}\b`)
	storeNumberTail  = regexp.MustCompile(`\s#\s*\d+\b.*$`)
	nonAlnumPattern  = regexp.MustCompile(`[^A-Z0-9]+`)
)

// processorPrefixes are leading token sequences added by payment processors.
// Longer sequences come first so they win over their own prefixes.
var processorPrefixes = [][]string{
	{"DEBIT", "CARD", "PURCHASE"},
	{"POS", "DEBIT"},
	{"APPLE", "PAY"},
	{"CHECKCARD"},
	{"PURCHASE"},
	{"PAYPAL"},
	{"POS"},
	{"ACH"},
	{"TST"},
	{"SQ"},
	{"PP"},
	{"SP"},
}

var storeMarkers = map[string]struct{}{
	"STORE": {}, "STR": {}, "NO": {}, "NUM": {},
}

var legalSuffixes = map[string]struct{}{
	"INC": {}, "LLC": {}, "CORP": {}, "CORPORATION": {}, "CO": {}, "LTD": {},
	"LLP": {}, "LP": {}, "PLC": {}, "COMPANY": {}, "GMBH": {},
}

var stateCodes = map[string]struct{}{
	"AL": {}, "AK": {}, "AZ": {}, "AR": {}, "CA": {}, "CO": {}, "CT": {}, "DE": {},
	"DC": {}, "FL": {}, "GA": {}, "HI": {}, "ID": {}, "IL": {}, "IN": {}, "IA": {},
	"KS": {}, "KY": {}, "LA": {}, "ME": {}, "MD": {}, "MA": {}, "MI": {}, "MN": {},
	"MS": {}, "MO": {}, "MT": {}, "NE": {}, "NV": {}, "NH": {}, "NJ": {}, "NM": {},
	"NY": {}, "NC": {}, "ND": {}, "OH": {}, "OK": {}, "OR": {}, "PA": {}, "RI": {},
	"SC": {}, "SD": {}, "TN": {}, "TX": {}, "UT": {}, "VT": {}, "VA": {}, "WA": {},
	"WV": {}, "WI": {}, "WY": {},
}

// Normalize returns the canonical key for a raw merchant string.
// The result is deterministic and Normalize(Normalize(s)) == Normalize(s).
func Normalize(raw string) string {
	upper := strings.ToUpper(strings.TrimSpace(raw))
	if upper == "" {
		return Unknown
	}

	tokens := stripNoise(tokenize(upper))
	key := strings.Join(tokens, " ")
	if len(key) < minKeyLength {
		return upper
	}
	return key
}

// NormalizePtr normalizes a nullable merchant string.
func NormalizePtr(raw *string) string {
	if raw == nil {
		return Unknown
	}
	return Normalize(*raw)
}

// Key returns the merchant key of a transaction, falling back to its
// description when the merchant name is missing.
func Key(tx *entity.Transaction) string {
	if tx.MerchantName != nil && strings.TrimSpace(*tx.MerchantName) != "" {
		return Normalize(*tx.MerchantName)
	}
	return Normalize(tx.Description)
}

// Canonicalize uppercases s and collapses punctuation and whitespace without
// stripping any tokens.
func Canonicalize(s string) string {
	return strings.Join(tokenize(strings.ToUpper(strings.TrimSpace(s))), " ")
}

func tokenize(upper string) []string {
	s := slashDatePattern.ReplaceAllString(upper, " ")
	s = dashDatePattern.ReplaceAllString(s, " ")
	s = storeNumberTail.ReplaceAllString(s, "")
	s = strings.NewReplacer("'", "", "’", "").Replace(s)
	s = nonAlnumPattern.ReplaceAllString(s, " ")
	return strings.Fields(s)
}

// stripNoise removes processor prefixes and trailing noise until nothing changes.
// It never removes the last remaining token.
func stripNoise(tokens []string) []string {
	for {
		before := len(tokens)

		tokens = stripPrefix(tokens)
		tokens = truncateAtReference(tokens)

		if n := len(tokens); n > 1 {
			last := tokens[n-1]
			switch {
			case isReference(last) || isAllDigits(last):
				tokens = tokens[:n-1]
			case n >= 3 && isStateCode(last):
				tokens = tokens[:n-1]
			case isLegalSuffix(last):
				tokens = tokens[:n-1]
			}
		}

		if len(tokens) == before {
			return tokens
		}
	}
}

func stripPrefix(tokens []string) []string {
	for _, prefix := range processorPrefixes {
		if len(tokens) <= len(prefix) {
			continue
		}
		if hasPrefix(tokens, prefix) {
			return tokens[len(prefix):]
		}
	}
	return tokens
}

// truncateAtReference drops a reference number and everything after it,
// along with a store marker word right before it.
func truncateAtReference(tokens []string) []string {
	for i := 1; i < len(tokens); i++ {
		if !isReference(tokens[i]) {
			continue
		}
		if _, ok := storeMarkers[tokens[i-1]]; ok && i > 1 {
			return tokens[:i-1]
		}
		return tokens[:i]
	}
	return tokens
}

func hasPrefix(tokens, prefix []string) bool {
	for i, p := range prefix {
		if tokens[i] != p {
			return false
		}
	}
	return true
}

// isReference reports whether a token carries three or more digits.
func isReference(token string) bool {
	digits := 0
	for _, r := range token {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= 3
}

func isAllDigits(token string) bool {
	for _, r := range token {
		if r < '0' || r > '9' {
			return false
		}
	}
	return token != ""
}

func isStateCode(token string) bool {
	_, ok := stateCodes[token]
	return ok
}

func isLegalSuffix(token string) bool {
	_, ok := legalSuffixes[token]
	return ok
}
