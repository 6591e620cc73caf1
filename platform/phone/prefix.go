package phone

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"phone_standardizer/platform/apperr"
	"phone_standardizer/platform/validator"

	"gopkg.in/yaml.v3"
)

// Prefix maps a calling code to the region it is recorded under.
// Region is informational; three-letter ad hoc codes are allowed.
type Prefix struct {
	Code   string `validate:"required,number"`
	Region string `validate:"required,alpha,min=2,max=3"`
}

// PrefixTable is an ordered list of calling-code prefixes.
// Order matters for MatchFirst.
type PrefixTable []Prefix

// MatchPolicy selects how the table is scanned.
type MatchPolicy string

const (
	// MatchFirst returns the first entry in table order whose code prefixes
	// the number.
	MatchFirst MatchPolicy = "first"
	// MatchLongest returns the longest matching code, ties broken by table order.
	MatchLongest MatchPolicy = "longest"
)

// ParseMatchPolicy maps a config value to a policy.
func ParseMatchPolicy(value string) (MatchPolicy, error) {
	switch MatchPolicy(strings.ToLower(strings.TrimSpace(value))) {
	case "", MatchFirst:
		return MatchFirst, nil
	case MatchLongest:
		return MatchLongest, nil
	default:
		return "", apperr.Validation(fmt.Sprintf("unknown prefix match policy %q", value))
	}
}

// DefaultPrefixTable returns the built-in table in its historical order.
func DefaultPrefixTable() PrefixTable {
	return PrefixTable{
		{"49", "DE"},
		{"43", "AT"},
		{"1", "US"},
		{"44", "GB"},
		{"33", "FR"},
		{"39", "IT"},
		{"385", "CRO"},
		{"34", "ES"},
		{"45", "DK"},
		{"46", "SE"},
		{"47", "NO"},
		{"31", "NL"},
		{"32", "BE"},
		{"30", "GR"},
		{"48", "PL"},
		{"351", "PT"},
		{"41", "CH"},
		{"36", "HU"},
		{"420", "CZ"},
		{"421", "SK"},
		{"386", "SI"},
		{"371", "LV"},
		{"370", "LT"},
		{"372", "EE"},
		{"380", "UA"},
		{"7", "RU"},
		{"90", "TR"},
		{"91", "IN"},
		{"86", "CN"},
		{"81", "JP"},
		{"61", "AU"},
		{"64", "NZ"},
		{"60", "MY"},
		{"65", "SG"},
		{"62", "ID"},
		{"27", "ZA"},
		{"55", "BR"},
		{"52", "MX"},
		{"56", "CL"},
		{"54", "AR"},
		{"51", "PE"},
		{"57", "CO"},
		{"53", "CU"},
		{"58", "VE"},
	}
}

// Match finds the table entry whose code is a prefix of digits.
func (t PrefixTable) Match(digits string, policy MatchPolicy) (Prefix, bool) {
	var (
		best  Prefix
		found bool
	)
	for _, p := range t {
		if !strings.HasPrefix(digits, p.Code) {
			continue
		}
		if policy != MatchLongest {
			return p, true
		}
		if !found || len(p.Code) > len(best.Code) {
			best, found = p, true
		}
	}
	return best, found
}

// Validate checks every entry and rejects duplicate codes.
func (t PrefixTable) Validate(val *validator.Validator) error {
	seen := make(map[string]bool, len(t))
	for i, p := range t {
		if err := val.Struct(p); err != nil {
			return apperr.Wrap(apperr.KindValidation, fmt.Sprintf("prefix entry %d (%q: %q) is invalid", i, p.Code, p.Region), err)
		}
		if seen[p.Code] {
			return apperr.Validation(fmt.Sprintf("duplicate prefix code %q", p.Code))
		}
		seen[p.Code] = true
	}
	return nil
}

// LoadPrefixTable reads a YAML mapping of calling code to region, keeping
// document order:
//
//	"49": DE
//	"43": AT
func LoadPrefixTable(r io.Reader, val *validator.Validator) (PrefixTable, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, apperr.Validation("prefix table is empty")
		}
		return nil, apperr.Wrap(apperr.KindMalformed, "failed to decode prefix table", err)
	}

	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, apperr.New(apperr.KindMalformed, fmt.Sprintf("prefix table must be a mapping (line %d)", root.Line))
	}
	if len(root.Content) == 0 {
		return nil, apperr.Validation("prefix table is empty")
	}

	table := make(PrefixTable, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		if key.Kind != yaml.ScalarNode || value.Kind != yaml.ScalarNode {
			return nil, apperr.New(apperr.KindMalformed, fmt.Sprintf("prefix table entry at line %d must be a scalar pair", key.Line))
		}
		table = append(table, Prefix{
			Code:   strings.TrimSpace(key.Value),
			Region: strings.ToUpper(strings.TrimSpace(value.Value)),
		})
	}

	if err := table.Validate(val); err != nil {
		return nil, err
	}
	return table, nil
}
