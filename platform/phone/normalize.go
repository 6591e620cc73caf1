// Package phone provides phone number standardization.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"phone_standardizer/platform/apperr"
	"phone_standardizer/platform/logger"

	"github.com/nyaruka/phonenumbers"
)

// DefaultSentinel is written in place of a number that cannot be parsed.
const DefaultSentinel = "unknown"

// ErrInvalidNumber is reported in strict mode for numbers that parse but are
// not valid for their region.
var ErrInvalidNumber = errors.New("number is not valid for its region")

// Path records which branch produced the parse candidate.
type Path string

const (
	PathInternational Path = "international"
	PathPrefix        Path = "prefix"
	PathDefaultRegion Path = "default_region"
)

// Options configures a Normalizer. A nil Prefixes uses DefaultPrefixTable;
// an empty non-nil table disables prefix inference.
type Options struct {
	Prefixes      PrefixTable
	DefaultRegion string
	Policy        MatchPolicy
	Sentinel      string
	// Strict additionally rejects numbers that fail IsValidNumber.
	Strict bool
	Logger *logger.Logger
}

// Result is the full outcome of standardizing one raw value.
type Result struct {
	Raw       string
	Cleaned   string
	Candidate string
	Path      Path
	Region    string
	E164      string // the sentinel when Err is set
	Err       error
}

// OK reports whether the value was standardized.
func (r Result) OK() bool { return r.Err == nil }

// Normalizer converts raw phone strings to E.164. It holds no mutable state
// and is safe for concurrent use.
type Normalizer struct {
	prefixes      PrefixTable
	defaultRegion string
	defaultCode   int
	policy        MatchPolicy
	sentinel      string
	strict        bool
	log           *logger.Logger
}

// New builds a Normalizer from explicit options.
func New(opts Options) (*Normalizer, error) {
	region := strings.ToUpper(strings.TrimSpace(opts.DefaultRegion))
	code := phonenumbers.GetCountryCodeForRegion(region)
	if code == 0 {
		return nil, apperr.Validation(fmt.Sprintf("unsupported default region %q", opts.DefaultRegion)).WithOp("phone.New")
	}

	policy := opts.Policy
	if policy == "" {
		policy = MatchFirst
	}
	if policy != MatchFirst && policy != MatchLongest {
		return nil, apperr.Validation(fmt.Sprintf("unknown prefix match policy %q", policy)).WithOp("phone.New")
	}

	prefixes := opts.Prefixes
	if prefixes == nil {
		prefixes = DefaultPrefixTable()
	}

	sentinel := opts.Sentinel
	if sentinel == "" {
		sentinel = DefaultSentinel
	}

	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}

	return &Normalizer{
		prefixes:      prefixes,
		defaultRegion: region,
		defaultCode:   code,
		policy:        policy,
		sentinel:      sentinel,
		strict:        opts.Strict,
		log:           log,
	}, nil
}

// Sentinel returns the marker written for unparseable numbers.
func (n *Normalizer) Sentinel() string { return n.sentinel }

// Standardize returns the E.164 form of raw, or the sentinel.
func (n *Normalizer) Standardize(raw string) string {
	return n.Resolve(raw).E164
}

// Resolve standardizes raw and reports how the result was reached.
// Parse failures are logged at warning level.
func (n *Normalizer) Resolve(raw string) Result {
	res := Result{Raw: raw, Cleaned: Clean(raw)}

	hint := ""
	if strings.HasPrefix(res.Cleaned, "+") {
		res.Path = PathInternational
		res.Candidate = res.Cleaned
	} else {
		hint = n.defaultRegion
		if p, ok := n.prefixes.Match(res.Cleaned, n.policy); ok {
			res.Path = PathPrefix
			res.Region = p.Region
			res.Candidate = "+" + p.Code + strings.TrimLeft(res.Cleaned[len(p.Code):], "0")
		} else {
			res.Path = PathDefaultRegion
			res.Region = n.defaultRegion
			res.Candidate = "+" + strconv.Itoa(n.defaultCode) + strings.TrimLeft(res.Cleaned, "0")
		}
	}

	num, err := phonenumbers.Parse(res.Candidate, hint)
	if err == nil && n.strict && !phonenumbers.IsValidNumber(num) {
		err = ErrInvalidNumber
	}
	if err != nil {
		n.log.PhoneUnparseable(res.Candidate, err)
		res.Err = fmt.Errorf("parse %q: %w", res.Candidate, err)
		res.E164 = n.sentinel
		return res
	}

	res.E164 = phonenumbers.Format(num, phonenumbers.E164)
	return res
}

// Clean keeps decimal digits and a plus sign that precedes every digit.
// Non-ASCII decimal digits are mapped to ASCII.
func Clean(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && b.Len() == 0:
			b.WriteRune(r)
		case unicode.IsDigit(r):
			b.WriteString(phonenumbers.NormalizeDigitsOnly(string(r)))
		}
	}
	return b.String()
}
