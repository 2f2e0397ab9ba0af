package matrix

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// notationRe matches "X_n{...}" and "X_{n}{...}", X being a family symbol.
var notationRe = regexp.MustCompile(`^([A-Za-z])_\{?(\d+)\}?\{([^}]*)\}$`)

// rangeRe matches an inclusive range element "a..b".
var rangeRe = regexp.MustCompile(`^(-?\d+)\.\.(-?\d+)$`)

// ParseNotation parses set notation such as "T_7{-6,-1..3}", "C_7{2..5}",
// "H_6{0,2,4..10}" or "T_5{}" (also "T_5{∅}").
//
// The letter selects the family (see Family.Symbol). Elements are integers or
// inclusive ranges "a..b" with a ≤ b. Members outside the family domain are
// dropped, matching how hand-typed ranges like "-1..7" are meant for n=7.
// Mandatory indices are NOT added; Build reports them if missing.
func ParseNotation(s string) (n int, f Family, set IndexSet, err error) {
	var (
		m          []string
		lo, hi     int
		a, b, v    int
		elems      []int
		found      bool
		sym        byte
		k          int
		tag        = fmt.Sprintf("ParseNotation(%q)", s)
		body, elem string
	)
	m = notationRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, 0, nil, fmt.Errorf("%s: %w", tag, ErrBadNotation)
	}
	sym = strings.ToUpper(m[1])[0]
	for k = range familyTable {
		if familyTable[k].symbol == sym {
			f, found = Family(k), true
			break
		}
	}
	if !found {
		return 0, 0, nil, fmt.Errorf("%s: symbol %q: %w", tag, sym, ErrUnknownFamily)
	}
	if n, err = strconv.Atoi(m[2]); err != nil || n < 1 {
		return 0, 0, nil, fmt.Errorf("%s: %w", tag, ErrInvalidDimensions)
	}
	lo, hi = f.Domain(n)

	body = strings.TrimSpace(m[3])
	if body == "" || body == "∅" {
		return n, f, IndexSet{}, nil
	}
	for _, elem = range strings.Split(body, ",") {
		elem = strings.TrimSpace(elem)
		if r := rangeRe.FindStringSubmatch(elem); r != nil {
			a, _ = strconv.Atoi(r[1])
			b, _ = strconv.Atoi(r[2])
			if b < a {
				return 0, 0, nil, fmt.Errorf("%s: range %d..%d: %w", tag, a, b, ErrBadNotation)
			}
			for v = max(a, lo); v <= min(b, hi); v++ {
				elems = append(elems, v)
			}
			continue
		}
		if v, err = strconv.Atoi(elem); err != nil {
			return 0, 0, nil, fmt.Errorf("%s: element %q: %w", tag, elem, ErrBadNotation)
		}
		if v >= lo && v <= hi {
			elems = append(elems, v)
		}
	}

	return n, f, Canonical(elems), nil
}

// FormatNotation renders (n, f, s) as "X_n{a,b,c}"; ParseNotation inverts it
// for any set inside the family domain.
func FormatNotation(n int, f Family, s IndexSet) string {
	return fmt.Sprintf("%c_%d%s", f.Symbol(), n, Canonical(s).String())
}
