// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package constraint

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"daml.com/x/elm-outdated/pkg/schema"
	"daml.com/x/elm-outdated/pkg/version"
)

var ErrInvalidConstraintFormat = errors.New("invalid constraint format")

// Constraint is a version interval. Lower is always set; Upper is ignored when Unbounded.
type Constraint struct {
	Lower          version.Version
	LowerInclusive bool
	Upper          version.Version
	UpperInclusive bool
	Unbounded      bool
}

// Exact matches v and nothing else
func Exact(v version.Version) Constraint {
	return Constraint{Lower: v, LowerInclusive: true, Upper: v, UpperInclusive: true}
}

// Compatible is [v, nextMajor(v)), i.e. any release up to the next breaking one.
// There is no next major after the greatest major, so the range is then unbounded.
func Compatible(v version.Version) Constraint {
	next, ok := v.NextMajor()
	if !ok {
		return AtLeast(v)
	}
	return Constraint{Lower: v, LowerInclusive: true, Upper: next}
}

// AtLeast is [v, +inf)
func AtLeast(v version.Version) Constraint {
	return Constraint{Lower: v, LowerInclusive: true, Unbounded: true}
}

func (c Constraint) Satisfies(v version.Version) bool {
	if cmp := version.Compare(v, c.Lower); cmp < 0 || (cmp == 0 && !c.LowerInclusive) {
		return false
	}
	if c.Unbounded {
		return true
	}
	cmp := version.Compare(v, c.Upper)
	return cmp < 0 || (cmp == 0 && c.UpperInclusive)
}

// IsEmpty reports whether no version at all can satisfy c.
// Versions are discrete, so an exclusive lower bound v starts at the successor of v.
func (c Constraint) IsEmpty() bool {
	lowest := c.Lower
	if !c.LowerInclusive {
		next, ok := lowest.Successor()
		if !ok {
			return true
		}
		lowest = next
	}
	return !c.Satisfies(lowest)
}

// String renders c the way elm.json writes ranges
func (c Constraint) String() string {
	lowerOp := opFor(c.LowerInclusive)
	if c.Unbounded {
		return fmt.Sprintf("%s %s v", c.Lower, lowerOp)
	}
	return fmt.Sprintf("%s %s v %s %s", c.Lower, lowerOp, opFor(c.UpperInclusive), c.Upper)
}

func opFor(inclusive bool) string {
	if inclusive {
		return "<="
	}
	return "<"
}

var (
	elmRangeRegex   = regexp.MustCompile(`^(\S+?)\s*(<=|<)\s*v\s*(<=|<)\s*(\S+)$`)
	comparatorRegex = regexp.MustCompile(`(>=|<=|==|>|<|=)\s*([^\s,<>=]+)`)
)

// Parse reads constraint text as written in a manifest of the given schema.
//
// Both schemas accept the elm range form "1.0.0 <= v < 2.0.0" and the comparator form
// ">=1.0.0 <2.0.0". A bare version means [v, v] in the new schema and [v, nextMajor(v)) in
// the old one.
func Parse(text string, s schema.Schema) (Constraint, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Constraint{}, invalid(text, "empty constraint")
	}

	if v, err := version.Parse(trimmed); err == nil {
		if s == schema.Old {
			return Compatible(v), nil
		}
		return Exact(v), nil
	}

	if m := elmRangeRegex.FindStringSubmatch(trimmed); m != nil {
		return parseElmRange(text, m)
	}

	return parseComparators(text, trimmed)
}

func parseElmRange(text string, m []string) (Constraint, error) {
	lower, err := version.Parse(m[1])
	if err != nil {
		return Constraint{}, invalid(text, err.Error())
	}
	upper, err := version.Parse(m[4])
	if err != nil {
		return Constraint{}, invalid(text, err.Error())
	}
	return Constraint{
		Lower:          lower,
		LowerInclusive: m[2] == "<=",
		Upper:          upper,
		UpperInclusive: m[3] == "<=",
	}, nil
}

func parseComparators(text, trimmed string) (Constraint, error) {
	matches := comparatorRegex.FindAllStringSubmatchIndex(trimmed, -1)
	if len(matches) == 0 {
		return Constraint{}, invalid(text, "expected a version, a range or comparators")
	}

	var (
		c                  Constraint
		hasLower, hasUpper bool
		end                int
	)
	for _, m := range matches {
		if gap := trimmed[end:m[0]]; strings.Trim(gap, " \t,") != "" {
			return Constraint{}, invalid(text, fmt.Sprintf("unexpected %q", gap))
		}
		end = m[1]

		op := trimmed[m[2]:m[3]]
		v, err := version.Parse(trimmed[m[4]:m[5]])
		if err != nil {
			return Constraint{}, invalid(text, err.Error())
		}

		switch op {
		case ">=", ">":
			if hasLower {
				return Constraint{}, invalid(text, "more than one lower bound")
			}
			hasLower = true
			c.Lower, c.LowerInclusive = v, op == ">="
		case "<=", "<":
			if hasUpper {
				return Constraint{}, invalid(text, "more than one upper bound")
			}
			hasUpper = true
			c.Upper, c.UpperInclusive = v, op == "<="
		case "=", "==":
			if hasLower || hasUpper {
				return Constraint{}, invalid(text, "exact version combined with other bounds")
			}
			hasLower, hasUpper = true, true
			c = Exact(v)
		}
	}
	if rest := trimmed[end:]; strings.Trim(rest, " \t,") != "" {
		return Constraint{}, invalid(text, fmt.Sprintf("unexpected %q", rest))
	}

	if !hasLower {
		// "<2.0.0" has an implicit lower bound of 0.0.0
		c.Lower, c.LowerInclusive = version.Version{}, true
	}
	c.Unbounded = !hasUpper
	return c, nil
}

func invalid(text, reason string) error {
	return fmt.Errorf("%w %q: %s", ErrInvalidConstraintFormat, text, reason)
}
