package resolve

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// interval is a contiguous version range. Nil bounds are unbounded.
type interval struct {
	min, max       *semver.Version
	incMin, incMax bool
}

func unbounded() interval {
	return interval{incMin: true, incMax: true}
}

// parseRange converts one constraint string into an interval. Supported
// forms: exact ("1.2.3"), caret ("^1.2.3"), tilde ("~1.2.3"), comparison
// operators (">=", ">", "<=", "<"), wildcard ("*" or empty), and
// space-separated conjunctions of the above.
func parseRange(s string) (interval, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "*" {
		return unbounded(), nil
	}

	result := unbounded()
	for _, token := range strings.Fields(s) {
		iv, err := parseToken(token)
		if err != nil {
			return interval{}, err
		}
		result = intersect(result, iv)
	}
	return result, nil
}

func parseToken(token string) (interval, error) {
	version := func(raw string) (*semver.Version, error) {
		v, err := semver.NewVersion(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid version %q: %w", raw, err)
		}
		return v, nil
	}

	switch {
	case token == "*":
		return unbounded(), nil

	case strings.HasPrefix(token, "^"):
		v, err := version(token[1:])
		if err != nil {
			return interval{}, err
		}
		return interval{min: v, incMin: true, max: caretUpper(v)}, nil

	case strings.HasPrefix(token, "~"):
		v, err := version(token[1:])
		if err != nil {
			return interval{}, err
		}
		upper := v.IncMinor()
		return interval{min: v, incMin: true, max: &upper}, nil

	case strings.HasPrefix(token, ">="):
		v, err := version(token[2:])
		if err != nil {
			return interval{}, err
		}
		return interval{min: v, incMin: true, incMax: true}, nil

	case strings.HasPrefix(token, "<="):
		v, err := version(token[2:])
		if err != nil {
			return interval{}, err
		}
		return interval{max: v, incMin: true, incMax: true}, nil

	case strings.HasPrefix(token, ">"):
		v, err := version(token[1:])
		if err != nil {
			return interval{}, err
		}
		return interval{min: v, incMax: true}, nil

	case strings.HasPrefix(token, "<"):
		v, err := version(token[1:])
		if err != nil {
			return interval{}, err
		}
		return interval{max: v, incMin: true}, nil

	default:
		v, err := version(token)
		if err != nil {
			return interval{}, err
		}
		return interval{min: v, max: v, incMin: true, incMax: true}, nil
	}
}

// caretUpper computes the exclusive upper bound of a caret range following
// npm semantics: ^1.2.3 -> 2.0.0, ^0.2.3 -> 0.3.0, ^0.0.3 -> 0.0.4.
func caretUpper(v *semver.Version) *semver.Version {
	var upper semver.Version
	switch {
	case v.Major() > 0:
		upper = v.IncMajor()
	case v.Minor() > 0:
		upper = v.IncMinor()
	default:
		upper = v.IncPatch()
	}
	return &upper
}

// intersect returns the overlap of two intervals.
func intersect(a, b interval) interval {
	out := a

	if b.min != nil {
		switch {
		case out.min == nil || b.min.GreaterThan(out.min):
			out.min = b.min
			out.incMin = b.incMin
		case b.min.Equal(out.min):
			out.incMin = out.incMin && b.incMin
		}
	} else if out.min == nil {
		out.incMin = out.incMin && b.incMin
	}

	if b.max != nil {
		switch {
		case out.max == nil || b.max.LessThan(out.max):
			out.max = b.max
			out.incMax = b.incMax
		case b.max.Equal(out.max):
			out.incMax = out.incMax && b.incMax
		}
	} else if out.max == nil {
		out.incMax = out.incMax && b.incMax
	}

	return out
}

// empty reports whether no version can satisfy the interval.
func (iv interval) empty() bool {
	if iv.min == nil || iv.max == nil {
		return false
	}
	if iv.min.GreaterThan(iv.max) {
		return true
	}
	if iv.min.Equal(iv.max) {
		return !(iv.incMin && iv.incMax)
	}
	return false
}

// contains reports whether the version falls inside the interval.
func (iv interval) contains(v *semver.Version) bool {
	if iv.min != nil {
		if v.LessThan(iv.min) {
			return false
		}
		if v.Equal(iv.min) && !iv.incMin {
			return false
		}
	}
	if iv.max != nil {
		if v.GreaterThan(iv.max) {
			return false
		}
		if v.Equal(iv.max) && !iv.incMax {
			return false
		}
	}
	return true
}
