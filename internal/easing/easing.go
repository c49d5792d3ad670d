// Package easing models the ticker's easing descriptor: a named keyword or
// a cubic-bezier curve.
package easing

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Bezier holds the two inner control points of a cubic-bezier curve running
// from (0,0) to (1,1).
type Bezier struct {
	X1 float64 `yaml:"x1"`
	Y1 float64 `yaml:"y1"`
	X2 float64 `yaml:"x2"`
	Y2 float64 `yaml:"y2"`
}

var keywords = map[string]Bezier{
	"linear":      {0, 0, 1, 1},
	"ease":        {0.25, 0.1, 0.25, 1},
	"ease-in":     {0.42, 0, 1, 1},
	"ease-out":    {0, 0, 0.58, 1},
	"ease-in-out": {0.42, 0, 0.58, 1},
}

// DefaultKeyword is used when no easing is configured.
const DefaultKeyword = "ease-in"

// Descriptor is either a keyword or a custom curve.
type Descriptor struct {
	Keyword string
	Curve   *Bezier
}

// Default returns the default descriptor.
func Default() Descriptor { return Descriptor{Keyword: DefaultKeyword} }

// Keyword builds a descriptor from a named easing.
func Keyword(name string) (Descriptor, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if _, ok := keywords[name]; !ok {
		return Descriptor{}, fmt.Errorf("unknown easing %q", name)
	}
	return Descriptor{Keyword: name}, nil
}

// Cubic builds a descriptor from control points. X values must lie in [0,1].
func Cubic(x1, y1, x2, y2 float64) (Descriptor, error) {
	if x1 < 0 || x1 > 1 || x2 < 0 || x2 > 1 {
		return Descriptor{}, fmt.Errorf("cubic-bezier x values must be within [0,1], got %v and %v", x1, x2)
	}
	return Descriptor{Curve: &Bezier{X1: x1, Y1: y1, X2: x2, Y2: y2}}, nil
}

// Parse accepts a keyword or the "cubic-bezier(x1,y1,x2,y2)" form.
func Parse(s string) (Descriptor, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Default(), nil
	}
	if rest, ok := strings.CutPrefix(s, "cubic-bezier("); ok {
		rest, ok = strings.CutSuffix(rest, ")")
		if !ok {
			return Descriptor{}, fmt.Errorf("malformed easing %q", s)
		}
		parts := strings.Split(rest, ",")
		if len(parts) != 4 {
			return Descriptor{}, fmt.Errorf("cubic-bezier needs 4 values, got %d", len(parts))
		}
		var v [4]float64
		for i, p := range parts {
			f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil {
				return Descriptor{}, fmt.Errorf("cubic-bezier value %q: %w", p, err)
			}
			v[i] = f
		}
		return Cubic(v[0], v[1], v[2], v[3])
	}
	return Keyword(s)
}

// String renders the descriptor in CSS timing-function syntax.
func (d Descriptor) String() string {
	if d.Curve != nil {
		c := d.Curve
		return fmt.Sprintf("cubic-bezier(%s,%s,%s,%s)", ftoa(c.X1), ftoa(c.Y1), ftoa(c.X2), ftoa(c.Y2))
	}
	if d.Keyword == "" {
		return DefaultKeyword
	}
	return d.Keyword
}

func (d Descriptor) curve() Bezier {
	if d.Curve != nil {
		return *d.Curve
	}
	if b, ok := keywords[d.Keyword]; ok {
		return b
	}
	return keywords[DefaultKeyword]
}

// At returns eased progress for linear progress t, clamped to [0,1].
func (d Descriptor) At(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	b := d.curve()
	s := solveX(b, t)
	return bezier(s, b.Y1, b.Y2)
}

// bezier evaluates one axis of the curve with end points 0 and 1.
func bezier(s, p1, p2 float64) float64 {
	u := 1 - s
	return 3*u*u*s*p1 + 3*u*s*s*p2 + s*s*s
}

func bezierSlope(s, p1, p2 float64) float64 {
	u := 1 - s
	return 3*u*u*p1 + 6*u*s*(p2-p1) + 3*s*s*(1-p2)
}

// solveX finds the curve parameter whose x equals t.
func solveX(b Bezier, t float64) float64 {
	s := t
	for i := 0; i < 8; i++ {
		x := bezier(s, b.X1, b.X2) - t
		if math.Abs(x) < 1e-6 {
			return s
		}
		d := bezierSlope(s, b.X1, b.X2)
		if math.Abs(d) < 1e-6 {
			break
		}
		s -= x / d
	}

	lo, hi := 0.0, 1.0
	s = t
	for i := 0; i < 50 && lo < hi; i++ {
		x := bezier(s, b.X1, b.X2)
		if math.Abs(x-t) < 1e-6 {
			return s
		}
		if x < t {
			lo = s
		} else {
			hi = s
		}
		s = (lo + hi) / 2
	}
	return s
}

func ftoa(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

// UnmarshalYAML accepts a scalar keyword/cubic-bezier string or a mapping
// of control points.
func (d *Descriptor) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		parsed, err := Parse(node.Value)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case yaml.MappingNode:
		var b Bezier
		if err := node.Decode(&b); err != nil {
			return fmt.Errorf("decode cubic-bezier: %w", err)
		}
		parsed, err := Cubic(b.X1, b.Y1, b.X2, b.Y2)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	default:
		return fmt.Errorf("easing must be a keyword or a control-point mapping")
	}
}

// MarshalYAML writes keywords as scalars and curves as mappings.
func (d Descriptor) MarshalYAML() (any, error) {
	if d.Curve != nil {
		return d.Curve, nil
	}
	return d.String(), nil
}
