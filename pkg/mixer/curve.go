// ABOUTME: Fade curves used at overlap boundaries
// ABOUTME: Equal-power, linear and smoothstep gain ramps over [0,1]
package mixer

import (
	"fmt"
	"math"
	"strings"

	"github.com/harperreed/automashup-go/pkg/audio"
)

// Curve shapes a fade-in ramp. Fade-outs use the mirrored ramp.
type Curve int

const (
	EqualPower Curve = iota
	Linear
	Smoothstep
)

// ParseCurve accepts equal-power, linear or smoothstep
func ParseCurve(s string) (Curve, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "equal-power", "equalpower", "":
		return EqualPower, nil
	case "linear":
		return Linear, nil
	case "smoothstep":
		return Smoothstep, nil
	}
	return 0, fmt.Errorf("%w: unknown crossfade curve %q", audio.ErrInvalidParameter, s)
}

func (c Curve) String() string {
	switch c {
	case EqualPower:
		return "equal-power"
	case Linear:
		return "linear"
	case Smoothstep:
		return "smoothstep"
	}
	return fmt.Sprintf("Curve(%d)", int(c))
}

// Gain returns the fade-in gain at progress p, clamped to [0,1]
func (c Curve) Gain(p float64) float64 {
	if p <= 0 {
		return 0
	}
	if p >= 1 {
		return 1
	}
	switch c {
	case Linear:
		return p
	case Smoothstep:
		// 3p^2 - 2p^3
		return p * p * (3 - 2*p)
	default:
		return math.Sin(p * math.Pi / 2)
	}
}

func (c Curve) valid() bool {
	return c >= EqualPower && c <= Smoothstep
}
