package catalog

import (
	"fmt"
	"math"

	"github.com/complyhq/compliance-engine/pkg/errors"
)

// Fee describes the cost attached to a requirement template.  The set of
// implementations is closed: FixedFee, RangeFee and UnknownFee.
type Fee interface {
	// Normalize reduces the fee to a single estimated amount.  A nil result
	// with a nil error means the fee is genuinely unknown.  A nil result
	// with an INVALID_FEE_RANGE error means the definition is contradictory;
	// callers are expected to proceed without an estimate.
	Normalize() (*float64, error)

	// Kind returns a stable identifier for the fee shape.
	Kind() string

	sealed()
}

// round2 rounds to two decimal places, half away from zero.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// FixedFee is a known flat amount.
type FixedFee struct {
	Amount float64
}

func (f FixedFee) Normalize() (*float64, error) {
	v := round2(f.Amount)
	return &v, nil
}

func (FixedFee) Kind() string { return "FIXED" }
func (FixedFee) sealed()      {}

// RangeFee is an amount known only as an inclusive [Min, Max] interval; the
// estimate is the midpoint.
type RangeFee struct {
	Min float64
	Max float64
}

func (f RangeFee) Normalize() (*float64, error) {
	if f.Min > f.Max {
		return nil, errors.InvalidRange(
			fmt.Sprintf("fee range minimum %.2f exceeds maximum %.2f", f.Min, f.Max))
	}
	v := round2((f.Min + f.Max) / 2)
	return &v, nil
}

func (RangeFee) Kind() string { return "RANGE" }
func (RangeFee) sealed()      {}

// UnknownFee marks a requirement whose cost cannot be estimated, e.g. an
// assessment computed by the authority at filing time.
type UnknownFee struct{}

func (UnknownFee) Normalize() (*float64, error) { return nil, nil }
func (UnknownFee) Kind() string                 { return "UNKNOWN" }
func (UnknownFee) sealed()                      {}
