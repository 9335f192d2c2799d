package tolerance

import (
	"github.com/turtacn/garnet-screening/pkg/errors"
)

// Default stability band bounds.
const (
	DefaultLow  = 0.748
	DefaultHigh = 1.333
)

// Band is an inclusive [Low, High] acceptance interval.  A disabled band
// accepts everything.
type Band struct {
	Enabled bool    `json:"enabled"`
	Low     float64 `json:"low"`
	High    float64 `json:"high"`
}

// DefaultBand returns the enabled [0.748, 1.333] band.
func DefaultBand() Band {
	return Band{Enabled: true, Low: DefaultLow, High: DefaultHigh}
}

// Validate rejects inverted or negative bounds on an enabled band.
func (b Band) Validate() error {
	if !b.Enabled {
		return nil
	}
	if b.Low < 0 || b.High < 0 {
		return errors.Newf(errors.ErrCodeInvalidBand, "band bounds must be non-negative, got [%g, %g]", b.Low, b.High)
	}
	if b.Low > b.High {
		return errors.Newf(errors.ErrCodeInvalidBand, "band low %g exceeds high %g", b.Low, b.High)
	}
	return nil
}

// Contains reports whether r passes the band.  Undefined factors never pass
// an enabled band, whatever its bounds.
func (b Band) Contains(r Result) bool {
	if !b.Enabled {
		return true
	}
	if !r.Defined() {
		return false
	}
	return r.Value >= b.Low && r.Value <= b.High
}

//Personal.AI order the ending
