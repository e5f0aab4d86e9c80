// Package seqlen projects sequence lengths through the time-axis reductions
// (convolution, pooling) used by the acoustic models.
//
// All functions are pure and safe for concurrent use.
package seqlen

import (
	"strconv"

	"github.com/pkg/errors"
)

// ErrInvalidConfiguration is returned when a reduction is described with
// parameters outside their domain, such as an unsupported border mode.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Length is a number of time steps, or unknown when the duration is only
// known at run time.
type Length struct {
	n     int
	known bool
}

// Unknown is the length of a sequence whose duration is not known yet.
var Unknown = Length{}

// Of returns a known length of n time steps.
func Of(n int) Length {
	return Length{n: n, known: true}
}

// Known reports whether l carries a concrete value.
func (l Length) Known() bool {
	return l.known
}

// Value returns the number of time steps and whether it is known.
func (l Length) Value() (int, bool) {
	return l.n, l.known
}

// String renders the length the way Keras prints a dynamic dimension.
func (l Length) String() string {
	if !l.known {
		return "None"
	}
	return strconv.Itoa(l.n)
}

// BorderMode is the padding convention of a reduction along time.
type BorderMode string

const (
	// Same pads the input so that the pre-stride length is preserved.
	Same BorderMode = "same"
	// Valid applies the window only where it fits entirely.
	Valid BorderMode = "valid"
)

// Validate returns ErrInvalidConfiguration unless m is Same or Valid.
func (m BorderMode) Validate() error {
	switch m {
	case Same, Valid:
		return nil
	}
	return errors.Wrapf(ErrInvalidConfiguration, "border mode %q: only %q or %q are supported", string(m), Same, Valid)
}

// ParseBorderMode converts a textual border mode, as found in configuration
// files, into a BorderMode.
func ParseBorderMode(s string) (BorderMode, error) {
	m := BorderMode(s)
	if err := m.Validate(); err != nil {
		return "", err
	}
	return m, nil
}

// Reduction describes one spatial reduction applied along time.
type Reduction struct {
	FilterSize int
	BorderMode BorderMode
	Stride     int
	// Dilation defaults to 1 when zero.
	Dilation int
	// PoolSize is zero for reductions without a pooling stage.
	PoolSize int
}

// Span returns the effective width of the dilated filter.
func (r Reduction) Span() int {
	return r.FilterSize + (r.FilterSize-1)*(r.dilation()-1)
}

func (r Reduction) dilation() int {
	if r.Dilation == 0 {
		return 1
	}
	return r.Dilation
}

// Validate checks every field of the reduction.
func (r Reduction) Validate() error {
	if err := r.BorderMode.Validate(); err != nil {
		return err
	}
	if r.FilterSize <= 0 {
		return errors.Wrapf(ErrInvalidConfiguration, "filter size %d must be positive", r.FilterSize)
	}
	if r.Stride <= 0 {
		return errors.Wrapf(ErrInvalidConfiguration, "stride %d must be positive", r.Stride)
	}
	if r.Dilation < 0 {
		return errors.Wrapf(ErrInvalidConfiguration, "dilation %d must be positive", r.Dilation)
	}
	if r.PoolSize < 0 {
		return errors.Wrapf(ErrInvalidConfiguration, "pool size %d must be positive", r.PoolSize)
	}
	return nil
}

// Project applies r to in: ConvOutputLength when r has no pooling stage,
// PoolOutputLength otherwise.
func (r Reduction) Project(in Length) (Length, error) {
	if r.PoolSize == 0 {
		return ConvOutputLength(in, r)
	}
	return PoolOutputLength(in, r, r.PoolSize)
}

// ConvOutputLength returns the length of a sequence of length in after a 1D
// convolution described by r. Same padding preserves the length before
// striding, valid padding shrinks it by span-1. The intermediate length is
// not clamped, so a filter wider than the input yields zero or a negative
// value.
func ConvOutputLength(in Length, r Reduction) (Length, error) {
	if !in.known {
		return Unknown, nil
	}
	if err := r.Validate(); err != nil {
		return Unknown, err
	}

	out := in.n
	if r.BorderMode == Valid {
		out = in.n - r.Span() + 1
	}
	return Of(CeilDiv(out, r.Stride)), nil
}

// PoolOutputLength returns the length after the convolution conv followed
// by pooling with windows of poolSize, the pooling stage using the same
// border mode as the convolution. As with ConvOutputLength, intermediate
// lengths are not clamped.
func PoolOutputLength(in Length, conv Reduction, poolSize int) (Length, error) {
	if !in.known {
		return Unknown, nil
	}
	if err := conv.BorderMode.Validate(); err != nil {
		return Unknown, err
	}
	if poolSize <= 0 {
		return Unknown, errors.Wrapf(ErrInvalidConfiguration, "pool size %d must be positive", poolSize)
	}

	c, err := ConvOutputLength(in, conv)
	if err != nil {
		return Unknown, err
	}
	out := c.n
	if conv.BorderMode == Valid {
		out = c.n - poolSize + 1
	}
	return Of(FloorDiv(out, poolSize)), nil
}

// FloorDiv divides a by a positive b rounding toward negative infinity.
func FloorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && a < 0 {
		q--
	}
	return q
}

// CeilDiv divides a by a positive b rounding toward positive infinity.
func CeilDiv(a, b int) int {
	return -FloorDiv(-a, b)
}
