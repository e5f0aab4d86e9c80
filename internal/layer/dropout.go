package layer

import (
	"math/rand"

	"github.com/pkg/errors"

	"github.com/FlavioCFOliveira/asrnet/internal/seqlen"
)

// Dropout implements dropout regularization.
// During training, randomly sets features to 0 with probability p, using one
// mask for the whole sequence, and scales the kept ones by 1/(1-p).
// During inference, passes inputs through unchanged.
type Dropout struct {
	name string
	size int

	// Probability of dropping a feature
	p float64

	training bool

	rng *rand.Rand
}

// NewDropout creates a new dropout layer in inference mode.
func NewDropout(name string, p float64, size int) *Dropout {
	mustPositive("Dropout", size)
	if p < 0 || p >= 1 {
		panic(errors.Errorf("Dropout: rate %v outside [0, 1)", p))
	}
	return &Dropout{
		name: name,
		size: size,
		p:    p,
		rng:  newRNG(name, size, size, 42),
	}
}

// SetTraining sets whether the layer should be in training or inference mode.
func (d *Dropout) SetTraining(training bool) {
	d.training = training
}

// IsTraining returns whether the layer is in training mode.
func (d *Dropout) IsTraining() bool {
	return d.training
}

// Rate returns the drop probability.
func (d *Dropout) Rate() float64 { return d.p }

// Mask draws a fresh mask, or returns nil when dropout is inactive.
func (d *Dropout) Mask() []float64 {
	if !d.training || d.p == 0 {
		return nil
	}
	scale := 1 / (1 - d.p)
	mask := make([]float64, d.size)
	for i := range mask {
		if d.rng.Float64() >= d.p {
			mask[i] = scale
		}
	}
	return mask
}

func (d *Dropout) Forward(seq [][]float64) ([][]float64, error) {
	if err := checkInput(d.name, seq, d.size); err != nil {
		return nil, err
	}
	return applyMask(seq, d.Mask()), nil
}

// applyMask returns seq unchanged when mask is nil, otherwise a masked copy.
func applyMask(seq [][]float64, mask []float64) [][]float64 {
	if mask == nil {
		return seq
	}
	out := make([][]float64, len(seq))
	for t, x := range seq {
		out[t] = make([]float64, len(x))
		for i, v := range x {
			out[t][i] = v * mask[i]
		}
	}
	return out
}

func (d *Dropout) OutputLength(in seqlen.Length) (seqlen.Length, error) { return in, nil }

func (d *Dropout) Name() string      { return d.name }
func (d *Dropout) Kind() string      { return "Dropout" }
func (d *Dropout) InSize() int       { return d.size }
func (d *Dropout) OutSize() int      { return d.size }
func (d *Dropout) NumParams() int    { return 0 }
func (d *Dropout) Params() []float64 { return nil }

func (d *Dropout) SetParams(p []float64) error {
	return scatter(d.name, p)
}
