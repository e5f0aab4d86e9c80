package layer

import (
	"github.com/pkg/errors"

	"github.com/FlavioCFOliveira/asrnet/internal/seqlen"
)

// Bidirectional is a wrapper layer that runs two recurrent layers, one
// forward and one over the reversed sequence, and concatenates their
// outputs step by step.
type Bidirectional struct {
	name          string
	ForwardLayer  *Recurrent
	BackwardLayer *Recurrent
}

// NewBidirectional creates a new bidirectional wrapper for two layers.
func NewBidirectional(name string, forward, backward *Recurrent) *Bidirectional {
	if forward.InSize() != backward.InSize() {
		panic("Bidirectional: forward and backward input sizes differ")
	}
	return &Bidirectional{
		name:          name,
		ForwardLayer:  forward,
		BackwardLayer: backward,
	}
}

func (b *Bidirectional) SetTraining(training bool) {
	b.ForwardLayer.SetTraining(training)
	b.BackwardLayer.SetTraining(training)
}

// Forward processes an entire sequence and returns all concatenated outputs.
func (b *Bidirectional) Forward(seq [][]float64) ([][]float64, error) {
	fOut, err := b.ForwardLayer.Forward(seq)
	if err != nil {
		return nil, err
	}
	bOut, err := b.BackwardLayer.Forward(reverse(seq))
	if err != nil {
		return nil, err
	}

	n := len(seq)
	fSize := b.ForwardLayer.OutSize()
	results := make([][]float64, n)
	for i := 0; i < n; i++ {
		res := make([]float64, b.OutSize())
		copy(res[:fSize], fOut[i])
		copy(res[fSize:], bOut[n-1-i])
		results[i] = res
	}
	return results, nil
}

func reverse(seq [][]float64) [][]float64 {
	out := make([][]float64, len(seq))
	for i, x := range seq {
		out[len(seq)-1-i] = x
	}
	return out
}

func (b *Bidirectional) OutputLength(in seqlen.Length) (seqlen.Length, error) { return in, nil }

func (b *Bidirectional) Name() string { return b.name }

func (b *Bidirectional) Kind() string {
	return "Bidirectional(" + b.ForwardLayer.Kind() + ")"
}

func (b *Bidirectional) InSize() int { return b.ForwardLayer.InSize() }

func (b *Bidirectional) OutSize() int {
	return b.ForwardLayer.OutSize() + b.BackwardLayer.OutSize()
}

func (b *Bidirectional) NumParams() int {
	return b.ForwardLayer.NumParams() + b.BackwardLayer.NumParams()
}

// Params returns the forward parameters followed by the backward ones.
func (b *Bidirectional) Params() []float64 {
	return flatten(b.ForwardLayer.Params(), b.BackwardLayer.Params())
}

func (b *Bidirectional) SetParams(params []float64) error {
	if len(params) != b.NumParams() {
		return errors.Wrapf(ErrShape, "%s: expected %d params, got %d", b.name, b.NumParams(), len(params))
	}
	fLen := b.ForwardLayer.NumParams()
	if err := b.ForwardLayer.SetParams(params[:fLen]); err != nil {
		return err
	}
	return b.BackwardLayer.SetParams(params[fLen:])
}
