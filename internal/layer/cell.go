package layer

import (
	"gonum.org/v1/gonum/mat"

	"github.com/FlavioCFOliveira/asrnet/internal/activations"
)

// Cell is a recurrent unit advanced one time step at a time.
type Cell interface {
	// Kind is the Keras layer name of the cell, e.g. "GRU".
	Kind() string
	InSize() int
	OutSize() int
	// Reset clears the hidden state before a new sequence.
	Reset()
	// Step consumes one input vector and returns a fresh copy of the new
	// hidden state.
	Step(x []float64) []float64
	NumParams() int
	Params() []float64
	SetParams(params []float64) error
}

// SimpleRNN is a fully connected recurrent cell: h = act(Wx + Uh + b).
type SimpleRNN struct {
	name    string
	inSize  int
	outSize int

	// Shapes: [outSize, inSize], [outSize, outSize], [outSize]
	kernel    *mat.Dense
	recurrent *mat.Dense
	bias      *mat.VecDense
	act       activations.Activation

	hidden []float64
	xw, hu mat.VecDense
}

// NewSimpleRNN creates a SimpleRNN cell whose initial weights are seeded
// from name. act defaults to tanh.
func NewSimpleRNN(name string, inSize, outSize int, act activations.Activation) *SimpleRNN {
	mustPositive("SimpleRNN", inSize, outSize)
	if act == nil {
		act = activations.Tanh{}
	}

	rng := newRNG(name, inSize, outSize, 113)
	k := make([]float64, outSize*inSize)
	glorotUniform(rng, k, inSize, outSize)
	r := make([]float64, outSize*outSize)
	glorotUniform(rng, r, outSize, outSize)

	return &SimpleRNN{
		name:      name,
		inSize:    inSize,
		outSize:   outSize,
		kernel:    mat.NewDense(outSize, inSize, k),
		recurrent: mat.NewDense(outSize, outSize, r),
		bias:      mat.NewVecDense(outSize, nil),
		act:       act,
		hidden:    make([]float64, outSize),
	}
}

func (s *SimpleRNN) Kind() string { return "SimpleRNN" }
func (s *SimpleRNN) InSize() int  { return s.inSize }
func (s *SimpleRNN) OutSize() int { return s.outSize }

func (s *SimpleRNN) Reset() {
	for i := range s.hidden {
		s.hidden[i] = 0
	}
}

func (s *SimpleRNN) Step(x []float64) []float64 {
	s.xw.MulVec(s.kernel, mat.NewVecDense(s.inSize, x))
	s.hu.MulVec(s.recurrent, mat.NewVecDense(s.outSize, s.hidden))
	s.xw.AddVec(&s.xw, &s.hu)
	s.xw.AddVec(&s.xw, s.bias)

	activations.Apply(s.act, s.hidden, s.xw.RawVector().Data)
	return append([]float64(nil), s.hidden...)
}

func (s *SimpleRNN) NumParams() int {
	return s.outSize * (s.inSize + s.outSize + 1)
}

// Params returns kernel, recurrent kernel and bias, in that order.
func (s *SimpleRNN) Params() []float64 {
	return flatten(rawData(s.kernel), rawData(s.recurrent), s.bias.RawVector().Data)
}

func (s *SimpleRNN) SetParams(params []float64) error {
	return scatter(s.name, params, rawData(s.kernel), rawData(s.recurrent), s.bias.RawVector().Data)
}
