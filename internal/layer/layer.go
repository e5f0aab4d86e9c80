// Package layer provides the sequence layers the acoustic models are
// assembled from. A sequence is a [][]float64 indexed by time step, each
// step holding one feature vector.
package layer

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/FlavioCFOliveira/asrnet/internal/activations"
	"github.com/FlavioCFOliveira/asrnet/internal/seqlen"
)

// Layer transforms a whole sequence.
type Layer interface {
	// Name is the unique name of the layer inside a model.
	Name() string
	// Kind is the layer type shown in model summaries.
	Kind() string
	InSize() int
	OutSize() int
	Forward(seq [][]float64) ([][]float64, error)
	// OutputLength returns how many time steps Forward produces for an
	// input of the given length.
	OutputLength(in seqlen.Length) (seqlen.Length, error)
	NumParams() int
	Params() []float64
	SetParams(params []float64) error
}

// Trainable is implemented by layers that behave differently while training.
type Trainable interface {
	SetTraining(training bool)
}

// ErrShape is returned when a sequence does not match a layer's input size.
var ErrShape = errors.New("shape mismatch")

func checkInput(name string, seq [][]float64, inSize int) error {
	for t, x := range seq {
		if len(x) != inSize {
			return errors.Wrapf(ErrShape, "%s: step %d has %d features, want %d", name, t, len(x), inSize)
		}
	}
	return nil
}

func mustPositive(kind string, sizes ...int) {
	for _, s := range sizes {
		if s <= 0 {
			panic(fmt.Sprintf("%s: sizes must be positive, got %v", kind, sizes))
		}
	}
}

// newRNG returns a generator seeded from the layer name and shape. Layers
// with different names draw independent streams; rebuilding a model with the
// same names reproduces its weights.
func newRNG(name string, inSize, outSize, salt int) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(name))
	return rand.New(rand.NewSource(int64(h.Sum64()) ^ int64(inSize*1000+outSize*100+salt)))
}

// glorotUniform fills data from U(-limit, limit) with
// limit = sqrt(6 / (fanIn + fanOut)).
func glorotUniform(rng *rand.Rand, data []float64, fanIn, fanOut int) {
	limit := math.Sqrt(6.0 / float64(fanIn+fanOut))
	for i := range data {
		data[i] = rng.Float64()*2*limit - limit
	}
}

func flatten(parts ...[]float64) []float64 {
	total := 0
	for _, p := range parts {
		total += len(p)
	}
	params := make([]float64, 0, total)
	for _, p := range parts {
		params = append(params, p...)
	}
	return params
}

// scatter copies params into parts in order, failing if the total length
// does not match.
func scatter(name string, params []float64, parts ...[]float64) error {
	total := 0
	for _, p := range parts {
		total += len(p)
	}
	if len(params) != total {
		return errors.Wrapf(ErrShape, "%s: expected %d params, got %d", name, total, len(params))
	}
	offset := 0
	for _, p := range parts {
		offset += copy(p, params[offset:])
	}
	return nil
}

func rawData(m *mat.Dense) []float64 {
	return m.RawMatrix().Data
}

// Dense is a fully connected projection applied independently at every
// time step, the equivalent of TimeDistributed(Dense) in Keras.
type Dense struct {
	name    string
	inSize  int
	outSize int

	// Shape: [outSize, inSize]
	weights *mat.Dense
	biases  *mat.VecDense
	act     activations.Activation

	z mat.VecDense
}

// NewDense creates a dense layer with Glorot uniform weights and zero biases.
func NewDense(name string, in, out int, act activations.Activation) *Dense {
	mustPositive("Dense", in, out)
	if act == nil {
		act = activations.Linear{}
	}

	w := make([]float64, out*in)
	glorotUniform(newRNG(name, in, out, 7), w, in, out)

	return &Dense{
		name:    name,
		inSize:  in,
		outSize: out,
		weights: mat.NewDense(out, in, w),
		biases:  mat.NewVecDense(out, nil),
		act:     act,
	}
}

// Apply projects a single feature vector.
func (d *Dense) Apply(x []float64) []float64 {
	d.z.MulVec(d.weights, mat.NewVecDense(d.inSize, x))
	d.z.AddVec(&d.z, d.biases)

	out := make([]float64, d.outSize)
	activations.Apply(d.act, out, d.z.RawVector().Data)
	return out
}

// Forward applies the projection to every time step.
func (d *Dense) Forward(seq [][]float64) ([][]float64, error) {
	if err := checkInput(d.name, seq, d.inSize); err != nil {
		return nil, err
	}
	out := make([][]float64, len(seq))
	for t, x := range seq {
		out[t] = d.Apply(x)
	}
	return out, nil
}

func (d *Dense) OutputLength(in seqlen.Length) (seqlen.Length, error) { return in, nil }

func (d *Dense) Name() string { return d.name }
func (d *Dense) Kind() string { return "TimeDistributed(Dense)" }
func (d *Dense) InSize() int  { return d.inSize }
func (d *Dense) OutSize() int { return d.outSize }

// Activation returns the activation function used by this layer.
func (d *Dense) Activation() activations.Activation { return d.act }

func (d *Dense) NumParams() int { return d.outSize*d.inSize + d.outSize }

// Params returns weights followed by biases.
func (d *Dense) Params() []float64 {
	return flatten(rawData(d.weights), d.biases.RawVector().Data)
}

// SetParams updates weights and biases from a flattened slice.
func (d *Dense) SetParams(params []float64) error {
	return scatter(d.name, params, rawData(d.weights), d.biases.RawVector().Data)
}

// SetWeight sets a single weight at (row, col).
func (d *Dense) SetWeight(row, col int, val float64) {
	d.weights.Set(row, col, val)
}

// SetBias sets a single bias.
func (d *Dense) SetBias(idx int, val float64) {
	d.biases.SetVec(idx, val)
}

// Activation applies an activation function to every time step.
type Activation struct {
	name string
	size int
	act  activations.Activation
}

// NewActivation creates an activation layer over size features.
func NewActivation(name string, size int, act activations.Activation) *Activation {
	mustPositive("Activation", size)
	if act == nil {
		act = activations.Linear{}
	}
	return &Activation{name: name, size: size, act: act}
}

func (a *Activation) Forward(seq [][]float64) ([][]float64, error) {
	if err := checkInput(a.name, seq, a.size); err != nil {
		return nil, err
	}
	out := make([][]float64, len(seq))
	for t, x := range seq {
		out[t] = make([]float64, a.size)
		activations.Apply(a.act, out[t], x)
	}
	return out, nil
}

func (a *Activation) OutputLength(in seqlen.Length) (seqlen.Length, error) { return in, nil }

func (a *Activation) Name() string      { return a.name }
func (a *Activation) Kind() string      { return "Activation" }
func (a *Activation) InSize() int       { return a.size }
func (a *Activation) OutSize() int      { return a.size }
func (a *Activation) NumParams() int    { return 0 }
func (a *Activation) Params() []float64 { return nil }
func (a *Activation) SetParams(p []float64) error {
	return scatter(a.name, p)
}
