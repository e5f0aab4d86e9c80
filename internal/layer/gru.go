package layer

import (
	"gonum.org/v1/gonum/mat"

	"github.com/FlavioCFOliveira/asrnet/internal/activations"
)

// GRU implements a Gated Recurrent Unit cell.
// GRUs are similar to LSTMs but with 2 gates instead of 4 (update and reset gates).
// The reset gate is applied to the previous hidden state before the
// recurrent product of the candidate:
//
//	z  = σ(Wz·x + Uz·h + bz)
//	r  = σ(Wr·x + Ur·h + br)
//	hh = act(Wh·x + Uh·(r∘h) + bh)
//	h' = z∘h + (1-z)∘hh
type GRU struct {
	name    string
	inSize  int
	outSize int

	// Gate blocks stacked in z, r, h order.
	// Shapes: [3*outSize, inSize], [3*outSize, outSize], [3*outSize]
	kernel    *mat.Dense
	recurrent *mat.Dense
	bias      *mat.VecDense

	act          activations.Activation
	recurrentAct activations.Activation

	hidden []float64

	// Reusable buffers
	xw       mat.VecDense
	hz, hr   mat.VecDense
	hh       mat.VecDense
	resetBuf []float64
}

// NewGRU creates a new GRU cell with Glorot uniform kernels.
// name: seeds the initialisation, usually the owning layer name
// inSize: dimension of input vectors
// outSize: dimension of hidden state/output
// act: candidate activation, tanh when nil
func NewGRU(name string, inSize, outSize int, act activations.Activation) *GRU {
	mustPositive("GRU", inSize, outSize)
	if act == nil {
		act = activations.Tanh{}
	}

	rng := newRNG(name, inSize, outSize, 242)
	k := make([]float64, 3*outSize*inSize)
	glorotUniform(rng, k, inSize, 3*outSize)
	r := make([]float64, 3*outSize*outSize)
	glorotUniform(rng, r, outSize, 3*outSize)

	return &GRU{
		name:         name,
		inSize:       inSize,
		outSize:      outSize,
		kernel:       mat.NewDense(3*outSize, inSize, k),
		recurrent:    mat.NewDense(3*outSize, outSize, r),
		bias:         mat.NewVecDense(3*outSize, nil),
		act:          act,
		recurrentAct: activations.Sigmoid{},
		hidden:       make([]float64, outSize),
		resetBuf:     make([]float64, outSize),
	}
}

// SetRecurrentActivation replaces the gate activation (sigmoid by default).
func (g *GRU) SetRecurrentActivation(act activations.Activation) {
	g.recurrentAct = act
}

func (g *GRU) Kind() string { return "GRU" }

// InSize returns the input size of the GRU.
func (g *GRU) InSize() int { return g.inSize }

// OutSize returns the output size (hidden state) of the GRU.
func (g *GRU) OutSize() int { return g.outSize }

// Reset resets the GRU state for a new sequence.
func (g *GRU) Reset() {
	for i := range g.hidden {
		g.hidden[i] = 0
	}
}

// Step performs a forward pass for one time step.
func (g *GRU) Step(x []float64) []float64 {
	u := g.outSize

	// Input contribution for all 3 blocks at once
	g.xw.MulVec(g.kernel, mat.NewVecDense(g.inSize, x))
	g.xw.AddVec(&g.xw, g.bias)
	xw := g.xw.RawVector().Data

	hPrev := mat.NewVecDense(u, g.hidden)
	g.hz.MulVec(g.recurrent.Slice(0, u, 0, u), hPrev)
	g.hr.MulVec(g.recurrent.Slice(u, 2*u, 0, u), hPrev)
	hz := g.hz.RawVector().Data
	hr := g.hr.RawVector().Data

	z := make([]float64, u)
	for i := 0; i < u; i++ {
		z[i] = g.recurrentAct.Activate(xw[i] + hz[i])
		r := g.recurrentAct.Activate(xw[u+i] + hr[i])
		g.resetBuf[i] = r * g.hidden[i]
	}

	g.hh.MulVec(g.recurrent.Slice(2*u, 3*u, 0, u), mat.NewVecDense(u, g.resetBuf))
	hh := g.hh.RawVector().Data
	for i := 0; i < u; i++ {
		hh[i] += xw[2*u+i]
	}
	activations.Apply(g.act, hh, hh)

	for i := 0; i < u; i++ {
		g.hidden[i] = z[i]*g.hidden[i] + (1-z[i])*hh[i]
	}
	return append([]float64(nil), g.hidden...)
}

func (g *GRU) NumParams() int {
	return 3 * g.outSize * (g.inSize + g.outSize + 1)
}

// Params returns all GRU parameters flattened: kernel, recurrent kernel, bias.
func (g *GRU) Params() []float64 {
	return flatten(rawData(g.kernel), rawData(g.recurrent), g.bias.RawVector().Data)
}

// SetParams updates weights and biases from a flattened slice.
func (g *GRU) SetParams(params []float64) error {
	return scatter(g.name, params, rawData(g.kernel), rawData(g.recurrent), g.bias.RawVector().Data)
}

// Hidden returns the current hidden state of the GRU.
func (g *GRU) Hidden() []float64 {
	return g.hidden
}
