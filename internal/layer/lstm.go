package layer

import (
	"gonum.org/v1/gonum/mat"

	"github.com/FlavioCFOliveira/asrnet/internal/activations"
)

// LSTM is a Long Short-Term Memory cell.
// Gate blocks are stacked in input, forget, cell, output order:
//
//	c' = f∘c + i∘act(Wc·x + Uc·h + bc)
//	h' = o∘act(c')
type LSTM struct {
	name    string
	inSize  int
	outSize int

	// Shapes: [4*outSize, inSize], [4*outSize, outSize], [4*outSize]
	kernel    *mat.Dense
	recurrent *mat.Dense
	bias      *mat.VecDense

	act          activations.Activation
	recurrentAct activations.Activation

	hidden []float64
	cell   []float64

	pre, hu mat.VecDense
}

// NewLSTM creates an LSTM cell seeded from name. The forget gate bias
// starts at 1.
func NewLSTM(name string, inSize, outSize int, act activations.Activation) *LSTM {
	mustPositive("LSTM", inSize, outSize)
	if act == nil {
		act = activations.Tanh{}
	}

	rng := newRNG(name, inSize, outSize, 77)
	k := make([]float64, 4*outSize*inSize)
	glorotUniform(rng, k, inSize, 4*outSize)
	r := make([]float64, 4*outSize*outSize)
	glorotUniform(rng, r, outSize, 4*outSize)

	bias := mat.NewVecDense(4*outSize, nil)
	for i := outSize; i < 2*outSize; i++ {
		bias.SetVec(i, 1)
	}

	return &LSTM{
		name:         name,
		inSize:       inSize,
		outSize:      outSize,
		kernel:       mat.NewDense(4*outSize, inSize, k),
		recurrent:    mat.NewDense(4*outSize, outSize, r),
		bias:         bias,
		act:          act,
		recurrentAct: activations.Sigmoid{},
		hidden:       make([]float64, outSize),
		cell:         make([]float64, outSize),
	}
}

func (l *LSTM) Kind() string { return "LSTM" }
func (l *LSTM) InSize() int  { return l.inSize }
func (l *LSTM) OutSize() int { return l.outSize }

// Reset clears hidden and cell state.
func (l *LSTM) Reset() {
	for i := range l.hidden {
		l.hidden[i] = 0
		l.cell[i] = 0
	}
}

func (l *LSTM) Step(x []float64) []float64 {
	u := l.outSize

	l.pre.MulVec(l.kernel, mat.NewVecDense(l.inSize, x))
	l.hu.MulVec(l.recurrent, mat.NewVecDense(u, l.hidden))
	l.pre.AddVec(&l.pre, &l.hu)
	l.pre.AddVec(&l.pre, l.bias)
	pre := l.pre.RawVector().Data

	for j := 0; j < u; j++ {
		in := l.recurrentAct.Activate(pre[j])
		forget := l.recurrentAct.Activate(pre[u+j])
		out := l.recurrentAct.Activate(pre[3*u+j])
		l.cell[j] = forget*l.cell[j] + in*l.act.Activate(pre[2*u+j])
		l.hidden[j] = out * l.act.Activate(l.cell[j])
	}
	return append([]float64(nil), l.hidden...)
}

func (l *LSTM) NumParams() int {
	return 4 * l.outSize * (l.inSize + l.outSize + 1)
}

func (l *LSTM) Params() []float64 {
	return flatten(rawData(l.kernel), rawData(l.recurrent), l.bias.RawVector().Data)
}

func (l *LSTM) SetParams(params []float64) error {
	return scatter(l.name, params, rawData(l.kernel), rawData(l.recurrent), l.bias.RawVector().Data)
}
