package layer

import (
	"github.com/FlavioCFOliveira/asrnet/internal/seqlen"
)

// Recurrent runs a Cell over a sequence and returns the hidden state of
// every step. An optional input dropout, drawn once per sequence, is applied
// while training.
type Recurrent struct {
	name    string
	cell    Cell
	dropout *Dropout
}

// NewRecurrent wraps cell. dropout is the input drop rate, 0 to disable.
func NewRecurrent(name string, cell Cell, dropout float64) *Recurrent {
	r := &Recurrent{name: name, cell: cell}
	if dropout > 0 {
		r.dropout = NewDropout(name+"_dropout", dropout, cell.InSize())
	}
	return r
}

// Cell returns the wrapped recurrent cell.
func (r *Recurrent) Cell() Cell { return r.cell }

func (r *Recurrent) SetTraining(training bool) {
	if r.dropout != nil {
		r.dropout.SetTraining(training)
	}
}

func (r *Recurrent) Forward(seq [][]float64) ([][]float64, error) {
	if err := checkInput(r.name, seq, r.cell.InSize()); err != nil {
		return nil, err
	}
	if r.dropout != nil {
		seq = applyMask(seq, r.dropout.Mask())
	}

	r.cell.Reset()
	out := make([][]float64, len(seq))
	for t, x := range seq {
		out[t] = r.cell.Step(x)
	}
	return out, nil
}

func (r *Recurrent) OutputLength(in seqlen.Length) (seqlen.Length, error) { return in, nil }

func (r *Recurrent) Name() string      { return r.name }
func (r *Recurrent) Kind() string      { return r.cell.Kind() }
func (r *Recurrent) InSize() int       { return r.cell.InSize() }
func (r *Recurrent) OutSize() int      { return r.cell.OutSize() }
func (r *Recurrent) NumParams() int    { return r.cell.NumParams() }
func (r *Recurrent) Params() []float64 { return r.cell.Params() }

func (r *Recurrent) SetParams(params []float64) error {
	return r.cell.SetParams(params)
}
