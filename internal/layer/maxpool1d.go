package layer

import (
	"math"

	"github.com/FlavioCFOliveira/asrnet/internal/seqlen"
)

// MaxPool1D downsamples along time by taking the maximum over windows.
type MaxPool1D struct {
	name     string
	channels int
	poolSize int
	stride   int
	border   seqlen.BorderMode
}

// NewMaxPool1D creates a pooling layer. stride 0 defaults to poolSize.
func NewMaxPool1D(name string, channels, poolSize, stride int, border seqlen.BorderMode) *MaxPool1D {
	if stride == 0 {
		stride = poolSize
	}
	mustPositive("MaxPool1D", channels, poolSize, stride)
	return &MaxPool1D{
		name:     name,
		channels: channels,
		poolSize: poolSize,
		stride:   stride,
		border:   border,
	}
}

// OutputLength follows the pooling window arithmetic:
// valid gives floor((L-pool)/stride)+1 (0 when L < pool), same gives
// ceil(L/stride).
func (m *MaxPool1D) OutputLength(in seqlen.Length) (seqlen.Length, error) {
	n, ok := in.Value()
	if !ok {
		return seqlen.Unknown, nil
	}
	if err := m.border.Validate(); err != nil {
		return seqlen.Unknown, err
	}
	if m.border == seqlen.Same {
		return seqlen.Of(seqlen.CeilDiv(n, m.stride)), nil
	}
	if n < m.poolSize {
		return seqlen.Of(0), nil
	}
	return seqlen.Of(seqlen.FloorDiv(n-m.poolSize, m.stride) + 1), nil
}

// Forward takes the per-channel maximum of each window. Padded steps never
// win the maximum.
func (m *MaxPool1D) Forward(seq [][]float64) ([][]float64, error) {
	if err := checkInput(m.name, seq, m.channels); err != nil {
		return nil, err
	}
	projected, err := m.OutputLength(seqlen.Of(len(seq)))
	if err != nil {
		return nil, err
	}
	n, _ := projected.Value()

	padLeft := samePadding(m.border, len(seq), n, m.stride, m.poolSize)
	out := make([][]float64, n)
	for o := 0; o < n; o++ {
		start := max(o*m.stride-padLeft, 0)
		end := min(o*m.stride-padLeft+m.poolSize, len(seq))

		res := make([]float64, m.channels)
		for ch := range res {
			res[ch] = math.Inf(-1)
		}
		for t := start; t < end; t++ {
			for ch, v := range seq[t] {
				if v > res[ch] {
					res[ch] = v
				}
			}
		}
		out[o] = res
	}
	return out, nil
}

func (m *MaxPool1D) Name() string      { return m.name }
func (m *MaxPool1D) Kind() string      { return "MaxPooling1D" }
func (m *MaxPool1D) InSize() int       { return m.channels }
func (m *MaxPool1D) OutSize() int      { return m.channels }
func (m *MaxPool1D) NumParams() int    { return 0 }
func (m *MaxPool1D) Params() []float64 { return nil }

func (m *MaxPool1D) SetParams(p []float64) error {
	return scatter(m.name, p)
}
