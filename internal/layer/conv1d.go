package layer

import (
	"gonum.org/v1/gonum/mat"

	"github.com/FlavioCFOliveira/asrnet/internal/activations"
	"github.com/FlavioCFOliveira/asrnet/internal/seqlen"
)

// Conv1D implements a 1D convolution along time.
// The feature vector of each step is the channel axis.
type Conv1D struct {
	name       string
	inChannels int
	filters    int
	kernelSize int
	stride     int
	dilation   int
	border     seqlen.BorderMode
	activation activations.Activation

	// Weights: [filters, kernelSize*inChannels], tap-major so that the
	// weight for filter f, tap j, channel c is at (f, j*inChannels+c).
	weights *mat.Dense
	biases  *mat.VecDense

	// Reusable buffers
	patch []float64
	z     mat.VecDense
}

// NewConv1D creates a new 1D convolutional layer.
// inChannels: number of input features per step
// filters: number of output features per step
// kernelSize: number of taps
// stride, dilation: step between outputs and between taps
// border: padding convention, seqlen.Same or seqlen.Valid
func NewConv1D(name string, inChannels, filters, kernelSize, stride, dilation int,
	border seqlen.BorderMode, activation activations.Activation) *Conv1D {
	mustPositive("Conv1D", inChannels, filters, kernelSize, stride, dilation)
	if activation == nil {
		activation = activations.Linear{}
	}

	w := make([]float64, filters*kernelSize*inChannels)
	glorotUniform(newRNG(name, inChannels, filters, 42+kernelSize), w, kernelSize*inChannels, kernelSize*filters)

	return &Conv1D{
		name:       name,
		inChannels: inChannels,
		filters:    filters,
		kernelSize: kernelSize,
		stride:     stride,
		dilation:   dilation,
		border:     border,
		activation: activation,
		weights:    mat.NewDense(filters, kernelSize*inChannels, w),
		biases:     mat.NewVecDense(filters, nil),
		patch:      make([]float64, kernelSize*inChannels),
	}
}

// Reduction describes the layer's effect on sequence length.
func (c *Conv1D) Reduction() seqlen.Reduction {
	return seqlen.Reduction{
		FilterSize: c.kernelSize,
		BorderMode: c.border,
		Stride:     c.stride,
		Dilation:   c.dilation,
	}
}

func (c *Conv1D) OutputLength(in seqlen.Length) (seqlen.Length, error) {
	return seqlen.ConvOutputLength(in, c.Reduction())
}

// Forward performs a forward pass through the convolutional layer.
// A projected length of zero or less yields an empty sequence.
func (c *Conv1D) Forward(seq [][]float64) ([][]float64, error) {
	if err := checkInput(c.name, seq, c.inChannels); err != nil {
		return nil, err
	}
	projected, err := c.OutputLength(seqlen.Of(len(seq)))
	if err != nil {
		return nil, err
	}
	n, _ := projected.Value()
	if n <= 0 {
		return [][]float64{}, nil
	}

	padLeft := samePadding(c.border, len(seq), n, c.stride, c.Reduction().Span())
	out := make([][]float64, n)
	for o := 0; o < n; o++ {
		start := o*c.stride - padLeft
		for j := 0; j < c.kernelSize; j++ {
			dst := c.patch[j*c.inChannels : (j+1)*c.inChannels]
			t := start + j*c.dilation
			if t < 0 || t >= len(seq) {
				for i := range dst {
					dst[i] = 0
				}
				continue
			}
			copy(dst, seq[t])
		}

		c.z.MulVec(c.weights, mat.NewVecDense(len(c.patch), c.patch))
		c.z.AddVec(&c.z, c.biases)
		out[o] = make([]float64, c.filters)
		activations.Apply(c.activation, out[o], c.z.RawVector().Data)
	}
	return out, nil
}

// samePadding returns the number of zero steps inserted before the sequence.
// Same padding splits max((out-1)*stride+window-in, 0) with the smaller half
// first; valid padding inserts none.
func samePadding(border seqlen.BorderMode, in, out, stride, window int) int {
	if border != seqlen.Same {
		return 0
	}
	total := (out-1)*stride + window - in
	if total < 0 {
		return 0
	}
	return total / 2
}

func (c *Conv1D) Name() string { return c.name }
func (c *Conv1D) Kind() string { return "Conv1D" }
func (c *Conv1D) InSize() int  { return c.inChannels }
func (c *Conv1D) OutSize() int { return c.filters }

// GetKernelSize returns the number of taps.
func (c *Conv1D) GetKernelSize() int { return c.kernelSize }

func (c *Conv1D) NumParams() int {
	return c.filters*c.kernelSize*c.inChannels + c.filters
}

func (c *Conv1D) Params() []float64 {
	return flatten(rawData(c.weights), c.biases.RawVector().Data)
}

func (c *Conv1D) SetParams(params []float64) error {
	return scatter(c.name, params, rawData(c.weights), c.biases.RawVector().Data)
}

// SetWeight sets the weight of filter f for tap j and input channel ch.
func (c *Conv1D) SetWeight(f, j, ch int, val float64) {
	c.weights.Set(f, j*c.inChannels+ch, val)
}
