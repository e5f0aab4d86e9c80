package layer

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/FlavioCFOliveira/asrnet/internal/seqlen"
)

const (
	// DefaultBatchNormMomentum is the moving statistics decay.
	DefaultBatchNormMomentum = 0.99
	// DefaultBatchNormEpsilon is added to the variance before the square root.
	DefaultBatchNormEpsilon = 1e-3
)

// BatchNorm normalises every feature of every time step.
// In inference mode it uses the moving statistics. In training mode it
// normalises with the statistics of the current sequence and folds them into
// the moving statistics as moving = moving*momentum + batch*(1-momentum).
type BatchNorm struct {
	name        string
	numFeatures int
	eps         float64
	momentum    float64

	// Learnable parameters
	gamma []float64
	beta  []float64

	// Moving statistics for inference
	movingMean []float64
	movingVar  []float64

	// Contiguous storage for gamma, beta, movingMean, movingVar
	params []float64

	training bool
}

// NewBatchNorm creates a new batch normalization layer.
// momentum 0 selects DefaultBatchNormMomentum.
func NewBatchNorm(name string, numFeatures int, momentum float64) *BatchNorm {
	mustPositive("BatchNorm", numFeatures)
	if momentum == 0 {
		momentum = DefaultBatchNormMomentum
	}
	if momentum < 0 || momentum > 1 {
		panic(errors.Errorf("BatchNorm: momentum %v outside [0, 1]", momentum))
	}

	params := make([]float64, 4*numFeatures)
	b := &BatchNorm{
		name:        name,
		numFeatures: numFeatures,
		eps:         DefaultBatchNormEpsilon,
		momentum:    momentum,
		params:      params,
		gamma:       params[:numFeatures],
		beta:        params[numFeatures : 2*numFeatures],
		movingMean:  params[2*numFeatures : 3*numFeatures],
		movingVar:   params[3*numFeatures:],
	}
	for i := 0; i < numFeatures; i++ {
		b.gamma[i] = 1
		b.movingVar[i] = 1
	}
	return b
}

// SetTraining sets whether the layer is in training mode.
func (b *BatchNorm) SetTraining(training bool) { b.training = training }

// IsTraining returns whether the layer is in training mode.
func (b *BatchNorm) IsTraining() bool { return b.training }

func (b *BatchNorm) Forward(seq [][]float64) ([][]float64, error) {
	if err := checkInput(b.name, seq, b.numFeatures); err != nil {
		return nil, err
	}
	if len(seq) == 0 {
		return [][]float64{}, nil
	}

	mean, variance := b.movingMean, b.movingVar
	if b.training {
		mean, variance = b.sequenceStats(seq)
		for f := 0; f < b.numFeatures; f++ {
			b.movingMean[f] = b.movingMean[f]*b.momentum + mean[f]*(1-b.momentum)
			b.movingVar[f] = b.movingVar[f]*b.momentum + variance[f]*(1-b.momentum)
		}
	}

	out := make([][]float64, len(seq))
	for t, x := range seq {
		y := make([]float64, b.numFeatures)
		for f, v := range x {
			y[f] = b.gamma[f]*(v-mean[f])/math.Sqrt(variance[f]+b.eps) + b.beta[f]
		}
		out[t] = y
	}
	return out, nil
}

// sequenceStats returns the population mean and variance of every feature
// over the time axis.
func (b *BatchNorm) sequenceStats(seq [][]float64) (mean, variance []float64) {
	m := mat.NewDense(len(seq), b.numFeatures, nil)
	for t, x := range seq {
		m.SetRow(t, x)
	}

	mean = make([]float64, b.numFeatures)
	variance = make([]float64, b.numFeatures)
	col := make([]float64, len(seq))
	for f := 0; f < b.numFeatures; f++ {
		mat.Col(col, f, m)
		mean[f], variance[f] = stat.PopMeanVariance(col, nil)
	}
	return mean, variance
}

func (b *BatchNorm) OutputLength(in seqlen.Length) (seqlen.Length, error) { return in, nil }

func (b *BatchNorm) Name() string   { return b.name }
func (b *BatchNorm) Kind() string   { return "BatchNormalization" }
func (b *BatchNorm) InSize() int    { return b.numFeatures }
func (b *BatchNorm) OutSize() int   { return b.numFeatures }
func (b *BatchNorm) NumParams() int { return len(b.params) }

// NonTrainableParams counts the moving statistics.
func (b *BatchNorm) NonTrainableParams() int { return 2 * b.numFeatures }

// Params returns gamma, beta, moving mean and moving variance.
func (b *BatchNorm) Params() []float64 {
	return append([]float64(nil), b.params...)
}

func (b *BatchNorm) SetParams(params []float64) error {
	return scatter(b.name, params, b.params)
}

func (b *BatchNorm) GetGamma() []float64      { return b.gamma }
func (b *BatchNorm) GetBeta() []float64       { return b.beta }
func (b *BatchNorm) GetMovingMean() []float64 { return b.movingMean }
func (b *BatchNorm) GetMovingVar() []float64  { return b.movingVar }
func (b *BatchNorm) GetEps() float64          { return b.eps }
func (b *BatchNorm) GetMomentum() float64     { return b.momentum }
