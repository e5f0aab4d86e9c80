// Package asrnet exposes the acoustic model builders and the sequence
// length helpers to code outside this module.
package asrnet

import (
	"github.com/FlavioCFOliveira/asrnet/internal/layer"
	"github.com/FlavioCFOliveira/asrnet/internal/models"
	"github.com/FlavioCFOliveira/asrnet/internal/net"
	"github.com/FlavioCFOliveira/asrnet/internal/seqlen"
)

// Re-export common types and functions for easier access
type (
	Model       = net.Sequential
	Layer       = layer.Layer
	Hyperparams = models.Hyperparams
	Length      = seqlen.Length
	BorderMode  = seqlen.BorderMode
	Reduction   = seqlen.Reduction
)

const (
	Same  = seqlen.Same
	Valid = seqlen.Valid

	DefaultOutputDim = models.DefaultOutputDim
	DefaultInputDim  = models.DefaultInputDim
)

var (
	// Unknown is the length of a sequence whose size is not known yet.
	Unknown = seqlen.Unknown

	ErrInvalidConfiguration = seqlen.ErrInvalidConfiguration
	ErrShape                = layer.ErrShape
)

// Lengths
func Of(n int) Length { return seqlen.Of(n) }

func ConvOutputLength(in Length, r Reduction) (Length, error) {
	return seqlen.ConvOutputLength(in, r)
}

func PoolOutputLength(in Length, conv Reduction, poolSize int) (Length, error) {
	return seqlen.PoolOutputLength(in, conv, poolSize)
}

// Models
func DefaultHyperparams() Hyperparams { return models.DefaultHyperparams() }

func Build(name string, h Hyperparams) (*Model, error) { return models.Build(name, h) }

func Architectures() []string { return models.Names() }

func SimpleRNN(inputDim, outputDim int) (*Model, error) {
	return models.SimpleRNN(inputDim, outputDim)
}

func RNN(inputDim, units int, activation string, outputDim int) (*Model, error) {
	return models.RNN(inputDim, units, activation, outputDim)
}

func CNNRNN(inputDim, filters, kernelSize, convStride int, border BorderMode, units, outputDim int) (*Model, error) {
	return models.CNNRNN(inputDim, filters, kernelSize, convStride, border, units, outputDim)
}

func DeepRNN(inputDim, units, recurLayers, outputDim int) (*Model, error) {
	return models.DeepRNN(inputDim, units, recurLayers, outputDim)
}

func BidirectionalRNN(inputDim, units, outputDim int) (*Model, error) {
	return models.BidirectionalRNN(inputDim, units, outputDim)
}

func Final(inputDim, filters, kernelSize, convStride int, border BorderMode, poolSize, units, outputDim int) (*Model, error) {
	return models.Final(inputDim, filters, kernelSize, convStride, border, poolSize, units, outputDim)
}
