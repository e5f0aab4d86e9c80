package models

import (
	"github.com/pkg/errors"

	"github.com/FlavioCFOliveira/asrnet/internal/activations"
	"github.com/FlavioCFOliveira/asrnet/internal/layer"
	"github.com/FlavioCFOliveira/asrnet/internal/seqlen"
)

const (
	// DefaultOutputDim is 28 characters plus the CTC blank.
	DefaultOutputDim = 29
	// DefaultInputDim is the number of spectrogram features per frame.
	DefaultInputDim = 161
	// MFCCInputDim is the number of MFCC features per frame.
	MFCCInputDim = 13

	// FinalDropout is the input dropout rate of the recurrent layers in Final.
	FinalDropout = 0.2
)

// Recurrent cell kinds accepted by Hyperparams.Cell.
const (
	CellGRU       = "gru"
	CellLSTM      = "lstm"
	CellSimpleRNN = "simple_rnn"
)

// Hyperparams holds every knob the builders read. Each builder uses the
// subset it needs.
type Hyperparams struct {
	InputDim    int               `yaml:"input_dim"`
	OutputDim   int               `yaml:"output_dim"`
	Units       int               `yaml:"units"`
	Activation  string            `yaml:"activation"`
	Cell        string            `yaml:"cell"`
	RecurLayers int               `yaml:"recur_layers"`
	Filters     int               `yaml:"filters"`
	KernelSize  int               `yaml:"kernel_size"`
	ConvStride  int               `yaml:"conv_stride"`
	BorderMode  seqlen.BorderMode `yaml:"border_mode"`
	PoolSize    int               `yaml:"pool_size"`
}

// DefaultHyperparams returns sizes suited to spectrogram input and a
// 29-symbol alphabet.
func DefaultHyperparams() Hyperparams {
	return Hyperparams{
		InputDim:    DefaultInputDim,
		OutputDim:   DefaultOutputDim,
		Units:       200,
		Activation:  "relu",
		Cell:        CellGRU,
		RecurLayers: 2,
		Filters:     200,
		KernelSize:  11,
		ConvStride:  2,
		BorderMode:  seqlen.Valid,
		PoolSize:    2,
	}
}

func invalid(format string, args ...interface{}) error {
	return errors.Wrapf(seqlen.ErrInvalidConfiguration, format, args...)
}

func positive(name string, v int) error {
	if v <= 0 {
		return invalid("%s must be positive, got %d", name, v)
	}
	return nil
}

func validateDims(inputDim, outputDim int) error {
	if err := positive("input dim", inputDim); err != nil {
		return err
	}
	return positive("output dim", outputDim)
}

func validateConv(filters, kernelSize, convStride int, border seqlen.BorderMode) error {
	if err := positive("filters", filters); err != nil {
		return err
	}
	r := seqlen.Reduction{FilterSize: kernelSize, BorderMode: border, Stride: convStride}
	return r.Validate()
}

// recurrentActivation resolves an element-wise activation by name.
func recurrentActivation(name string) (activations.Activation, error) {
	act, err := activations.Get(name)
	if err != nil {
		return nil, invalid("%v", err)
	}
	if _, ok := act.(activations.VectorActivation); ok {
		return nil, invalid("activation %q is not element-wise", name)
	}
	return act, nil
}

// cellFactory builds a recurrent cell.
type cellFactory func(name string, in, out int, act activations.Activation) layer.Cell

func newGRU(name string, in, out int, act activations.Activation) layer.Cell {
	return layer.NewGRU(name, in, out, act)
}

func newLSTM(name string, in, out int, act activations.Activation) layer.Cell {
	return layer.NewLSTM(name, in, out, act)
}

func newSimpleRNN(name string, in, out int, act activations.Activation) layer.Cell {
	return layer.NewSimpleRNN(name, in, out, act)
}

func cellKind(kind string) (cellFactory, error) {
	switch kind {
	case CellGRU, "":
		return newGRU, nil
	case CellLSTM:
		return newLSTM, nil
	case CellSimpleRNN:
		return newSimpleRNN, nil
	}
	return nil, invalid("unknown cell %q", kind)
}
