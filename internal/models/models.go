// Package models assembles the candidate acoustic models. Every model maps a
// sequence of audio feature frames to a sequence of per-step character
// probabilities and knows how many output steps an input length produces.
package models

import (
	"sort"
	"strconv"

	"github.com/FlavioCFOliveira/asrnet/internal/activations"
	"github.com/FlavioCFOliveira/asrnet/internal/layer"
	"github.com/FlavioCFOliveira/asrnet/internal/net"
	"github.com/FlavioCFOliveira/asrnet/internal/seqlen"
)

// Builder builds a model from hyperparameters.
type Builder func(h Hyperparams) (*net.Sequential, error)

var registry = map[string]Builder{
	"simple_rnn": func(h Hyperparams) (*net.Sequential, error) {
		cell, err := cellKind(h.Cell)
		if err != nil {
			return nil, err
		}
		return simpleRNN(cell, h.InputDim, h.OutputDim)
	},
	"rnn": func(h Hyperparams) (*net.Sequential, error) {
		cell, err := cellKind(h.Cell)
		if err != nil {
			return nil, err
		}
		return rnn(cell, h.InputDim, h.Units, h.Activation, h.OutputDim)
	},
	"cnn_rnn": func(h Hyperparams) (*net.Sequential, error) {
		return CNNRNN(h.InputDim, h.Filters, h.KernelSize, h.ConvStride, h.BorderMode, h.Units, h.OutputDim)
	},
	"deep_rnn": func(h Hyperparams) (*net.Sequential, error) {
		cell, err := cellKind(h.Cell)
		if err != nil {
			return nil, err
		}
		return deepRNN(cell, h.InputDim, h.Units, h.RecurLayers, h.OutputDim)
	},
	"bidirectional_rnn": func(h Hyperparams) (*net.Sequential, error) {
		cell, err := cellKind(h.Cell)
		if err != nil {
			return nil, err
		}
		return bidirectionalRNN(cell, h.InputDim, h.Units, h.OutputDim)
	},
	"final": func(h Hyperparams) (*net.Sequential, error) {
		cell, err := cellKind(h.Cell)
		if err != nil {
			return nil, err
		}
		return final(cell, h.InputDim, h.Filters, h.KernelSize, h.ConvStride, h.BorderMode, h.PoolSize, h.Units, h.OutputDim)
	},
}

// Names lists the registered architectures in alphabetical order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build builds the named architecture.
func Build(name string, h Hyperparams) (*net.Sequential, error) {
	b, ok := registry[name]
	if !ok {
		return nil, invalid("unknown architecture %q", name)
	}
	return b(h)
}

func identity(in seqlen.Length) (seqlen.Length, error) { return in, nil }

// output appends the time-distributed projection and the softmax.
func output(layers []layer.Layer, inSize, outputDim int) []layer.Layer {
	return append(layers,
		layer.NewDense("time_distributed", inSize, outputDim, nil),
		layer.NewActivation("softmax", outputDim, activations.Softmax{}),
	)
}

// SimpleRNN is a single GRU of outputDim units followed by a softmax.
func SimpleRNN(inputDim, outputDim int) (*net.Sequential, error) {
	return simpleRNN(newGRU, inputDim, outputDim)
}

func simpleRNN(cell cellFactory, inputDim, outputDim int) (*net.Sequential, error) {
	if err := validateDims(inputDim, outputDim); err != nil {
		return nil, err
	}
	return net.NewSequential("simple_rnn", identity,
		layer.NewRecurrent("rnn", cell("rnn", inputDim, outputDim, nil), 0),
		layer.NewActivation("softmax", outputDim, activations.Softmax{}),
	)
}

// RNN is a GRU with batch normalisation and a time-distributed projection.
func RNN(inputDim, units int, activation string, outputDim int) (*net.Sequential, error) {
	return rnn(newGRU, inputDim, units, activation, outputDim)
}

func rnn(cell cellFactory, inputDim, units int, activation string, outputDim int) (*net.Sequential, error) {
	if err := validateDims(inputDim, outputDim); err != nil {
		return nil, err
	}
	if err := positive("units", units); err != nil {
		return nil, err
	}
	act, err := recurrentActivation(activation)
	if err != nil {
		return nil, err
	}
	layers := []layer.Layer{
		layer.NewRecurrent("rnn", cell("rnn", inputDim, units, act), 0),
		layer.NewBatchNorm("bn_rnn", units, 0.9),
	}
	return net.NewSequential("rnn", identity, output(layers, units, outputDim)...)
}

// CNNRNN puts a strided convolution in front of a SimpleRNN.
func CNNRNN(inputDim, filters, kernelSize, convStride int, border seqlen.BorderMode, units, outputDim int) (*net.Sequential, error) {
	if err := validateDims(inputDim, outputDim); err != nil {
		return nil, err
	}
	if err := validateConv(filters, kernelSize, convStride, border); err != nil {
		return nil, err
	}
	if err := positive("units", units); err != nil {
		return nil, err
	}

	conv := layer.NewConv1D("conv1d", inputDim, filters, kernelSize, convStride, 1, border, activations.ReLU{})
	layers := []layer.Layer{
		conv,
		layer.NewBatchNorm("bn_conv_1d", filters, 0),
		layer.NewRecurrent("rnn", layer.NewSimpleRNN("rnn", filters, units, activations.ReLU{}), 0),
		layer.NewBatchNorm("bn_rnn", units, 0),
	}
	return net.NewSequential("cnn_rnn", conv.Reduction().Project, output(layers, units, outputDim)...)
}

// DeepRNN stacks recurLayers GRUs, each followed by batch normalisation.
func DeepRNN(inputDim, units, recurLayers, outputDim int) (*net.Sequential, error) {
	return deepRNN(newGRU, inputDim, units, recurLayers, outputDim)
}

func deepRNN(cell cellFactory, inputDim, units, recurLayers, outputDim int) (*net.Sequential, error) {
	if err := validateDims(inputDim, outputDim); err != nil {
		return nil, err
	}
	if err := positive("units", units); err != nil {
		return nil, err
	}
	if err := positive("recurrent layers", recurLayers); err != nil {
		return nil, err
	}

	var layers []layer.Layer
	in := inputDim
	for i := 1; i <= recurLayers; i++ {
		suffix := strconv.Itoa(i)
		layers = append(layers,
			layer.NewRecurrent("rnn_"+suffix, cell("rnn_"+suffix, in, units, activations.ReLU{}), 0),
			layer.NewBatchNorm("bn_rnn_"+suffix, units, 0),
		)
		in = units
	}
	return net.NewSequential("deep_rnn", identity, output(layers, units, outputDim)...)
}

// BidirectionalRNN reads the sequence in both directions and concatenates
// the two GRU outputs.
func BidirectionalRNN(inputDim, units, outputDim int) (*net.Sequential, error) {
	return bidirectionalRNN(newGRU, inputDim, units, outputDim)
}

func bidirectional(cell cellFactory, name string, in, units int, dropout float64) *layer.Bidirectional {
	forward, backward := "forward_"+name, "backward_"+name
	return layer.NewBidirectional(name,
		layer.NewRecurrent(forward, cell(forward, in, units, activations.ReLU{}), dropout),
		layer.NewRecurrent(backward, cell(backward, in, units, activations.ReLU{}), dropout),
	)
}

func bidirectionalRNN(cell cellFactory, inputDim, units, outputDim int) (*net.Sequential, error) {
	if err := validateDims(inputDim, outputDim); err != nil {
		return nil, err
	}
	if err := positive("units", units); err != nil {
		return nil, err
	}
	bi := bidirectional(cell, "bidirectional", inputDim, units, 0)
	return net.NewSequential("bidirectional_rnn", identity, output([]layer.Layer{bi}, bi.OutSize(), outputDim)...)
}

// Final combines a convolution, max pooling, two bidirectional GRUs and a
// GRU, each normalised, with input dropout on the recurrent layers.
func Final(inputDim, filters, kernelSize, convStride int, border seqlen.BorderMode, poolSize, units, outputDim int) (*net.Sequential, error) {
	return final(newGRU, inputDim, filters, kernelSize, convStride, border, poolSize, units, outputDim)
}

func final(cell cellFactory, inputDim, filters, kernelSize, convStride int, border seqlen.BorderMode, poolSize, units, outputDim int) (*net.Sequential, error) {
	if err := validateDims(inputDim, outputDim); err != nil {
		return nil, err
	}
	if err := validateConv(filters, kernelSize, convStride, border); err != nil {
		return nil, err
	}
	if err := positive("pool size", poolSize); err != nil {
		return nil, err
	}
	if err := positive("units", units); err != nil {
		return nil, err
	}

	conv := layer.NewConv1D("conv_1d", inputDim, filters, kernelSize, convStride, 1, border, activations.ReLU{})
	bi1 := bidirectional(cell, "bidri_rnn_1", filters, units, FinalDropout)
	bi2 := bidirectional(cell, "bidri_rnn_2", bi1.OutSize(), units, FinalDropout)
	layers := []layer.Layer{
		conv,
		layer.NewMaxPool1D("max_pooling", filters, poolSize, 0, border),
		layer.NewBatchNorm("bn_cnn", filters, 0),
		bi1,
		layer.NewBatchNorm("bn_bidri_rnn_1", bi1.OutSize(), 0),
		bi2,
		layer.NewBatchNorm("bn_bidri_rnn_2", bi2.OutSize(), 0),
		layer.NewRecurrent("rnn", cell("rnn", bi2.OutSize(), units, activations.ReLU{}), FinalDropout),
		layer.NewBatchNorm("bn_rnn", units, 0),
	}
	reduction := conv.Reduction()
	reduction.PoolSize = poolSize
	return net.NewSequential("final", reduction.Project, output(layers, units, outputDim)...)
}
