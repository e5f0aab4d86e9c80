package net

import (
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/FlavioCFOliveira/asrnet/internal/layer"
	"github.com/FlavioCFOliveira/asrnet/internal/seqlen"
)

// Projector maps an input sequence length to the model's output length.
type Projector func(in seqlen.Length) (seqlen.Length, error)

// Sequential is a named model wrapping a Network to provide a Keras-like API.
type Sequential struct {
	*Network

	name      string
	projector Projector
}

// NewSequential creates a new Sequential model. A nil projector falls back
// to the composed projections of the layers.
func NewSequential(name string, projector Projector, layers ...layer.Layer) (*Sequential, error) {
	network, err := New(layers...)
	if err != nil {
		return nil, errors.Wrapf(err, "model %s", name)
	}
	return &Sequential{
		Network:   network,
		name:      name,
		projector: projector,
	}, nil
}

// Name returns the model name.
func (s *Sequential) Name() string { return s.name }

// OutputLength returns the number of output steps for an input length.
func (s *Sequential) OutputLength(in seqlen.Length) (seqlen.Length, error) {
	if s.projector == nil {
		return s.Network.OutputLength(in)
	}
	return s.projector(in)
}

// Predict performs a forward pass in inference mode and returns the
// per-step output.
func (s *Sequential) Predict(x [][]float64) ([][]float64, error) {
	return s.Forward(x)
}

// PredictBatch performs forward pass on a batch of sequences. Sequences may
// have different lengths. Layers keep per-call state, so the batch runs in
// order.
func (s *Sequential) PredictBatch(x [][][]float64) ([][][]float64, error) {
	out := make([][][]float64, len(x))
	for i := range x {
		pred, err := s.Forward(x[i])
		if err != nil {
			return nil, errors.Wrapf(err, "sample %d", i)
		}
		out[i] = pred
	}
	return out, nil
}

type nonTrainable interface {
	NonTrainableParams() int
}

// Summary writes a summary of the network architecture.
func (s *Sequential) Summary(w io.Writer) {
	fmt.Fprintf(w, "Model: %s\n", s.name)
	fmt.Fprintln(w, "_________________________________________________________________")
	fmt.Fprintf(w, "%-25s %-20s %-10s\n", "Layer (type)", "Output Shape", "Param #")
	fmt.Fprintln(w, "=================================================================")

	fmt.Fprintf(w, "%-25s %-20s %-10d\n", "the_input (InputLayer)", shape(s.InSize()), 0)
	totalParams, frozen := 0, 0
	for _, l := range s.layers {
		params := l.NumParams()
		totalParams += params
		if nt, ok := l.(nonTrainable); ok {
			frozen += nt.NonTrainableParams()
		}
		fmt.Fprintf(w, "%-25s %-20s %-10d\n", fmt.Sprintf("%s (%s)", l.Name(), l.Kind()), shape(l.OutSize()), params)
	}
	fmt.Fprintln(w, "=================================================================")
	fmt.Fprintf(w, "Total params: %d\n", totalParams)
	fmt.Fprintf(w, "Trainable params: %d\n", totalParams-frozen)
	fmt.Fprintf(w, "Non-trainable params: %d\n", frozen)
	fmt.Fprintln(w, "_________________________________________________________________")
}

func shape(features int) string {
	return fmt.Sprintf("(None, None, %d)", features)
}
