// Package net chains sequence layers into acoustic models.
package net

import (
	"github.com/pkg/errors"

	"github.com/FlavioCFOliveira/asrnet/internal/layer"
	"github.com/FlavioCFOliveira/asrnet/internal/seqlen"
)

// Network is an ordered collection of layers. Each layer's input size must
// match the output size of the layer before it.
type Network struct {
	layers []layer.Layer
}

// New creates a network from layers, checking that consecutive sizes agree
// and that layer names are unique.
func New(layers ...layer.Layer) (*Network, error) {
	if len(layers) == 0 {
		return nil, errors.Wrap(seqlen.ErrInvalidConfiguration, "network has no layers")
	}
	seen := make(map[string]bool, len(layers))
	for i, l := range layers {
		if seen[l.Name()] {
			return nil, errors.Wrapf(seqlen.ErrInvalidConfiguration, "duplicate layer name %q", l.Name())
		}
		seen[l.Name()] = true
		if i > 0 && l.InSize() != layers[i-1].OutSize() {
			return nil, errors.Wrapf(layer.ErrShape, "%s expects %d features but %s produces %d",
				l.Name(), l.InSize(), layers[i-1].Name(), layers[i-1].OutSize())
		}
	}
	return &Network{layers: layers}, nil
}

// Forward performs a forward pass through all layers.
func (n *Network) Forward(seq [][]float64) ([][]float64, error) {
	curr := seq
	for i, l := range n.layers {
		out, err := l.Forward(curr)
		if err != nil {
			return nil, errors.Wrapf(err, "layer %d (%s)", i, l.Name())
		}
		curr = out
	}
	return curr, nil
}

// OutputLength composes the length projections of every layer.
func (n *Network) OutputLength(in seqlen.Length) (seqlen.Length, error) {
	curr := in
	for _, l := range n.layers {
		out, err := l.OutputLength(curr)
		if err != nil {
			return seqlen.Unknown, errors.Wrapf(err, "layer %s", l.Name())
		}
		curr = out
	}
	return curr, nil
}

// SetTraining switches every layer that has a training mode.
func (n *Network) SetTraining(training bool) {
	for _, l := range n.layers {
		if t, ok := l.(layer.Trainable); ok {
			t.SetTraining(training)
		}
	}
}

// InSize is the number of features per input step.
func (n *Network) InSize() int { return n.layers[0].InSize() }

// OutSize is the number of features per output step.
func (n *Network) OutSize() int { return n.layers[len(n.layers)-1].OutSize() }

// Layers returns the network's layers slice.
func (n *Network) Layers() []layer.Layer {
	return n.layers
}

// NumParams returns the total number of parameters.
func (n *Network) NumParams() int {
	total := 0
	for _, l := range n.layers {
		total += l.NumParams()
	}
	return total
}

// Params returns all network parameters flattened (copy).
func (n *Network) Params() []float64 {
	params := make([]float64, 0, n.NumParams())
	for _, l := range n.layers {
		params = append(params, l.Params()...)
	}
	return params
}

// SetParams distributes a flat parameter vector over the layers in order.
func (n *Network) SetParams(params []float64) error {
	if len(params) != n.NumParams() {
		return errors.Wrapf(layer.ErrShape, "expected %d params, got %d", n.NumParams(), len(params))
	}
	offset := 0
	for _, l := range n.layers {
		k := l.NumParams()
		if err := l.SetParams(params[offset : offset+k]); err != nil {
			return err
		}
		offset += k
	}
	return nil
}
