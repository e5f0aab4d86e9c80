// Package activations provides the activation functions used by the
// acoustic model layers.
package activations

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// Activation is an element-wise activation function.
type Activation interface {
	// Activate computes f(x)
	Activate(x float64) float64

	// Name returns the Keras identifier of the function.
	Name() string
}

// VectorActivation is an activation that needs the whole feature vector,
// such as softmax.
type VectorActivation interface {
	Activation
	ActivateVec(dst, x []float64)
}

// Apply writes act(x) into dst. dst and x may alias.
func Apply(act Activation, dst, x []float64) {
	if va, ok := act.(VectorActivation); ok {
		va.ActivateVec(dst, x)
		return
	}
	for i, v := range x {
		dst[i] = act.Activate(v)
	}
}

// ReLU activation function.
type ReLU struct{}

// Activate computes max(0, x)
func (ReLU) Activate(x float64) float64 {
	if x > 0 {
		return x
	}
	return 0
}

func (ReLU) Name() string { return "relu" }

// Sigmoid activation function.
type Sigmoid struct{}

// Activate computes 1 / (1 + exp(-x))
func (Sigmoid) Activate(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func (Sigmoid) Name() string { return "sigmoid" }

// HardSigmoid is the piecewise linear sigmoid approximation Keras uses as
// the default recurrent activation of older GRU and LSTM layers.
type HardSigmoid struct{}

// Activate computes clip(0.2*x + 0.5, 0, 1)
func (HardSigmoid) Activate(x float64) float64 {
	return math.Max(0, math.Min(1, 0.2*x+0.5))
}

func (HardSigmoid) Name() string { return "hard_sigmoid" }

// Tanh activation function.
type Tanh struct{}

// Activate computes tanh(x)
func (Tanh) Activate(x float64) float64 {
	return math.Tanh(x)
}

func (Tanh) Name() string { return "tanh" }

// Linear is the identity.
type Linear struct{}

func (Linear) Activate(x float64) float64 { return x }

func (Linear) Name() string { return "linear" }

// Softmax normalises a vector into a probability distribution.
type Softmax struct{}

// Activate panics: softmax is only defined over a vector.
func (Softmax) Activate(x float64) float64 {
	panic("Softmax.Activate: use ActivateVec for Softmax")
}

func (Softmax) Name() string { return "softmax" }

// ActivateVec computes exp(x - max(x)) / sum(exp(x - max(x))).
func (Softmax) ActivateVec(dst, x []float64) {
	if len(x) == 0 {
		return
	}
	maxVal := floats.Max(x)
	for i, v := range x {
		dst[i] = math.Exp(v - maxVal)
	}
	floats.Scale(1/floats.Sum(dst[:len(x)]), dst[:len(x)])
}

// Get returns the activation registered under the Keras name.
func Get(name string) (Activation, error) {
	switch name {
	case "relu":
		return ReLU{}, nil
	case "sigmoid":
		return Sigmoid{}, nil
	case "hard_sigmoid":
		return HardSigmoid{}, nil
	case "tanh":
		return Tanh{}, nil
	case "linear", "":
		return Linear{}, nil
	case "softmax":
		return Softmax{}, nil
	}
	return nil, errors.Errorf("unknown activation %q", name)
}
