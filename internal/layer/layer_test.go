// Package layer provides unit tests for the sequence layers.
package layer

import (
	"errors"
	"math"
	"testing"

	"github.com/FlavioCFOliveira/asrnet/internal/activations"
	"github.com/FlavioCFOliveira/asrnet/internal/seqlen"
)

// column builds a single-feature sequence from scalar values.
func column(values ...float64) [][]float64 {
	seq := make([][]float64, len(values))
	for i, v := range values {
		seq[i] = []float64{v}
	}
	return seq
}

func flat(seq [][]float64) []float64 {
	var out []float64
	for _, x := range seq {
		out = append(out, x...)
	}
	return out
}

func assertClose(t *testing.T, label string, got, want []float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: len = %d, want %d (%v)", label, len(got), len(want), got)
	}
	for i := range got {
		if math.Abs(got[i]-want[i]) > 1e-6 {
			t.Errorf("%s[%d] = %v, want %v", label, i, got[i], want[i])
		}
	}
}

func TestDenseForward(t *testing.T) {
	// Create a simple layer: 2 inputs -> 2 outputs with identity weights
	d := NewDense("dense", 2, 2, activations.Tanh{})

	d.SetWeight(0, 0, 1.0)
	d.SetWeight(0, 1, 0.0)
	d.SetWeight(1, 0, 0.0)
	d.SetWeight(1, 1, 1.0)
	d.SetBias(0, 0.0)
	d.SetBias(1, 0.5)

	out, err := d.Forward([][]float64{{1.0, 2.0}, {-1.0, 0.0}})
	if err != nil {
		t.Fatal(err)
	}
	assertClose(t, "step 0", out[0], []float64{math.Tanh(1.0), math.Tanh(2.5)})
	assertClose(t, "step 1", out[1], []float64{math.Tanh(-1.0), math.Tanh(0.5)})
}

func TestDenseSoftmax(t *testing.T) {
	d := NewDense("dense", 3, 4, activations.Softmax{})
	out, err := d.Forward([][]float64{{0.3, -0.2, 1.0}})
	if err != nil {
		t.Fatal(err)
	}
	sum := 0.0
	for _, v := range out[0] {
		sum += v
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("softmax output sums to %v", sum)
	}
}

func TestDenseParams(t *testing.T) {
	d := NewDense("dense", 4, 3, nil)
	if d.NumParams() != 4*3+3 || len(d.Params()) != d.NumParams() {
		t.Fatalf("NumParams = %d, len(Params) = %d", d.NumParams(), len(d.Params()))
	}

	newParams := make([]float64, d.NumParams())
	for i := range newParams {
		newParams[i] = float64(i + 10)
	}
	if err := d.SetParams(newParams); err != nil {
		t.Fatal(err)
	}
	assertClose(t, "params", d.Params(), newParams)

	if err := d.SetParams(newParams[1:]); !errors.Is(err, ErrShape) {
		t.Errorf("SetParams with short slice: err = %v", err)
	}
}

func TestDenseRejectsWrongWidth(t *testing.T) {
	d := NewDense("dense", 3, 2, nil)
	_, err := d.Forward([][]float64{{1, 2, 3}, {1, 2}})
	if !errors.Is(err, ErrShape) {
		t.Errorf("err = %v, want ErrShape", err)
	}
}

func TestDenseInitFollowsName(t *testing.T) {
	a := NewDense("a", 5, 7, nil)
	assertClose(t, "rebuilt", NewDense("a", 5, 7, nil).Params(), a.Params())

	b := NewDense("b", 5, 7, nil)
	same := true
	for i, v := range a.Params() {
		if v != b.Params()[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("dense layers with different names share weights")
	}
}

func TestActivationLayer(t *testing.T) {
	a := NewActivation("softmax", 2, activations.Softmax{})
	out, err := a.Forward([][]float64{{0, 0}, {1, 1}})
	if err != nil {
		t.Fatal(err)
	}
	assertClose(t, "softmax", flat(out), []float64{0.5, 0.5, 0.5, 0.5})
	if a.NumParams() != 0 || a.SetParams(nil) != nil {
		t.Error("activation layer should have no params")
	}
	if err := a.SetParams([]float64{1}); err == nil {
		t.Error("SetParams with extra values should fail")
	}

	// nil is the identity
	linear := NewActivation("linear", 2, nil)
	out, err = linear.Forward([][]float64{{-1, 2}})
	if err != nil {
		t.Fatal(err)
	}
	assertClose(t, "linear", flat(out), []float64{-1, 2})
}

func TestIdentityLengthLayers(t *testing.T) {
	layers := []Layer{
		NewDense("dense", 2, 2, nil),
		NewActivation("act", 2, activations.ReLU{}),
		NewBatchNorm("bn", 2, 0),
		NewDropout("drop", 0.2, 2),
		NewRecurrent("rnn", NewGRU("rnn", 2, 3, nil), 0),
	}
	for _, l := range layers {
		for _, in := range []seqlen.Length{seqlen.Unknown, seqlen.Of(0), seqlen.Of(17)} {
			got, err := l.OutputLength(in)
			if err != nil || got != in {
				t.Errorf("%s.OutputLength(%v) = %v, %v", l.Name(), in, got, err)
			}
		}
	}
}

func TestEmptySequence(t *testing.T) {
	layers := []Layer{
		NewDense("dense", 2, 2, nil),
		NewBatchNorm("bn", 2, 0),
		NewRecurrent("rnn", NewGRU("rnn", 2, 3, nil), 0),
		NewBidirectional("bi", NewRecurrent("f", NewGRU("f", 2, 3, nil), 0), NewRecurrent("b", NewGRU("b", 2, 3, nil), 0)),
		NewConv1D("conv", 2, 4, 3, 1, 1, seqlen.Same, nil),
		NewMaxPool1D("pool", 2, 2, 0, seqlen.Valid),
	}
	for _, l := range layers {
		out, err := l.Forward([][]float64{})
		if err != nil {
			t.Errorf("%s: %v", l.Name(), err)
			continue
		}
		if len(out) != 0 {
			t.Errorf("%s: got %d steps from an empty sequence", l.Name(), len(out))
		}
	}
}
