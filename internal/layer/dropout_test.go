package layer

import (
	"math"
	"reflect"
	"testing"
)

func ones(steps, size int) [][]float64 {
	seq := make([][]float64, steps)
	for t := range seq {
		seq[t] = make([]float64, size)
		for i := range seq[t] {
			seq[t][i] = 1.0
		}
	}
	return seq
}

func TestDropoutForwardTraining(t *testing.T) {
	// Test that dropout zeros out features during training
	dropout := NewDropout("drop", 0.5, 100)
	dropout.SetTraining(true)

	output, err := dropout.Forward(ones(3, 100))
	if err != nil {
		t.Fatal(err)
	}

	// Count non-zero outputs of the first step
	nonZero := 0
	for _, v := range output[0] {
		if v != 0 {
			nonZero++
			if math.Abs(v-2.0) > 1e-12 {
				t.Errorf("kept feature scaled to %v, want 2", v)
			}
		}
	}

	// Approximately 50% should be non-zero with a fixed seed
	if nonZero < 30 || nonZero > 70 {
		t.Errorf("Expected ~50 non-zero outputs, got %d", nonZero)
	}

	// One mask is shared by every step of the sequence
	for step := 1; step < len(output); step++ {
		assertClose(t, "step", output[step], output[0])
	}
}

func TestDropoutForwardInference(t *testing.T) {
	dropout := NewDropout("drop", 0.5, 10)
	input := ones(2, 10)

	output, err := dropout.Forward(input)
	if err != nil {
		t.Fatal(err)
	}
	assertClose(t, "output", flat(output), flat(input))
	if dropout.Mask() != nil {
		t.Error("Mask should be nil in inference mode")
	}
}

func TestDropoutZeroRate(t *testing.T) {
	dropout := NewDropout("drop", 0, 4)
	dropout.SetTraining(true)
	if dropout.Mask() != nil {
		t.Error("Mask should be nil with rate 0")
	}
}

func TestDropoutInvalidRate(t *testing.T) {
	for _, p := range []float64{-0.1, 1, 1.5} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("NewDropout(%v) did not panic", p)
				}
			}()
			NewDropout("drop", p, 4)
		}()
	}
}

func TestRecurrentDropout(t *testing.T) {
	seq := ones(5, 16)
	plain := NewRecurrent("rnn", NewGRU("rnn", 16, 3, nil), 0)
	dropped := NewRecurrent("rnn", NewGRU("rnn", 16, 3, nil), 0.4)

	want, _ := plain.Forward(seq)
	got, err := dropped.Forward(seq)
	if err != nil {
		t.Fatal(err)
	}
	// Inactive outside training
	assertClose(t, "inference", flat(got), flat(want))

	dropped.SetTraining(true)
	trained, err := dropped.Forward(seq)
	if err != nil {
		t.Fatal(err)
	}
	if len(trained) != 5 || len(trained[0]) != 3 {
		t.Fatalf("shape %dx%d", len(trained), len(trained[0]))
	}
	if reflect.DeepEqual(trained, want) {
		t.Error("training mode output equals inference output")
	}

	dropped.SetTraining(false)
	again, _ := dropped.Forward(seq)
	assertClose(t, "back to inference", flat(again), flat(want))
}

func TestDropoutStreamsFollowName(t *testing.T) {
	a := NewDropout("a", 0.5, 32)
	b := NewDropout("b", 0.5, 32)
	a.SetTraining(true)
	b.SetTraining(true)
	if reflect.DeepEqual(a.Mask(), b.Mask()) {
		t.Error("dropouts with different names drew the same mask")
	}
}

func TestBidirectionalDropoutMasksDiffer(t *testing.T) {
	bi := NewBidirectional("bi",
		NewRecurrent("forward_bi", NewGRU("forward_bi", 32, 2, nil), 0.5),
		NewRecurrent("backward_bi", NewGRU("backward_bi", 32, 2, nil), 0.5),
	)
	bi.SetTraining(true)
	fwd, bwd := bi.ForwardLayer.dropout.Mask(), bi.BackwardLayer.dropout.Mask()
	if fwd == nil || bwd == nil {
		t.Fatal("dropout inactive in training mode")
	}
	if reflect.DeepEqual(fwd, bwd) {
		t.Error("both directions drop the same features")
	}
}
