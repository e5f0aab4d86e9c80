package main

import (
	"testing"

	"github.com/FlavioCFOliveira/asrnet/internal/models"
)

func TestCharFor(t *testing.T) {
	tests := map[int]string{0: "'", 1: " ", 2: "a", 27: "z", 28: "_"}
	for idx, want := range tests {
		if got := charFor(idx); got != want {
			t.Errorf("charFor(%d) = %q, want %q", idx, got, want)
		}
	}
}

func TestRunPrediction(t *testing.T) {
	model, err := models.BidirectionalRNN(models.MFCCInputDim, 4, models.DefaultOutputDim)
	if err != nil {
		t.Fatal(err)
	}
	if err := runPrediction(model, 6, 3); err != nil {
		t.Fatal(err)
	}
	if err := runPrediction(model, 0, 3); err != nil {
		t.Fatal(err)
	}
}
