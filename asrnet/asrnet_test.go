package asrnet

import (
	"errors"
	"testing"
)

func TestFacade(t *testing.T) {
	model, err := CNNRNN(DefaultInputDim, 8, 11, 2, Valid, 4, DefaultOutputDim)
	if err != nil {
		t.Fatal(err)
	}
	got, err := model.OutputLength(Of(100))
	if err != nil {
		t.Fatal(err)
	}
	want, _ := ConvOutputLength(Of(100), Reduction{FilterSize: 11, BorderMode: Valid, Stride: 2})
	if got != want || want != Of(45) {
		t.Errorf("OutputLength(100) = %v, want %v", got, want)
	}

	if _, err := Build("final", Hyperparams{}); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("zero hyperparams: err = %v", err)
	}
	if len(Architectures()) != 6 {
		t.Errorf("Architectures() = %v", Architectures())
	}
}
