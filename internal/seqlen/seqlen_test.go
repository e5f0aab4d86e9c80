package seqlen

import (
	"errors"
	"testing"
)

func TestUnknownPropagates(t *testing.T) {
	reductions := []Reduction{
		{FilterSize: 11, BorderMode: Valid, Stride: 2},
		{FilterSize: 3, BorderMode: Same, Stride: 1, Dilation: 2},
		{FilterSize: 3, BorderMode: "causal", Stride: 1},
		{},
	}
	for _, r := range reductions {
		got, err := ConvOutputLength(Unknown, r)
		if err != nil || got.Known() {
			t.Errorf("ConvOutputLength(Unknown, %+v) = %v, %v; want None, nil", r, got, err)
		}
		got, err = PoolOutputLength(Unknown, r, 2)
		if err != nil || got.Known() {
			t.Errorf("PoolOutputLength(Unknown, %+v) = %v, %v; want None, nil", r, got, err)
		}
	}
}

func TestConvSameStrideOneIsIdentity(t *testing.T) {
	for _, f := range []int{1, 2, 3, 11} {
		for _, l := range []int{1, 5, 100, 1234} {
			got, err := ConvOutputLength(Of(l), Reduction{FilterSize: f, BorderMode: Same, Stride: 1, Dilation: 1})
			if err != nil {
				t.Fatal(err)
			}
			if n, _ := got.Value(); n != l {
				t.Errorf("f=%d L=%d: got %d", f, l, n)
			}
		}
	}
}

func TestConvOutputLength(t *testing.T) {
	tests := []struct {
		name string
		in   int
		r    Reduction
		want int
	}{
		{"valid stride 1", 10, Reduction{FilterSize: 3, BorderMode: Valid, Stride: 1}, 8},
		{"valid stride 2", 10, Reduction{FilterSize: 3, BorderMode: Valid, Stride: 2}, 4},
		{"same stride 2", 10, Reduction{FilterSize: 3, BorderMode: Same, Stride: 2}, 5},
		{"same stride 3", 10, Reduction{FilterSize: 5, BorderMode: Same, Stride: 3}, 4},
		{"valid dilated", 10, Reduction{FilterSize: 3, BorderMode: Valid, Stride: 1, Dilation: 2}, 6},
		{"valid wide kernel", 100, Reduction{FilterSize: 11, BorderMode: Valid, Stride: 2}, 45},
		{"filter equals input", 3, Reduction{FilterSize: 3, BorderMode: Valid, Stride: 1}, 1},
		{"filter one wider", 3, Reduction{FilterSize: 4, BorderMode: Valid, Stride: 1}, 0},
		{"unclamped negative", 2, Reduction{FilterSize: 7, BorderMode: Valid, Stride: 1}, -4},
		{"negative ceiling", 2, Reduction{FilterSize: 7, BorderMode: Valid, Stride: 3}, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ConvOutputLength(Of(tt.in), tt.r)
			if err != nil {
				t.Fatal(err)
			}
			if n, ok := got.Value(); !ok || n != tt.want {
				t.Errorf("got %v, want %d", got, tt.want)
			}
		})
	}
}

func TestInvalidBorderMode(t *testing.T) {
	for _, l := range []Length{Of(0), Of(1), Of(50)} {
		_, err := ConvOutputLength(l, Reduction{FilterSize: 3, BorderMode: "invalid", Stride: 1})
		if !errors.Is(err, ErrInvalidConfiguration) {
			t.Errorf("ConvOutputLength(%v): err = %v", l, err)
		}
		_, err = PoolOutputLength(l, Reduction{FilterSize: 3, BorderMode: "causal", Stride: 1}, 2)
		if !errors.Is(err, ErrInvalidConfiguration) {
			t.Errorf("PoolOutputLength(%v): err = %v", l, err)
		}
	}
	if _, err := ParseBorderMode("full"); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("ParseBorderMode: err = %v", err)
	}
	if m, err := ParseBorderMode("valid"); err != nil || m != Valid {
		t.Errorf("ParseBorderMode(valid) = %q, %v", m, err)
	}
}

func TestInvalidSizes(t *testing.T) {
	bad := []Reduction{
		{FilterSize: 0, BorderMode: Same, Stride: 1},
		{FilterSize: 3, BorderMode: Same, Stride: 0},
		{FilterSize: 3, BorderMode: Same, Stride: 1, Dilation: -1},
	}
	for _, r := range bad {
		if _, err := ConvOutputLength(Of(10), r); !errors.Is(err, ErrInvalidConfiguration) {
			t.Errorf("%+v: err = %v", r, err)
		}
	}
	if _, err := PoolOutputLength(Of(10), Reduction{FilterSize: 3, BorderMode: Same, Stride: 1}, 0); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("pool size 0: err = %v", err)
	}
}

func TestPoolOutputLength(t *testing.T) {
	tests := []struct {
		name string
		in   int
		r    Reduction
		pool int
		want int
	}{
		// conv 18, pooling input 17, floor(17/2)
		{"valid", 20, Reduction{FilterSize: 3, BorderMode: Valid, Stride: 1}, 2, 8},
		{"same", 20, Reduction{FilterSize: 3, BorderMode: Same, Stride: 1}, 2, 10},
		{"same odd", 21, Reduction{FilterSize: 3, BorderMode: Same, Stride: 1}, 2, 10},
		{"valid strided", 100, Reduction{FilterSize: 11, BorderMode: Valid, Stride: 2}, 2, 22},
		{"valid negative floor", 3, Reduction{FilterSize: 3, BorderMode: Valid, Stride: 1}, 3, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PoolOutputLength(Of(tt.in), tt.r, tt.pool)
			if err != nil {
				t.Fatal(err)
			}
			if n, ok := got.Value(); !ok || n != tt.want {
				t.Errorf("got %v, want %d", got, tt.want)
			}
		})
	}
}

func TestProjectDispatch(t *testing.T) {
	r := Reduction{FilterSize: 3, BorderMode: Valid, Stride: 1}
	got, err := r.Project(Of(20))
	if err != nil || got != Of(18) {
		t.Errorf("conv Project = %v, %v", got, err)
	}
	r.PoolSize = 2
	got, err = r.Project(Of(20))
	if err != nil || got != Of(8) {
		t.Errorf("pool Project = %v, %v", got, err)
	}
}

func TestIdempotent(t *testing.T) {
	r := Reduction{FilterSize: 5, BorderMode: Valid, Stride: 2, Dilation: 3}
	a, errA := ConvOutputLength(Of(77), r)
	b, errB := ConvOutputLength(Of(77), r)
	if a != b || errA != errB {
		t.Errorf("ConvOutputLength not repeatable: %v/%v vs %v/%v", a, errA, b, errB)
	}
	c, _ := PoolOutputLength(Of(77), r, 3)
	d, _ := PoolOutputLength(Of(77), r, 3)
	if c != d {
		t.Errorf("PoolOutputLength not repeatable: %v vs %v", c, d)
	}
}

func TestRoundingHelpers(t *testing.T) {
	tests := []struct{ a, b, floor, ceil int }{
		{7, 2, 3, 4},
		{8, 2, 4, 4},
		{-7, 2, -4, -3},
		{-8, 2, -4, -4},
		{0, 5, 0, 0},
		{-1, 3, -1, 0},
	}
	for _, tt := range tests {
		if got := FloorDiv(tt.a, tt.b); got != tt.floor {
			t.Errorf("FloorDiv(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.floor)
		}
		if got := CeilDiv(tt.a, tt.b); got != tt.ceil {
			t.Errorf("CeilDiv(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.ceil)
		}
	}
}

func TestLengthString(t *testing.T) {
	if Unknown.String() != "None" || Of(42).String() != "42" {
		t.Errorf("String: %q %q", Unknown.String(), Of(42).String())
	}
}
