package residual_test

import (
	"reflect"
	"testing"

	"github.com/holocodec/holo/internal/residual"
)

func TestChooseBlockCount(t *testing.T) {
	testCases := []struct {
		name          string
		residualBytes int64
		targetKB      int64
		n             int64
		want          int64
	}{
		{"tiny N clamps to N", 100, 32, 2, 2},
		{"never below four", 10, 32, 100, 4},
		{"typical case", 1 << 20, 32, 1 << 19, 32},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := residual.ChooseBlockCount(tc.residualBytes, tc.targetKB, tc.n); got != tc.want {
				t.Errorf("ChooseBlockCount(%d,%d,%d) = %d, want %d", tc.residualBytes, tc.targetKB, tc.n, got, tc.want)
			}
		})
	}
}

func TestChooseBlockCount_DefaultTargetWithinBounds(t *testing.T) {
	n := int64(1 << 19)
	got := residual.ChooseBlockCount(1<<20, 0, n)
	if got < 4 || got > n {
		t.Fatalf("got %d out of bounds [4, %d]", got, n)
	}
}

func TestGatherScatterInt16_RoundTrip(t *testing.T) {
	src := []int16{10, 20, 30, 40, 50}
	idx := []int64{4, 1, 2}

	got := residual.GatherInt16(src, idx)
	want := []int16{50, 20, 30}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("GatherInt16 = %v, want %v", got, want)
	}

	dst := make([]int16, 5)
	residual.ScatterInt16(dst, idx, got)
	for _, i := range idx {
		if dst[i] != src[i] {
			t.Errorf("ScatterInt16: dst[%d] = %d, want %d", i, dst[i], src[i])
		}
	}
}

func TestInt16LE_RoundTrip(t *testing.T) {
	vals := []int16{-32768, -1, 0, 1, 32767}
	got := residual.Int16FromLE(residual.Int16ToLE(vals))
	if !reflect.DeepEqual(got, vals) {
		t.Fatalf("round trip = %v, want %v", got, vals)
	}
}

func TestClipInt32(t *testing.T) {
	if residual.ClipInt32ToUint8(-5) != 0 || residual.ClipInt32ToUint8(300) != 255 || residual.ClipInt32ToUint8(42) != 42 {
		t.Error("ClipInt32ToUint8 boundary wrong")
	}
	if residual.ClipInt32ToInt16(-40000) != -32768 || residual.ClipInt32ToInt16(40000) != 32767 {
		t.Error("ClipInt32ToInt16 boundary wrong")
	}
}
