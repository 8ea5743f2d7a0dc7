package dvm

import (
	"math"
	"testing"

	"github.com/williamofai/certifiable-data/coretypes"
)

func TestRoundShiftRNE_Literals(t *testing.T) {
	cases := []struct {
		x    int64
		s    uint32
		want int32
	}{
		{0x00018000, 16, 2},
		{0x00028000, 16, 2},
		{0x00038000, 16, 4},
	}
	for _, c := range cases {
		var f coretypes.Faults
		got := RoundShiftRNE(c.x, c.s, &f)
		if got != c.want {
			t.Fatalf("RoundShiftRNE(0x%x, %d) = %d, want %d", c.x, c.s, got, c.want)
		}
		if f.Any() {
			t.Fatalf("unexpected fault for RoundShiftRNE(0x%x, %d): %+v", c.x, c.s, f)
		}
	}
}

func TestRoundShiftRNE_DomainFault(t *testing.T) {
	var f coretypes.Faults
	got := RoundShiftRNE(1, 63, &f)
	if got != 0 || !f.Domain {
		t.Fatalf("shift>62: got=%d domain=%v, want 0/true", got, f.Domain)
	}
}

func TestRoundShiftRNE_RoundingLaw(t *testing.T) {
	// round_shift_rne(x << s, s) == x for all x in int32 range.
	samples := []int32{0, 1, -1, math.MinInt32, math.MaxInt32, 12345, -54321}
	for _, x := range samples {
		for _, s := range []uint32{1, 4, 16, 31} {
			var f coretypes.Faults
			widened := int64(x) << s
			got := RoundShiftRNE(widened, s, &f)
			if got != x {
				t.Fatalf("RoundShiftRNE(%d<<%d, %d) = %d, want %d", x, s, s, got, x)
			}
		}
	}
}

func TestMulQ16_Literal(t *testing.T) {
	var f coretypes.Faults
	got := MulQ16(2*coretypes.FixedOne, 3*coretypes.FixedOne, &f)
	want := int32(6 * coretypes.FixedOne)
	if got != want || f.Any() {
		t.Fatalf("MulQ16(2,3) = %d faults=%+v, want %d no fault", got, f, want)
	}
}

func TestSaturationLaw(t *testing.T) {
	var f coretypes.Faults
	got := Add32(math.MaxInt32, 1, &f)
	if got != math.MaxInt32 || !f.Overflow {
		t.Fatalf("Add32(MaxInt32,1) = %d overflow=%v, want MaxInt32/true", got, f.Overflow)
	}

	f.Clear()
	got = Add32(math.MinInt32, -1, &f)
	if got != math.MinInt32 || !f.Underflow {
		t.Fatalf("Add32(MinInt32,-1) = %d underflow=%v, want MinInt32/true", got, f.Underflow)
	}
}

func TestDivQ16_DivZero(t *testing.T) {
	var f coretypes.Faults
	got := DivQ16(coretypes.FixedOne, 0, &f)
	if got != 0 || !f.DivZero {
		t.Fatalf("DivQ16(x,0) = %d div_zero=%v, want 0/true", got, f.DivZero)
	}
}

func TestDivQ16_Basic(t *testing.T) {
	var f coretypes.Faults
	// 6.0 / 3.0 = 2.0
	got := DivQ16(6*coretypes.FixedOne, 3*coretypes.FixedOne, &f)
	if got != 2*coretypes.FixedOne || f.Any() {
		t.Fatalf("DivQ16(6,3) = %d faults=%+v, want %d", got, f, 2*coretypes.FixedOne)
	}
}

func TestClamp32_Exact(t *testing.T) {
	var f coretypes.Faults
	if got := Clamp32(math.MaxInt32, &f); got != math.MaxInt32 || f.Any() {
		t.Fatalf("Clamp32(MaxInt32) = %d faults=%+v", got, f)
	}
	if got := Clamp32(math.MaxInt32+1, &f); got != math.MaxInt32 || !f.Overflow {
		t.Fatalf("Clamp32(MaxInt32+1) = %d overflow=%v", got, f.Overflow)
	}
	f.Clear()
	if got := Clamp32(math.MinInt32-1, &f); got != math.MinInt32 || !f.Underflow {
		t.Fatalf("Clamp32(MinInt32-1) = %d underflow=%v", got, f.Underflow)
	}
}
