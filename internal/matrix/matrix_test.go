package matrix_test

import (
	"testing"

	"seatcore.dev/seatcore/internal/matrix"
)

func TestIdentity(t *testing.T) {
	if !matrix.Identity().IsIdentity() {
		t.Fatal("Identity() is not IsIdentity()")
	}
}

func TestScaleMultVec(t *testing.T) {
	m := matrix.Scale(2, 3)
	x, y := m.MultVec(5, 7)
	if x != 10 || y != 21 {
		t.Fatalf("MultVec(5, 7) = (%v, %v), want (10, 21)", x, y)
	}
}

func TestTranslateMultVec(t *testing.T) {
	m := matrix.Translate(1, -2)
	x, y := m.MultVec(5, 7)
	if x != 6 || y != 5 {
		t.Fatalf("MultVec(5, 7) = (%v, %v), want (6, 5)", x, y)
	}
}

func TestMultComposesRightToLeft(t *testing.T) {
	scale := matrix.Scale(2, 2)
	translate := matrix.Translate(10, 0)

	m := matrix.Mult(translate, scale)
	x, y := m.MultVec(1, 1)
	if x != 12 || y != 2 {
		t.Fatalf("MultVec(1, 1) = (%v, %v), want (12, 2)", x, y)
	}
}

func TestFromArray6RoundTrip(t *testing.T) {
	in := [6]float32{1, 0, 5, 0, 1, -3}
	m := matrix.FromArray6(in)
	if got := m.ToArray6(); got != in {
		t.Fatalf("ToArray6() = %v, want %v", got, in)
	}
}

func TestIsIdentityFalseForNonIdentity(t *testing.T) {
	m := matrix.Scale(2, 1)
	if m.IsIdentity() {
		t.Fatal("Scale(2, 1) reported as identity")
	}
}
