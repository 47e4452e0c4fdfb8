package bitset

import "testing"

func TestWords(t *testing.T) {
	w := Make(256)

	if len(w) != 4 {
		t.Errorf("expected 4 words for 256 bits, got %d", len(w))
	}

	w.Set(10)
	if !w.Test(10) {
		t.Errorf("expected bit 10 to be set")
	}

	if w.Count() != 1 {
		t.Errorf("expected count 1, got %d", w.Count())
	}

	w.Clear(10)
	if w.Test(10) {
		t.Errorf("expected bit 10 to be clear")
	}

	w.Set(0)
	w.Set(63)
	w.Set(64)
	w.Set(255)

	if w.Count() != 4 {
		t.Errorf("expected count 4, got %d", w.Count())
	}

	w.SetTo(64, false)
	if w.Test(64) {
		t.Errorf("expected SetTo(64, false) to clear bit 64")
	}

	w.ClearAll()
	if w.Count() != 0 {
		t.Errorf("expected count 0 after clear, got %d", w.Count())
	}
	if w.Any() {
		t.Errorf("expected Any to be false after clear")
	}
}

func TestWords_TestOutOfRange(t *testing.T) {
	w := Make(64)
	if w.Test(1000) {
		t.Errorf("expected out-of-range bit to read clear")
	}
}

func TestWords_NextSet(t *testing.T) {
	w := Make(512)
	w.Set(3)
	w.Set(63)
	w.Set(64)
	w.Set(300)

	want := []int{3, 63, 64, 300}
	i := 0
	for _, exp := range want {
		got := w.NextSet(i)
		if got != exp {
			t.Fatalf("NextSet(%d): expected %d, got %d", i, exp, got)
		}
		i = got + 1
	}

	if got := w.NextSet(i); got != -1 {
		t.Errorf("expected -1 after last set bit, got %d", got)
	}
	if got := w.NextSet(10000); got != -1 {
		t.Errorf("expected -1 past the end, got %d", got)
	}
	if got := w.NextSet(-5); got != 3 {
		t.Errorf("expected negative start to clamp to 0, got %d", got)
	}
}

func TestWords_NextSetSameWord(t *testing.T) {
	w := Make(64)
	w.Set(5)
	w.Set(9)

	if got := w.NextSet(6); got != 9 {
		t.Errorf("expected 9, got %d", got)
	}
}

func TestWords_Rank(t *testing.T) {
	w := Make(256)
	for _, i := range []int{2, 5, 70, 128, 200} {
		w.Set(i)
	}

	tests := []struct {
		bit  int
		want int
	}{
		{0, 0},   // nothing at or below 0
		{2, 1},   // bit 2 itself
		{4, 1},   // between set bits
		{5, 2},   // bit 5 itself
		{69, 2},  // clear bit: insertion position
		{70, 3},  // crosses a word boundary
		{199, 4}, // clear bit late in the set
		{255, 5}, // everything
	}
	for _, tt := range tests {
		if got := w.Rank(tt.bit); got != tt.want {
			t.Errorf("Rank(%d): expected %d, got %d", tt.bit, tt.want, got)
		}
	}
}

func TestWords_Clone(t *testing.T) {
	w := Make(128)
	w.Set(7)
	w.Set(99)

	c := w.Clone()
	c.Set(50)

	if w.Test(50) {
		t.Errorf("expected clone mutation not to affect the original")
	}
	if !c.Test(7) || !c.Test(99) {
		t.Errorf("expected clone to carry original bits")
	}
}
