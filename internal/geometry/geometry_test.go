package geometry

import "testing"

func TestAreaSize(t *testing.T) {
	tests := []struct {
		area       Area
		w, h, size int
	}{
		{Area{0, 0, 0, 0}, 1, 1, 1},
		{Area{10, 20, 19, 29}, 10, 10, 100},
		{FullScreen(), 320, 240, 320 * 240},
	}
	for _, tt := range tests {
		if tt.area.Width() != tt.w || tt.area.Height() != tt.h || tt.area.Size() != tt.size {
			t.Errorf("%v: got %dx%d=%d, want %dx%d=%d", tt.area,
				tt.area.Width(), tt.area.Height(), tt.area.Size(), tt.w, tt.h, tt.size)
		}
	}
}

func TestAreaWithin(t *testing.T) {
	if !FullScreen().Within(ScreenWidth, ScreenHeight) {
		t.Error("full screen should be within screen")
	}
	for _, a := range []Area{
		{0, 0, ScreenWidth, 10},
		{-1, 0, 10, 10},
		{5, 5, 4, 5},
	} {
		if a.Within(ScreenWidth, ScreenHeight) {
			t.Errorf("%v should not be within screen", a)
		}
	}
}

func TestIntersectUnion(t *testing.T) {
	a := Area{0, 0, 9, 9}
	b := Area{5, 5, 14, 14}

	got, ok := a.Intersect(b)
	if !ok || got != (Area{5, 5, 9, 9}) {
		t.Errorf("Intersect = %v,%v", got, ok)
	}
	if _, ok := a.Intersect(Area{10, 10, 12, 12}); ok {
		t.Error("disjoint areas should not intersect")
	}
	if u := a.Union(b); u != (Area{0, 0, 14, 14}) {
		t.Errorf("Union = %v", u)
	}
	if !a.Contains(Point{9, 0}) || a.Contains(Point{10, 0}) {
		t.Error("Contains boundary check failed")
	}
}
