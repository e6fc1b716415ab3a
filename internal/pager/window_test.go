package pager

import (
	"testing"
	"time"

	"cleancal/internal/model"
)

var anchor = model.NewDate(2024, time.March, 15) // Friday

func TestWindowForCenter(t *testing.T) {
	tests := []struct {
		view   model.ViewType
		start  string
		length int
	}{
		{model.OneDay, "2024-03-15", 1},
		{model.ThreeDay, "2024-03-15", 3},
		{model.TwoWeek, "2024-03-15", 14},
		{model.Month, "2024-03-01", 31},
	}
	for _, tt := range tests {
		w := WindowFor(tt.view, model.CenterIndex, anchor)
		if w.Start.String() != tt.start || w.Length != tt.length {
			t.Errorf("%v: window = {%s, %d}, want {%s, %d}", tt.view, w.Start, w.Length, tt.start, tt.length)
		}
	}
}

func TestWindowForOffsets(t *testing.T) {
	tests := []struct {
		view   model.ViewType
		offset model.PageIndex
		start  string
		length int
	}{
		{model.OneDay, -1, "2024-03-14", 1},
		{model.ThreeDay, 2, "2024-03-21", 3},
		{model.TwoWeek, -1, "2024-03-01", 14},
		{model.Month, 1, "2024-04-01", 30},
		{model.Month, -1, "2024-02-01", 29},
		{model.Month, -3, "2023-12-01", 31},
		{model.Month, 11, "2025-02-01", 28},
	}
	for _, tt := range tests {
		w := WindowFor(tt.view, model.CenterIndex+tt.offset, anchor)
		if w.Start.String() != tt.start || w.Length != tt.length {
			t.Errorf("%v%+d: window = {%s, %d}, want {%s, %d}", tt.view, tt.offset, w.Start, w.Length, tt.start, tt.length)
		}
	}
}

func TestWindowsAreContiguousAndOrdered(t *testing.T) {
	pages := []model.PageIndex{0, 1, model.CenterIndex - 40, model.CenterIndex - 1, model.CenterIndex, model.CenterIndex + 1, model.CenterIndex + 37, model.PageCount - 2}
	for _, view := range model.ViewTypes() {
		for _, p := range pages {
			w1 := WindowFor(view, p, anchor)
			w2 := WindowFor(view, p+1, anchor)
			if !w1.Start.Before(w2.Start) {
				t.Errorf("%v page %d: %s not before %s", view, p, w1.Start, w2.Start)
			}
			if !w1.End().Equal(w2.Start) {
				t.Errorf("%v page %d: gap or overlap, end %s next start %s", view, p, w1.End(), w2.Start)
			}
		}
	}
}

func TestMonthWindowsStartOnFirst(t *testing.T) {
	odd := model.NewDate(2024, time.January, 31)
	for off := model.PageIndex(-25); off <= 25; off++ {
		w := WindowFor(model.Month, model.CenterIndex+off, odd)
		if w.Start.Day() != 1 {
			t.Fatalf("offset %d: month window starts on %s", off, w.Start)
		}
		if w.Length != w.Start.DaysInMonth() {
			t.Fatalf("offset %d: length %d for %s", off, w.Length, w.Start)
		}
	}
}

func TestPageForInvertsWindowFor(t *testing.T) {
	for _, view := range model.ViewTypes() {
		for off := model.PageIndex(-30); off <= 30; off++ {
			page := model.CenterIndex + off
			w := WindowFor(view, page, anchor)
			for _, d := range []model.Date{w.Start, w.Last()} {
				if got := PageFor(view, d, anchor); got != page {
					t.Fatalf("%v: PageFor(%s) = %d, want %d", view, d, got-model.CenterIndex, off)
				}
			}
		}
	}
}

func TestFloorDiv(t *testing.T) {
	tests := []struct{ a, b, want int }{
		{7, 3, 2}, {-1, 3, -1}, {-3, 3, -1}, {-4, 3, -2}, {0, 14, 0}, {-14, 14, -1}, {-15, 14, -2},
	}
	for _, tt := range tests {
		if got := floorDiv(tt.a, tt.b); got != tt.want {
			t.Errorf("floorDiv(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
