package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"cleancal/internal/events"
	"cleancal/internal/model"
)

func TestRange(t *testing.T) {
	tests := []struct {
		today            model.Date
		back, ahead      int
		wantFrom, wantTo string
	}{
		{model.NewDate(2024, time.March, 15), 2, 2, "2024-01-15", "2024-05-15"},
		{model.NewDate(2024, time.December, 31), 2, 2, "2024-10-31", "2025-02-28"},
		{model.NewDate(2024, time.April, 30), 2, 0, "2024-02-29", "2024-04-30"},
		{model.NewDate(2024, time.March, 15), -1, 1, "2024-03-15", "2024-04-15"},
	}
	for _, tt := range tests {
		from, to := Range(tt.today, tt.back, tt.ahead)
		if from.String() != tt.wantFrom || to.String() != tt.wantTo {
			t.Errorf("Range(%s, %d, %d) = %s..%s, want %s..%s", tt.today, tt.back, tt.ahead, from, to, tt.wantFrom, tt.wantTo)
		}
	}
}

func TestLoadRemote(t *testing.T) {
	var gotStart, gotEnd time.Time
	p := Func(func(ctx context.Context, start, end time.Time) ([]model.CalendarEvent, error) {
		gotStart, gotEnd = start, end
		s := time.Date(2024, time.March, 15, 9, 0, 0, 0, time.UTC)
		return []model.CalendarEvent{model.NewEvent("a", "Team Meeting", s, s.Add(time.Hour), model.Work, "")}, nil
	})

	from, to := model.NewDate(2024, time.March, 1), model.NewDate(2024, time.March, 31)
	store := NewLoader(p, time.UTC).Load(context.Background(), from, to)

	if store.Origin() != events.OriginRemote || store.Len() != 1 {
		t.Fatalf("origin %q len %d", store.Origin(), store.Len())
	}
	if !gotStart.Equal(time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %v", gotStart)
	}
	if !gotEnd.Equal(time.Date(2024, time.March, 31, 23, 59, 59, 0, time.UTC)) {
		t.Errorf("end = %v", gotEnd)
	}
}

func TestLoadFallsBackToSample(t *testing.T) {
	from, to := model.NewDate(2024, time.March, 11), model.NewDate(2024, time.March, 17)

	tests := []struct {
		name string
		p    Provider
	}{
		{"no provider", nil},
		{"error", Func(func(context.Context, time.Time, time.Time) ([]model.CalendarEvent, error) {
			return nil, errors.New("network down")
		})},
		{"empty", Func(func(context.Context, time.Time, time.Time) ([]model.CalendarEvent, error) {
			return nil, nil
		})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewLoader(tt.p, time.UTC).Load(context.Background(), from, to)
			if store.Origin() != events.OriginSample {
				t.Fatalf("origin = %q, want sample", store.Origin())
			}
			if store.Len() == 0 {
				t.Fatal("sample store is empty")
			}
		})
	}
}

func TestLoadAbandonedOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := Func(func(ctx context.Context, _, _ time.Time) ([]model.CalendarEvent, error) {
		return nil, ctx.Err()
	})
	d := model.NewDate(2024, time.March, 11)
	if store := NewLoader(p, time.UTC).Load(ctx, d, d); store != nil {
		t.Fatalf("cancelled fetch should yield nil, got %q", store.Origin())
	}
}
