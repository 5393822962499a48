package schedule

import (
	"reflect"
	"testing"
	"time"
)

func day(t *testing.T) time.Time {
	t.Helper()
	return time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC) // quarta-feira
}

func TestResolveFreeBlocks_NoScheduleIsEmpty(t *testing.T) {
	got := ResolveFreeBlocks(nil, nil, nil, day(t))
	if len(got) != 0 {
		t.Fatalf("staff off that day must yield no free blocks, got %v", got)
	}
}

func TestResolveFreeBlocks_PlainSchedule(t *testing.T) {
	got := ResolveFreeBlocks([]Block{{Start: 540, End: 1020}}, nil, nil, day(t))
	want := []Block{{Start: 540, End: 1020}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestResolveFreeBlocks_TimeOffClippedToDay(t *testing.T) {
	d := day(t)
	// ausência começa na véspera e entra pelo dia até 10:00
	off := []TimeRange{{Start: d.Add(-6 * time.Hour), End: d.Add(10 * time.Hour)}}

	got := ResolveFreeBlocks([]Block{{Start: 540, End: 1020}}, off, nil, d)
	want := []Block{{Start: 600, End: 1020}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestResolveFreeBlocks_AppointmentsRemoved(t *testing.T) {
	d := day(t)
	busy := []TimeRange{
		{Start: d.Add(10 * time.Hour), End: d.Add(10*time.Hour + 30*time.Minute)},
		{Start: d.Add(14 * time.Hour), End: d.Add(15 * time.Hour)},
	}

	got := ResolveFreeBlocks([]Block{{Start: 540, End: 1020}}, nil, busy, d)
	want := []Block{
		{Start: 540, End: 600},
		{Start: 630, End: 840},
		{Start: 900, End: 1020},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestResolveFreeBlocks_OutOfDayRangesIgnored(t *testing.T) {
	d := day(t)
	off := []TimeRange{
		{Start: d.Add(-10 * time.Hour), End: d.Add(-2 * time.Hour)},
		{Start: d.Add(30 * time.Hour), End: d.Add(32 * time.Hour)},
	}

	got := ResolveFreeBlocks([]Block{{Start: 540, End: 1020}}, off, nil, d)
	want := []Block{{Start: 540, End: 1020}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestLocalBlock_Clamps(t *testing.T) {
	d := day(t)
	b, ok := LocalBlock(TimeRange{Start: d.Add(-time.Hour), End: d.Add(26 * time.Hour)}, d)
	if !ok {
		t.Fatal("expected overlapping range to produce a block")
	}
	if b.Start != 0 || b.End != DayMinutes {
		t.Fatalf("expected [0,1440], got %v", b)
	}
}
