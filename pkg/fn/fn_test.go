package fn

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"testing"
	"time"
)

func TestMap(t *testing.T) {
	keys := []string{"cold-air-intake", "ecu-tune"}
	got := Map(keys, func(k string) int { return len(k) })
	if !reflect.DeepEqual(got, []int{15, 8}) {
		t.Errorf("Map = %v", got)
	}
}

func TestFilterAndFilterMap(t *testing.T) {
	vals := []float64{3, -1, 0, 7}
	pos := Filter(vals, func(v float64) bool { return v > 0 })
	if !reflect.DeepEqual(pos, []float64{3, 7}) {
		t.Errorf("Filter = %v", pos)
	}
	doubled := FilterMap(vals, func(v float64) (float64, bool) { return v * 2, v > 0 })
	if !reflect.DeepEqual(doubled, []float64{6, 14}) {
		t.Errorf("FilterMap = %v", doubled)
	}
}

func TestReduceAndSumBy(t *testing.T) {
	type mod struct{ hpPct float64 }
	mods := []mod{{3}, {4}, {2}}
	if got := SumBy(mods, func(m mod) float64 { return m.hpPct }); got != 9 {
		t.Errorf("SumBy = %g, want 9", got)
	}
	max := Reduce(mods, 0.0, func(acc float64, m mod) float64 {
		if m.hpPct > acc {
			return m.hpPct
		}
		return acc
	})
	if max != 4 {
		t.Errorf("Reduce max = %g, want 4", max)
	}
}

func TestGroupBy(t *testing.T) {
	type mod struct{ key, category string }
	mods := []mod{
		{"cold-air-intake", "intake"},
		{"catback-exhaust", "exhaust"},
		{"headers", "exhaust"},
	}
	groups := GroupBy(mods, func(m mod) string { return m.category })
	if len(groups["exhaust"]) != 2 || len(groups["intake"]) != 1 {
		t.Errorf("GroupBy = %v", groups)
	}
}

func TestUnique(t *testing.T) {
	got := Unique([]string{"a", "b", "a", "c", "b"})
	if !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("Unique = %v", got)
	}
	if Unique([]string(nil)) != nil {
		t.Error("Unique(nil) should be nil")
	}
}

func TestParMap_PreservesOrder(t *testing.T) {
	in := make([]int, 100)
	for i := range in {
		in[i] = i
	}
	got := ParMap(in, 8, func(v int) int { return v * v })
	for i, v := range got {
		if v != i*i {
			t.Fatalf("out[%d] = %d, want %d", i, v, i*i)
		}
	}
	// Degenerate worker counts still work.
	if out := ParMap(in[:3], 0, func(v int) int { return v }); !sort.IntsAreSorted(out) {
		t.Errorf("ParMap with workers<=0 = %v", out)
	}
}

func TestRetry_SucceedsAfterFailures(t *testing.T) {
	attempts := 0
	opts := RetryOpts{MaxAttempts: 3, InitialWait: time.Millisecond, MaxWait: 5 * time.Millisecond}
	err := Retry(context.Background(), opts, func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Errorf("Retry = %v, want success", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestRetry_Exhausted(t *testing.T) {
	sentinel := errors.New("db down")
	opts := RetryOpts{MaxAttempts: 2, InitialWait: time.Millisecond, MaxWait: time.Millisecond}
	err := Retry(context.Background(), opts, func(context.Context) error { return sentinel })
	if !errors.Is(err, sentinel) {
		t.Errorf("Retry = %v, want %v", err, sentinel)
	}
}

func TestRetry_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	opts := RetryOpts{MaxAttempts: 5, InitialWait: time.Minute, MaxWait: time.Minute}
	err := Retry(ctx, opts, func(context.Context) error { return errors.New("transient") })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Retry = %v, want context.Canceled", err)
	}
}
