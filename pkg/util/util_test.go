package util

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestFormatDateTpl(t *testing.T) {
	ts := time.Date(2016, time.September, 18, 7, 5, 3, 0, time.UTC)

	tests := []struct {
		tpl  string
		want string
	}{
		{"DD:MM:YY", "18:09:16"},
		{"YYYY-MM-DD", "2016-09-18"},
		{"YYYY.MM.DD hh:mm:ss", "2016.09.18 07:05:03"},
	}
	for _, tt := range tests {
		if got := FormatDateTpl(ts, tt.tpl); got != tt.want {
			t.Errorf("FormatDateTpl(%q) = %q, want %q", tt.tpl, got, tt.want)
		}
	}
	if got := FormatDateTpl(time.Time{}, "YYYY"); got != "" {
		t.Errorf("zero time = %q, want empty", got)
	}
}

func TestParseDateTpl(t *testing.T) {
	got, err := ParseDateTpl("18:09:16", "DD:MM:YY")
	if err != nil {
		t.Fatalf("ParseDateTpl: %v", err)
	}
	want := time.Date(2016, time.September, 18, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if _, err := ParseDateTpl("32:13:16", "DD:MM:YY"); err == nil {
		t.Error("expected error for invalid date")
	}
}

func TestParallelMap_Order(t *testing.T) {
	in := []int{1, 2, 3, 4, 5, 6}
	out, err := ParallelMap(context.Background(), in, 3, func(_ context.Context, v int) (int, error) {
		time.Sleep(time.Duration(7-v) * time.Millisecond)
		return v * v, nil
	})
	if err != nil {
		t.Fatalf("ParallelMap: %v", err)
	}
	for i, v := range in {
		if out[i] != v*v {
			t.Errorf("out[%d] = %d, want %d", i, out[i], v*v)
		}
	}
}

func TestParallel_FirstError(t *testing.T) {
	want := errors.New("missing item")
	err := Parallel(context.Background(), []int{1, 2, 3}, 2, func(_ context.Context, v int) error {
		if v == 2 {
			return want
		}
		return nil
	})
	if !errors.Is(err, want) {
		t.Errorf("err = %v, want %v", err, want)
	}
}
