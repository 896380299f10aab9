package batch

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestQueue_Dedup(t *testing.T) {
	q := NewQueue(strings.ToLower)
	for _, s := range []string{"2401.00001", "arXiv:1", "2401.00001", "ARXIV:1", "b"} {
		q.Add(s)
	}
	if diff := cmp.Diff([]string{"2401.00001", "arXiv:1", "b"}, q.All()); diff != "" {
		t.Errorf("queue mismatch (-want +got):\n%s", diff)
	}
	if q.Len() != 3 {
		t.Errorf("Len = %d", q.Len())
	}
}

func TestRun_OrderAndErrors(t *testing.T) {
	q := NewQueue(nil)
	for _, s := range []string{"a", "bad", "c", "d"} {
		q.Add(s)
	}
	var calls atomic.Int32
	errBad := errors.New("bad input")

	got := Run(context.Background(), q, 2, func(_ context.Context, s string) (string, error) {
		calls.Add(1)
		if s == "bad" {
			return "", errBad
		}
		return strings.ToUpper(s), nil
	})

	if calls.Load() != 4 {
		t.Errorf("fn called %d times, want 4", calls.Load())
	}
	var items, values []string
	for _, o := range got {
		items = append(items, o.Item)
		values = append(values, o.Value)
	}
	if diff := cmp.Diff([]string{"a", "bad", "c", "d"}, items); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"A", "", "C", "D"}, values); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
	if !errors.Is(got[1].Err, errBad) {
		t.Errorf("got[1].Err = %v", got[1].Err)
	}
}

func TestRun_Cancelled(t *testing.T) {
	q := NewQueue(nil)
	q.Add("a")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := Run(ctx, q, 1, func(context.Context, string) (int, error) {
		t.Error("fn called after cancel")
		return 0, nil
	})
	if !errors.Is(got[0].Err, context.Canceled) {
		t.Errorf("Err = %v, want context.Canceled", got[0].Err)
	}
}
