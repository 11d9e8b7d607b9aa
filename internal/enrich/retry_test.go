package enrich

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jeanpaul/lifeline/internal/timeline"
)

type scriptedResolver struct {
	errs  []error
	calls int
	out   timeline.Person
}

func (s *scriptedResolver) Resolve(ctx context.Context, name string) (timeline.Person, error) {
	idx := s.calls
	s.calls++
	if idx < len(s.errs) && s.errs[idx] != nil {
		return timeline.Person{}, s.errs[idx]
	}
	return s.out, nil
}

func fastRetry(r Resolver, maxRetries int) *RetryResolver {
	rr := WithRetry(r, maxRetries)
	rr.baseDelay = time.Millisecond
	return rr
}

func TestRetrySucceedsAfterTransientErrors(t *testing.T) {
	inner := &scriptedResolver{
		errs: []error{errors.New("status 503"), errors.New("connection refused")},
		out:  timeline.Person{Name: "朱德"},
	}
	p, err := fastRetry(inner, 3).Resolve(context.Background(), "朱德")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if p.Name != "朱德" || inner.calls != 3 {
		t.Errorf("calls = %d, want 3", inner.calls)
	}
}

func TestRetryStopsOnNonRetryableError(t *testing.T) {
	inner := &scriptedResolver{errs: []error{errors.New("401: authentication failed")}}
	_, err := fastRetry(inner, 3).Resolve(context.Background(), "朱德")
	if err == nil {
		t.Fatal("expected error")
	}
	if inner.calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry on auth failure)", inner.calls)
	}
}

func TestRetryGivesUpAfterMaxRetries(t *testing.T) {
	inner := &scriptedResolver{errs: []error{
		errors.New("timeout"), errors.New("timeout"), errors.New("timeout"),
	}}
	_, err := fastRetry(inner, 2).Resolve(context.Background(), "朱德")
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if inner.calls != 3 {
		t.Errorf("calls = %d, want 3 (initial + 2 retries)", inner.calls)
	}
}
