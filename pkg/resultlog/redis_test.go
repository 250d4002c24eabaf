package resultlog

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/ruslano69/gridcompare/pkg/core/table"
	"github.com/ruslano69/gridcompare/pkg/report"
	"github.com/ruslano69/gridcompare/pkg/retry"
)

func newTestPublisher(t *testing.T, ttl int) (*RedisPublisher, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	p, err := NewRedisPublisher(Config{Enabled: true, Address: mr.Addr(), Name: "nightly", TTL: ttl}, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { p.Close() })
	return p, mr
}

func testReport(t *testing.T) *report.Report {
	t.Helper()
	orig := table.MustFromStrings("a.csv", []string{"ID", "Name"}, [][]string{{"1", "x"}, {"2", "y"}})
	exp := table.MustFromStrings("b.csv", []string{"ID", "Name"}, [][]string{{"1", "x"}})
	r, err := report.BuildComparisonReport(orig, exp, "ID")
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestNewRunResult_Success(t *testing.T) {
	r := testReport(t)
	started := time.Now().Add(-time.Second)

	res := NewRunResult("nightly", "a.csv", "b.csv", r, "out.xlsx", started, nil)

	if res.Status != "success" || res.Error != nil {
		t.Errorf("Status = %q, Error = %v", res.Status, res.Error)
	}
	if diff := cmp.Diff(map[string]int{"ID": 1, "Name": 1}, res.ErrorCounts); diff != "" {
		t.Errorf("ErrorCounts (-want +got):\n%s", diff)
	}
	if res.TotalErrors != 2 || res.Rows != 2 {
		t.Errorf("TotalErrors = %d, Rows = %d", res.TotalErrors, res.Rows)
	}
	if res.Original.Fingerprint != r.Original.Fingerprint() || res.Original.Rows != 2 {
		t.Errorf("Original = %+v", res.Original)
	}
	if res.DurationMs < 1000 {
		t.Errorf("DurationMs = %d, want >= 1000", res.DurationMs)
	}
}

func TestNewRunResult_Failed(t *testing.T) {
	res := NewRunResult("nightly", "a.csv", "b.csv", nil, "", time.Now(), errors.New("key field missing"))

	if res.Status != "failed" {
		t.Errorf("Status = %q, want failed", res.Status)
	}
	if res.Error == nil || *res.Error != "key field missing" {
		t.Errorf("Error = %v", res.Error)
	}
	if res.Fields != nil || res.Original.Location != "a.csv" {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestPublish_SetsStateWithTTL(t *testing.T) {
	p, mr := newTestPublisher(t, 60)
	res := NewRunResult("nightly", "a.csv", "b.csv", testReport(t), "out.xlsx", time.Now(), nil)

	if err := p.Publish(context.Background(), res); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	raw, err := mr.Get("gridcompare:run:nightly:state")
	if err != nil {
		t.Fatalf("state key missing: %v", err)
	}
	var got RunResult
	if err := json.Unmarshal([]byte(raw), &got); err != nil {
		t.Fatal(err)
	}
	if got.Status != "success" || got.KeyField != "ID" || got.TotalErrors != 2 {
		t.Errorf("stored result = %+v", got)
	}
	if ttl := mr.TTL("gridcompare:run:nightly:state"); ttl != 60*time.Second {
		t.Errorf("TTL = %v, want 60s", ttl)
	}
}

func TestPublish_NotifiesSubscribers(t *testing.T) {
	p, mr := newTestPublisher(t, 0)
	ctx := context.Background()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	sub := rdb.Subscribe(ctx, p.Channel())
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	res := NewRunResult("nightly", "a.csv", "b.csv", nil, "", time.Now(), errors.New("boom"))
	if err := p.Publish(ctx, res); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case msg := <-sub.Channel():
		var got RunResult
		if err := json.Unmarshal([]byte(msg.Payload), &got); err != nil {
			t.Fatal(err)
		}
		if got.Status != "failed" {
			t.Errorf("Status = %q", got.Status)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no message on channel")
	}

	if ttl := mr.TTL(p.StateKey()); ttl != 0 {
		t.Errorf("TTL = %v, want none", ttl)
	}
}

func TestPublish_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	p, err := NewRedisPublisher(Config{Address: addr, Name: "x"}, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := p.Publish(ctx, RunResult{Status: "success"}); err == nil {
		t.Error("expected error for an unreachable server")
	}
}

func TestPublish_RetriesTransientFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	mr.Close()

	rc := retry.Enable(3, time.Millisecond)
	retries := 0
	rc.OnRetry = func(attempt int, err error, delay time.Duration) {
		retries++
		if err := mr.Restart(); err != nil {
			t.Errorf("restart: %v", err)
		}
	}

	p, err := NewRedisPublisher(Config{Address: mr.Addr(), Name: "nightly", Retry: rc}, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	if err := p.Publish(context.Background(), RunResult{Name: "nightly", Status: "success"}); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if retries != 1 {
		t.Errorf("retries = %d, want 1", retries)
	}
	if !mr.Exists(p.StateKey()) {
		t.Error("state key not written after retry")
	}
}

func TestNewRedisPublisher_InvalidRetry(t *testing.T) {
	rc := retry.Enable(0, time.Second)
	if _, err := NewRedisPublisher(Config{Address: "localhost:0", Retry: rc}, zerolog.Nop()); err == nil {
		t.Error("expected error for an invalid retry config")
	}
}
