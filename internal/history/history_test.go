package history

import (
	"testing"
	"time"

	"github.com/stellarlinkco/promptvault/internal/prompt"
	"github.com/stellarlinkco/promptvault/internal/store"
)

func TestTrail_RecordAndEntries(t *testing.T) {
	t.Parallel()

	trail := NewTrail()
	trail.Now = func() time.Time { return time.Unix(100, 0) }

	trail.Record("p1", ActionCreated, "alice", "")
	trail.Record("p1", ActionEnhanced, "alice", "added structure")
	trail.Record("p2", ActionCreated, "bob", "")

	entries := trail.Entries("p1")
	if len(entries) != 2 {
		t.Fatalf("entries: got %d", len(entries))
	}
	if entries[0].Action != ActionCreated || entries[1].Action != ActionEnhanced {
		t.Fatalf("order: got %+v", entries)
	}
	if entries[1].Detail != "added structure" || entries[1].Actor != "alice" {
		t.Fatalf("entry: got %+v", entries[1])
	}

	// Returned slice is a copy.
	entries[0].Actor = "mallory"
	if trail.Entries("p1")[0].Actor != "alice" {
		t.Fatalf("internal entries mutated through returned slice")
	}

	trail.Forget("p1")
	if got := trail.Entries("p1"); got != nil {
		t.Fatalf("after Forget: got %v", got)
	}
	if len(trail.Entries("p2")) != 1 {
		t.Fatalf("Forget removed wrong prompt")
	}
}

func TestApplyRating_Upsert(t *testing.T) {
	t.Parallel()

	r := &prompt.Record{}
	at := time.Unix(100, 0)

	if err := ApplyRating(r, "alice", 4, "good", at); err != nil {
		t.Fatalf("ApplyRating: %v", err)
	}
	if err := ApplyRating(r, "bob", 2, "", at); err != nil {
		t.Fatalf("ApplyRating: %v", err)
	}
	if err := ApplyRating(r, "alice", 5, "better", at.Add(time.Hour)); err != nil {
		t.Fatalf("ApplyRating: %v", err)
	}

	if len(r.History.Ratings) != 2 {
		t.Fatalf("ratings: got %+v", r.History.Ratings)
	}
	if r.History.Ratings[0].User != "alice" || r.History.Ratings[0].Score != 5 {
		t.Fatalf("upsert: got %+v", r.History.Ratings[0])
	}
	if r.History.Ratings[0].Note != "better" {
		t.Fatalf("note not replaced: got %q", r.History.Ratings[0].Note)
	}
}

func TestApplyRating_Invalid(t *testing.T) {
	t.Parallel()

	r := &prompt.Record{}
	if err := ApplyRating(r, "", 3, "", time.Now()); err == nil {
		t.Fatalf("empty user accepted")
	}
	for _, score := range []int{0, 6, -1} {
		if err := ApplyRating(r, "alice", score, "", time.Now()); err == nil {
			t.Fatalf("score %d accepted", score)
		}
	}
	if len(r.History.Ratings) != 0 {
		t.Fatalf("invalid ratings stored: %+v", r.History.Ratings)
	}
}

func TestSummarizeRatings(t *testing.T) {
	t.Parallel()

	got := SummarizeRatings([]prompt.Rating{
		{User: "a", Score: 5},
		{User: "b", Score: 3},
		{User: "c", Score: 5},
		{User: "d", Score: 9}, // out of range, ignored
	})
	if got.Count != 3 {
		t.Fatalf("count: got %d", got.Count)
	}
	if want := 13.0 / 3.0; got.Average != want {
		t.Fatalf("average: got %v want %v", got.Average, want)
	}
	if got.Distribution[5] != 2 || got.Distribution[3] != 1 || got.Distribution[1] != 0 {
		t.Fatalf("distribution: got %v", got.Distribution)
	}

	empty := SummarizeRatings(nil)
	if empty.Count != 0 || empty.Average != 0 {
		t.Fatalf("empty: got %+v", empty)
	}
	if len(empty.Distribution) != 5 {
		t.Fatalf("empty distribution: got %v", empty.Distribution)
	}
}

func TestSummarizeRuns(t *testing.T) {
	t.Parallel()

	got := SummarizeRuns([]*store.RunLog{
		{Success: true, LatencyMs: 100},
		{Success: false, LatencyMs: 300},
		nil,
		{Success: true, LatencyMs: 200},
	})
	if got.Total != 3 || got.Succeeded != 2 {
		t.Fatalf("counts: got %+v", got)
	}
	if want := 2.0 / 3.0; got.SuccessRate != want {
		t.Fatalf("rate: got %v want %v", got.SuccessRate, want)
	}
	if got.AvgLatencyMs != 200 {
		t.Fatalf("latency: got %v", got.AvgLatencyMs)
	}

	if empty := SummarizeRuns(nil); empty.SuccessRate != 0 || empty.Total != 0 {
		t.Fatalf("empty: got %+v", empty)
	}
}
