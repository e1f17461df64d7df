package job_test

import (
	"testing"
	"time"

	"tryon/internal/job"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		input  string
		want   job.Status
		wantOK bool
	}{
		{"idle", job.StatusIdle, true},
		{" Generating ", job.StatusGenerating, true},
		{"COMPLETE", job.StatusComplete, true},
		{"error", job.StatusError, true},
		{"", "", false},
		{"pending", "", false},
	}
	for _, tc := range tests {
		got, ok := job.ParseStatus(tc.input)
		if ok != tc.wantOK || got != tc.want {
			t.Fatalf("ParseStatus(%q) = %q, %v; want %q, %v", tc.input, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	if job.StatusIdle.IsTerminal() || job.StatusGenerating.IsTerminal() {
		t.Fatal("idle and generating must not be terminal")
	}
	if !job.StatusComplete.IsTerminal() || !job.StatusError.IsTerminal() {
		t.Fatal("complete and error must be terminal")
	}
}

func TestSetGeneratingClearsPriorOutcome(t *testing.T) {
	now := time.Now().UTC()
	rec := job.NewIdle()
	rec.SetComplete("data:image/png;base64,AAAA", now)

	rec.SetGenerating("tok-2", job.Request{GarmentURL: "https://shop.example/d.jpg", ModelPhoto: "data:image/png;base64,BBBB"}, now)
	if rec.Status != job.StatusGenerating {
		t.Fatalf("expected generating, got %s", rec.Status)
	}
	if rec.Result != "" || rec.Error != "" {
		t.Fatal("expected result and error cleared on new attempt")
	}
	if rec.Token != "tok-2" {
		t.Fatalf("expected token tok-2, got %s", rec.Token)
	}
	if rec.StartedAt.IsZero() {
		t.Fatal("expected start time set")
	}
}

func TestIsStale(t *testing.T) {
	now := time.Now().UTC()
	threshold := 5 * time.Minute

	rec := job.Record{Status: job.StatusGenerating, StartedAt: now.Add(-6 * time.Minute)}
	if !rec.IsStale(now, threshold) {
		t.Fatal("expected record older than threshold to be stale")
	}

	rec.StartedAt = now.Add(-time.Minute)
	if rec.IsStale(now, threshold) {
		t.Fatal("expected record within threshold to be fresh")
	}

	rec.Status = job.StatusComplete
	rec.StartedAt = now.Add(-time.Hour)
	if rec.IsStale(now, threshold) {
		t.Fatal("terminal records are never stale")
	}

	rec = job.Record{Status: job.StatusGenerating}
	if !rec.IsStale(now, threshold) {
		t.Fatal("generating record without start time is stale")
	}
}
