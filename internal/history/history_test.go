package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestHistory(t *testing.T) *History {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	hist, err := NewHistory(dbPath)
	if err != nil {
		t.Fatalf("Failed to create history: %v", err)
	}
	t.Cleanup(func() { hist.Close() })

	return hist
}

func TestHistory_RecordInteraction(t *testing.T) {
	hist := newTestHistory(t)

	command := "hello"
	duration := int64(3)
	id, err := hist.RecordInteraction(context.Background(), &InteractionRecord{
		ConnID:          "conn-1",
		RemoteAddr:      "127.0.0.1:5000",
		InteractionType: 2,
		Command:         &command,
		Outcome:         OutcomeReplied,
		DurationMillis:  &duration,
	})
	if err != nil {
		t.Fatalf("Failed to record interaction: %v", err)
	}

	if id == 0 {
		t.Error("Expected non-zero interaction ID")
	}
}

func TestHistory_GetLatestInteraction(t *testing.T) {
	hist := newTestHistory(t)
	ctx := context.Background()

	_, err := hist.RecordInteraction(ctx, &InteractionRecord{
		ConnID:          "conn-1",
		RemoteAddr:      "127.0.0.1:5000",
		InteractionType: 1,
		Outcome:         OutcomePong,
	})
	if err != nil {
		t.Fatalf("Failed to record first interaction: %v", err)
	}

	command := "hello"
	receivedAt := time.Date(2026, 1, 2, 3, 4, 5, 600, time.UTC)
	_, err = hist.RecordInteraction(ctx, &InteractionRecord{
		ConnID:          "conn-2",
		RemoteAddr:      "127.0.0.1:5001",
		InteractionType: 2,
		Command:         &command,
		Outcome:         OutcomeReplied,
		ReceivedAt:      receivedAt,
	})
	if err != nil {
		t.Fatalf("Failed to record second interaction: %v", err)
	}

	latest, err := hist.GetLatestInteraction(ctx)
	if err != nil {
		t.Fatalf("Failed to get latest interaction: %v", err)
	}

	if latest == nil {
		t.Fatal("Expected latest interaction to be non-nil")
	}

	if latest.ConnID != "conn-2" {
		t.Errorf("Expected latest conn_id 'conn-2', got %q", latest.ConnID)
	}

	if latest.Command == nil || *latest.Command != "hello" {
		t.Errorf("Expected command 'hello', got %v", latest.Command)
	}

	if !latest.ReceivedAt.Equal(receivedAt) {
		t.Errorf("Expected received_at %v, got %v", receivedAt, latest.ReceivedAt)
	}

	if latest.DurationMillis != nil {
		t.Errorf("Expected nil duration, got %d", *latest.DurationMillis)
	}
}

func TestHistory_GetLatestInteraction_NoRecords(t *testing.T) {
	hist := newTestHistory(t)

	latest, err := hist.GetLatestInteraction(context.Background())
	if err != nil {
		t.Fatalf("Expected no error for empty history, got: %v", err)
	}

	if latest != nil {
		t.Errorf("Expected nil for empty history, got: %v", latest)
	}
}

func TestHistory_GetRecentInteractions(t *testing.T) {
	hist := newTestHistory(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		duration := int64(i)
		_, err := hist.RecordInteraction(ctx, &InteractionRecord{
			ConnID:          "conn",
			RemoteAddr:      "127.0.0.1:5000",
			InteractionType: 1,
			Outcome:         OutcomePong,
			DurationMillis:  &duration,
		})
		if err != nil {
			t.Fatalf("Failed to record interaction %d: %v", i, err)
		}
	}

	recent, err := hist.GetRecentInteractions(ctx, 3)
	if err != nil {
		t.Fatalf("Failed to get interaction history: %v", err)
	}

	if len(recent) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(recent))
	}

	// Should be in descending order (most recent first)
	if recent[0].DurationMillis == nil {
		t.Error("Expected first record duration to be non-nil")
	} else if *recent[0].DurationMillis != 4 {
		t.Errorf("Expected first record duration 4, got %d", *recent[0].DurationMillis)
	}
}

func TestHistory_GetRecentInteractions_Empty(t *testing.T) {
	hist := newTestHistory(t)

	recent, err := hist.GetRecentInteractions(context.Background(), 10)
	if err != nil {
		t.Fatalf("Failed to get interaction history: %v", err)
	}

	if recent == nil || len(recent) != 0 {
		t.Errorf("Expected empty non-nil slice, got %v", recent)
	}
}

func TestHistory_CountByOutcome(t *testing.T) {
	hist := newTestHistory(t)
	ctx := context.Background()

	outcomes := []string{OutcomePong, OutcomePong, OutcomeReplied, OutcomeRejected}
	for _, outcome := range outcomes {
		if _, err := hist.RecordInteraction(ctx, &InteractionRecord{
			ConnID:     "conn",
			RemoteAddr: "127.0.0.1:5000",
			Outcome:    outcome,
		}); err != nil {
			t.Fatalf("Failed to record interaction: %v", err)
		}
	}

	counts, err := hist.CountByOutcome(ctx)
	if err != nil {
		t.Fatalf("Failed to count interactions: %v", err)
	}

	if counts[OutcomePong] != 2 {
		t.Errorf("Expected 2 pong records, got %d", counts[OutcomePong])
	}

	if counts[OutcomeReplied] != 1 {
		t.Errorf("Expected 1 replied record, got %d", counts[OutcomeReplied])
	}

	if counts[OutcomeRejected] != 1 {
		t.Errorf("Expected 1 rejected record, got %d", counts[OutcomeRejected])
	}
}
