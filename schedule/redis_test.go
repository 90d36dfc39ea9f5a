package schedule

import (
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
)

func TestWithTxRetriesPassesOutcomeThrough(t *testing.T) {
	t.Parallel()

	calls := 0
	err := withTxRetries(ErrSlotTaken, func() error {
		calls++
		return ErrNoReservation
	})
	if !errors.Is(err, ErrNoReservation) {
		t.Fatalf("expected ErrNoReservation, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("watch called %d times, want 1", calls)
	}

	calls = 0
	if err := withTxRetries(ErrSlotTaken, func() error {
		calls++
		return nil
	}); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("watch called %d times, want 1", calls)
	}
}

func TestWithTxRetriesRetriesAbortedTransactions(t *testing.T) {
	t.Parallel()

	// Two writers racing for one slot: the loser's EXEC aborts, the retry
	// re-reads the slot and finds it taken.
	calls := 0
	err := withTxRetries(ErrSlotTaken, func() error {
		calls++
		if calls == 1 {
			return redis.TxFailedErr
		}
		return ErrSlotTaken
	})
	if !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("watch called %d times, want 2", calls)
	}
}

func TestWithTxRetriesExhaustionResolvesToConflict(t *testing.T) {
	t.Parallel()

	calls := 0
	err := withTxRetries(ErrNewSlotUnavailable, func() error {
		calls++
		return redis.TxFailedErr
	})
	if !errors.Is(err, ErrNewSlotUnavailable) {
		t.Fatalf("expected ErrNewSlotUnavailable after exhausted retries, got %v", err)
	}
	if calls != txMaxRetries {
		t.Fatalf("watch called %d times, want %d", calls, txMaxRetries)
	}
}
