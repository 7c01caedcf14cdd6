package categorization

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestInMemoryProcessingTracker_ErrorTracking(t *testing.T) {
	tracker := NewInMemoryProcessingTracker()
	workspaceID := uuid.New()

	t.Run("GetError returns nil when no error exists", func(t *testing.T) {
		if tracker.GetError(workspaceID) != nil {
			t.Error("expected GetError to return nil for non-existent error")
		}
	})

	t.Run("SetError stores the error", func(t *testing.T) {
		testError := newProcessingError(ErrCodeAIRateLimited, true, time.Now())
		tracker.SetError(workspaceID, testError)

		retrieved := tracker.GetError(workspaceID)
		if retrieved == nil {
			t.Fatal("expected GetError to return non-nil error")
		}
		if retrieved.Code != testError.Code {
			t.Errorf("expected code %s, got %s", testError.Code, retrieved.Code)
		}
		if retrieved.Retryable != testError.Retryable {
			t.Errorf("expected retryable %v, got %v", testError.Retryable, retrieved.Retryable)
		}
	})

	t.Run("SetError overwrites existing error", func(t *testing.T) {
		tracker.SetError(workspaceID, newProcessingError(ErrCodeAIServiceUnavailable, true, time.Now()))

		retrieved := tracker.GetError(workspaceID)
		if retrieved == nil || retrieved.Code != ErrCodeAIServiceUnavailable {
			t.Errorf("expected code %s, got %+v", ErrCodeAIServiceUnavailable, retrieved)
		}
	})

	t.Run("ClearError removes the error", func(t *testing.T) {
		tracker.ClearError(workspaceID)
		if tracker.GetError(workspaceID) != nil {
			t.Error("expected GetError to return nil after ClearError")
		}
	})

	t.Run("ClearError on non-existent error does not panic", func(t *testing.T) {
		tracker.ClearError(uuid.New())
	})

	t.Run("error tracking is workspace-specific", func(t *testing.T) {
		ws1, ws2 := uuid.New(), uuid.New()
		tracker.SetError(ws1, newProcessingError(ErrCodeAIRateLimited, true, time.Now()))
		tracker.SetError(ws2, newProcessingError(ErrCodeAIAuthError, false, time.Now()))

		tracker.ClearError(ws1)

		if tracker.GetError(ws1) != nil {
			t.Error("ws1: expected error to be cleared")
		}
		if got := tracker.GetError(ws2); got == nil || got.Code != ErrCodeAIAuthError {
			t.Errorf("ws2: expected %s to remain, got %+v", ErrCodeAIAuthError, got)
		}
	})
}

func TestInMemoryProcessingTracker_ProcessingMethods(t *testing.T) {
	tracker := NewInMemoryProcessingTracker()
	workspaceID := uuid.New()
	jobID := "test-job-123"

	t.Run("IsProcessing returns false when not processing", func(t *testing.T) {
		if tracker.IsProcessing(workspaceID) {
			t.Error("expected IsProcessing to return false")
		}
		if tracker.GetJobID(workspaceID) != "" {
			t.Error("expected GetJobID to return empty string")
		}
	})

	t.Run("TryStart sets the processing state", func(t *testing.T) {
		if !tracker.TryStart(workspaceID, jobID) {
			t.Fatal("expected TryStart to succeed")
		}
		if !tracker.IsProcessing(workspaceID) {
			t.Error("expected IsProcessing to return true after TryStart")
		}
		if tracker.GetJobID(workspaceID) != jobID {
			t.Errorf("expected jobID %s, got %s", jobID, tracker.GetJobID(workspaceID))
		}
	})

	t.Run("TryStart rejects a second run", func(t *testing.T) {
		if tracker.TryStart(workspaceID, "other-job") {
			t.Error("expected TryStart to fail while processing")
		}
		if tracker.GetJobID(workspaceID) != jobID {
			t.Errorf("expected jobID to stay %s, got %s", jobID, tracker.GetJobID(workspaceID))
		}
	})

	t.Run("ClearProcessing clears the processing state", func(t *testing.T) {
		tracker.ClearProcessing(workspaceID)
		if tracker.IsProcessing(workspaceID) {
			t.Error("expected IsProcessing to return false after ClearProcessing")
		}
		if !tracker.TryStart(workspaceID, jobID) {
			t.Error("expected TryStart to succeed after ClearProcessing")
		}
	})
}

func TestInMemoryProcessingTracker_TryStartIsExclusive(t *testing.T) {
	tracker := NewInMemoryProcessingTracker()
	workspaceID := uuid.New()

	const goroutines = 50
	var started atomic.Int32
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			if tracker.TryStart(workspaceID, uuid.New().String()) {
				started.Add(1)
			}
		}()
	}
	wg.Wait()

	if started.Load() != 1 {
		t.Errorf("expected exactly one TryStart to succeed, got %d", started.Load())
	}
}

func TestInMemoryProcessingTracker_ThreadSafety(t *testing.T) {
	tracker := NewInMemoryProcessingTracker()
	workspaceIDs := make([]uuid.UUID, 10)
	for i := range workspaceIDs {
		workspaceIDs[i] = uuid.New()
	}

	const goroutines = 100
	const iterations = 100

	var wg sync.WaitGroup
	wg.Add(goroutines)

	for i := 0; i < goroutines; i++ {
		go func(id int) {
			defer wg.Done()

			workspaceID := workspaceIDs[id%len(workspaceIDs)]
			for j := 0; j < iterations; j++ {
				switch j % 7 {
				case 0:
					tracker.TryStart(workspaceID, uuid.New().String())
				case 1:
					tracker.IsProcessing(workspaceID)
				case 2:
					tracker.GetJobID(workspaceID)
				case 3:
					tracker.ClearProcessing(workspaceID)
				case 4:
					tracker.SetError(workspaceID, newProcessingError(ErrCodeAIRateLimited, true, time.Now()))
				case 5:
					tracker.GetError(workspaceID)
				case 6:
					tracker.ClearError(workspaceID)
				}
			}
		}(i)
	}

	wg.Wait()
}
