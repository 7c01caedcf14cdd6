package categorization

import (
	"sync"

	"github.com/google/uuid"
)

// ProcessingTracker records which workspaces have a categorization run in
// flight and the last classifier failure of each.
type ProcessingTracker interface {
	// TryStart marks the workspace as processing unless it already is.
	TryStart(workspaceID uuid.UUID, jobID string) bool
	IsProcessing(workspaceID uuid.UUID) bool
	GetJobID(workspaceID uuid.UUID) string
	ClearProcessing(workspaceID uuid.UUID)

	SetError(workspaceID uuid.UUID, err *ProcessingError)
	GetError(workspaceID uuid.UUID) *ProcessingError
	ClearError(workspaceID uuid.UUID)
}

// InMemoryProcessingTracker is a process-local ProcessingTracker.
type InMemoryProcessingTracker struct {
	mu         sync.RWMutex
	processing map[uuid.UUID]string
	errors     map[uuid.UUID]*ProcessingError
}

// NewInMemoryProcessingTracker creates a new in-memory processing tracker.
func NewInMemoryProcessingTracker() *InMemoryProcessingTracker {
	return &InMemoryProcessingTracker{
		processing: make(map[uuid.UUID]string),
		errors:     make(map[uuid.UUID]*ProcessingError),
	}
}

// TryStart checks and sets the processing flag under one lock.
func (t *InMemoryProcessingTracker) TryStart(workspaceID uuid.UUID, jobID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, busy := t.processing[workspaceID]; busy {
		return false
	}
	t.processing[workspaceID] = jobID
	return true
}

// IsProcessing checks if a workspace is currently processing.
func (t *InMemoryProcessingTracker) IsProcessing(workspaceID uuid.UUID) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.processing[workspaceID]
	return ok
}

// GetJobID gets the job ID of the run in flight.
func (t *InMemoryProcessingTracker) GetJobID(workspaceID uuid.UUID) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.processing[workspaceID]
}

// ClearProcessing clears the processing state of a workspace.
func (t *InMemoryProcessingTracker) ClearProcessing(workspaceID uuid.UUID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.processing, workspaceID)
}

// SetError stores the last failure of a workspace.
func (t *InMemoryProcessingTracker) SetError(workspaceID uuid.UUID, err *ProcessingError) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.errors[workspaceID] = err
}

// GetError retrieves the last failure of a workspace, or nil.
func (t *InMemoryProcessingTracker) GetError(workspaceID uuid.UUID) *ProcessingError {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.errors[workspaceID]
}

// ClearError removes the failure of a workspace.
func (t *InMemoryProcessingTracker) ClearError(workspaceID uuid.UUID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.errors, workspaceID)
}
