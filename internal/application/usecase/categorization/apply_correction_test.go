package categorization

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/finance-tracker/bookkeeping/internal/domain/entity"
	domainerror "github.com/finance-tracker/bookkeeping/internal/domain/error"
	"github.com/finance-tracker/bookkeeping/internal/domain/resolver"
)

func newCorrectionUseCase(h *harness, sink *recordingSink) *ApplyCorrectionUseCase {
	uc := NewApplyCorrectionUseCase(h.txRepo, h.taxLoader, sink)
	uc.now = func() time.Time { return fixedNow }
	return uc
}

func TestApplyCorrection_WritesUserSlotAndSignals(t *testing.T) {
	tx := outflowAt(uuid.Nil, "Zzyzx Curios", 4200)
	h := newHarness(t, tx)
	sink := newRecordingSink()
	electronics := h.catRepo.byName(t, "Electronics")
	shopping := h.catRepo.byName(t, "Shopping")

	out, err := newCorrectionUseCase(h, sink).Execute(context.Background(), ApplyCorrectionInput{
		WorkspaceID:   h.workspaceID,
		TransactionID: tx.ID,
		CategoryID:    &electronics,
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if !out.Changed || out.Source != resolver.SourceUser {
		t.Errorf("output = %+v", out)
	}
	if out.PrimaryID == nil || *out.PrimaryID != shopping || out.SecondaryID == nil || *out.SecondaryID != electronics {
		t.Errorf("slots = %v / %v", out.PrimaryID, out.SecondaryID)
	}
	if out.DisplayName != "Shopping > Electronics" {
		t.Errorf("DisplayName = %q", out.DisplayName)
	}
	if h.txRepo.userUpdates != 1 {
		t.Errorf("userUpdates = %d, want 1", h.txRepo.userUpdates)
	}

	select {
	case signal := <-sink.signals:
		if signal.MerchantKey != "ZZYZX CURIOS" || signal.CategoryID != electronics {
			t.Errorf("signal = %+v", signal)
		}
	case <-time.After(time.Second):
		t.Fatal("learning signal not delivered")
	}
}

type panickingSink struct {
	called chan struct{}
}

func (s *panickingSink) Notify(context.Context, entity.LearningSignal) {
	close(s.called)
	panic("sink exploded")
}

func TestApplyCorrection_SinkPanicIsContained(t *testing.T) {
	tx := outflowAt(uuid.Nil, "Zzyzx Curios", 4200)
	h := newHarness(t, tx)
	electronics := h.catRepo.byName(t, "Electronics")
	sink := &panickingSink{called: make(chan struct{})}

	uc := NewApplyCorrectionUseCase(h.txRepo, h.taxLoader, sink)
	out, err := uc.Execute(context.Background(), ApplyCorrectionInput{
		WorkspaceID:   h.workspaceID,
		TransactionID: tx.ID,
		CategoryID:    &electronics,
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !out.Changed {
		t.Errorf("Changed = false, want true")
	}

	select {
	case <-sink.called:
	case <-time.After(time.Second):
		t.Fatal("learning sink not called")
	}
	// A panic escaping the notify goroutine would abort the test binary here.
	time.Sleep(50 * time.Millisecond)

	if h.txRepo.userUpdates != 1 {
		t.Errorf("userUpdates = %d, want 1", h.txRepo.userUpdates)
	}
}

func TestApplyCorrection_RepeatIsNoop(t *testing.T) {
	tx := outflowAt(uuid.Nil, "Zzyzx Curios", 4200)
	h := newHarness(t, tx)
	sink := newRecordingSink()
	electronics := h.catRepo.byName(t, "Electronics")
	uc := newCorrectionUseCase(h, sink)
	input := ApplyCorrectionInput{WorkspaceID: h.workspaceID, TransactionID: tx.ID, CategoryID: &electronics}

	if _, err := uc.Execute(context.Background(), input); err != nil {
		t.Fatalf("first Execute() error = %v", err)
	}
	<-sink.signals

	out, err := uc.Execute(context.Background(), input)
	if err != nil {
		t.Fatalf("second Execute() error = %v", err)
	}
	if out.Changed || h.txRepo.userUpdates != 1 {
		t.Errorf("repeat changed = %v, updates = %d", out.Changed, h.txRepo.userUpdates)
	}
	select {
	case signal := <-sink.signals:
		t.Errorf("repeat emitted signal %+v", signal)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestApplyCorrection_ClearRevealsAISlot(t *testing.T) {
	tx := outflowAt(uuid.Nil, "NETFLIX.COM", 1599)
	h := newHarness(t, tx)
	if _, err := h.run(nil, nil, false).Execute(context.Background(), RunCategorizationInput{WorkspaceID: h.workspaceID}); err != nil {
		t.Fatalf("run error = %v", err)
	}
	uc := newCorrectionUseCase(h, nil)
	electronics := h.catRepo.byName(t, "Electronics")

	if _, err := uc.Execute(context.Background(), ApplyCorrectionInput{WorkspaceID: h.workspaceID, TransactionID: tx.ID, CategoryID: &electronics}); err != nil {
		t.Fatalf("correct error = %v", err)
	}
	out, err := uc.Execute(context.Background(), ApplyCorrectionInput{WorkspaceID: h.workspaceID, TransactionID: tx.ID})
	if err != nil {
		t.Fatalf("clear error = %v", err)
	}
	if out.Source != resolver.SourceAI || out.DisplayName != "Entertainment > Streaming" {
		t.Errorf("after clear = %+v", out)
	}
}

func TestApplyCorrection_Errors(t *testing.T) {
	tx := outflowAt(uuid.Nil, "Zzyzx Curios", 4200)
	h := newHarness(t, tx)
	uc := newCorrectionUseCase(h, nil)
	unknown := uuid.New()

	_, err := uc.Execute(context.Background(), ApplyCorrectionInput{WorkspaceID: h.workspaceID, TransactionID: uuid.New()})
	if !errors.Is(err, domainerror.ErrTransactionNotFound) || !errors.Is(err, domainerror.ErrNotFound) {
		t.Errorf("missing transaction error = %v", err)
	}

	_, err = uc.Execute(context.Background(), ApplyCorrectionInput{WorkspaceID: uuid.New(), TransactionID: tx.ID})
	if !errors.Is(err, domainerror.ErrTransactionNotFound) {
		t.Errorf("cross-workspace error = %v", err)
	}

	_, err = uc.Execute(context.Background(), ApplyCorrectionInput{WorkspaceID: h.workspaceID, TransactionID: tx.ID, CategoryID: &unknown})
	if !errors.Is(err, domainerror.ErrCategoryNotFound) {
		t.Errorf("unknown category error = %v", err)
	}
	if h.txRepo.userUpdates != 0 {
		t.Errorf("failed corrections wrote %d updates", h.txRepo.userUpdates)
	}
}

func TestGetStatus(t *testing.T) {
	h := newHarness(t, outflowAt(uuid.Nil, "NETFLIX.COM", 1599), outflowAt(uuid.Nil, "Zzyzx Curios", 4200))
	h.tracker.TryStart(h.workspaceID, "job-1")
	h.tracker.SetError(h.workspaceID, newProcessingError(ErrCodeAITimeout, true, fixedNow))

	out, err := NewGetStatusUseCase(h.txRepo, h.tracker).Execute(context.Background(), GetStatusInput{WorkspaceID: h.workspaceID})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if out.UncategorizedCount != 2 || !out.IsProcessing || out.JobID != "job-1" {
		t.Errorf("output = %+v", out)
	}
	if out.Error == nil || out.Error.Code != ErrCodeAITimeout {
		t.Errorf("Error = %+v", out.Error)
	}
}
