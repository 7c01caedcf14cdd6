package categorization

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/finance-tracker/bookkeeping/internal/application/adapter"
	"github.com/finance-tracker/bookkeeping/internal/domain/entity"
	domainerror "github.com/finance-tracker/bookkeeping/internal/domain/error"
)

func TestRunCategorization_RulesAndDefault(t *testing.T) {
	netflix := outflowAt(uuid.Nil, "NETFLIX.COM", 1599)
	unknown := outflowAt(uuid.Nil, "Zzyzx Curios", 4200)
	corrected := outflowAt(uuid.Nil, "Starbucks #1234", 650)
	h := newHarness(t, netflix, unknown, corrected)

	streaming := h.catRepo.byName(t, "Streaming")
	corrected.UserCategory = entity.UserCategory{PrimaryID: &streaming}

	out, err := h.run(nil, nil, false).Execute(context.Background(), RunCategorizationInput{WorkspaceID: h.workspaceID})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if out.Pending != 2 || out.Categorized != 2 || out.Defaulted != 1 || out.Skipped != 0 {
		t.Errorf("output = %+v", out)
	}

	got := h.txRepo.get(netflix.ID)
	if got.AICategory.SecondaryID == nil || *got.AICategory.SecondaryID != streaming {
		t.Errorf("netflix secondary = %v, want Streaming", got.AICategory.SecondaryID)
	}
	if got.AICategory.Method != entity.MethodMerchantRule {
		t.Errorf("netflix method = %v", got.AICategory.Method)
	}
	if got.AICategory.CategorizedAt == nil || !got.AICategory.CategorizedAt.Equal(fixedNow) {
		t.Errorf("CategorizedAt = %v", got.AICategory.CategorizedAt)
	}

	general := h.catRepo.byName(t, entity.FallbackChildName)
	if d := h.txRepo.get(unknown.ID); d.AICategory.SecondaryID == nil || *d.AICategory.SecondaryID != general {
		t.Errorf("unknown merchant not defaulted: %+v", d.AICategory)
	}
	if h.txRepo.get(corrected.ID).AICategory.IsSet() {
		t.Error("transaction with a user category received an ai category")
	}
	if h.tracker.IsProcessing(h.workspaceID) {
		t.Error("processing flag left set after run")
	}
}

func TestRunCategorization_SecondRunWritesNothing(t *testing.T) {
	h := newHarness(t, outflowAt(uuid.Nil, "NETFLIX.COM", 1599))
	uc := h.run(nil, nil, false)

	if _, err := uc.Execute(context.Background(), RunCategorizationInput{WorkspaceID: h.workspaceID}); err != nil {
		t.Fatalf("first Execute() error = %v", err)
	}
	out, err := uc.Execute(context.Background(), RunCategorizationInput{WorkspaceID: h.workspaceID})
	if err != nil {
		t.Fatalf("second Execute() error = %v", err)
	}
	if out.Categorized != 0 || h.txRepo.aiUpdates != 1 {
		t.Errorf("second run categorized %d, total updates %d", out.Categorized, h.txRepo.aiUpdates)
	}
}

func TestRunCategorization_InProgress(t *testing.T) {
	h := newHarness(t, outflowAt(uuid.Nil, "NETFLIX.COM", 1599))
	h.tracker.TryStart(h.workspaceID, "running")

	_, err := h.run(nil, nil, false).Execute(context.Background(), RunCategorizationInput{WorkspaceID: h.workspaceID})
	if !errors.Is(err, domainerror.ErrCategorizationInProgress) {
		t.Fatalf("Execute() error = %v, want ErrCategorizationInProgress", err)
	}
	if !errors.Is(err, domainerror.ErrValidation) {
		t.Errorf("error kind = %v, want validation", err)
	}
	if h.tracker.GetJobID(h.workspaceID) != "running" {
		t.Error("rejected run cleared the running job")
	}
}

func TestRunCategorization_ClassifierRefinesDefaults(t *testing.T) {
	netflix := outflowAt(uuid.Nil, "NETFLIX.COM", 1599)
	unknown := outflowAt(uuid.Nil, "Zzyzx Curios", 4200)
	h := newHarness(t, netflix, unknown)
	online := h.catRepo.byName(t, "Online")

	ai := &fakeAIService{available: true, choose: func(*adapter.TransactionForAI) uuid.UUID { return online }}
	out, err := h.run(nil, ai, true).Execute(context.Background(), RunCategorizationInput{WorkspaceID: h.workspaceID})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if out.AIClassified != 1 || out.Defaulted != 0 || out.Categorized != 2 {
		t.Errorf("output = %+v", out)
	}
	got := h.txRepo.get(unknown.ID)
	if got.AICategory.Method != entity.MethodAIClassifier || got.AICategory.SecondaryID == nil || *got.AICategory.SecondaryID != online {
		t.Errorf("unknown merchant = %+v", got.AICategory)
	}
	if h.txRepo.get(netflix.ID).AICategory.Method != entity.MethodMerchantRule {
		t.Error("rule match was sent to the classifier")
	}
}

func TestRunCategorization_ClassifierFailureKeepsDefaults(t *testing.T) {
	unknown := outflowAt(uuid.Nil, "Zzyzx Curios", 4200)
	h := newHarness(t, unknown)

	ai := &fakeAIService{available: true, err: errors.New("googleapi: Error 429: quota exceeded")}
	out, err := h.run(nil, ai, true).Execute(context.Background(), RunCategorizationInput{WorkspaceID: h.workspaceID})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if out.Defaulted != 1 || out.AIClassified != 0 {
		t.Errorf("output = %+v", out)
	}
	if got := h.tracker.GetError(h.workspaceID); got == nil || got.Code != ErrCodeAIRateLimited {
		t.Errorf("recorded error = %+v, want %s", got, ErrCodeAIRateLimited)
	}
	if h.txRepo.get(unknown.ID).AICategory.Method != entity.MethodDefault {
		t.Error("default assignment was not kept")
	}
}

func TestRunCategorization_ClassifierDisabledOrUnavailable(t *testing.T) {
	for _, tc := range []struct {
		name  string
		ai    *fakeAIService
		useAI bool
	}{
		{name: "disabled", ai: &fakeAIService{available: true}, useAI: false},
		{name: "unavailable", ai: &fakeAIService{available: false}, useAI: true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, outflowAt(uuid.Nil, "Zzyzx Curios", 4200))
			if _, err := h.run(nil, tc.ai, tc.useAI).Execute(context.Background(), RunCategorizationInput{WorkspaceID: h.workspaceID}); err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if tc.ai.calls != 0 {
				t.Errorf("classifier called %d times", tc.ai.calls)
			}
		})
	}
}

func TestRunCategorization_LearnedCategory(t *testing.T) {
	curios := outflowAt(uuid.Nil, "Zzyzx Curios", 4200)
	once := outflowAt(uuid.Nil, "Quixotic Widgets", 1800)
	h := newHarness(t, curios, once)
	electronics := h.catRepo.byName(t, "Electronics")

	learning := &fakeLearningRepo{stats: map[string][]*entity.MerchantCategoryStat{
		"ZZYZX CURIOS":     {{MerchantKey: "ZZYZX CURIOS", CategoryID: electronics, HitCount: 3}},
		"QUIXOTIC WIDGETS": {{MerchantKey: "QUIXOTIC WIDGETS", CategoryID: electronics, HitCount: 1}},
	}}

	out, err := h.run(learning, nil, false).Execute(context.Background(), RunCategorizationInput{WorkspaceID: h.workspaceID})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if out.Learned != 1 || out.Defaulted != 1 {
		t.Errorf("output = %+v", out)
	}

	got := h.txRepo.get(curios.ID).AICategory
	if got.Method != entity.MethodLearned || got.SecondaryID == nil || *got.SecondaryID != electronics {
		t.Errorf("learned assignment = %+v", got)
	}
	if got.Confidence <= 0.8 || got.Confidence > 0.95 {
		t.Errorf("learned confidence = %v", got.Confidence)
	}
}

func TestRunCategorization_LearningFailureFallsBackToRules(t *testing.T) {
	h := newHarness(t, outflowAt(uuid.Nil, "NETFLIX.COM", 1599))
	learning := &fakeLearningRepo{err: errBoom}

	out, err := h.run(learning, nil, false).Execute(context.Background(), RunCategorizationInput{WorkspaceID: h.workspaceID})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if out.Learned != 0 || out.Categorized != 1 {
		t.Errorf("output = %+v", out)
	}
}

func TestSplitIntoBatches(t *testing.T) {
	tests := []struct {
		count int
		want  []int
	}{
		{count: 0, want: []int{}},
		{count: 1, want: []int{1}},
		{count: BatchSize, want: []int{BatchSize}},
		{count: BatchSize + 1, want: []int{BatchSize, 1}},
		{count: 2*BatchSize + 5, want: []int{BatchSize, BatchSize, 5}},
	}

	for _, tt := range tests {
		txs := make([]*adapter.TransactionForAI, tt.count)
		batches := splitIntoBatches(txs)
		if len(batches) != len(tt.want) {
			t.Errorf("count %d: batches = %d, want %d", tt.count, len(batches), len(tt.want))
			continue
		}
		for i, b := range batches {
			if len(b) != tt.want[i] {
				t.Errorf("count %d: batch %d size = %d, want %d", tt.count, i, len(b), tt.want[i])
			}
		}
	}
}
