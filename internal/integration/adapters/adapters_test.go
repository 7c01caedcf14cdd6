package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"

	"github.com/finance-tracker/bookkeeping/internal/application/adapter"
	"github.com/finance-tracker/bookkeeping/internal/domain/entity"
)

func classificationRequest() (*adapter.AICategorizationRequest, uuid.UUID, uuid.UUID) {
	txID, catID := uuid.New(), uuid.New()
	return &adapter.AICategorizationRequest{
		WorkspaceID: uuid.New(),
		Transactions: []*adapter.TransactionForAI{
			{ID: txID, Merchant: "Zzyzx Curios", Description: "card purchase", Amount: "12.00", Direction: "outflow", Date: "2026-03-02", ProviderCode: "GENERAL_MERCHANDISE"},
		},
		Categories: []*adapter.CategoryForAI{
			{ID: catID, Name: "Gifts", Path: "Shopping > Gifts"},
		},
	}, txID, catID
}

func TestParseClassifications(t *testing.T) {
	request, txID, catID := classificationRequest()

	tests := []struct {
		name    string
		text    string
		want    int
		wantErr bool
	}{
		{
			name: "plain array",
			text: `[{"transaction_id":"` + txID.String() + `","category_id":"` + catID.String() + `","confidence":0.7,"reasoning":"gift shop"}]`,
			want: 1,
		},
		{
			name: "markdown fenced",
			text: "```json\n[{\"transaction_id\":\"" + txID.String() + "\",\"category_id\":\"" + catID.String() + "\",\"confidence\":0.7}]\n```",
			want: 1,
		},
		{
			name: "unknown category dropped",
			text: `[{"transaction_id":"` + txID.String() + `","category_id":"` + uuid.NewString() + `","confidence":0.9}]`,
			want: 0,
		},
		{
			name: "unknown transaction dropped",
			text: `[{"transaction_id":"` + uuid.NewString() + `","category_id":"` + catID.String() + `","confidence":0.9}]`,
			want: 0,
		},
		{
			name: "duplicate answers keep first",
			text: `[{"transaction_id":"` + txID.String() + `","category_id":"` + catID.String() + `","confidence":0.6},` +
				`{"transaction_id":"` + txID.String() + `","category_id":"` + catID.String() + `","confidence":0.9}]`,
			want: 1,
		},
		{
			name:    "not json",
			text:    "I think it is a gift shop",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseClassifications(tt.text, request)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseClassifications() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(got) != tt.want {
				t.Errorf("parseClassifications() = %d results, want %d", len(got), tt.want)
			}
		})
	}

	got, _ := parseClassifications(`[{"transaction_id":"`+txID.String()+`","category_id":"`+catID.String()+`","confidence":3}]`, request)
	if len(got) != 1 || got[0].Confidence != 1 {
		t.Errorf("confidence not clamped: %+v", got)
	}
}

func TestBuildPrompt(t *testing.T) {
	request, txID, catID := classificationRequest()
	prompt := buildPrompt(request)

	for _, want := range []string{txID.String(), catID.String(), "Shopping > Gifts", `"Zzyzx Curios"`, "GENERAL_MERCHANDISE"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt is missing %q", want)
		}
	}
}

func TestResponseText(t *testing.T) {
	if _, err := responseText(nil); err == nil {
		t.Error("responseText(nil) succeeded")
	}

	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []genai.Part{genai.Text("[]")}}}},
	}
	text, err := responseText(resp)
	if err != nil || text != "[]" {
		t.Errorf("responseText() = %q, %v", text, err)
	}
}

func TestGeminiService_Unavailable(t *testing.T) {
	request, _, _ := classificationRequest()
	svc := NewGeminiService("", "")
	if svc.IsAvailable() {
		t.Fatal("service without key reports available")
	}
	if _, err := svc.Classify(context.Background(), request); err == nil {
		t.Error("Classify() without key succeeded")
	}
}

type recordingLearningRepo struct {
	signals []entity.LearningSignal
	err     error
}

func (r *recordingLearningRepo) Record(_ context.Context, signal entity.LearningSignal) error {
	if r.err != nil {
		return r.err
	}
	r.signals = append(r.signals, signal)
	return nil
}

func (r *recordingLearningRepo) FindByMerchant(context.Context, uuid.UUID, string) ([]*entity.MerchantCategoryStat, error) {
	return nil, nil
}

type recordingSink struct {
	got []entity.LearningSignal
}

func (s *recordingSink) Notify(_ context.Context, signal entity.LearningSignal) {
	s.got = append(s.got, signal)
}

func learningSignal() entity.LearningSignal {
	previous := uuid.New()
	return entity.LearningSignal{
		WorkspaceID:        uuid.New(),
		TransactionID:      uuid.New(),
		MerchantKey:        "CORNER GROCER",
		CategoryID:         uuid.New(),
		PreviousCategoryID: &previous,
		OccurredAt:         time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
	}
}

func TestStoreLearningSink(t *testing.T) {
	repo := &recordingLearningRepo{}
	sink := NewStoreLearningSink(repo)

	sink.Notify(context.Background(), learningSignal())
	if len(repo.signals) != 1 {
		t.Fatalf("recorded = %d, want 1", len(repo.signals))
	}

	repo.err = errors.New("db down")
	sink.Notify(context.Background(), learningSignal())
}

func TestFanOutLearningSink(t *testing.T) {
	a, b := &recordingSink{}, &recordingSink{}

	if single := NewFanOutLearningSink(nil, a); single != a {
		t.Errorf("single sink was wrapped")
	}

	sink := NewFanOutLearningSink(a, nil, b)
	sink.Notify(context.Background(), learningSignal())
	if len(a.got) != 2 || len(b.got) != 1 {
		t.Errorf("deliveries = %d, %d", len(a.got), len(b.got))
	}
}

type fakeChannel struct {
	exchange string
	key      string
	msg      amqp091.Publishing
	err      error
}

func (c *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp091.Publishing) error {
	c.exchange, c.key, c.msg = exchange, key, msg
	return c.err
}

func TestAMQPLearningBus_Notify(t *testing.T) {
	ch := &fakeChannel{}
	bus := &AMQPLearningBus{publisher: ch, exchange: "bookkeeping.learning", routingKey: "category.corrected"}
	signal := learningSignal()

	bus.Notify(context.Background(), signal)

	if ch.exchange != "bookkeeping.learning" || ch.key != "category.corrected" {
		t.Errorf("published to %s/%s", ch.exchange, ch.key)
	}
	if ch.msg.DeliveryMode != amqp091.Persistent || ch.msg.ContentType != "application/json" {
		t.Errorf("publishing = %+v", ch.msg)
	}

	var msg LearningMessage
	if err := json.Unmarshal(ch.msg.Body, &msg); err != nil {
		t.Fatalf("body is not json: %v", err)
	}
	got := msg.Signal()
	if got.MerchantKey != signal.MerchantKey || got.CategoryID != signal.CategoryID || !got.OccurredAt.Equal(signal.OccurredAt) {
		t.Errorf("round trip = %+v, want %+v", got, signal)
	}
	if got.PreviousCategoryID == nil || *got.PreviousCategoryID != *signal.PreviousCategoryID {
		t.Errorf("PreviousCategoryID = %v", got.PreviousCategoryID)
	}

	ch.err = errors.New("channel closed")
	bus.Notify(context.Background(), signal)
}

func TestHandleDelivery(t *testing.T) {
	body, _ := json.Marshal(newLearningMessage(learningSignal()))

	tests := []struct {
		name      string
		body      []byte
		repoErr   error
		wantErr   bool
		retryable bool
	}{
		{name: "recorded", body: body},
		{name: "garbage", body: []byte("{"), wantErr: true},
		{name: "incomplete", body: []byte(`{"merchant_key":"X"}`), wantErr: true},
		{name: "store failure", body: body, repoErr: errors.New("db down"), wantErr: true, retryable: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &recordingLearningRepo{err: tt.repoErr}
			err := handleDelivery(context.Background(), repo, tt.body)
			if (err != nil) != tt.wantErr {
				t.Fatalf("handleDelivery() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && isRetryable(err) != tt.retryable {
				t.Errorf("isRetryable() = %v, want %v", isRetryable(err), tt.retryable)
			}
			if err == nil && len(repo.signals) != 1 {
				t.Errorf("recorded = %d, want 1", len(repo.signals))
			}
		})
	}
}

type recordingAcknowledger struct {
	acked    int
	nacked   int
	requeued bool
}

func (a *recordingAcknowledger) Ack(uint64, bool) error {
	a.acked++
	return nil
}

func (a *recordingAcknowledger) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacked++
	a.requeued = requeue
	return nil
}

func (a *recordingAcknowledger) Reject(_ uint64, requeue bool) error {
	a.nacked++
	a.requeued = requeue
	return nil
}

func TestAMQPLearningBus_Settle(t *testing.T) {
	body, _ := json.Marshal(newLearningMessage(learningSignal()))

	tests := []struct {
		name        string
		body        []byte
		repoErr     error
		redelivered bool
		wantAck     bool
		wantRequeue bool
	}{
		{name: "recorded", body: body, wantAck: true},
		{name: "malformed is dropped", body: []byte("{"), wantRequeue: false},
		{name: "store failure is requeued once", body: body, repoErr: errors.New("db down"), wantRequeue: true},
		{name: "redelivered store failure is dropped", body: body, repoErr: errors.New("db down"), redelivered: true, wantRequeue: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ack := &recordingAcknowledger{}
			bus := &AMQPLearningBus{queue: "bookkeeping.learning.category.corrected"}
			delivery := amqp091.Delivery{Acknowledger: ack, DeliveryTag: 7, Body: tt.body, Redelivered: tt.redelivered}

			bus.settle(context.Background(), &recordingLearningRepo{err: tt.repoErr}, delivery, slog.Default())

			if tt.wantAck {
				if ack.acked != 1 || ack.nacked != 0 {
					t.Errorf("acked = %d, nacked = %d, want ack only", ack.acked, ack.nacked)
				}
				return
			}
			if ack.nacked != 1 || ack.acked != 0 {
				t.Fatalf("acked = %d, nacked = %d, want nack only", ack.acked, ack.nacked)
			}
			if ack.requeued != tt.wantRequeue {
				t.Errorf("requeue = %v, want %v", ack.requeued, tt.wantRequeue)
			}
		})
	}
}

func TestAMQPLearningBus_SettleStopsWaitingOnCancel(t *testing.T) {
	body, _ := json.Marshal(newLearningMessage(learningSignal()))
	ack := &recordingAcknowledger{}
	bus := &AMQPLearningBus{requeueDelay: time.Hour}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		bus.settle(ctx, &recordingLearningRepo{err: errors.New("db down")}, amqp091.Delivery{Acknowledger: ack, Body: body}, slog.Default())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("settle() kept waiting after cancel")
	}
	if ack.nacked != 1 || !ack.requeued {
		t.Errorf("nacked = %d, requeued = %v", ack.nacked, ack.requeued)
	}
}
