package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"inspection-be/internal/dto"
	"inspection-be/internal/entity"
	"inspection-be/internal/pkg/logger"
	"inspection-be/internal/pkg/testdb"
	"inspection-be/internal/repository/implementation"
	"inspection-be/internal/repository/memory"
	"inspection-be/internal/repository/specification"
	"inspection-be/internal/repository/unitofwork"
	"inspection-be/pkg/events"
	"inspection-be/pkg/store"
	"inspection-be/pkg/whatsapp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *eventRecorder) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *eventRecorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.EventType()
	}
	return out
}

type conversationHarness struct {
	t        *testing.T
	svc      *ConversationService
	db       *gorm.DB
	f        *testdb.Fixture
	sessions *memory.SessionRepository
	dedup    *memory.DedupRepository
	sender   *recordingSender
	recorder *eventRecorder
	seq      int
}

func newConversationHarness(t *testing.T) *conversationHarness {
	t.Helper()
	db := testdb.New(t)
	f := testdb.Seed(t, db)
	log := logger.NewNopLogger()

	sessions := memory.NewSessionRepository(0)
	dedup := memory.NewDedupRepository(time.Hour)
	inspectors := implementation.NewInspectorRepository(db)
	workOrders := implementation.NewWorkOrderRepository(db)

	identity := NewIdentityResolver(inspectors, inspectors, sessions, log, nil)
	checklist := NewChecklistResolver(
		workOrders,
		implementation.NewLocationRepository(db),
		implementation.NewChecklistRepository(db),
		implementation.NewTaskEntryRepository(db),
		time.Hour, log, nil,
	)
	sender := &recordingSender{}
	recorder := &eventRecorder{}
	status := NewWorkOrderStatusService(workOrders, nil, log)

	svc := NewConversationService(
		unitofwork.NewRepositoryFactory(db),
		workOrders,
		sessions,
		dedup,
		identity,
		checklist,
		NewMediaService(nil, nil, log),
		NewNotifier(sender, 4000, log, nil),
		NewProgressPublisher(log, recorder, status),
		log, nil, nil,
	)

	return &conversationHarness{
		t:        t,
		svc:      svc,
		db:       db,
		f:        f,
		sessions: sessions,
		dedup:    dedup,
		sender:   sender,
		recorder: recorder,
	}
}

// payload builds a flat gateway payload with a fresh message id.
func (h *conversationHarness) payload(body string, extra map[string]interface{}) []byte {
	h.seq++
	m := map[string]interface{}{
		"id":   fmt.Sprintf("wamid.%03d", h.seq),
		"from": testdb.FixturePhone,
		"body": body,
	}
	for k, v := range extra {
		m[k] = v
	}
	raw, err := json.Marshal(m)
	require.NoError(h.t, err)
	return raw
}

func (h *conversationHarness) send(body string) *dto.InboundResult {
	h.t.Helper()
	result, err := h.svc.HandleInbound(context.Background(), h.payload(body, nil))
	require.NoError(h.t, err)
	return result
}

func (h *conversationHarness) session() *store.Session {
	h.t.Helper()
	s, found, err := h.sessions.Get(context.Background(), SessionKey(testdb.FixturePhone))
	require.NoError(h.t, err)
	if !found {
		return nil
	}
	return s
}

func TestConversation_FirstMessageSelectsLocation(t *testing.T) {
	h := newConversationHarness(t)

	result := h.send("1")

	assert.Equal(t, dto.OutcomeProcessed, result.Outcome)
	assert.Equal(t, string(store.StepNeedWorkOrder), result.FromStep)
	assert.Equal(t, string(store.StepNeedChecklistTask), result.Step)
	assert.True(t, result.Delivered)

	s := h.session()
	require.NotNil(t, s)
	assert.Equal(t, store.StepNeedChecklistTask, s.Step)
	assert.Equal(t, h.f.Inspector.Id.String(), s.InspectorID)
	assert.Equal(t, "Ana Lim", s.InspectorName)
	assert.Equal(t, h.f.WorkOrder.Id.String(), s.WorkOrderID)
	assert.Equal(t, "Kitchen", s.CurrentLocation)
	assert.Equal(t, h.f.KitchenItem.Id.String(), s.CurrentChecklistItemID)

	reply := h.sender.last()
	assert.Equal(t, testdb.FixturePhone, reply.Phone)
	assert.Contains(t, reply.Text, "Kitchen selected.")
	assert.Contains(t, reply.Text, "1. Check sink")
	assert.Contains(t, reply.Text, "2. Check stove")
}

func TestConversation_RedeliveryDoesNotAdvanceTwice(t *testing.T) {
	h := newConversationHarness(t)
	raw := h.payload("1", nil)

	first, err := h.svc.HandleInbound(context.Background(), raw)
	require.NoError(t, err)
	require.Equal(t, dto.OutcomeProcessed, first.Outcome)

	second, err := h.svc.HandleInbound(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, dto.OutcomeDuplicate, second.Outcome)

	// Dedup entry expired: the session still remembers the last message.
	var msg struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(raw, &msg))
	require.NoError(t, h.dedup.Forget(context.Background(), msg.ID))

	third, err := h.svc.HandleInbound(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, dto.OutcomeDuplicate, third.Outcome)

	assert.Equal(t, store.StepNeedChecklistTask, h.session().Step, "\"1\" again would have started a task")
	assert.Len(t, h.sender.messages(), 1)
}

func TestConversation_ConcurrentRedeliveries(t *testing.T) {
	h := newConversationHarness(t)
	raw := h.payload("1", nil)

	var wg sync.WaitGroup
	outcomes := make([]string, 8)
	for i := range outcomes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := h.svc.HandleInbound(context.Background(), raw)
			if err == nil {
				outcomes[i] = result.Outcome
			}
		}(i)
	}
	wg.Wait()

	processed := 0
	for _, o := range outcomes {
		if o == dto.OutcomeProcessed {
			processed++
		} else {
			assert.Equal(t, dto.OutcomeDuplicate, o)
		}
	}
	assert.Equal(t, 1, processed)
	assert.Equal(t, store.StepNeedChecklistTask, h.session().Step)
}

func TestConversation_UnexpectedInputRePrompts(t *testing.T) {
	h := newConversationHarness(t)

	result := h.send("garage")
	assert.Equal(t, string(store.StepNeedLocation), result.Step)
	assert.Contains(t, h.sender.last().Text, "couldn't find a matching location")
	assert.Contains(t, h.sender.last().Text, "3. Living Room")

	result = h.send("Living Room!")
	assert.Equal(t, string(store.StepNeedLocation), result.Step, "no checklist item for this location")
	assert.Contains(t, h.sender.last().Text, "couldn't find a checklist for Living Room")

	result = h.send("  KITCHEN ")
	assert.Equal(t, string(store.StepNeedChecklistTask), result.Step)

	result, err := h.svc.HandleInbound(context.Background(), h.payload("", map[string]interface{}{
		"type": "image",
		"url":  "https://cdn.example.com/a.jpg",
	}))
	require.NoError(t, err)
	assert.Equal(t, string(store.StepNeedChecklistTask), result.Step)
	assert.Contains(t, h.sender.last().Text, "Please pick a task before sending photos")

	result = h.send("9")
	assert.Equal(t, string(store.StepNeedChecklistTask), result.Step)
	assert.Contains(t, h.sender.last().Text, "couldn't find a matching task")
}

func TestConversation_FullInspection(t *testing.T) {
	h := newConversationHarness(t)
	ctx := context.Background()
	entries := implementation.NewTaskEntryRepository(h.db)

	h.send("1") // Kitchen
	result := h.send("1")
	require.Equal(t, string(store.StepCollecting), result.Step)
	assert.Contains(t, h.sender.last().Text, "Check sink started.")

	result, err := h.svc.HandleInbound(ctx, h.payload("", map[string]interface{}{
		"type":    "image",
		"url":     "https://cdn.example.com/sink.jpg",
		"caption": "Leaking trap",
	}))
	require.NoError(t, err)
	assert.Equal(t, string(store.StepCollecting), result.Step)
	assert.Contains(t, h.sender.last().Text, "(1 attached)")

	h.send("needs sealant")
	result = h.send("DONE")
	assert.Equal(t, string(store.StepTaskComplete), result.Step)
	assert.Contains(t, h.sender.last().Text, "Check sink completed (1/3).")
	assert.Contains(t, h.sender.last().Text, "1. Check sink (Done)")

	entry, err := entries.FindOne(ctx,
		specification.ByWorkOrderID{WorkOrderID: h.f.WorkOrder.Id},
		specification.ByChecklistTaskID{ChecklistTaskID: h.f.CheckSink.Id},
	)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, entity.TaskEntryStatusCompleted, entry.Status)
	assert.Equal(t, "Leaking trap\nneeds sealant", entry.Notes)
	assert.Equal(t, "Kitchen", entry.Metadata["location"])

	media, err := entries.FindMedia(ctx, specification.ByTaskEntryID{TaskEntryID: entry.Id})
	require.NoError(t, err)
	require.Len(t, media, 1)
	assert.Equal(t, "https://cdn.example.com/sink.jpg", media[0].Url)

	wo, err := implementation.NewWorkOrderRepository(h.db).FindOne(ctx, specification.ByID{ID: h.f.WorkOrder.Id})
	require.NoError(t, err)
	assert.Equal(t, entity.WorkOrderStatusInProgress, wo.Status)

	h.send("2") // Check stove
	h.send("done")

	result = h.send("locations")
	assert.Equal(t, string(store.StepNeedLocation), result.Step)
	assert.Contains(t, h.sender.last().Text, "1. Kitchen (Done)")
	assert.Empty(t, h.session().CurrentLocation)

	h.send("bedroom")
	h.send("check windows")
	result = h.send("done")
	assert.Equal(t, string(store.StepTaskComplete), result.Step)
	assert.Contains(t, h.sender.last().Text, "All 3 tasks for Unit 12-04 handover are done")

	assert.Nil(t, h.session(), "session is cleared when the work order is finished")
	assert.Equal(t, events.TypeWorkOrderInspectionCompleted, h.recorder.types()[len(h.recorder.types())-1])
	assert.Contains(t, h.recorder.types(), events.TypeMediaAttached)

	wo, err = implementation.NewWorkOrderRepository(h.db).FindOne(ctx, specification.ByID{ID: h.f.WorkOrder.Id})
	require.NoError(t, err)
	assert.Equal(t, entity.WorkOrderStatusCompleted, wo.Status)

	result = h.send("hi")
	assert.Equal(t, replyNoWorkOrders, h.sender.last().Text)
	assert.Equal(t, string(store.StepNeedWorkOrder), result.Step)
}

func TestConversation_PhotoCaptionedDoneKeepsMedia(t *testing.T) {
	h := newConversationHarness(t)
	ctx := context.Background()
	entries := implementation.NewTaskEntryRepository(h.db)

	h.send("1") // Kitchen
	h.send("1") // Check sink

	result, err := h.svc.HandleInbound(ctx, h.payload("Done", map[string]interface{}{
		"type": "image",
		"url":  "https://cdn.example.com/sink-final.jpg",
	}))
	require.NoError(t, err)
	assert.Equal(t, string(store.StepTaskComplete), result.Step)
	assert.Contains(t, h.sender.last().Text, "Check sink completed (1/3).")

	entry, err := entries.FindOne(ctx,
		specification.ByWorkOrderID{WorkOrderID: h.f.WorkOrder.Id},
		specification.ByChecklistTaskID{ChecklistTaskID: h.f.CheckSink.Id},
	)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, entity.TaskEntryStatusCompleted, entry.Status)
	assert.Empty(t, entry.Notes, "the completion keyword is not stored as a note")

	media, err := entries.FindMedia(ctx, specification.ByTaskEntryID{TaskEntryID: entry.Id})
	require.NoError(t, err)
	require.Len(t, media, 1)
	assert.Equal(t, "https://cdn.example.com/sink-final.jpg", media[0].Url)

	assert.Equal(t, []string{events.TypeMediaAttached, events.TypeTaskCompleted}, h.recorder.types()[len(h.recorder.types())-2:])
}

func TestConversation_NotificationFailureKeepsState(t *testing.T) {
	h := newConversationHarness(t)
	h.sender.err = &whatsapp.GatewayError{StatusCode: 500, Body: "gateway down"}

	result := h.send("1")

	assert.Equal(t, dto.OutcomeProcessed, result.Outcome)
	assert.False(t, result.Delivered)
	assert.Equal(t, store.StepNeedChecklistTask, h.session().Step)
}

func TestConversation_UnidentifiedSender(t *testing.T) {
	h := newConversationHarness(t)

	result, err := h.svc.HandleInbound(context.Background(), []byte(`{"id":"wamid.x","from":"+6500000000","body":"1"}`))
	require.NoError(t, err)

	assert.Equal(t, dto.OutcomeUnidentified, result.Outcome)
	assert.Equal(t, replyUnidentified, h.sender.last().Text)
	assert.Equal(t, "+6500000000", h.sender.last().Phone)

	has, err := h.sessions.Has(context.Background(), "6500000000")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestConversation_PhoneWithoutPlusSharesSession(t *testing.T) {
	h := newConversationHarness(t)

	h.send("1")
	result, err := h.svc.HandleInbound(context.Background(), []byte(`{"id":"wamid.y","from":"6591234567@c.us","body":"2"}`))
	require.NoError(t, err)

	assert.Equal(t, SessionKey(testdb.FixturePhone), result.SessionKey)
	assert.Equal(t, string(store.StepCollecting), result.Step)
	assert.Equal(t, h.f.CheckStove.Id.String(), h.session().CurrentTaskID)
}

func TestConversation_Reset(t *testing.T) {
	h := newConversationHarness(t)
	h.send("1")

	result := h.send("reset")

	assert.Equal(t, string(store.StepNeedWorkOrder), result.Step)
	assert.Equal(t, replyReset, h.sender.last().Text)
	assert.Nil(t, h.session())
}

func TestConversation_IgnoresPayloadWithoutSender(t *testing.T) {
	h := newConversationHarness(t)

	for _, raw := range []string{`{}`, `not json`, `{"body":"1"}`} {
		result, err := h.svc.HandleInbound(context.Background(), []byte(raw))
		require.NoError(t, err)
		assert.Equal(t, dto.OutcomeIgnored, result.Outcome, raw)
	}
	assert.Empty(t, h.sender.messages())
}

func TestConversation_ChoosesAmongSeveralWorkOrders(t *testing.T) {
	h := newConversationHarness(t)
	ctx := context.Background()
	workOrders := implementation.NewWorkOrderRepository(h.db)

	second := &entity.WorkOrder{
		ContractId: h.f.Contract.Id,
		Title:      "Unit 12-05 handover",
		Status:     entity.WorkOrderStatusOpen,
		CreatedAt:  time.Now().Add(time.Hour),
	}
	require.NoError(t, workOrders.Create(ctx, second))
	require.NoError(t, workOrders.AssignInspector(ctx, &entity.WorkOrderInspector{WorkOrderId: second.Id, InspectorId: h.f.Inspector.Id, Position: 1}))

	result := h.send("hello")
	assert.Equal(t, string(store.StepNeedWorkOrder), result.Step)
	assert.Contains(t, h.sender.last().Text, "1. Unit 12-04 handover")
	assert.Contains(t, h.sender.last().Text, "2. Unit 12-05 handover")

	result = h.send("2")
	assert.Equal(t, string(store.StepNeedLocation), result.Step)
	assert.Equal(t, second.Id.String(), h.session().WorkOrderID)
	assert.Equal(t, replyNoLocations, h.sender.last().Text)
}

func TestParseChoice(t *testing.T) {
	idx, ok := parseChoice("2", 3)
	assert.True(t, ok)
	assert.Equal(t, 1, idx)

	for _, in := range []string{"0", "4", "", "two", "-1"} {
		_, ok := parseChoice(in, 3)
		assert.False(t, ok, in)
	}
}
