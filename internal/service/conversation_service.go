// FILE: internal/service/conversation_service.go
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"inspection-be/internal/dto"
	"inspection-be/internal/entity"
	"inspection-be/internal/pkg/logger"
	"inspection-be/internal/pkg/metrics"
	"inspection-be/internal/repository/contract"
	"inspection-be/internal/repository/specification"
	"inspection-be/internal/repository/unitofwork"
	"inspection-be/pkg/events"
	"inspection-be/pkg/store"
	"inspection-be/pkg/utils"
	"inspection-be/pkg/whatsapp"

	"github.com/google/uuid"
)

type IConversationService interface {
	// HandleInbound interprets one webhook delivery. Redeliveries of the same
	// provider message are no-ops. The returned error means nothing was committed
	// and the delivery may be retried.
	HandleInbound(ctx context.Context, raw []byte) (*dto.InboundResult, error)
}

type ConversationService struct {
	uowFactory unitofwork.RepositoryFactory
	workOrders contract.WorkOrderRepository
	sessions   contract.SessionRepository
	dedup      contract.DedupRepository
	identity   IIdentityResolver
	checklist  IChecklistResolver
	media      IMediaService
	notifier   INotifier
	publisher  IProgressPublisher
	locks      *utils.KeyedMutex
	logger     logger.ILogger
	audit      logger.ILogger
	metrics    *metrics.Metrics
}

func NewConversationService(
	uowFactory unitofwork.RepositoryFactory,
	workOrders contract.WorkOrderRepository,
	sessions contract.SessionRepository,
	dedup contract.DedupRepository,
	identity IIdentityResolver,
	checklist IChecklistResolver,
	media IMediaService,
	notifier INotifier,
	publisher IProgressPublisher,
	log logger.ILogger,
	audit logger.ILogger,
	m *metrics.Metrics,
) *ConversationService {
	if audit == nil {
		audit = log
	}
	return &ConversationService{
		uowFactory: uowFactory,
		workOrders: workOrders,
		sessions:   sessions,
		dedup:      dedup,
		identity:   identity,
		checklist:  checklist,
		media:      media,
		notifier:   notifier,
		publisher:  publisher,
		locks:      utils.NewKeyedMutex(),
		logger:     log,
		audit:      audit,
		metrics:    m,
	}
}

// SessionKey derives the session key from a sender phone: "+6591234567" and
// "6591234567" share one session.
func SessionKey(phone string) string {
	return strings.TrimPrefix(strings.TrimSpace(phone), "+")
}

// MessageID returns the provider message id, or a content hash when the
// provider sent none.
func MessageID(msg whatsapp.InboundMessage, raw []byte) string {
	if msg.ID != "" {
		return msg.ID
	}
	sum := sha256.Sum256(raw)
	return "sha256:" + hex.EncodeToString(sum[:])
}

// turn carries the state of one inbound event through the machine.
type turn struct {
	key       string
	phone     string
	messageID string
	msg       whatsapp.InboundMessage
	hasMedia  bool
	command   string // normalized body

	session   *store.Session
	from      store.Step
	identity  *Identity
	workOrder *entity.WorkOrder

	update  store.SessionUpdate
	reply   string
	events  []events.Event
	outcome string
	deleted bool
}

func (t *turn) moveTo(step store.Step) {
	t.session.Step = step
}

// clearWork drops location and task context, keeping identity and work order.
func (t *turn) clearWork() {
	t.update.Clear = append(t.update.Clear,
		store.FieldCurrentLocation,
		store.FieldCurrentLocationID,
		store.FieldCurrentChecklistItemID,
		store.FieldCurrentTaskID,
	)
	t.session.CurrentLocation = ""
	t.session.CurrentLocationID = ""
	t.session.CurrentChecklistItemID = ""
	t.session.CurrentTaskID = ""
}

func (s *ConversationService) HandleInbound(ctx context.Context, raw []byte) (*dto.InboundResult, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveHandleSeconds(time.Since(start).Seconds()) }()

	env := whatsapp.Parse(raw)
	msg := env.Message
	if env.Variant == whatsapp.VariantUnrecognized || msg.From == "" {
		s.logger.Warn("ConversationService", "Ignoring webhook without a sender", map[string]interface{}{
			"variant": env.Variant.String(),
		})
		s.metrics.ObserveInbound(dto.OutcomeIgnored)
		return &dto.InboundResult{Outcome: dto.OutcomeIgnored}, nil
	}

	t := &turn{
		key:       SessionKey(msg.From),
		phone:     msg.From,
		messageID: MessageID(msg, raw),
		msg:       msg,
		hasMedia:  env.HasMedia(),
		command:   utils.NormalizeName(msg.Body),
		outcome:   dto.OutcomeProcessed,
	}
	result := &dto.InboundResult{MessageId: t.messageID, SessionKey: t.key}

	unlock := s.locks.Lock(t.key)
	defer unlock()

	first, err := s.dedup.MarkProcessed(ctx, t.messageID)
	if err != nil {
		// Fall back to the session's last message id as the only guard.
		s.logger.Warn("ConversationService", "Dedup store unavailable, processing anyway", map[string]interface{}{
			"session_key": t.key,
			"message_id":  t.messageID,
			"error":       err.Error(),
		})
		first = true
	}
	if !first {
		return s.duplicate(result, t), nil
	}

	if err := s.process(ctx, t); err != nil {
		if ferr := s.dedup.Forget(ctx, t.messageID); ferr != nil {
			s.logger.Warn("ConversationService", "Failed to release message id", map[string]interface{}{
				"message_id": t.messageID,
				"error":      ferr.Error(),
			})
		}
		s.logger.Error("ConversationService", "Failed to handle inbound message", map[string]interface{}{
			"session_key": t.key,
			"message_id":  t.messageID,
			"error":       err.Error(),
		})
		s.metrics.ObserveInbound(dto.OutcomeFailed)
		result.Outcome = dto.OutcomeFailed
		return result, err
	}

	if t.outcome == dto.OutcomeDuplicate {
		return s.duplicate(result, t), nil
	}

	// State is committed from here on; publishing and replying are best-effort.
	if len(t.events) > 0 {
		s.publisher.Publish(ctx, t.events...)
	}

	result.Outcome = t.outcome
	result.Reply = t.reply
	if t.session != nil {
		result.FromStep = string(t.from)
		result.Step = string(t.session.Step)
	}
	if t.reply != "" {
		result.Delivered = s.notifier.Notify(ctx, t.key, t.phone, t.reply) == nil
	}

	s.metrics.ObserveInbound(t.outcome)
	if result.FromStep != result.Step && result.FromStep != "" {
		s.metrics.ObserveTransition(result.FromStep, result.Step)
	}
	s.audit.Info("Conversation", "Inbound message handled", map[string]interface{}{
		"session_key": t.key,
		"message_id":  t.messageID,
		"outcome":     t.outcome,
		"from_step":   result.FromStep,
		"to_step":     result.Step,
		"has_media":   t.hasMedia,
		"delivered":   result.Delivered,
	})
	return result, nil
}

func (s *ConversationService) duplicate(result *dto.InboundResult, t *turn) *dto.InboundResult {
	s.logger.Info("ConversationService", "Duplicate delivery ignored", map[string]interface{}{
		"session_key": t.key,
		"message_id":  t.messageID,
	})
	s.metrics.ObserveInbound(dto.OutcomeDuplicate)
	result.Outcome = dto.OutcomeDuplicate
	return result
}

// process runs the single transition for t and persists it.
func (s *ConversationService) process(ctx context.Context, t *turn) error {
	session, found, err := s.sessions.Get(ctx, t.key)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if !found {
		session = store.NewSession(t.key)
	}
	if session.LastMessageID == t.messageID {
		t.outcome = dto.OutcomeDuplicate
		return nil
	}
	t.session = session
	t.from = session.Step

	if t.command == commandReset {
		if err := s.sessions.Delete(ctx, t.key); err != nil {
			return fmt.Errorf("failed to reset session: %w", err)
		}
		t.deleted = true
		t.session = store.NewSession(t.key)
		t.reply = replyReset
		return nil
	}

	identity, ok := s.identity.Resolve(ctx, IdentityRequest{
		SessionKey:  t.key,
		Session:     session,
		WorkOrderID: parseUUIDPtr(session.WorkOrderID),
		Phone:       t.phone,
	})
	if !ok {
		t.outcome = dto.OutcomeUnidentified
		t.reply = replyUnidentified
		t.session = nil
		return nil
	}
	t.identity = identity
	session.InspectorID = identity.InspectorID.String()
	session.InspectorName = identity.Name
	session.InspectorPhone = identity.Phone

	if err := s.bindWorkOrder(ctx, t); err != nil {
		return err
	}

	if err := s.transition(ctx, t); err != nil {
		return err
	}

	if t.deleted {
		if err := s.sessions.Delete(ctx, t.key); err != nil {
			// The work is committed; a stale session only re-prompts next time.
			s.logger.Warn("ConversationService", "Failed to clear completed session", map[string]interface{}{
				"session_key": t.key,
				"error":       err.Error(),
			})
		}
		return nil
	}

	t.update.Step = store.Ptr(t.session.Step)
	t.update.LastMessageID = store.Ptr(t.messageID)
	if _, err := s.sessions.Merge(ctx, t.key, t.update); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// bindWorkOrder loads the session's work order, dropping it when it is no
// longer open, and binds the inspector's only open work order automatically.
func (s *ConversationService) bindWorkOrder(ctx context.Context, t *turn) error {
	if id := parseUUIDPtr(t.session.WorkOrderID); id != nil {
		workOrder, err := s.workOrders.FindOne(ctx, specification.ByID{ID: *id})
		if err != nil {
			return fmt.Errorf("failed to load work order: %w", err)
		}
		if workOrder != nil && workOrder.IsOpen() {
			t.workOrder = workOrder
			return nil
		}

		s.logger.Info("ConversationService", "Session work order is no longer open", map[string]interface{}{
			"session_key":   t.key,
			"work_order_id": t.session.WorkOrderID,
		})
		t.clearWork()
		t.update.Clear = append(t.update.Clear, store.FieldWorkOrderID)
		t.session.WorkOrderID = ""
		t.moveTo(store.StepNeedWorkOrder)
	}

	open, err := s.workOrders.FindOpenByInspector(ctx, t.identity.InspectorID)
	if err != nil {
		return fmt.Errorf("failed to load open work orders: %w", err)
	}
	if len(open) == 1 {
		s.bind(t, open[0])
	}
	return nil
}

func (s *ConversationService) bind(t *turn, workOrder *entity.WorkOrder) {
	t.workOrder = workOrder
	t.session.WorkOrderID = workOrder.Id.String()
	t.update.WorkOrderID = store.Ptr(t.session.WorkOrderID)
	// The work order is context, not a step: the same event is read against the location list.
	if t.session.Step == store.StepNeedWorkOrder {
		t.session.Step = store.StepNeedLocation
	}
}

func (s *ConversationService) transition(ctx context.Context, t *turn) error {
	if t.workOrder == nil {
		t.moveTo(store.StepNeedWorkOrder)
		return s.selectWorkOrder(ctx, t)
	}

	if t.command == commandLocations || t.command == commandBack {
		t.clearWork()
		t.moveTo(store.StepNeedLocation)
		return s.promptLocations(ctx, t, "Locations:")
	}

	switch t.session.Step {
	case store.StepNeedLocation:
		return s.selectLocation(ctx, t)
	case store.StepNeedChecklistTask, store.StepTaskComplete:
		return s.selectTask(ctx, t)
	case store.StepCollecting:
		return s.collect(ctx, t)
	default:
		t.clearWork()
		t.moveTo(store.StepNeedLocation)
		return s.promptLocations(ctx, t, "Locations:")
	}
}

func (s *ConversationService) selectWorkOrder(ctx context.Context, t *turn) error {
	open, err := s.workOrders.FindOpenByInspector(ctx, t.identity.InspectorID)
	if err != nil {
		return fmt.Errorf("failed to load open work orders: %w", err)
	}
	if len(open) == 0 {
		t.reply = replyNoWorkOrders
		return nil
	}

	idx, ok := parseChoice(t.command, len(open))
	if !ok {
		t.reply = workOrderPrompt(open)
		return nil
	}

	s.bind(t, open[idx])
	t.moveTo(store.StepNeedLocation)
	return s.promptLocations(ctx, t, fmt.Sprintf("%s selected.\nLocations:", open[idx].Title))
}

func (s *ConversationService) promptLocations(ctx context.Context, t *turn, header string) error {
	locations, err := s.checklist.Locations(ctx, t.workOrder.Id)
	if err != nil {
		return fmt.Errorf("failed to list locations: %w", err)
	}
	if len(locations) == 0 {
		t.reply = replyNoLocations
		return nil
	}
	t.reply = locationPrompt(header, locations)
	return nil
}

func (s *ConversationService) selectLocation(ctx context.Context, t *turn) error {
	locations, err := s.checklist.Locations(ctx, t.workOrder.Id)
	if err != nil {
		return fmt.Errorf("failed to list locations: %w", err)
	}
	if len(locations) == 0 {
		t.reply = replyNoLocations
		return nil
	}

	idx, ok := parseChoice(t.command, len(locations))
	if !ok {
		idx, ok = matchName(t.command, len(locations), func(i int) string { return locations[i].Location.Name })
	}
	if !ok {
		t.reply = locationPrompt(replyLocationNotFound, locations)
		return nil
	}

	selected := locations[idx]
	if selected.ChecklistItemId == nil {
		s.logger.Warn("ConversationService", "Location has no checklist item", map[string]interface{}{
			"session_key":   t.key,
			"work_order_id": t.workOrder.Id.String(),
			"location":      selected.Location.Name,
		})
		t.reply = locationPrompt(fmt.Sprintf("I couldn't find a checklist for %s, please reply with another number.", selected.Location.Name), locations)
		return nil
	}

	tasks, err := s.checklist.Tasks(ctx, t.workOrder.Id, *selected.ChecklistItemId)
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}
	if len(tasks) == 0 {
		t.reply = locationPrompt(fmt.Sprintf("%s has no tasks, please reply with another number.", selected.Location.Name), locations)
		return nil
	}

	t.session.CurrentLocation = selected.Location.Name
	t.session.CurrentLocationID = selected.Location.Id.String()
	t.session.CurrentChecklistItemID = selected.ChecklistItemId.String()
	t.update.CurrentLocation = store.Ptr(t.session.CurrentLocation)
	t.update.CurrentLocationID = store.Ptr(t.session.CurrentLocationID)
	t.update.CurrentChecklistItemID = store.Ptr(t.session.CurrentChecklistItemID)
	t.update.Clear = append(t.update.Clear, store.FieldCurrentTaskID)
	t.moveTo(store.StepNeedChecklistTask)

	t.reply = taskPrompt(fmt.Sprintf("%s selected.\nTasks:", selected.Location.Name), tasks)
	return nil
}

func (s *ConversationService) selectTask(ctx context.Context, t *turn) error {
	itemID := parseUUIDPtr(t.session.CurrentChecklistItemID)
	if itemID == nil {
		t.clearWork()
		t.moveTo(store.StepNeedLocation)
		return s.promptLocations(ctx, t, "Please pick a location first:")
	}

	tasks, err := s.checklist.Tasks(ctx, t.workOrder.Id, *itemID)
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}

	idx, ok := parseChoice(t.command, len(tasks))
	if !ok {
		idx, ok = matchName(t.command, len(tasks), func(i int) string { return tasks[i].Task.Name })
	}
	if !ok {
		header := replyTaskNotFound
		if t.hasMedia {
			header = "Please pick a task before sending photos:"
		}
		t.reply = taskPrompt(header, tasks)
		return nil
	}

	task := tasks[idx].Task
	entry, created, err := s.startEntry(ctx, t, task)
	if err != nil {
		return err
	}
	if entry.Status != entity.TaskEntryStatusCompleted {
		t.events = append(t.events, events.NewTaskStarted(t.workOrder.Id, t.identity.InspectorID, task.Id, t.session.CurrentLocation, task.Name))
	}

	t.session.CurrentTaskID = task.Id.String()
	t.update.CurrentTaskID = store.Ptr(t.session.CurrentTaskID)
	t.moveTo(store.StepCollecting)

	switch {
	case entry.Status == entity.TaskEntryStatusCompleted:
		t.reply = fmt.Sprintf("%s is already completed. Extra photos or notes will be added to it, reply DONE when finished.", task.Name)
	case created:
		t.reply = fmt.Sprintf("%s started. %s", task.Name, collectingPrompt(task.Name))
	default:
		t.reply = fmt.Sprintf("Continuing %s. %s", task.Name, collectingPrompt(task.Name))
	}
	return nil
}

// startEntry finds or creates the task entry for the selected task.
func (s *ConversationService) startEntry(ctx context.Context, t *turn, task *entity.ChecklistTask) (*entity.TaskEntry, bool, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	entry, created, err := s.findOrCreateEntry(ctx, uow.TaskEntryRepository(), t, task.Id)
	if err != nil {
		return nil, false, err
	}
	if err := uow.Commit(); err != nil {
		return nil, false, fmt.Errorf("failed to commit task entry: %w", err)
	}
	return entry, created, nil
}

func (s *ConversationService) findOrCreateEntry(ctx context.Context, repo contract.TaskEntryRepository, t *turn, taskID uuid.UUID) (*entity.TaskEntry, bool, error) {
	entry, err := repo.FindOne(ctx,
		specification.ByWorkOrderID{WorkOrderID: t.workOrder.Id},
		specification.ByChecklistTaskID{ChecklistTaskID: taskID},
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load task entry: %w", err)
	}
	if entry != nil {
		return entry, false, nil
	}

	entry = &entity.TaskEntry{
		WorkOrderId:     t.workOrder.Id,
		ChecklistTaskId: taskID,
		InspectorId:     t.identity.InspectorID,
		Status:          entity.TaskEntryStatusInProgress,
		Metadata: map[string]interface{}{
			"location":    t.session.CurrentLocation,
			"location_id": t.session.CurrentLocationID,
			"source":      "whatsapp",
		},
	}
	if err := repo.Create(ctx, entry); err != nil {
		return nil, false, fmt.Errorf("failed to create task entry: %w", err)
	}
	return entry, true, nil
}

func (s *ConversationService) collect(ctx context.Context, t *turn) error {
	var task *entity.ChecklistTask
	if taskID := parseUUIDPtr(t.session.CurrentTaskID); taskID != nil {
		var err error
		if task, err = s.findTask(ctx, *taskID); err != nil {
			return err
		}
	}
	if task == nil {
		t.session.CurrentTaskID = ""
		t.update.Clear = append(t.update.Clear, store.FieldCurrentTaskID)
		t.moveTo(store.StepNeedChecklistTask)
		return s.promptTasks(ctx, t, "Please pick a task first:")
	}

	switch {
	case t.hasMedia:
		// The attachment is recorded before a "done" caption completes the task.
		if err := s.attachMedia(ctx, t, task); err != nil {
			return err
		}
		if s.captionCompletes(t) {
			return s.completeTask(ctx, t, task)
		}
		return nil
	case t.command == commandDone:
		return s.completeTask(ctx, t, task)
	case strings.TrimSpace(t.msg.Body) != "":
		return s.addNote(ctx, t, task, t.msg.Body)
	default:
		t.reply = collectingPrompt(task.Name)
		return nil
	}
}

func (s *ConversationService) promptTasks(ctx context.Context, t *turn, header string) error {
	itemID := parseUUIDPtr(t.session.CurrentChecklistItemID)
	if itemID == nil {
		t.clearWork()
		t.moveTo(store.StepNeedLocation)
		return s.promptLocations(ctx, t, "Please pick a location first:")
	}

	tasks, err := s.checklist.Tasks(ctx, t.workOrder.Id, *itemID)
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}
	t.reply = taskPrompt(header, tasks)
	return nil
}

func (s *ConversationService) findTask(ctx context.Context, taskID uuid.UUID) (*entity.ChecklistTask, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	task, err := uow.ChecklistRepository().FindTask(ctx, specification.ByID{ID: taskID})
	if err != nil {
		return nil, fmt.Errorf("failed to load task: %w", err)
	}
	return task, nil
}

func (s *ConversationService) attachMedia(ctx context.Context, t *turn, task *entity.ChecklistTask) error {
	// Download and upload happen outside the transaction.
	stored := s.media.Store(ctx, t.key, t.workOrder.Id, t.msg.Media)
	contentType := stored.ContentType
	if contentType == "" && t.msg.Media != nil {
		contentType = t.msg.Media.MimeType
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	repo := uow.TaskEntryRepository()
	entry, _, err := s.findOrCreateEntry(ctx, repo, t, task.Id)
	if err != nil {
		return err
	}

	media := &entity.EntryMedia{
		TaskEntryId:       entry.Id,
		ProviderMessageId: t.messageID,
		Url:               stored.URL,
		ContentType:       contentType,
		StorageKey:        stored.StorageKey,
	}
	created, err := repo.AddMedia(ctx, media)
	if err != nil {
		return fmt.Errorf("failed to record media: %w", err)
	}

	if caption := s.caption(t); caption != "" && !s.captionCompletes(t) {
		entry.Notes = appendNote(entry.Notes, caption)
		if err := repo.Update(ctx, entry); err != nil {
			return fmt.Errorf("failed to save caption: %w", err)
		}
	}

	attached, err := repo.FindMedia(ctx, specification.ByTaskEntryID{TaskEntryID: entry.Id})
	if err != nil {
		return fmt.Errorf("failed to count media: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit media: %w", err)
	}

	if created {
		t.events = append(t.events, events.NewMediaAttached(t.workOrder.Id, t.identity.InspectorID, entry.Id, stored.URL))
	}
	t.reply = fmt.Sprintf("Received for %s (%d attached). Send more, or reply DONE when finished.", task.Name, len(attached))
	return nil
}

func (s *ConversationService) caption(t *turn) string {
	if t.msg.Media != nil && t.msg.Media.Caption != "" {
		return strings.TrimSpace(t.msg.Media.Caption)
	}
	return strings.TrimSpace(t.msg.Body)
}

func (s *ConversationService) captionCompletes(t *turn) bool {
	return utils.NormalizeName(s.caption(t)) == commandDone
}

func (s *ConversationService) addNote(ctx context.Context, t *turn, task *entity.ChecklistTask, note string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	repo := uow.TaskEntryRepository()
	entry, _, err := s.findOrCreateEntry(ctx, repo, t, task.Id)
	if err != nil {
		return err
	}
	entry.Notes = appendNote(entry.Notes, strings.TrimSpace(note))
	if err := repo.Update(ctx, entry); err != nil {
		return fmt.Errorf("failed to save note: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit note: %w", err)
	}

	t.reply = fmt.Sprintf("Note saved for %s. Send more, or reply DONE when finished.", task.Name)
	return nil
}

func (s *ConversationService) completeTask(ctx context.Context, t *turn, task *entity.ChecklistTask) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	repo := uow.TaskEntryRepository()
	entry, _, err := s.findOrCreateEntry(ctx, repo, t, task.Id)
	if err != nil {
		return err
	}

	newlyCompleted := entry.Status != entity.TaskEntryStatusCompleted
	if newlyCompleted {
		now := time.Now()
		entry.Status = entity.TaskEntryStatusCompleted
		entry.CompletedAt = &now
		if err := repo.Update(ctx, entry); err != nil {
			return fmt.Errorf("failed to complete task entry: %w", err)
		}
	}
	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit task completion: %w", err)
	}

	completed, total, err := s.checklist.Progress(ctx, t.workOrder.Id)
	if err != nil {
		return fmt.Errorf("failed to compute progress: %w", err)
	}

	if newlyCompleted {
		t.events = append(t.events, events.NewTaskCompleted(t.workOrder.Id, t.identity.InspectorID, task.Id, entry.Id,
			t.session.CurrentLocation, task.Name, completed, total))
	}
	t.moveTo(store.StepTaskComplete)

	if total > 0 && completed == total {
		t.events = append(t.events, events.NewWorkOrderInspectionCompleted(t.workOrder.Id, t.identity.InspectorID, total))
		t.deleted = true
		t.reply = fmt.Sprintf("%s completed. All %d tasks for %s are done, thank you!", task.Name, total, t.workOrder.Title)
		return nil
	}

	t.update.Clear = append(t.update.Clear, store.FieldCurrentTaskID)
	t.session.CurrentTaskID = ""

	tasks, err := s.checklist.Tasks(ctx, t.workOrder.Id, task.ChecklistItemId)
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}
	t.reply = taskPrompt(fmt.Sprintf("%s completed (%d/%d).\n%s:", task.Name, completed, total, t.session.CurrentLocation), tasks)
	return nil
}

func appendNote(notes, note string) string {
	if note == "" {
		return notes
	}
	if notes == "" {
		return note
	}
	return notes + "\n" + note
}

// parseChoice reads a 1-based menu number. command is already normalized, so
// "2." and " 2 " both arrive as "2".
func parseChoice(command string, n int) (int, bool) {
	v, err := strconv.Atoi(command)
	if err != nil || v < 1 || v > n {
		return 0, false
	}
	return v - 1, true
}

func matchName(command string, n int, name func(int) string) (int, bool) {
	if command == "" {
		return 0, false
	}
	for i := 0; i < n; i++ {
		if utils.NormalizeName(name(i)) == command {
			return i, true
		}
	}
	return 0, false
}

func parseUUIDPtr(s string) *uuid.UUID {
	if s == "" {
		return nil
	}
	id, err := uuid.Parse(s)
	if err != nil || id == uuid.Nil {
		return nil
	}
	return &id
}
