// FILE: internal/service/session_admin_service.go
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"inspection-be/internal/dto"
	"inspection-be/internal/pkg/logger"
	"inspection-be/internal/repository/contract"
	"inspection-be/pkg/store"

	"github.com/google/uuid"
)

// auditTimeLayout matches zapcore.ISO8601TimeEncoder.
const auditTimeLayout = "2006-01-02T15:04:05.000Z0700"

type ISessionAdminService interface {
	GetSession(ctx context.Context, key string) (*dto.SessionResponse, error)
	ResetSession(ctx context.Context, key string) error
	SendMessage(ctx context.Context, req *dto.SendMessageRequest) error
	LocationStatus(ctx context.Context, workOrderID uuid.UUID) (*dto.LocationStatusResponse, error)
	AuditLogs(req *dto.AuditLogListRequest) ([]dto.AuditLogResponse, error)
}

type sessionAdminService struct {
	sessions  contract.SessionRepository
	checklist IChecklistResolver
	notifier  INotifier
	audit     logger.IAuditReader
	logger    logger.ILogger
}

func NewSessionAdminService(
	sessions contract.SessionRepository,
	checklist IChecklistResolver,
	notifier INotifier,
	audit logger.IAuditReader,
	log logger.ILogger,
) ISessionAdminService {
	return &sessionAdminService{
		sessions:  sessions,
		checklist: checklist,
		notifier:  notifier,
		audit:     audit,
		logger:    log,
	}
}

func (s *sessionAdminService) GetSession(ctx context.Context, key string) (*dto.SessionResponse, error) {
	session, found, err := s.sessions.Get(ctx, SessionKey(key))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrSessionNotFound
	}
	return toSessionResponse(session), nil
}

func (s *sessionAdminService) ResetSession(ctx context.Context, key string) error {
	key = SessionKey(key)
	found, err := s.sessions.Has(ctx, key)
	if err != nil {
		return err
	}
	if !found {
		return ErrSessionNotFound
	}
	if err := s.sessions.Delete(ctx, key); err != nil {
		return err
	}

	s.logger.Info("SessionAdmin", "Session reset by admin", map[string]interface{}{"session_key": key})
	return nil
}

func (s *sessionAdminService) SendMessage(ctx context.Context, req *dto.SendMessageRequest) error {
	return s.notifier.Notify(ctx, SessionKey(req.Phone), req.Phone, req.Message)
}

func (s *sessionAdminService) LocationStatus(ctx context.Context, workOrderID uuid.UUID) (*dto.LocationStatusResponse, error) {
	locations, err := s.checklist.Locations(ctx, workOrderID)
	if err != nil {
		return nil, err
	}
	completed, total, err := s.checklist.Progress(ctx, workOrderID)
	if err != nil {
		return nil, err
	}

	res := &dto.LocationStatusResponse{
		WorkOrderId: workOrderID,
		Lines:       LocationLines(locations),
		Locations:   make([]dto.LocationStatus, len(locations)),
		Completed:   completed,
		Total:       total,
	}
	for i, l := range locations {
		res.Locations[i] = dto.LocationStatus{
			Id:              l.Location.Id,
			Name:            l.Location.Name,
			OrderIndex:      l.Location.OrderIndex,
			ChecklistItemId: l.ChecklistItemId,
			Done:            l.Done,
		}
	}
	return res, nil
}

func (s *sessionAdminService) AuditLogs(req *dto.AuditLogListRequest) ([]dto.AuditLogResponse, error) {
	if s.audit == nil {
		return []dto.AuditLogResponse{}, nil
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	page := req.Page
	if page <= 0 {
		page = 1
	}

	entries, err := s.audit.GetLogs(req.Module, strings.ToUpper(req.Level), limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read audit log: %w", err)
	}

	res := make([]dto.AuditLogResponse, len(entries))
	for i, e := range entries {
		createdAt, _ := time.Parse(auditTimeLayout, e.Timestamp)
		res[i] = dto.AuditLogResponse{
			Id:        e.Id,
			Level:     e.Level,
			Module:    e.Module,
			Message:   e.Message,
			CreatedAt: createdAt,
			Details:   e.Details,
		}
	}
	return res, nil
}

func toSessionResponse(s *store.Session) *dto.SessionResponse {
	return &dto.SessionResponse{
		Key:                    s.Key,
		Step:                   string(s.Step),
		InspectorId:            s.InspectorID,
		InspectorName:          s.InspectorName,
		InspectorPhone:         s.InspectorPhone,
		WorkOrderId:            s.WorkOrderID,
		CurrentLocation:        s.CurrentLocation,
		CurrentChecklistItemId: s.CurrentChecklistItemID,
		CurrentTaskId:          s.CurrentTaskID,
		Metadata:               s.Metadata,
		UpdatedAt:              s.UpdatedAt,
	}
}
