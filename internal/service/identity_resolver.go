// FILE: internal/service/identity_resolver.go
package service

import (
	"context"

	"inspection-be/internal/entity"
	"inspection-be/internal/pkg/logger"
	"inspection-be/internal/pkg/metrics"
	"inspection-be/internal/repository/contract"
	"inspection-be/pkg/resolve"
	"inspection-be/pkg/store"
	"inspection-be/pkg/utils"

	"github.com/google/uuid"
)

// Identity tiers, in resolution order.
const (
	TierSessionMemo       = "session_memo"
	TierPhoneExact        = "phone_exact"
	TierPhoneVariant      = "phone_variant"
	TierWorkOrderAssignee = "work_order_assignee"
)

// InspectorDirectory looks inspectors up by exact phone. nil, nil means no match.
type InspectorDirectory interface {
	FindByPhone(ctx context.Context, phone string) (*entity.Inspector, error)
}

// AssignmentReader lists a work order's inspectors, first assigned first.
type AssignmentReader interface {
	FindAssignedInspectors(ctx context.Context, workOrderId uuid.UUID) ([]*entity.Inspector, error)
}

type IdentityRequest struct {
	SessionKey  string
	Session     *store.Session // already loaded state, may be nil
	WorkOrderID *uuid.UUID
	Phone       string
}

type Identity struct {
	InspectorID uuid.UUID
	Name        string
	Phone       string
	Tier        string
}

type IIdentityResolver interface {
	// Resolve returns false when no tier could identify the sender.
	Resolve(ctx context.Context, req IdentityRequest) (*Identity, bool)
}

type identityResolver struct {
	directory   InspectorDirectory
	assignments AssignmentReader
	sessions    contract.SessionRepository
	logger      logger.ILogger
	metrics     *metrics.Metrics
	strategies  []resolve.Strategy[IdentityRequest, *Identity]
}

func NewIdentityResolver(
	directory InspectorDirectory,
	assignments AssignmentReader,
	sessions contract.SessionRepository,
	log logger.ILogger,
	m *metrics.Metrics,
) IIdentityResolver {
	r := &identityResolver{
		directory:   directory,
		assignments: assignments,
		sessions:    sessions,
		logger:      log,
		metrics:     m,
	}
	r.strategies = []resolve.Strategy[IdentityRequest, *Identity]{
		resolve.Func(TierSessionMemo, r.fromSession),
		resolve.Func(TierPhoneExact, r.phoneCandidate(0)),
		resolve.Func(TierPhoneVariant, r.phoneCandidate(1)),
		resolve.Func(TierWorkOrderAssignee, r.fromWorkOrder),
	}
	return r
}

func (r *identityResolver) Resolve(ctx context.Context, req IdentityRequest) (*Identity, bool) {
	identity, tier, ok := resolve.FirstMatch(ctx, req, r.strategies...)
	if !ok {
		r.metrics.ObserveResolution("identity", "miss")
		r.logger.Warn("IdentityResolver", "Sender could not be identified", map[string]interface{}{
			"session_key": req.SessionKey,
			"phone":       req.Phone,
		})
		return nil, false
	}

	identity.Tier = tier
	r.metrics.ObserveResolution("identity", tier)

	if tier != TierSessionMemo {
		r.remember(ctx, req.SessionKey, identity)
	}
	return identity, true
}

func (r *identityResolver) fromSession(_ context.Context, req IdentityRequest) (*Identity, bool) {
	if req.Session == nil || req.Session.InspectorID == "" {
		return nil, false
	}
	id, err := uuid.Parse(req.Session.InspectorID)
	if err != nil {
		r.logger.Warn("IdentityResolver", "Ignoring malformed inspector id in session", map[string]interface{}{
			"session_key":  req.SessionKey,
			"inspector_id": req.Session.InspectorID,
		})
		return nil, false
	}
	return &Identity{
		InspectorID: id,
		Name:        req.Session.InspectorName,
		Phone:       req.Session.InspectorPhone,
	}, true
}

func (r *identityResolver) phoneCandidate(index int) func(context.Context, IdentityRequest) (*Identity, bool) {
	return func(ctx context.Context, req IdentityRequest) (*Identity, bool) {
		candidates := utils.PhoneCandidates(req.Phone)
		if index >= len(candidates) {
			return nil, false
		}
		phone := candidates[index]

		inspector, err := r.directory.FindByPhone(ctx, phone)
		if err != nil {
			r.logger.Warn("IdentityResolver", "Inspector lookup failed, trying next tier", map[string]interface{}{
				"session_key": req.SessionKey,
				"phone":       phone,
				"error":       err.Error(),
			})
			return nil, false
		}
		if inspector == nil {
			return nil, false
		}
		return &Identity{InspectorID: inspector.Id, Name: inspector.Name, Phone: inspector.Phone}, true
	}
}

func (r *identityResolver) fromWorkOrder(ctx context.Context, req IdentityRequest) (*Identity, bool) {
	if req.WorkOrderID == nil || *req.WorkOrderID == uuid.Nil {
		return nil, false
	}

	inspectors, err := r.assignments.FindAssignedInspectors(ctx, *req.WorkOrderID)
	if err != nil {
		r.logger.Warn("IdentityResolver", "Assigned inspector lookup failed", map[string]interface{}{
			"session_key":   req.SessionKey,
			"work_order_id": req.WorkOrderID.String(),
			"error":         err.Error(),
		})
		return nil, false
	}
	if len(inspectors) == 0 {
		return nil, false
	}

	first := inspectors[0]
	if len(inspectors) > 1 {
		r.logger.Warn("IdentityResolver", "Work order has several inspectors, attributing to the first assigned", map[string]interface{}{
			"session_key":   req.SessionKey,
			"work_order_id": req.WorkOrderID.String(),
			"inspector_id":  first.Id.String(),
			"assigned":      len(inspectors),
		})
	}
	return &Identity{InspectorID: first.Id, Name: first.Name, Phone: first.Phone}, true
}

// remember writes the identity through to the session. A failed write only
// costs a repeat lookup on the next event.
func (r *identityResolver) remember(ctx context.Context, sessionKey string, identity *Identity) {
	if sessionKey == "" {
		return
	}
	_, err := r.sessions.Merge(ctx, sessionKey, store.SessionUpdate{
		InspectorID:    store.Ptr(identity.InspectorID.String()),
		InspectorName:  store.Ptr(identity.Name),
		InspectorPhone: store.Ptr(identity.Phone),
	})
	if err != nil {
		r.logger.Error("IdentityResolver", "Failed to memoize identity in session", map[string]interface{}{
			"session_key": sessionKey,
			"error":       err.Error(),
		})
	}
}
