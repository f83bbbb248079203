package service

import (
	"context"
	"testing"

	"inspection-be/internal/entity"
	"inspection-be/internal/pkg/logger"
	"inspection-be/internal/repository/memory"
	"inspection-be/pkg/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIdentityResolver(dir *fakeDirectory, assign *fakeAssignments) (IIdentityResolver, *memory.SessionRepository) {
	sessions := memory.NewSessionRepository(0)
	return NewIdentityResolver(dir, assign, sessions, logger.NewNopLogger(), nil), sessions
}

func TestIdentityResolver_IsIdempotentAndMemoized(t *testing.T) {
	ana := &entity.Inspector{Id: uuid.New(), Name: "Ana", Phone: "+6591234567"}
	dir := &fakeDirectory{byPhone: map[string]*entity.Inspector{"+6591234567": ana}}
	resolver, sessions := newTestIdentityResolver(dir, &fakeAssignments{})
	ctx := context.Background()

	first, ok := resolver.Resolve(ctx, IdentityRequest{SessionKey: "6591234567", Phone: "+6591234567"})
	require.True(t, ok)
	assert.Equal(t, ana.Id, first.InspectorID)
	assert.Equal(t, TierPhoneExact, first.Tier)
	callsAfterFirst := dir.callCount()

	session, found, err := sessions.Get(ctx, "6591234567")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, ana.Id.String(), session.InspectorID)
	assert.Equal(t, "Ana", session.InspectorName)
	assert.Equal(t, "+6591234567", session.InspectorPhone)

	second, ok := resolver.Resolve(ctx, IdentityRequest{SessionKey: "6591234567", Phone: "+6591234567", Session: session})
	require.True(t, ok)
	assert.Equal(t, first.InspectorID, second.InspectorID)
	assert.Equal(t, TierSessionMemo, second.Tier)
	assert.Equal(t, callsAfterFirst, dir.callCount(), "second resolution must not hit the directory")
}

func TestIdentityResolver_PhoneVariants(t *testing.T) {
	ana := &entity.Inspector{Id: uuid.New(), Name: "Ana", Phone: "+6591234567"}

	for _, inbound := range []string{"+6591234567", "6591234567"} {
		t.Run(inbound, func(t *testing.T) {
			dir := &fakeDirectory{byPhone: map[string]*entity.Inspector{"+6591234567": ana}}
			resolver, _ := newTestIdentityResolver(dir, &fakeAssignments{})

			got, ok := resolver.Resolve(context.Background(), IdentityRequest{SessionKey: "k", Phone: inbound})
			require.True(t, ok)
			assert.Equal(t, ana.Id, got.InspectorID)
		})
	}
}

func TestIdentityResolver_FallsBackToFirstAssignedInspector(t *testing.T) {
	x := &entity.Inspector{Id: uuid.New(), Name: "X"}
	y := &entity.Inspector{Id: uuid.New(), Name: "Y"}
	assign := &fakeAssignments{inspectors: []*entity.Inspector{x, y}}
	resolver, sessions := newTestIdentityResolver(&fakeDirectory{}, assign)
	workOrderID := uuid.New()

	got, ok := resolver.Resolve(context.Background(), IdentityRequest{
		SessionKey:  "k",
		Phone:       "+6500000000",
		WorkOrderID: &workOrderID,
	})
	require.True(t, ok)
	assert.Equal(t, x.Id, got.InspectorID)
	assert.NotEqual(t, y.Id, got.InspectorID)
	assert.Equal(t, TierWorkOrderAssignee, got.Tier)

	session, _, err := sessions.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, x.Id.String(), session.InspectorID)
}

func TestIdentityResolver_LookupFailureDegradesToNextTier(t *testing.T) {
	ana := &entity.Inspector{Id: uuid.New(), Name: "Ana", Phone: "6591234567"}
	dir := &fakeDirectory{
		byPhone: map[string]*entity.Inspector{"6591234567": ana},
		failFor: map[string]bool{"+6591234567": true},
	}
	resolver, _ := newTestIdentityResolver(dir, &fakeAssignments{})

	got, ok := resolver.Resolve(context.Background(), IdentityRequest{SessionKey: "k", Phone: "+6591234567"})
	require.True(t, ok)
	assert.Equal(t, ana.Id, got.InspectorID)
	assert.Equal(t, TierPhoneVariant, got.Tier)
}

func TestIdentityResolver_Unresolved(t *testing.T) {
	assign := &fakeAssignments{err: assert.AnError}
	resolver, sessions := newTestIdentityResolver(&fakeDirectory{}, assign)
	workOrderID := uuid.New()

	got, ok := resolver.Resolve(context.Background(), IdentityRequest{SessionKey: "k", Phone: "123", WorkOrderID: &workOrderID})
	assert.False(t, ok)
	assert.Nil(t, got)
	assert.Equal(t, 1, assign.calls)

	has, err := sessions.Has(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, has, "misses write nothing")
}

func TestIdentityResolver_MalformedSessionIDFallsThrough(t *testing.T) {
	ana := &entity.Inspector{Id: uuid.New(), Name: "Ana", Phone: "+6591234567"}
	dir := &fakeDirectory{byPhone: map[string]*entity.Inspector{"+6591234567": ana}}
	resolver, _ := newTestIdentityResolver(dir, &fakeAssignments{})

	session := store.NewSession("k")
	session.InspectorID = "not-a-uuid"

	got, ok := resolver.Resolve(context.Background(), IdentityRequest{SessionKey: "k", Phone: "+6591234567", Session: session})
	require.True(t, ok)
	assert.Equal(t, ana.Id, got.InspectorID)
}
