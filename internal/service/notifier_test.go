package service

import (
	"context"
	"strings"
	"testing"

	"inspection-be/internal/pkg/logger"
	"inspection-be/internal/pkg/metrics"
	"inspection-be/pkg/whatsapp"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_SplitsLongReplies(t *testing.T) {
	sender := &recordingSender{}
	n := NewNotifier(sender, 10, logger.NewNopLogger(), nil)

	err := n.Notify(context.Background(), "6591234567", "+6591234567", "1. Kitchen\n2. Bedroom")
	require.NoError(t, err)

	msgs := sender.messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "1. Kitchen", msgs[0].Text)
	assert.Equal(t, "2. Bedroom", msgs[1].Text)
	assert.Equal(t, "+6591234567", msgs[1].Phone)
}

func TestNotifier_FailureIsReturnedAndCounted(t *testing.T) {
	m := metrics.NewMetrics(prometheus.NewRegistry())
	sender := &recordingSender{err: &whatsapp.GatewayError{StatusCode: 502, Body: "bad gateway"}}
	n := NewNotifier(sender, 4000, logger.NewNopLogger(), m)

	err := n.Notify(context.Background(), "k", "+6591234567", "hello")
	require.Error(t, err)

	var gwErr *whatsapp.GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, 502, gwErr.StatusCode)
	assert.True(t, strings.Contains(err.Error(), "bad gateway"))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.NotificationFailures))
}

func TestNotifier_SkipsEmpty(t *testing.T) {
	sender := &recordingSender{}
	n := NewNotifier(sender, 4000, logger.NewNopLogger(), nil)

	require.NoError(t, n.Notify(context.Background(), "k", "", "hello"))
	require.NoError(t, n.Notify(context.Background(), "k", "+1", ""))
	assert.Empty(t, sender.messages())
}
