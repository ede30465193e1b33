package audit

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/authweb/internal/metrics"
	"github.com/nfrund/authweb/internal/pubsub"
)

func TestSubscriber_CountsEvents(t *testing.T) {
	bus := pubsub.NewWatermillBridge()
	defer bus.Close()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, NewSubscriber(bus, m).Start(ctx))

	payload := pubsub.AccountEvent{Email: "a@x.io", OccurredAt: time.Now()}
	require.NoError(t, pubsub.Publish(ctx, bus, pubsub.UserSignedUp, "u1", payload))
	require.NoError(t, pubsub.Publish(ctx, bus, pubsub.UserLoginFailed, "", payload))
	require.NoError(t, pubsub.Publish(ctx, bus, pubsub.UserLoginFailed, "", payload))

	assert.Eventually(t, func() bool {
		count, err := testutil.GatherAndCount(reg, "authweb_account_events_total")
		return err == nil && count == 2
	}, 2*time.Second, 10*time.Millisecond)

	assert.Eventually(t, func() bool {
		families, err := reg.Gather()
		if err != nil {
			return false
		}
		var total float64
		for _, f := range families {
			for _, metric := range f.GetMetric() {
				total += metric.GetCounter().GetValue()
			}
		}
		return total == 3
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSubscriber_HandlerRejectsBadPayload(t *testing.T) {
	s := NewSubscriber(nil, nil)
	h := s.handler(pubsub.UserSignedUp)

	err := h(context.Background(), pubsub.Message{Topic: pubsub.UserSignedUp.Name(), Payload: []byte("not json")})
	assert.Error(t, err)

	err = h(context.Background(), pubsub.Message{Topic: pubsub.UserSignedUp.Name(), Payload: []byte(`{"email":"a@x.io"}`)})
	assert.NoError(t, err)
}
