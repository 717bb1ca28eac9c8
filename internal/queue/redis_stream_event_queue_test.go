package queue_test

import (
	"context"
	"testing"
	"time"

	"parking-system/internal/model"
	"parking-system/internal/queue"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client
}

var fastStream = &queue.RedisStreamConfig{
	ClaimMinIdleTime:   200 * time.Millisecond,
	ReadGroupBlockTime: 100 * time.Millisecond,
}

func TestNewRedisStreamEventQueue(t *testing.T) {
	ctx := context.Background()
	client := newTestRedis(t)

	t.Run("success", func(t *testing.T) {
		q, err := queue.NewRedisStreamEventQueue(ctx, client, "test-consumer", nil, zap.NewNop())
		require.NoError(t, err)
		require.NotNil(t, q)
	})

	t.Run("existing_group_and_empty_consumer_id", func(t *testing.T) {
		q, err := queue.NewRedisStreamEventQueue(ctx, client, "", nil, zap.NewNop())
		require.NoError(t, err)
		require.NotNil(t, q)
	})
}

func TestRedisStreamEventQueue_Publish(t *testing.T) {
	ctx := context.Background()
	client := newTestRedis(t)

	q, err := queue.NewRedisStreamEventQueue(ctx, client, "pub-test", nil, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, q.Publish(ctx, &model.ParkingEvent{ID: "evt-1", Type: model.EventVehicleIn}))

	n, err := client.XLen(ctx, queue.StreamKey).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestRedisStreamEventQueue_SubscribeDeliversPublishedEvent(t *testing.T) {
	ctx := context.Background()
	client := newTestRedis(t)

	q, err := queue.NewRedisStreamEventQueue(ctx, client, "deliver-test", fastStream, zap.NewNop())
	require.NoError(t, err)

	event := &model.ParkingEvent{
		ID:           "evt-out",
		Type:         model.EventVehicleOut,
		TicketID:     3,
		SpotID:       4,
		VehicleClass: model.VehicleClassBike,
		Plate:        "MOTO1",
		Price:        decimal.RequireFromString("0.75"),
		OccurredAt:   time.Date(2024, 3, 1, 11, 0, 0, 0, time.UTC),
	}
	require.NoError(t, q.Publish(ctx, event))

	subCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	ch, err := q.Subscribe(subCtx)
	require.NoError(t, err)

	d := receive(t, ch)
	require.NotNil(t, d.Data)
	assert.Equal(t, event.ID, d.Data.ID)
	assert.Equal(t, event.Type, d.Data.Type)
	assert.Equal(t, event.TicketID, d.Data.TicketID)
	assert.Equal(t, event.SpotID, d.Data.SpotID)
	assert.Equal(t, event.VehicleClass, d.Data.VehicleClass)
	assert.Equal(t, event.Plate, d.Data.Plate)
	assert.True(t, event.Price.Equal(d.Data.Price))
	assert.True(t, event.OccurredAt.Equal(d.Data.OccurredAt))

	d.Ack()
	assert.Eventually(t, func() bool {
		pending, err := client.XPending(ctx, queue.StreamKey, queue.ConsumerGroupName).Result()
		return err == nil && pending.Count == 0
	}, time.Second, 20*time.Millisecond)
}

func TestRedisStreamEventQueue_DropsMalformedMessage(t *testing.T) {
	ctx := context.Background()
	client := newTestRedis(t)

	q, err := queue.NewRedisStreamEventQueue(ctx, client, "malformed-test", fastStream, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, client.XAdd(ctx, &redis.XAddArgs{
		Stream: queue.StreamKey,
		Values: map[string]interface{}{"event": "{not json"},
	}).Err())
	require.NoError(t, q.Publish(ctx, &model.ParkingEvent{ID: "evt-good"}))

	subCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	ch, err := q.Subscribe(subCtx)
	require.NoError(t, err)

	d := receive(t, ch)
	assert.Equal(t, "evt-good", d.Data.ID)
	d.Ack()
}
