package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"parking-system/internal/model"
	"parking-system/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	StreamKey          = "parking:events"
	ConsumerGroupName  = "board-workers"
	ConsumerNamePrefix = "worker"

	payloadField = "event"
)

// RedisStreamConfig 逾時與重試設定，零值欄位使用預設
type RedisStreamConfig struct {
	ClaimMinIdleTime   time.Duration // PEL 閒置超過此時間才由 XAUTOCLAIM 領回
	MaxRetryCount      int           // 投遞次數達上限視為毒藥訊息並丟棄
	ReadGroupBlockTime time.Duration
	BatchSize          int64
}

func defaultRedisStreamConfig() RedisStreamConfig {
	return RedisStreamConfig{
		ClaimMinIdleTime:   5 * time.Second,
		MaxRetryCount:      5,
		ReadGroupBlockTime: 2 * time.Second,
		BatchSize:          10,
	}
}

func (c RedisStreamConfig) withDefaults() RedisStreamConfig {
	d := defaultRedisStreamConfig()
	if c.ClaimMinIdleTime > 0 {
		d.ClaimMinIdleTime = c.ClaimMinIdleTime
	}
	if c.MaxRetryCount > 0 {
		d.MaxRetryCount = c.MaxRetryCount
	}
	if c.ReadGroupBlockTime > 0 {
		d.ReadGroupBlockTime = c.ReadGroupBlockTime
	}
	if c.BatchSize > 0 {
		d.BatchSize = c.BatchSize
	}
	return d
}

type RedisStreamEventQueue struct {
	client       *redis.Client
	consumerName string
	cfg          RedisStreamConfig
	log          *zap.Logger
}

// NewRedisStreamEventQueue 建立 Redis Stream 版 EventQueue，consumerID 為空時產生 uuid
func NewRedisStreamEventQueue(ctx context.Context, client *redis.Client, consumerID string, cfg *RedisStreamConfig, log *zap.Logger) (EventQueue, error) {
	if consumerID == "" {
		consumerID = uuid.New().String()
	}
	var c RedisStreamConfig
	if cfg != nil {
		c = *cfg
	}

	q := &RedisStreamEventQueue{
		client:       client,
		consumerName: fmt.Sprintf("%s:%s", ConsumerNamePrefix, consumerID),
		cfg:          c.withDefaults(),
		log:          logger.WithComponent(log, "mq"),
	}
	if err := q.ensureConsumerGroup(ctx); err != nil {
		return nil, fmt.Errorf("ensure consumer group: %w", err)
	}
	return q, nil
}

func (q *RedisStreamEventQueue) ensureConsumerGroup(ctx context.Context) error {
	err := q.client.XGroupCreateMkStream(ctx, StreamKey, ConsumerGroupName, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}

func (q *RedisStreamEventQueue) Publish(ctx context.Context, event *model.ParkingEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	err = q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamKey,
		ID:     "*",
		Values: map[string]interface{}{payloadField: string(payload)},
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd: %w", err)
	}
	return nil
}

func (q *RedisStreamEventQueue) Subscribe(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)
	go func() {
		defer close(out)
		done := make(chan struct{})
		go func() {
			defer close(done)
			q.claimLoop(ctx, out)
		}()
		q.readLoop(ctx, out)
		<-done
	}()
	return out, nil
}

// readLoop 只讀新訊息 (">")；已投遞未 ack 的訊息交給 claimLoop 逾時後重送
func (q *RedisStreamEventQueue) readLoop(ctx context.Context, out chan<- Delivery) {
	for ctx.Err() == nil {
		streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    ConsumerGroupName,
			Consumer: q.consumerName,
			Streams:  []string{StreamKey, ">"},
			Count:    q.cfg.BatchSize,
			Block:    q.cfg.ReadGroupBlockTime,
		}).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			q.log.Error("XReadGroup failed", zap.Error(err))
			sleep(ctx, time.Second)
			continue
		}

		for _, stream := range streams {
			for _, msg := range stream.Messages {
				if !q.deliver(ctx, out, msg) {
					return
				}
			}
		}
	}
}

// claimLoop 定期以 XAUTOCLAIM 領回閒置過久的訊息
func (q *RedisStreamEventQueue) claimLoop(ctx context.Context, out chan<- Delivery) {
	ticker := time.NewTicker(q.cfg.ClaimMinIdleTime)
	defer ticker.Stop()
	start := "0-0"

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		claimed, next, err := q.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
			Stream:   StreamKey,
			Group:    ConsumerGroupName,
			Consumer: q.consumerName,
			MinIdle:  q.cfg.ClaimMinIdleTime,
			Count:    q.cfg.BatchSize,
			Start:    start,
		}).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			if ctx.Err() != nil {
				return
			}
			q.log.Error("XAutoClaim failed", zap.Error(err))
			continue
		}
		start = next
		if start == "" {
			start = "0-0"
		}

		for _, msg := range claimed {
			if q.isPoison(ctx, msg.ID) {
				continue
			}
			if !q.deliver(ctx, out, msg) {
				return
			}
		}
	}
}

// isPoison 投遞次數達上限時 ack 並丟棄
func (q *RedisStreamEventQueue) isPoison(ctx context.Context, id string) bool {
	pending, err := q.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: StreamKey,
		Group:  ConsumerGroupName,
		Start:  id,
		End:    id,
		Count:  1,
	}).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			q.log.Warn("XPendingExt failed", zap.String("message_id", id), zap.Error(err))
		}
		return false
	}
	if len(pending) == 0 || int(pending[0].RetryCount) < q.cfg.MaxRetryCount {
		return false
	}

	q.log.Warn("discard poison message",
		zap.String("message_id", id),
		zap.Int64("retries", pending[0].RetryCount),
		zap.Int("max_retries", q.cfg.MaxRetryCount))
	q.ack(ctx, id)
	return true
}

// deliver 解析訊息並送出，ctx 取消時回傳 false
func (q *RedisStreamEventQueue) deliver(ctx context.Context, out chan<- Delivery, msg redis.XMessage) bool {
	event, err := decodeEvent(msg)
	if err != nil {
		// 格式錯誤的訊息永遠無法處理，直接 ack
		q.log.Warn("drop malformed message", zap.String("message_id", msg.ID), zap.Error(err))
		q.ack(ctx, msg.ID)
		return true
	}

	id := msg.ID
	d := Delivery{
		Data: event,
		Ack:  func() { q.ack(ctx, id) },
		Nack: func(requeue bool) {
			if requeue {
				// 留在 PEL，等 ClaimMinIdleTime 後由 XAUTOCLAIM 重送
				q.log.Info("message nack(requeue), will retry",
					zap.String("message_id", id),
					zap.Duration("claim_min_idle", q.cfg.ClaimMinIdleTime))
				return
			}
			q.ack(ctx, id)
		},
	}

	select {
	case out <- d:
		return true
	case <-ctx.Done():
		return false
	}
}

func (q *RedisStreamEventQueue) ack(ctx context.Context, id string) {
	if err := q.client.XAck(ctx, StreamKey, ConsumerGroupName, id).Err(); err != nil {
		q.log.Error("XAck failed", zap.String("message_id", id), zap.Error(err))
	}
}

func decodeEvent(msg redis.XMessage) (*model.ParkingEvent, error) {
	raw, ok := msg.Values[payloadField].(string)
	if !ok {
		return nil, fmt.Errorf("missing %q field", payloadField)
	}
	var event model.ParkingEvent
	if err := json.Unmarshal([]byte(raw), &event); err != nil {
		return nil, fmt.Errorf("unmarshal event: %w", err)
	}
	return &event, nil
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
