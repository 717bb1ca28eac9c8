package queue

import (
	"context"
	"time"

	"parking-system/internal/model"
)

type Delivery struct {
	Data *model.ParkingEvent
	Ack  func()
	Nack func(requeue bool)
}

type EventQueue interface {
	// 發送停車事件到隊列
	Publish(ctx context.Context, event *model.ParkingEvent) error
	// 訂閱停車事件
	Subscribe(ctx context.Context) (<-chan Delivery, error)
}

// MemoryQueueConfig 重送設定，零值欄位使用預設
type MemoryQueueConfig struct {
	RetryDelay    time.Duration // 第一次重送前的等待時間，之後每次加倍
	MaxRetryDelay time.Duration
	MaxRetryCount int // 投遞次數達上限即丟棄，與 Redis Stream 版一致
}

func defaultMemoryQueueConfig() MemoryQueueConfig {
	return MemoryQueueConfig{
		RetryDelay:    100 * time.Millisecond,
		MaxRetryDelay: 5 * time.Second,
		MaxRetryCount: 5,
	}
}

func (c MemoryQueueConfig) withDefaults() MemoryQueueConfig {
	d := defaultMemoryQueueConfig()
	if c.RetryDelay > 0 {
		d.RetryDelay = c.RetryDelay
	}
	if c.MaxRetryDelay > 0 {
		d.MaxRetryDelay = c.MaxRetryDelay
	}
	if c.MaxRetryCount > 0 {
		d.MaxRetryCount = c.MaxRetryCount
	}
	return d
}

// envelope 記錄事件已投遞的次數
type envelope struct {
	event      *model.ParkingEvent
	deliveries int
}

type MemoryEventQueue struct {
	// 使用 Go channel 來模擬 MQ 隊列
	ch  chan envelope
	cfg MemoryQueueConfig
}

func NewMemoryEventQueue(bufferSize int) EventQueue {
	return NewMemoryEventQueueWithConfig(bufferSize, nil)
}

func NewMemoryEventQueueWithConfig(bufferSize int, cfg *MemoryQueueConfig) EventQueue {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	var c MemoryQueueConfig
	if cfg != nil {
		c = *cfg
	}
	return &MemoryEventQueue{
		ch:  make(chan envelope, bufferSize),
		cfg: c.withDefaults(),
	}
}

// Publish buffer 滿時阻塞，直到 ctx 取消
func (q *MemoryEventQueue) Publish(ctx context.Context, event *model.ParkingEvent) error {
	select {
	case q.ch <- envelope{event: event}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *MemoryEventQueue) Subscribe(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case env := <-q.ch:
				env.deliveries++
				d := Delivery{
					Data: env.event,
					Ack:  func() {},
					Nack: func(requeue bool) {
						if requeue {
							q.requeue(ctx, env)
						}
					},
				}
				select {
				case out <- d:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// requeue 等待退避時間後放回隊尾，達到投遞上限的事件直接丟棄
func (q *MemoryEventQueue) requeue(ctx context.Context, env envelope) {
	if env.deliveries >= q.cfg.MaxRetryCount {
		return
	}
	time.AfterFunc(q.backoff(env.deliveries), func() {
		select {
		case q.ch <- env:
		case <-ctx.Done():
		}
	})
}

func (q *MemoryEventQueue) backoff(deliveries int) time.Duration {
	delay := q.cfg.RetryDelay
	for i := 1; i < deliveries && delay < q.cfg.MaxRetryDelay; i++ {
		delay *= 2
	}
	if delay > q.cfg.MaxRetryDelay {
		delay = q.cfg.MaxRetryDelay
	}
	return delay
}
