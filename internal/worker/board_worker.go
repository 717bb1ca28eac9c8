package worker

import (
	"context"
	"errors"

	"parking-system/internal/cache"
	"parking-system/internal/queue"
	apperrors "parking-system/pkg/app_errors"
	"parking-system/pkg/logger"

	"go.uber.org/zap"
)

type BoardWorker interface {
	// 訂閱停車事件並更新看板，ctx 取消時停止
	Start(ctx context.Context) error
	// 訂閱結束後關閉
	Done() <-chan struct{}
}

type BoardWorkerImpl struct {
	board cache.OccupancyBoard
	queue queue.EventQueue
	log   *zap.Logger
	done  chan struct{}
}

func NewBoardWorker(board cache.OccupancyBoard, queue queue.EventQueue, log *zap.Logger) BoardWorker {
	return &BoardWorkerImpl{
		board: board,
		queue: queue,
		log:   logger.WithComponent(log, "worker"),
		done:  make(chan struct{}),
	}
}

func (w *BoardWorkerImpl) Start(ctx context.Context) error {
	msgs, err := w.queue.Subscribe(ctx)
	if err != nil {
		close(w.done)
		return err
	}

	go func() {
		defer close(w.done)
		for msg := range msgs {
			w.handle(ctx, msg)
		}
	}()
	return nil
}

func (w *BoardWorkerImpl) Done() <-chan struct{} {
	return w.done
}

func (w *BoardWorkerImpl) handle(ctx context.Context, msg queue.Delivery) {
	event := msg.Data
	log := w.log.With(zap.String("event_id", event.ID), zap.String("type", string(event.Type)))

	applied, err := w.board.Apply(ctx, event)
	switch {
	case err == nil:
		if !applied {
			log.Debug("Duplicate event skipped")
		}
		msg.Ack()
	case errors.Is(err, apperrors.ErrBoardNotWarmed), errors.Is(err, apperrors.ErrUnknownVehicleClass):
		// 重試也不會成功，直接丟棄
		log.Warn("Event discarded", zap.Error(err))
		msg.Nack(false)
	default:
		log.Error("Failed to apply event, will retry", zap.Error(err))
		msg.Nack(true)
	}
}
