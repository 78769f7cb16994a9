package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"displaydeck/internal/app"
)

// CleanupWorker consumes sweep jobs so reclamation runs out of band from
// request handling.
type CleanupWorker struct {
	conn      *amqp.Connection
	cleanup   *app.CleanupService
	queueName string
	logger    *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewCleanupWorker(conn *amqp.Connection, cleanup *app.CleanupService, queueName string, logger *slog.Logger) *CleanupWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &CleanupWorker{
		conn:      conn,
		cleanup:   cleanup,
		queueName: queueName,
		logger:    logger,
	}
}

func (w *CleanupWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	_, err = ch.QueueDeclare(
		w.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				w.handle(workerCtx, d)
			}
		}
	}()

	return nil
}

func (w *CleanupWorker) handle(ctx context.Context, d amqp.Delivery) {
	var job app.CleanupJob
	if err := json.Unmarshal(d.Body, &job); err != nil {
		w.logger.Warn("decode cleanup job failed", "err", err)
		_ = d.Nack(false, false)
		return
	}

	var (
		report *app.SweepReport
		err    error
	)
	switch job.Mode {
	case app.CleanupModePurgeAll:
		report, err = w.cleanup.PurgeAll(ctx)
	case app.CleanupModeUnreferenced, "":
		report, err = w.cleanup.CleanupUnreferenced(ctx)
	default:
		w.logger.Warn("unknown cleanup mode", "mode", job.Mode)
		_ = d.Nack(false, false)
		return
	}
	if err != nil {
		w.logger.Error("cleanup sweep failed", "mode", job.Mode, "err", err)
		_ = d.Nack(false, false)
		return
	}

	w.logger.Info("cleanup sweep finished",
		"mode", job.Mode,
		"deleted", report.Deleted,
		"kept", report.Kept,
		"failures", len(report.Failures),
	)
	_ = d.Ack(false)
}

func (w *CleanupWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
