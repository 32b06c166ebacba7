package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"propertydesk/internal/app"
	"propertydesk/internal/model"
	"propertydesk/internal/platform/rabbitmq"
)

type ScrapeImporter interface {
	ScrapeAndCreate(ctx context.Context, userID, url string) (*model.Property, error)
}

// ScrapeImportWorker consumes queued URL imports and runs each one through
// the extraction pipeline. Failed jobs are dropped, not requeued: a page that
// failed extraction once will usually fail again.
type ScrapeImportWorker struct {
	conn      *amqp.Connection
	importer  ScrapeImporter
	queueName string
	logger    *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewScrapeImportWorker(conn *amqp.Connection, importer ScrapeImporter, queueName string, logger *zap.Logger) *ScrapeImportWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScrapeImportWorker{
		conn:      conn,
		importer:  importer,
		queueName: queueName,
		logger:    logger,
	}
}

func (w *ScrapeImportWorker) Start(ctx context.Context) error {
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

	if err := rabbitmq.DeclareQueue(ch, w.queueName); err != nil {
		_ = ch.Close()
		cancel()
		return err
	}
	if err := ch.Qos(1, 0, false); err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("set worker qos failed: %w", err)
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
		w.consume(workerCtx, deliveries)
	}()

	w.logger.Info("scrape import worker started", zap.String("queue", w.queueName))
	return nil
}

func (w *ScrapeImportWorker) consume(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			w.handle(ctx, d)
		}
	}
}

func (w *ScrapeImportWorker) handle(ctx context.Context, d amqp.Delivery) {
	var job app.ScrapeJob
	if err := json.Unmarshal(d.Body, &job); err != nil {
		w.logger.Warn("worker decode scrape job failed", zap.Error(err))
		_ = d.Nack(false, false)
		return
	}
	if job.UserID == "" || strings.TrimSpace(job.URL) == "" {
		w.logger.Warn("worker dropped incomplete scrape job", zap.String("user_id", job.UserID))
		_ = d.Nack(false, false)
		return
	}

	property, err := w.importer.ScrapeAndCreate(ctx, job.UserID, job.URL)
	if err != nil {
		w.logger.Warn("worker scrape import failed",
			zap.String("user_id", job.UserID),
			zap.String("url", job.URL),
			zap.Error(err),
		)
		_ = d.Nack(false, false)
		return
	}

	w.logger.Info("worker imported property",
		zap.String("user_id", job.UserID),
		zap.String("url", job.URL),
		zap.String("property_id", property.ID),
	)
	_ = d.Ack(false)
}

func (w *ScrapeImportWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
