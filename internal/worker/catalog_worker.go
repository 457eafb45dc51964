// Package worker runs the background consumer that turns ingestion events
// into catalog rows.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"docuchat/internal/ingest"
	"docuchat/internal/model"
)

// Saver persists catalog rows; satisfied by catalog.Repository.
type Saver interface {
	Save(doc *model.Document) error
}

// CatalogWorker consumes ingestion summaries and persists them so the
// document list stays current without slowing down uploads.
type CatalogWorker struct {
	conn      *amqp.Connection
	repo      Saver
	queueName string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewCatalogWorker(conn *amqp.Connection, repo Saver, queueName string) *CatalogWorker {
	return &CatalogWorker{
		conn:      conn,
		repo:      repo,
		queueName: queueName,
	}
}

func (w *CatalogWorker) Start(ctx context.Context) error {
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

	if _, err := ch.QueueDeclare(w.queueName, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}

	deliveries, err := ch.Consume(w.queueName, "", false, false, false, false, nil)
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
				w.handle(d)
			}
		}
	}()

	return nil
}

// handle acknowledges one delivery. Undecodable payloads are dropped, a
// redelivery cannot fix those; save failures are requeued so a database
// hiccup does not lose the catalog entry.
func (w *CatalogWorker) handle(d amqp.Delivery) {
	var summary ingest.Summary
	if err := json.Unmarshal(d.Body, &summary); err != nil {
		log.Printf("worker decode ingest summary failed: %v", err)
		_ = d.Nack(false, false)
		return
	}

	doc := &model.Document{
		DocumentID: summary.DocumentID,
		FileName:   summary.FileName,
		ChunkCount: summary.ChunkCount,
		UploadTime: summary.UploadTime,
	}
	if err := w.repo.Save(doc); err != nil {
		log.Printf("worker catalog document failed, requeueing: %v", err)
		_ = d.Nack(false, true)
		return
	}

	_ = d.Ack(false)
}

func (w *CatalogWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
