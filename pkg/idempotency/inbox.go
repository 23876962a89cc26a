// Package idempotency provides the Inbox pattern for exactly-once message
// processing on top of PostgreSQL.
package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Status is the processing status of an inbox entry.
type Status string

const (
	StatusStarted  Status = "STARTED"
	StatusFinished Status = "FINISHED"
	StatusFailed   Status = "FAILED"
)

// Entry is one idempotency inbox record.
type Entry struct {
	Key       string
	Handler   string
	Status    Status
	Payload   json.RawMessage
	Result    json.RawMessage
	LastError string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Config holds inbox configuration.
type Config struct {
	// TTL is how long finished entries are retained
	TTL time.Duration
	// StaleAfter is when a STARTED entry is considered abandoned and retryable
	StaleAfter time.Duration
	// CleanupInterval is how often expired entries are purged
	CleanupInterval time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		TTL:             24 * time.Hour,
		StaleAfter:      5 * time.Minute,
		CleanupInterval: time.Hour,
	}
}

// ErrDuplicateMessage indicates the message was already processed.
var ErrDuplicateMessage = errors.New("message already processed")

// ErrMessageInProgress indicates the message is currently being processed
// elsewhere.
var ErrMessageInProgress = errors.New("message processing in progress")

// ProcessFunc is the handler run under idempotency guarantees.
type ProcessFunc func(ctx context.Context, payload json.RawMessage) (json.RawMessage, error)

// ProcessResult is the outcome of Process.
type ProcessResult struct {
	Result    json.RawMessage
	Duplicate bool
}

// Inbox manages idempotent message processing.
type Inbox struct {
	pool   *pgxpool.Pool
	config Config
	logger *zap.Logger
	tracer trace.Tracer

	stop chan struct{}
	done chan struct{}
}

// NewInbox creates an inbox manager.
func NewInbox(pool *pgxpool.Pool, cfg Config, logger *zap.Logger) *Inbox {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Inbox{
		pool:   pool,
		config: cfg,
		logger: logger,
		tracer: otel.Tracer("idempotency-inbox"),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Process runs fn exactly once for the given key. A key already finished
// returns the cached result with Duplicate set; a key currently started
// returns ErrMessageInProgress until it goes stale.
func (i *Inbox) Process(ctx context.Context, key, handlerName string, payload json.RawMessage, fn ProcessFunc) (*ProcessResult, error) {
	ctx, span := i.tracer.Start(ctx, "inbox_process",
		trace.WithAttributes(
			attribute.String("idempotency_key", key),
			attribute.String("handler", handlerName),
		))
	defer span.End()

	entry, err := i.getEntry(ctx, key)
	if err != nil {
		return nil, err
	}

	if entry != nil {
		switch entry.Status {
		case StatusFinished:
			span.SetAttributes(attribute.Bool("duplicate", true))
			i.logger.Debug("duplicate message skipped", zap.String("key", key))
			return &ProcessResult{Result: entry.Result, Duplicate: true}, nil
		case StatusStarted:
			if time.Since(entry.UpdatedAt) < i.config.StaleAfter {
				return nil, ErrMessageInProgress
			}
			// Stale claim, take it over.
		}
	}

	if err := i.startProcessing(ctx, key, handlerName, payload); err != nil {
		return nil, err
	}

	result, err := fn(ctx, payload)
	if err != nil {
		if markErr := i.markStatus(ctx, key, StatusFailed, nil, err.Error()); markErr != nil {
			i.logger.Error("failed to mark entry failed", zap.String("key", key), zap.Error(markErr))
		}
		return nil, err
	}

	if err := i.markStatus(ctx, key, StatusFinished, result, ""); err != nil {
		return nil, err
	}
	return &ProcessResult{Result: result}, nil
}

// StartCleanup starts the background purge of expired entries.
func (i *Inbox) StartCleanup() {
	go i.cleanupLoop()
}

// Stop stops the cleanup goroutine.
func (i *Inbox) Stop() {
	close(i.stop)
	<-i.done
}

func (i *Inbox) getEntry(ctx context.Context, key string) (*Entry, error) {
	row := i.pool.QueryRow(ctx, `
		SELECT idempotency_key, handler, status, payload, result, COALESCE(last_error, ''), created_at, updated_at
		FROM processing_inbox
		WHERE idempotency_key = $1
	`, key)

	var e Entry
	err := row.Scan(&e.Key, &e.Handler, &e.Status, &e.Payload, &e.Result, &e.LastError, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get inbox entry: %w", err)
	}
	return &e, nil
}

func (i *Inbox) startProcessing(ctx context.Context, key, handlerName string, payload json.RawMessage) error {
	_, err := i.pool.Exec(ctx, `
		INSERT INTO processing_inbox (idempotency_key, handler, status, payload, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
		ON CONFLICT (idempotency_key) DO UPDATE
		SET status = $3, handler = $2, updated_at = now()
	`, key, handlerName, StatusStarted, payload)
	if err != nil {
		return fmt.Errorf("claim inbox entry: %w", err)
	}
	return nil
}

func (i *Inbox) markStatus(ctx context.Context, key string, status Status, result json.RawMessage, errMsg string) error {
	_, err := i.pool.Exec(ctx, `
		UPDATE processing_inbox
		SET status = $2, result = $3, last_error = NULLIF($4, ''), updated_at = now()
		WHERE idempotency_key = $1
	`, key, status, result, errMsg)
	if err != nil {
		return fmt.Errorf("mark inbox entry %s: %w", status, err)
	}
	return nil
}

func (i *Inbox) cleanupLoop() {
	defer close(i.done)

	ticker := time.NewTicker(i.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-i.stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			tag, err := i.pool.Exec(ctx, `
				DELETE FROM processing_inbox
				WHERE status = $1 AND updated_at < now() - make_interval(secs => $2)
			`, StatusFinished, i.config.TTL.Seconds())
			cancel()
			if err != nil {
				i.logger.Error("inbox cleanup failed", zap.Error(err))
				continue
			}
			if tag.RowsAffected() > 0 {
				i.logger.Info("inbox entries purged", zap.Int64("count", tag.RowsAffected()))
			}
		}
	}
}
