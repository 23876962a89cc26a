// Package postgres provides PostgreSQL infrastructure: a record-set
// persistence gateway and the audit log written by the relay.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/vitalcare/patient-registry/internal/domain/patient"
)

// Gateway persists the patient record set in a patients table. Save
// rewrites the whole set inside a single transaction, so either the new
// state commits or the prior state remains. Derived fields are not stored;
// the record store re-derives them on load.
type Gateway struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
	tracer trace.Tracer
}

// NewGateway creates a Postgres-backed gateway.
func NewGateway(pool *pgxpool.Pool, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("postgres-gateway"),
	}
}

// Load returns the current record set. Read failures yield an empty set
// rather than an error, matching the gateway contract.
func (g *Gateway) Load(ctx context.Context) (patient.RecordSet, error) {
	ctx, span := g.tracer.Start(ctx, "gateway_load")
	defer span.End()

	rows, err := g.pool.Query(ctx, `
		SELECT id, name, city, age, gender, height, weight
		FROM patients
	`)
	if err != nil {
		g.logger.Warn("record set unreadable, starting empty", zap.Error(err))
		return patient.RecordSet{}, nil
	}
	defer rows.Close()

	set := patient.RecordSet{}
	for rows.Next() {
		var rec patient.Record
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.City, &rec.Age, &rec.Gender, &rec.Height, &rec.Weight); err != nil {
			g.logger.Warn("record row unreadable, starting empty", zap.Error(err))
			return patient.RecordSet{}, nil
		}
		set[rec.ID] = rec
	}
	if err := rows.Err(); err != nil {
		g.logger.Warn("record set scan failed, starting empty", zap.Error(err))
		return patient.RecordSet{}, nil
	}

	span.SetAttributes(attribute.Int("record_count", len(set)))
	return set, nil
}

// Save replaces the stored record set wholesale.
func (g *Gateway) Save(ctx context.Context, set patient.RecordSet) error {
	ctx, span := g.tracer.Start(ctx, "gateway_save",
		trace.WithAttributes(attribute.Int("record_count", len(set))))
	defer span.End()

	tx, err := g.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM patients`); err != nil {
		return fmt.Errorf("clear patients: %w", err)
	}

	batch := &pgx.Batch{}
	for _, rec := range set {
		batch.Queue(`
			INSERT INTO patients (id, name, city, age, gender, height, weight)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, rec.ID, rec.Name, rec.City, rec.Age, rec.Gender, rec.Height, rec.Weight)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert patients: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
