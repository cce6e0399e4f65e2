package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"regexp"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-api/internal/store"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/messaging"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
)

var fieldName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Gateway stores every collection in the documents table as jsonb
type Gateway struct {
	db      *sqlx.DB
	broker  messaging.Broker
	metrics *metrics.Metrics
}

func NewGateway(db *sqlx.DB, broker messaging.Broker, m *metrics.Metrics) *Gateway {
	return &Gateway{db: db, broker: broker, metrics: m}
}

var _ store.Gateway = (*Gateway)(nil)

func (g *Gateway) Get(ctx context.Context, collection, id string) (*store.Document, error) {
	defer g.observe("get", time.Now())

	query := `
		SELECT id, data
		FROM documents
		WHERE collection = $1 AND id = $2
	`
	var doc store.Document
	err := g.db.GetContext(ctx, &doc, query, collection, id)
	if err != nil {
		g.count("get", err)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewPersistenceError(apperrors.PersistenceNotFound, collection, id, nil)
		}
		return nil, apperrors.NewPersistenceError(apperrors.PersistenceNetwork, collection, id, err)
	}
	g.count("get", nil)
	return &doc, nil
}

func (g *Gateway) Put(ctx context.Context, collection, id string, data interface{}) error {
	defer g.observe("put", time.Now())

	raw, err := json.Marshal(data)
	if err != nil {
		return apperrors.NewPersistenceError(apperrors.WriteFailed, collection, id, err)
	}

	query := `
		INSERT INTO documents (collection, id, data, created_at, updated_at)
		VALUES ($1, $2, $3, now(), now())
		ON CONFLICT (collection, id)
		DO UPDATE SET data = EXCLUDED.data, updated_at = now()
	`
	if _, err := g.db.ExecContext(ctx, query, collection, id, raw); err != nil {
		g.count("put", err)
		return writeError(collection, id, err)
	}
	g.count("put", nil)

	g.notify(ctx, collection, id, "put")
	return nil
}

func (g *Gateway) Update(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	defer g.observe("update", time.Now())

	raw, err := json.Marshal(fields)
	if err != nil {
		return apperrors.NewPersistenceError(apperrors.WriteFailed, collection, id, err)
	}

	query := `
		UPDATE documents
		SET data = data || $3::jsonb, updated_at = now()
		WHERE collection = $1 AND id = $2
	`
	result, err := g.db.ExecContext(ctx, query, collection, id, raw)
	if err != nil {
		g.count("update", err)
		return writeError(collection, id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		g.count("update", err)
		return writeError(collection, id, err)
	}
	if rows == 0 {
		g.count("update", sql.ErrNoRows)
		return apperrors.NewPersistenceError(apperrors.PersistenceNotFound, collection, id, nil)
	}
	g.count("update", nil)

	g.notify(ctx, collection, id, "update")
	return nil
}

func (g *Gateway) Query(ctx context.Context, collection string, q store.Query) ([]store.Document, error) {
	defer g.observe("query", time.Now())

	query := `
		SELECT id, data
		FROM documents
		WHERE collection = $1
	`
	args := []interface{}{collection}
	argCount := 2

	if len(q.Filter) > 0 {
		raw, err := json.Marshal(q.Filter)
		if err != nil {
			return nil, apperrors.NewPersistenceError(apperrors.PersistenceNetwork, collection, "", err)
		}
		query += fmt.Sprintf(" AND data @> $%d::jsonb", argCount)
		args = append(args, raw)
		argCount++
	}

	if q.OrderBy != "" {
		if !fieldName.MatchString(q.OrderBy) {
			return nil, apperrors.NewPersistenceError(apperrors.PersistenceNetwork, collection, "",
				fmt.Errorf("invalid order field %q", q.OrderBy))
		}
		order := "ASC NULLS FIRST, id ASC"
		if q.Desc {
			order = "DESC NULLS LAST, id DESC"
		}
		query += fmt.Sprintf(" ORDER BY data->>$%d %s", argCount, order)
		args = append(args, q.OrderBy)
		argCount++
	} else {
		query += " ORDER BY id"
	}

	if q.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argCount)
		args = append(args, q.Limit)
	}

	var docs []store.Document
	if err := g.db.SelectContext(ctx, &docs, query, args...); err != nil {
		g.count("query", err)
		return nil, apperrors.NewPersistenceError(apperrors.PersistenceNetwork, collection, "", err)
	}
	g.count("query", nil)
	return docs, nil
}

func (g *Gateway) Subscribe(ctx context.Context, collection string, q store.Query) (*store.Subscription, error) {
	return store.Watch(ctx, g.broker, collection, func(ctx context.Context) ([]store.Document, error) {
		return g.Query(ctx, collection, q)
	})
}

func (g *Gateway) notify(ctx context.Context, collection, id, op string) {
	notice := messaging.ChangeNotice{Collection: collection, ID: id, Op: op}
	if err := g.broker.Publish(ctx, messaging.ChangesChannel(collection), notice); err != nil {
		log.Warn().Err(err).Str("collection", collection).Str("id", id).Msg("failed to publish change notice")
	}
}

func (g *Gateway) observe(op string, start time.Time) {
	if g.metrics == nil {
		return
	}
	g.metrics.DatabaseLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (g *Gateway) count(op string, err error) {
	if g.metrics == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	g.metrics.DatabaseOperations.WithLabelValues(op, status).Inc()
}

func writeError(collection, id string, err error) error {
	if isNetwork(err) {
		return apperrors.NewPersistenceError(apperrors.PersistenceNetwork, collection, id, err)
	}
	return apperrors.NewPersistenceError(apperrors.WriteFailed, collection, id, err)
}

func isNetwork(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) || errors.Is(err, driver.ErrBadConn) || errors.Is(err, context.DeadlineExceeded)
}
