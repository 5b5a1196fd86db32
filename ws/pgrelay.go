package ws

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"barterly/internal/logger"

	"github.com/lib/pq"
)

const (
	pgChannel = "barterly_events"
	// NOTIFY payloads are capped at 8000 bytes.
	pgMaxPayload = 7900
)

var ErrPayloadTooLarge = errors.New("realtime payload too large for relay")

// PGRelay fans events out through Postgres LISTEN/NOTIFY so every API
// instance sees every event.
type PGRelay struct {
	db       *sql.DB
	listener *pq.Listener
}

func NewPGRelay(dsn string) (*PGRelay, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open relay connection: %w", err)
	}
	db.SetMaxOpenConns(2)

	listener := pq.NewListener(dsn, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			logger.Warn("Realtime relay listener event", "event", ev, "error", err)
		}
	})
	if err := listener.Listen(pgChannel); err != nil {
		db.Close()
		listener.Close()
		return nil, fmt.Errorf("listen %s: %w", pgChannel, err)
	}

	return &PGRelay{db: db, listener: listener}, nil
}

func (r *PGRelay) Publish(ctx context.Context, env Envelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return err
	}
	if len(payload) > pgMaxPayload {
		return ErrPayloadTooLarge
	}
	_, err = r.db.ExecContext(ctx, "SELECT pg_notify($1, $2)", pgChannel, string(payload))
	return err
}

func (r *PGRelay) Listen(ctx context.Context, deliver func(Envelope)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case n, ok := <-r.listener.Notify:
			if !ok {
				return errors.New("relay listener closed")
			}
			// nil after a reconnect
			if n == nil {
				continue
			}
			var env Envelope
			if err := json.Unmarshal([]byte(n.Extra), &env); err != nil {
				logger.Warn("Dropping malformed relay payload", "error", err)
				continue
			}
			deliver(env)
		case <-time.After(90 * time.Second):
			if err := r.listener.Ping(); err != nil {
				logger.Warn("Realtime relay ping failed", "error", err)
			}
		}
	}
}

func (r *PGRelay) Close() error {
	return errors.Join(r.listener.Close(), r.db.Close())
}
