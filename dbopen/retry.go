package dbopen

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// TxOption tunes RunTx.
type TxOption func(*txPolicy)

type txPolicy struct {
	attempts int
	backoff  time.Duration
}

// WithAttempts sets how many times a BUSY transaction is tried. Default: 3.
func WithAttempts(n int) TxOption {
	return func(p *txPolicy) {
		if n > 0 {
			p.attempts = n
		}
	}
}

// WithBackoff sets the first retry delay; it doubles on each retry.
// Default: 100ms.
func WithBackoff(d time.Duration) TxOption {
	return func(p *txPolicy) {
		if d > 0 {
			p.backoff = d
		}
	}
}

// IsBusy reports whether err is SQLite BUSY or LOCKED, as a driver error or
// as text from a wrapped one.
func IsBusy(err error) bool {
	if err == nil {
		return false
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return true
		}
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "is locked")
}

// RunTx runs fn in a transaction and commits it. fn errors roll back; BUSY
// errors from fn, begin or commit are retried with doubling delays.
func RunTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error, opts ...TxOption) error {
	p := txPolicy{attempts: 3, backoff: 100 * time.Millisecond}
	for _, o := range opts {
		o(&p)
	}

	delay := p.backoff
	for attempt := 1; ; attempt++ {
		err := tryTx(ctx, db, fn)
		if err == nil || !IsBusy(err) {
			return err
		}
		if attempt == p.attempts {
			return fmt.Errorf("dbopen: still busy after %d attempts: %w", attempt, err)
		}

		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return fmt.Errorf("dbopen: retry: %w", ctx.Err())
		case <-t.C:
		}
		delay *= 2
	}
}

func tryTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("dbopen: begin: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("dbopen: commit: %w", err)
	}
	return nil
}
