package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// DBQueue serializes all access to the SQLite database through a single
// goroutine, so concurrent dialog flows never contend for the writer lock.
type DBQueue struct {
	db       *sql.DB
	requests chan dbRequest
	done     chan struct{}
}

type dbRequest struct {
	op   func(*sql.DB) error
	errc chan error
}

// NewDBQueue creates a queue over the given database and starts its worker.
func NewDBQueue(db *sql.DB) *DBQueue {
	q := &DBQueue{
		db:       db,
		requests: make(chan dbRequest, 64),
		done:     make(chan struct{}),
	}
	go q.run()
	return q
}

func (q *DBQueue) run() {
	for {
		select {
		case req := <-q.requests:
			req.errc <- q.execute(req.op)
		case <-q.done:
			return
		}
	}
}

// execute retries briefly when SQLite reports a busy writer.
func (q *DBQueue) execute(op func(*sql.DB) error) error {
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		err = op(q.db)
		if err == nil || !isBusy(err) {
			return err
		}
		time.Sleep(time.Duration(attempt+1) * 50 * time.Millisecond)
	}
	return fmt.Errorf("sqlite busy after retries: %w", err)
}

func isBusy(err error) bool {
	s := err.Error()
	return strings.Contains(s, "database is locked") || strings.Contains(s, "SQLITE_BUSY")
}

// Execute runs op through the queue and returns its error.
func (q *DBQueue) Execute(op func(*sql.DB) error) error {
	req := dbRequest{op: op, errc: make(chan error, 1)}
	q.requests <- req
	return <-req.errc
}

// Close stops the queue worker.
func (q *DBQueue) Close() {
	close(q.done)
}
