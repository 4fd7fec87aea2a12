package storage

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/vedasos/support-bot/internal/domain"
)

// TicketRepository archives dispatch outcomes for operator inspection.
type TicketRepository struct {
	queue *DBQueue
}

// NewTicketRepository creates a new TicketRepository
func NewTicketRepository(queue *DBQueue) *TicketRepository {
	return &TicketRepository{queue: queue}
}

// SaveTicket stores one archived ticket. A missing ID is assigned here.
func (r *TicketRepository) SaveTicket(ctx context.Context, rec *domain.TicketRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	return r.queue.Execute(func(db *sql.DB) error {
		_, err := db.ExecContext(ctx,
			`INSERT INTO tickets (id, user_id, submitter, group_id, group_name, branch, description, dispatched, dispatch_error, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.ID, rec.UserID, rec.SubmitterName, rec.GroupID, rec.GroupName,
			rec.Branch, rec.Description, rec.Dispatched, rec.DispatchError, rec.CreatedAt,
		)
		return err
	})
}

// RecentTickets returns up to limit archived tickets, newest first.
func (r *TicketRepository) RecentTickets(ctx context.Context, limit int) ([]*domain.TicketRecord, error) {
	var records []*domain.TicketRecord

	err := r.queue.Execute(func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx,
			`SELECT id, user_id, submitter, group_id, group_name, branch, description, dispatched, dispatch_error, created_at
			 FROM tickets ORDER BY created_at DESC LIMIT ?`,
			limit,
		)
		if err != nil {
			return err
		}
		defer func() { _ = rows.Close() }()

		for rows.Next() {
			var rec domain.TicketRecord
			if err := rows.Scan(&rec.ID, &rec.UserID, &rec.SubmitterName, &rec.GroupID, &rec.GroupName,
				&rec.Branch, &rec.Description, &rec.Dispatched, &rec.DispatchError, &rec.CreatedAt); err != nil {
				return err
			}
			records = append(records, &rec)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return records, nil
}
