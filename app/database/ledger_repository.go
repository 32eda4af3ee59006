package database

import (
	"database/sql"
	"fmt"
)

var _ LedgerRepository = (*SQLLedgerRepository)(nil)

// SQLLedgerRepository is the sqlite-backed ledger implementation.
type SQLLedgerRepository struct {
	db *DB
}

func NewLedgerRepository(db *DB) *SQLLedgerRepository {
	return &SQLLedgerRepository{db: db}
}

func (r *SQLLedgerRepository) Contains(id string) (bool, error) {
	var found string
	err := r.db.QueryRow(`SELECT id FROM notifications WHERE id = ? LIMIT 1`, id).Scan(&found)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check notification id: %w", err)
	}
	return true, nil
}

func (r *SQLLedgerRepository) Flush(ids []string, firedOn string, retainAfter string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin flush transaction: %w", err)
	}
	defer tx.Rollback()

	for _, id := range ids {
		_, err := tx.Exec(`
			INSERT INTO notifications (id, fired_on) VALUES (?, ?)
			ON CONFLICT (id) DO NOTHING
		`, id, firedOn)
		if err != nil {
			return fmt.Errorf("failed to record notification %s: %w", id, err)
		}
	}

	// Retention: evict ids whose firing day fell off the horizon. Run inside
	// the same transaction so a crash cannot leave a half-pruned ledger.
	if retainAfter != "" {
		_, err := tx.Exec(`DELETE FROM notifications WHERE fired_on < ?`, retainAfter)
		if err != nil {
			return fmt.Errorf("failed to evict expired notifications: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit flush transaction: %w", err)
	}

	return nil
}

func (r *SQLLedgerRepository) GetCount() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM notifications`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get notification count: %w", err)
	}
	return count, nil
}

func (r *SQLLedgerRepository) GetRecent(limit int) ([]Notification, error) {
	rows, err := r.db.Query(`
		SELECT id, fired_on, created_at
		FROM notifications
		ORDER BY created_at DESC, id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent notifications: %w", err)
	}
	defer rows.Close()

	var notifications []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.FiredOn, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification row: %w", err)
		}
		notifications = append(notifications, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notification rows: %w", err)
	}

	return notifications, nil
}
