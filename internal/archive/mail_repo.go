package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Mail is one archived raw mail row
type Mail struct {
	ID        int64     `db:"id"`
	MessageID string    `db:"message_id"` // Email Message-ID header
	Address   string    `db:"address"`    // Recipient address
	Raw       string    `db:"raw"`        // Raw RFC 822 message
	CreatedAt time.Time `db:"created_at"`
}

// MailAt returns the offset-th most recent mail for an address. Offset 0 is
// the newest; an offset past the end returns ErrNotFound.
func (a *Archive) MailAt(ctx context.Context, address string, offset int) (*Mail, error) {
	var m Mail
	query := `SELECT * FROM raw_mails WHERE address = ? ORDER BY id DESC LIMIT 1 OFFSET ?`
	err := a.GetContext(ctx, &m, query, address, offset)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get mail: %w", err)
	}
	return &m, nil
}

// MailIDByMessageID returns the archive id of the mail with the given
// Message-ID header for an address.
func (a *Archive) MailIDByMessageID(ctx context.Context, address, messageID string) (int64, error) {
	var id int64
	query := `SELECT id FROM raw_mails WHERE address = ? AND message_id = ?`
	err := a.GetContext(ctx, &id, query, address, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get mail id: %w", err)
	}
	return id, nil
}

// InsertMail archives a raw mail
func (a *Archive) InsertMail(ctx context.Context, m *Mail) error {
	query := `INSERT INTO raw_mails (message_id, address, raw, created_at) VALUES (?, ?, ?, ?)`
	now := time.Now()
	result, err := a.ExecContext(ctx, query, m.MessageID, m.Address, m.Raw, now)
	if err != nil {
		return fmt.Errorf("failed to insert mail: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	m.ID = id
	m.CreatedAt = now
	return nil
}

// AddressExists reports whether an address id is still present
func (a *Archive) AddressExists(ctx context.Context, id int64) (bool, error) {
	var found int64
	query := `SELECT id FROM address WHERE id = ?`
	err := a.GetContext(ctx, &found, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check address: %w", err)
	}
	return true, nil
}

// EnsureAddress returns the id for an address name, creating the row when
// missing.
func (a *Archive) EnsureAddress(ctx context.Context, name string) (int64, error) {
	var id int64
	err := a.GetContext(ctx, &id, `SELECT id FROM address WHERE name = ?`, name)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to look up address: %w", err)
	}

	result, err := a.ExecContext(ctx, `INSERT INTO address (name) VALUES (?)`, name)
	if err != nil {
		return 0, fmt.Errorf("failed to create address: %w", err)
	}
	id, err = result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}
	return id, nil
}

// DeleteAddress removes an address row and every mail archived for it
func (a *Archive) DeleteAddress(ctx context.Context, id int64) error {
	var name string
	err := a.GetContext(ctx, &name, `SELECT name FROM address WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to look up address: %w", err)
	}

	if _, err := a.ExecContext(ctx, `DELETE FROM raw_mails WHERE address = ?`, name); err != nil {
		return fmt.Errorf("failed to delete mails: %w", err)
	}
	if _, err := a.ExecContext(ctx, `DELETE FROM address WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete address: %w", err)
	}
	return nil
}
