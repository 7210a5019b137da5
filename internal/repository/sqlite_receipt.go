package repository

import (
	"context"
	"fmt"

	"github.com/alexanderramin/docket/internal/domain"
)

func (s *SQLiteStore) SaveReceipt(ctx context.Context, r domain.EmailReceipt) error {
	headers, err := encodeJSON(r.Headers)
	if err != nil {
		return fmt.Errorf("encoding receipt headers: %w", err)
	}
	query := `INSERT INTO email_receipts (fingerprint, sender, received_at, normalized_subject, message_id, headers_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(fingerprint) DO NOTHING`
	_, err = s.db.ExecContext(ctx, query,
		r.Fingerprint,
		r.Sender,
		r.ReceivedAt,
		r.NormalizedSubject,
		r.MessageID,
		headers,
		formatTime(r.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting email receipt: %w", err)
	}
	return nil
}

// GetReceipt returns the receipt for fingerprint or an error wrapping
// ErrNotFound.
func (s *SQLiteStore) GetReceipt(ctx context.Context, fingerprint string) (*domain.EmailReceipt, error) {
	query := `SELECT fingerprint, sender, received_at, normalized_subject, message_id, headers_json, created_at
		FROM email_receipts WHERE fingerprint = ?`
	var r domain.EmailReceipt
	var headers, createdAt string
	err := s.db.QueryRowContext(ctx, query, fingerprint).Scan(
		&r.Fingerprint, &r.Sender, &r.ReceivedAt, &r.NormalizedSubject, &r.MessageID, &headers, &createdAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("email receipt: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning email receipt: %w", err)
	}
	r.CreatedAt = parseTime(createdAt)
	if r.Headers, err = decodeJSON[map[string]string](headers); err != nil {
		return nil, fmt.Errorf("decoding receipt headers: %w", err)
	}
	return &r, nil
}
