package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/docket/internal/db"
	"github.com/alexanderramin/docket/internal/domain"
)

func (s *SQLiteStore) ProjectForMatter(ctx context.Context, matterID string) (*domain.ProjectMapping, error) {
	return findMapping(ctx, s.db, "matter_id", matterID)
}

func (s *SQLiteStore) MatterForProject(ctx context.Context, projectID string) (*domain.ProjectMapping, error) {
	return findMapping(ctx, s.db, "project_id", projectID)
}

// SaveMapping inserts m unless either side is already mapped, in which case
// the existing row is returned. The check and insert share a transaction.
func (s *SQLiteStore) SaveMapping(ctx context.Context, m domain.ProjectMapping) (*domain.ProjectMapping, error) {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	var saved *domain.ProjectMapping
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		for _, side := range []struct{ column, value string }{
			{"matter_id", m.MatterID},
			{"project_id", m.ProjectID},
		} {
			existing, err := findMapping(ctx, tx, side.column, side.value)
			if err != nil {
				return err
			}
			if existing != nil {
				saved = existing
				return nil
			}
		}

		query := `INSERT INTO project_mappings (matter_id, project_id, project_name, created_at)
			VALUES (?, ?, ?, ?)`
		if _, err := tx.ExecContext(ctx, query, m.MatterID, m.ProjectID, m.ProjectName, formatTime(m.CreatedAt)); err != nil {
			return fmt.Errorf("inserting project mapping: %w", err)
		}
		saved = &m
		return nil
	})
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		// A concurrent writer won between the check and the insert.
		if winner, ferr := s.ProjectForMatter(ctx, m.MatterID); ferr == nil && winner != nil {
			return winner, nil
		}
		if winner, ferr := s.MatterForProject(ctx, m.ProjectID); ferr == nil && winner != nil {
			return winner, nil
		}
	}
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func findMapping(ctx context.Context, q db.DBTX, column, value string) (*domain.ProjectMapping, error) {
	query := `SELECT matter_id, project_id, project_name, created_at FROM project_mappings WHERE ` + column + ` = ?`
	var m domain.ProjectMapping
	var createdAt string
	err := q.QueryRowContext(ctx, query, value).Scan(&m.MatterID, &m.ProjectID, &m.ProjectName, &createdAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying project mapping by %s: %w", column, err)
	}
	m.CreatedAt = parseTime(createdAt)
	return &m, nil
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
