package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pavelanni/exitexam/internal/model"
)

const resultColumns = `id, exam_type, exam_title, exam_subject, exam_duration, score, total_questions, answers_json, snapshot_json, created_at`

// CreateResult stores a graded attempt in one transaction.
func (s *Store) CreateResult(ctx context.Context, r *model.Result) error {
	answers, err := json.Marshal(r.Answers)
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}
	snapshot, err := json.Marshal(r.QuestionsSnapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO results (`+resultColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		r.ID, r.ExamType, r.ExamTitle, r.ExamSubject, r.ExamDuration, r.Score, r.TotalQuestions,
		string(answers), string(snapshot), r.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return err
	}
	return tx.Commit()
}

func scanResult(row rowScanner) (model.Result, error) {
	var (
		r                 model.Result
		answers, snapshot string
		createdAt         int64
	)
	err := row.Scan(&r.ID, &r.ExamType, &r.ExamTitle, &r.ExamSubject, &r.ExamDuration,
		&r.Score, &r.TotalQuestions, &answers, &snapshot, &createdAt)
	if err != nil {
		return r, err
	}
	if err := json.Unmarshal([]byte(answers), &r.Answers); err != nil {
		return r, fmt.Errorf("decode answers of result %s: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(snapshot), &r.QuestionsSnapshot); err != nil {
		return r, fmt.Errorf("decode snapshot of result %s: %w", r.ID, err)
	}
	r.CreatedAt = time.UnixMilli(createdAt).UTC()
	return r, nil
}

// GetResult returns a result by ID, or ErrNotFound.
func (s *Store) GetResult(ctx context.Context, id string) (*model.Result, error) {
	r, err := scanResult(s.db.QueryRowContext(ctx,
		`SELECT `+resultColumns+` FROM results WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListResults returns results newest first. limit <= 0 returns all of them.
func (s *Store) ListResults(ctx context.Context, limit int) ([]model.Result, error) {
	query := `SELECT ` + resultColumns + ` FROM results ORDER BY created_at DESC, id`
	var args []any
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var results []model.Result
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
