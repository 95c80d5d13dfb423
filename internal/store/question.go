package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/pavelanni/exitexam/internal/exam"
	"github.com/pavelanni/exitexam/internal/model"
)

const questionColumns = `id, subject, question_text, options_json, correct_answer, difficulty, explanation`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuestion(row rowScanner) (model.Question, error) {
	var (
		q    model.Question
		opts string
	)
	if err := row.Scan(&q.ID, &q.Subject, &q.Text, &opts, &q.CorrectAnswer, &q.Difficulty, &q.Explanation); err != nil {
		return q, err
	}
	if err := json.Unmarshal([]byte(opts), &q.Options); err != nil {
		return q, fmt.Errorf("decode options of question %s: %w", q.ID, err)
	}
	return q, nil
}

func (s *Store) queryQuestions(ctx context.Context, query string, args ...any) ([]model.Question, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var questions []model.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// SampleRandom returns up to size random questions matching f.
func (s *Store) SampleRandom(ctx context.Context, f exam.QuestionFilter, size int) ([]model.Question, error) {
	return s.queryQuestions(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE subject = $1 ORDER BY RANDOM() LIMIT $2`,
		f.Subject, size,
	)
}

// SampleRandomExcluding is SampleRandom restricted to ids outside exclude.
func (s *Store) SampleRandomExcluding(ctx context.Context, f exam.QuestionFilter, exclude []string, size int) ([]model.Question, error) {
	if len(exclude) == 0 {
		return s.SampleRandom(ctx, f, size)
	}
	args := make([]any, 0, len(exclude)+2)
	args = append(args, f.Subject)
	for _, id := range exclude {
		args = append(args, id)
	}
	args = append(args, size)
	query := fmt.Sprintf(
		`SELECT %s FROM questions WHERE subject = $1 AND id NOT IN (%s) ORDER BY RANDOM() LIMIT $%d`,
		questionColumns, placeholders(2, len(exclude)), len(exclude)+2,
	)
	return s.queryQuestions(ctx, query, args...)
}

// FetchByIDs returns the questions with the given ids. Unknown ids are
// silently absent from the result.
func (s *Store) FetchByIDs(ctx context.Context, ids []string) ([]model.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT %s FROM questions WHERE id IN (%s)`, questionColumns, placeholders(1, len(ids)))
	return s.queryQuestions(ctx, query, args...)
}

// UpsertQuestion inserts q, or updates the question with the same subject and
// text. q.ID is ignored on update; on insert an empty ID gets a new uuid.
func (s *Store) UpsertQuestion(ctx context.Context, q model.Question) (model.UpsertOutcome, error) {
	opts, err := json.Marshal(q.Options)
	if err != nil {
		return "", fmt.Errorf("encode options: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	existing, err := scanQuestion(tx.QueryRowContext(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE subject = $1 AND question_text = $2`,
		q.Subject, q.Text,
	))
	switch {
	case err == sql.ErrNoRows:
		if q.ID == "" {
			q.ID = uuid.NewString()
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO questions (`+questionColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			q.ID, q.Subject, q.Text, string(opts), q.CorrectAnswer, string(q.Difficulty), q.Explanation,
		)
		if err != nil {
			return "", err
		}
		return model.UpsertInserted, tx.Commit()
	case err != nil:
		return "", err
	}

	if slices.Equal(existing.Options, q.Options) &&
		existing.CorrectAnswer == q.CorrectAnswer &&
		existing.Difficulty == q.Difficulty &&
		existing.Explanation == q.Explanation {
		return model.UpsertUnchanged, nil
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE questions SET options_json = $1, correct_answer = $2, difficulty = $3, explanation = $4 WHERE id = $5`,
		string(opts), q.CorrectAnswer, string(q.Difficulty), q.Explanation, existing.ID,
	)
	if err != nil {
		return "", err
	}
	return model.UpsertUpdated, tx.Commit()
}

// QuestionCount returns the number of questions in the database.
func (s *Store) QuestionCount(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM questions`).Scan(&count)
	return count, err
}

// CountBySubject returns the bank size per subject, ordered by subject.
func (s *Store) CountBySubject(ctx context.Context) ([]model.SubjectCount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT subject, COUNT(*) FROM questions GROUP BY subject ORDER BY subject`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var counts []model.SubjectCount
	for rows.Next() {
		var c model.SubjectCount
		if err := rows.Scan(&c.Subject, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}
