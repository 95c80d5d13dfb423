package exam

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pavelanni/exitexam/internal/model"
)

// Grading is the outcome of grading one submission, before it is stored.
type Grading struct {
	Score          int
	TotalQuestions int
	Answers        []model.GradedAnswer
	Snapshot       []model.QuestionSnapshot
}

// Grade scores answers against the questions named by questionIDs.
//
// Ids are de-duplicated keeping the first occurrence, so a repeated id is
// graded and counted once. A question with no answer or an empty answer is
// graded as incorrect. Grade has no side effects and no randomness.
func Grade(ctx context.Context, repo QuestionRepository, questionIDs []string, answers []model.SubmittedAnswer) (*Grading, error) {
	ids, err := uniqueIDs(questionIDs)
	if err != nil {
		return nil, err
	}

	questions, err := repo.FetchByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch questions: %w", err)
	}
	byID := make(map[string]model.Question, len(questions))
	for _, q := range questions {
		byID[canonicalID(q.ID)] = q
	}
	found := 0
	for _, id := range ids {
		if _, ok := byID[id]; ok {
			found++
		}
	}
	if found != len(ids) {
		return nil, &NotFoundError{Requested: len(ids), Found: found}
	}

	selected := make(map[string]string, len(answers))
	for _, a := range answers {
		selected[canonicalID(a.QuestionID)] = a.SelectedAnswer
	}

	g := &Grading{
		TotalQuestions: len(ids),
		Answers:        make([]model.GradedAnswer, 0, len(ids)),
		Snapshot:       make([]model.QuestionSnapshot, 0, len(ids)),
	}
	for _, id := range ids {
		q := byID[id]
		sel := selected[id]
		correct := sel != "" && sel == q.CorrectAnswer
		if correct {
			g.Score++
		}
		g.Answers = append(g.Answers, model.GradedAnswer{
			QuestionID:     q.ID,
			SelectedAnswer: sel,
			IsCorrect:      correct,
		})
		g.Snapshot = append(g.Snapshot, q.Snapshot())
	}
	return g, nil
}

// uniqueIDs validates ids and returns them in canonical form, first
// occurrence order, without repeats.
func uniqueIDs(in []string) ([]string, error) {
	if len(in) == 0 {
		return nil, ErrNoQuestionIDs
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, raw := range in {
		u, err := uuid.Parse(raw)
		if err != nil {
			return nil, &InvalidIDError{ID: raw}
		}
		id := u.String()
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}

func canonicalID(id string) string {
	if u, err := uuid.Parse(id); err == nil {
		return u.String()
	}
	return id
}
