package exam

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/pavelanni/exitexam/internal/model"
)

func twoQuestionBank(t *testing.T) (*fakeRepo, string, string) {
	t.Helper()
	repo := newFakeRepo(10, map[string]int{"X": 2})
	q1, q2 := repo.pools["X"][0].ID, repo.pools["X"][1].ID
	return repo, q1, q2
}

func TestGradeScoresSubmission(t *testing.T) {
	repo, q1, q2 := twoQuestionBank(t)
	answers := []model.SubmittedAnswer{
		{QuestionID: q1, SelectedAnswer: "B"},
		{QuestionID: q2, SelectedAnswer: "A"},
	}

	g, err := Grade(context.Background(), repo, []string{q1, q2}, answers)
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	if g.Score != 1 || g.TotalQuestions != 2 {
		t.Errorf("expected 1/2, got %d/%d", g.Score, g.TotalQuestions)
	}
	want := []model.GradedAnswer{
		{QuestionID: q1, SelectedAnswer: "B", IsCorrect: true},
		{QuestionID: q2, SelectedAnswer: "A", IsCorrect: false},
	}
	if !reflect.DeepEqual(g.Answers, want) {
		t.Errorf("answers = %+v, want %+v", g.Answers, want)
	}
	if len(g.Snapshot) != 2 || g.Snapshot[0].QuestionID != q1 || g.Snapshot[1].QuestionID != q2 {
		t.Errorf("snapshot out of order: %+v", g.Snapshot)
	}
}

func TestGradeUnanswered(t *testing.T) {
	repo, q1, q2 := twoQuestionBank(t)

	g, err := Grade(context.Background(), repo, []string{q1, q2}, []model.SubmittedAnswer{
		{QuestionID: q2, SelectedAnswer: ""},
	})
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	if g.Score != 0 {
		t.Errorf("expected score 0, got %d", g.Score)
	}
	for _, a := range g.Answers {
		if a.SelectedAnswer != "" || a.IsCorrect {
			t.Errorf("expected unanswered entry, got %+v", a)
		}
	}
}

func TestGradeLastAnswerWins(t *testing.T) {
	repo, q1, _ := twoQuestionBank(t)

	g, err := Grade(context.Background(), repo, []string{q1}, []model.SubmittedAnswer{
		{QuestionID: q1, SelectedAnswer: "A"},
		{QuestionID: q1, SelectedAnswer: "B"},
	})
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	if g.Score != 1 || g.Answers[0].SelectedAnswer != "B" {
		t.Errorf("expected last answer B to count, got %+v", g.Answers[0])
	}
}

func TestGradeDuplicateIDsCountOnce(t *testing.T) {
	repo, q1, q2 := twoQuestionBank(t)
	upper := strings.ToUpper(q1)

	g, err := Grade(context.Background(), repo, []string{q1, q2, upper, q1}, []model.SubmittedAnswer{
		{QuestionID: upper, SelectedAnswer: "B"},
	})
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	if g.TotalQuestions != 2 || len(g.Answers) != 2 || len(g.Snapshot) != 2 {
		t.Fatalf("expected 2 graded questions, got total=%d answers=%d", g.TotalQuestions, len(g.Answers))
	}
	if g.Score != 1 {
		t.Errorf("expected score 1, got %d", g.Score)
	}
	if g.Answers[0].QuestionID != q1 {
		t.Errorf("expected first occurrence %s first, got %s", q1, g.Answers[0].QuestionID)
	}
}

func TestGradeErrors(t *testing.T) {
	repo, q1, _ := twoQuestionBank(t)

	tests := []struct {
		name  string
		ids   []string
		check func(error) bool
	}{
		{"no ids", nil, func(err error) bool { return errors.Is(err, ErrNoQuestionIDs) }},
		{"malformed id", []string{q1, "q-not-an-id"}, func(err error) bool {
			var e *InvalidIDError
			return errors.As(err, &e) && e.ID == "q-not-an-id"
		}},
		{"empty id", []string{""}, func(err error) bool {
			var e *InvalidIDError
			return errors.As(err, &e)
		}},
		{"unknown id", []string{q1, uuid.NewString()}, func(err error) bool {
			var e *NotFoundError
			return errors.As(err, &e) && e.Requested == 2 && e.Found == 1
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Grade(context.Background(), repo, tt.ids, nil)
			if !tt.check(err) {
				t.Fatalf("unexpected error: %v", err)
			}
			if !IsClientError(err) {
				t.Errorf("expected client error, got %v", err)
			}
		})
	}
}

func TestGradeIsDeterministic(t *testing.T) {
	repo, q1, q2 := twoQuestionBank(t)
	answers := []model.SubmittedAnswer{{QuestionID: q2, SelectedAnswer: "B"}}

	first, err := Grade(context.Background(), repo, []string{q1, q2}, answers)
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	second, err := Grade(context.Background(), repo, []string{q1, q2}, answers)
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("grading differs between calls:\n%+v\n%+v", first, second)
	}
}

func TestGradeSnapshotSurvivesBankEdits(t *testing.T) {
	repo, q1, _ := twoQuestionBank(t)

	g, err := Grade(context.Background(), repo, []string{q1}, nil)
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}

	q := repo.question(q1)
	q.Options[0] = "edited"
	q.CorrectAnswer = "edited"
	q.Text = "edited"

	snap := g.Snapshot[0]
	if snap.Options[0] != "A" || snap.CorrectAnswer != "B" || snap.Text == "edited" {
		t.Errorf("snapshot changed with the bank: %+v", snap)
	}
}
