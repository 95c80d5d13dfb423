package exam

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/pavelanni/exitexam/internal/model"
)

// Service assembles and grades exit exam attempts. It keeps no state between
// calls and is safe for concurrent use.
type Service struct {
	questions QuestionRepository
	results   ResultStore
	rng       Rand
	now       func() time.Time
}

// NewService creates a Service. A nil rng uses the global math/rand/v2 source.
func NewService(questions QuestionRepository, results ResultStore, rng Rand) *Service {
	return &Service{questions: questions, results: results, rng: rng, now: time.Now}
}

// Draw assembles and shuffles a full question set, answer keys included.
func (s *Service) Draw(ctx context.Context, cfg model.ExamConfig) ([]model.Question, error) {
	set, err := Assemble(ctx, s.questions, s.rng, cfg.Subjects, cfg.Rules)
	if err != nil {
		return nil, err
	}
	return Shuffle(s.rng, set), nil
}

// StartAttempt builds the payload handed to an exam taker. Answer keys and
// explanations are stripped from every question.
func (s *Service) StartAttempt(ctx context.Context, cfg model.ExamConfig) (*model.AttemptPayload, error) {
	set, err := s.Draw(ctx, cfg)
	if err != nil {
		return nil, err
	}

	public := make([]model.QuestionPublic, len(set))
	for i, q := range set {
		public[i] = q.Public()
	}

	slog.Debug("assembled attempt", "exam_type", cfg.ExamType, "questions", len(public))

	return &model.AttemptPayload{
		ExamType:        cfg.ExamType,
		Title:           cfg.Title,
		SubjectLabel:    cfg.SubjectLabel,
		DurationMinutes: cfg.DurationMinutes,
		DurationSeconds: cfg.DurationMinutes * 60,
		Subjects:        slices.Clone(cfg.Subjects),
		Rules:           cfg.Rules,
		Questions:       public,
	}, nil
}

// SubmitAttempt grades the submitted answers and persists the result. Nothing
// is written unless grading succeeds.
func (s *Service) SubmitAttempt(ctx context.Context, cfg model.ExamConfig, questionIDs []string, answers []model.SubmittedAnswer) (*model.Result, error) {
	g, err := Grade(ctx, s.questions, questionIDs, answers)
	if err != nil {
		return nil, err
	}

	res := &model.Result{
		ID:                uuid.NewString(),
		ExamType:          cfg.ExamType,
		ExamTitle:         cfg.Title,
		ExamSubject:       cfg.SubjectLabel,
		ExamDuration:      cfg.DurationMinutes,
		Score:             g.Score,
		TotalQuestions:    g.TotalQuestions,
		Answers:           g.Answers,
		QuestionsSnapshot: g.Snapshot,
		CreatedAt:         s.now().UTC(),
	}
	if err := s.results.CreateResult(ctx, res); err != nil {
		return nil, fmt.Errorf("store result: %w", err)
	}

	slog.Info("graded attempt", "result_id", res.ID, "score", res.Score, "total", res.TotalQuestions)
	return res, nil
}

// Result returns a stored result.
func (s *Service) Result(ctx context.Context, id string) (*model.Result, error) {
	return s.results.GetResult(ctx, id)
}

// Results lists stored results, newest first.
func (s *Service) Results(ctx context.Context, limit int) ([]model.Result, error) {
	return s.results.ListResults(ctx, limit)
}
