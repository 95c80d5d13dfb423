package exam

import (
	"context"

	"github.com/pavelanni/exitexam/internal/model"
)

// QuestionFilter selects the pool a sample is drawn from.
type QuestionFilter struct {
	Subject model.Subject
}

// QuestionRepository is the read side of the question bank.
//
// Sampling returns distinct records chosen uniformly at random. Returning fewer
// than size records is not an error; callers check the count.
type QuestionRepository interface {
	SampleRandom(ctx context.Context, f QuestionFilter, size int) ([]model.Question, error)
	SampleRandomExcluding(ctx context.Context, f QuestionFilter, exclude []string, size int) ([]model.Question, error)
	FetchByIDs(ctx context.Context, ids []string) ([]model.Question, error)
}

// ResultStore persists graded attempts. Results are never updated once created.
type ResultStore interface {
	CreateResult(ctx context.Context, r *model.Result) error
	GetResult(ctx context.Context, id string) (*model.Result, error)
	ListResults(ctx context.Context, limit int) ([]model.Result, error)
}
