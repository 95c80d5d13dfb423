package exam

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/google/uuid"

	"github.com/pavelanni/exitexam/internal/model"
)

// In-memory QuestionRepository and ResultStore fakes.

type fakeRepo struct {
	pools map[string][]model.Question
	rng   *rand.Rand

	calls          int
	excludingCalls int

	// emptyBonusDraws makes the next N SampleRandomExcluding calls return nothing.
	emptyBonusDraws int
	err             error
}

func newFakeRepo(seed uint64, sizes map[string]int) *fakeRepo {
	r := &fakeRepo{
		pools: map[string][]model.Question{},
		rng:   rand.New(rand.NewPCG(seed, seed+1)),
	}
	for subject, n := range sizes {
		for i := 0; i < n; i++ {
			r.add(newQuestion(subject, i))
		}
	}
	return r
}

func newQuestion(subject string, i int) model.Question {
	return model.Question{
		ID:            uuid.NewString(),
		Subject:       subject,
		Text:          fmt.Sprintf("%s question %d", subject, i),
		Options:       []string{"A", "B", "C", "D"},
		CorrectAnswer: "B",
		Difficulty:    model.DifficultyMedium,
		Explanation:   "because B",
	}
}

func (r *fakeRepo) add(q model.Question) {
	r.pools[q.Subject] = append(r.pools[q.Subject], q)
}

func (r *fakeRepo) sample(pool []model.Question, size int) []model.Question {
	perm := r.rng.Perm(len(pool))
	if size > len(pool) {
		size = len(pool)
	}
	out := make([]model.Question, 0, size)
	for _, i := range perm[:size] {
		out = append(out, pool[i])
	}
	return out
}

func (r *fakeRepo) SampleRandom(_ context.Context, f QuestionFilter, size int) ([]model.Question, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return r.sample(r.pools[f.Subject], size), nil
}

func (r *fakeRepo) SampleRandomExcluding(_ context.Context, f QuestionFilter, exclude []string, size int) ([]model.Question, error) {
	r.calls++
	r.excludingCalls++
	if r.err != nil {
		return nil, r.err
	}
	if r.emptyBonusDraws > 0 {
		r.emptyBonusDraws--
		return nil, nil
	}
	var eligible []model.Question
	for _, q := range r.pools[f.Subject] {
		if !slices.Contains(exclude, q.ID) {
			eligible = append(eligible, q)
		}
	}
	return r.sample(eligible, size), nil
}

func (r *fakeRepo) FetchByIDs(_ context.Context, ids []string) ([]model.Question, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	var out []model.Question
	for _, pool := range r.pools {
		for _, q := range pool {
			if slices.Contains(ids, q.ID) {
				out = append(out, q)
			}
		}
	}
	return out, nil
}

// question finds a bank question by id.
func (r *fakeRepo) question(id string) *model.Question {
	for _, pool := range r.pools {
		for i := range pool {
			if pool[i].ID == id {
				return &pool[i]
			}
		}
	}
	return nil
}

type fakeResults struct {
	results   map[string]model.Result
	order     []string
	createErr error
}

func newFakeResults() *fakeResults {
	return &fakeResults{results: map[string]model.Result{}}
}

func (s *fakeResults) CreateResult(_ context.Context, r *model.Result) error {
	if s.createErr != nil {
		return s.createErr
	}
	if _, ok := s.results[r.ID]; ok {
		return fmt.Errorf("result %s already exists", r.ID)
	}
	s.results[r.ID] = *r
	s.order = append(s.order, r.ID)
	return nil
}

func (s *fakeResults) GetResult(_ context.Context, id string) (*model.Result, error) {
	r, ok := s.results[id]
	if !ok {
		return nil, fmt.Errorf("result %q not found", id)
	}
	return &r, nil
}

func (s *fakeResults) ListResults(_ context.Context, limit int) ([]model.Result, error) {
	var out []model.Result
	for i := len(s.order) - 1; i >= 0; i-- {
		out = append(out, s.results[s.order[i]])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, 42))
}
