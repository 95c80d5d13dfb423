package exam

import (
	"context"
	"fmt"
	"slices"

	"github.com/pavelanni/exitexam/internal/model"
)

// BonusDrawAttempts bounds the random draws made for each bonus subject.
const BonusDrawAttempts = 5

// ValidateRules checks the subject list and sampling rules.
func ValidateRules(subjects []model.Subject, rules model.SamplingRules) error {
	if len(subjects) == 0 {
		return &ConfigError{Reason: ReasonNoSubjects}
	}
	seen := make(map[model.Subject]struct{}, len(subjects))
	for _, s := range subjects {
		if _, ok := seen[s]; ok {
			return &ConfigError{Reason: ReasonDuplicateSubject, Subject: s}
		}
		seen[s] = struct{}{}
	}
	if rules.BaseQuestionsPerSubject < 1 {
		return &ConfigError{Reason: ReasonBaseTooSmall}
	}
	if rules.ExtraQuestionsTotal < 0 || rules.ExtraDistinctSubjects < 0 {
		return &ConfigError{Reason: ReasonExtraNegative}
	}
	// One bonus question per chosen bonus subject.
	if rules.ExtraQuestionsTotal != rules.ExtraDistinctSubjects {
		return &ConfigError{Reason: ReasonExtraMismatch}
	}
	if rules.ExtraDistinctSubjects > len(subjects) {
		return &ConfigError{Reason: ReasonExtraExceedsSubject}
	}
	return nil
}

// Assemble draws the question set for one attempt: the base quota from every
// subject in configured order, then one bonus question from each of
// ExtraDistinctSubjects randomly chosen subjects. The result is not shuffled.
// Either the full set is returned or an error; the repository is only read.
func Assemble(ctx context.Context, repo QuestionRepository, rng Rand, subjects []model.Subject, rules model.SamplingRules) ([]model.Question, error) {
	if err := ValidateRules(subjects, rules); err != nil {
		return nil, err
	}

	base := rules.BaseQuestionsPerSubject
	drawn := make([]model.Question, 0, len(subjects)*base+rules.ExtraQuestionsTotal)
	used := make(map[string]struct{}, cap(drawn))

	add := func(q model.Question) error {
		if _, dup := used[q.ID]; dup {
			return fmt.Errorf("repository returned question %s twice", q.ID)
		}
		used[q.ID] = struct{}{}
		drawn = append(drawn, q)
		return nil
	}

	for _, subject := range subjects {
		picked, err := repo.SampleRandom(ctx, QuestionFilter{Subject: subject}, base)
		if err != nil {
			return nil, fmt.Errorf("sample %q: %w", subject, err)
		}
		if len(picked) < base {
			return nil, &InsufficientPoolError{Subject: subject, Needed: base, Found: len(picked)}
		}
		for _, q := range picked[:base] {
			if err := add(q); err != nil {
				return nil, err
			}
		}
	}

	if rules.ExtraQuestionsTotal == 0 {
		return drawn, nil
	}

	bonusSubjects := Shuffle(rng, subjects)[:rules.ExtraDistinctSubjects]
	for _, subject := range bonusSubjects {
		q, err := drawBonus(ctx, repo, subject, used)
		if err != nil {
			return nil, err
		}
		if err := add(q); err != nil {
			return nil, err
		}
	}
	return drawn, nil
}

func drawBonus(ctx context.Context, repo QuestionRepository, subject model.Subject, used map[string]struct{}) (model.Question, error) {
	exclude := make([]string, 0, len(used))
	for id := range used {
		exclude = append(exclude, id)
	}
	slices.Sort(exclude)

	filter := QuestionFilter{Subject: subject}
	return Retry(ctx, BonusDrawAttempts, func(ctx context.Context) (model.Question, bool, error) {
		candidates, err := repo.SampleRandomExcluding(ctx, filter, exclude, 1)
		if err != nil {
			return model.Question{}, false, fmt.Errorf("sample bonus %q: %w", subject, err)
		}
		for _, c := range candidates {
			if _, dup := used[c.ID]; !dup {
				return c, true, nil
			}
		}
		return model.Question{}, false, nil
	}, &InsufficientUniqueQuestionsError{Subject: subject})
}
