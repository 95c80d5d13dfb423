package exam

import (
	"errors"
	"fmt"
)

// ConfigReason names the sampling rule that failed validation.
type ConfigReason string

const (
	ReasonNoSubjects          ConfigReason = "no_subjects"
	ReasonDuplicateSubject    ConfigReason = "duplicate_subject"
	ReasonBaseTooSmall        ConfigReason = "base_too_small"
	ReasonExtraNegative       ConfigReason = "extra_negative"
	ReasonExtraMismatch       ConfigReason = "extra_mismatch"
	ReasonExtraExceedsSubject ConfigReason = "extra_exceeds_subjects"
)

// ConfigError reports malformed or inconsistent sampling rules.
type ConfigError struct {
	Reason  ConfigReason
	Subject string // set for ReasonDuplicateSubject
}

func (e *ConfigError) Error() string {
	switch e.Reason {
	case ReasonNoSubjects:
		return "exit exam subjects are not configured"
	case ReasonDuplicateSubject:
		return fmt.Sprintf("subject %q is configured more than once", e.Subject)
	case ReasonBaseTooSmall:
		return "baseQuestionsPerSubject must be at least 1"
	case ReasonExtraNegative:
		return "extraQuestionsTotal and extraDistinctSubjects must not be negative"
	case ReasonExtraMismatch:
		return "extraQuestionsTotal must equal extraDistinctSubjects (1 extra per selected subject)"
	case ReasonExtraExceedsSubject:
		return "extraDistinctSubjects cannot be greater than number of subjects"
	}
	return "invalid sampling rules: " + string(e.Reason)
}

// InsufficientPoolError reports a subject whose bank is smaller than the base quota.
type InsufficientPoolError struct {
	Subject string
	Needed  int
	Found   int
}

func (e *InsufficientPoolError) Error() string {
	return fmt.Sprintf("not enough questions for %q: needed %d, found %d", e.Subject, e.Needed, e.Found)
}

// InsufficientUniqueQuestionsError reports a bonus subject with no question left
// that is not already part of the attempt.
type InsufficientUniqueQuestionsError struct {
	Subject string
}

func (e *InsufficientUniqueQuestionsError) Error() string {
	return fmt.Sprintf("not enough unique questions to add an extra question for %q", e.Subject)
}

// ErrNoQuestionIDs is returned when a submission names no questions.
var ErrNoQuestionIDs = errors.New("no question ids provided")

// InvalidIDError reports a submitted question id that is not well formed.
type InvalidIDError struct {
	ID string
}

func (e *InvalidIDError) Error() string {
	return fmt.Sprintf("invalid question id %q", e.ID)
}

// NotFoundError reports submitted ids that do not resolve to bank questions.
type NotFoundError struct {
	Requested int
	Found     int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("one or more questions not found: requested %d, found %d", e.Requested, e.Found)
}

// IsClientError reports whether err is caused by the exam configuration, the
// question bank contents or the submitted payload rather than an I/O failure.
func IsClientError(err error) bool {
	var (
		cfgErr    *ConfigError
		poolErr   *InsufficientPoolError
		uniqueErr *InsufficientUniqueQuestionsError
		idErr     *InvalidIDError
		nfErr     *NotFoundError
	)
	return errors.Is(err, ErrNoQuestionIDs) ||
		errors.As(err, &cfgErr) ||
		errors.As(err, &poolErr) ||
		errors.As(err, &uniqueErr) ||
		errors.As(err, &idErr) ||
		errors.As(err, &nfErr)
}
