package model

import (
	"slices"
	"time"
)

// ExamTypeExit is the exam type recorded on exit exam results.
const ExamTypeExit = "exit_exam"

// Subject identifies a course or topic that owns a pool of questions.
type Subject = string

// Difficulty represents question difficulty level.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Question is a multiple-choice question record from the bank.
type Question struct {
	ID            string     `json:"id"`
	Subject       Subject    `json:"subject"`
	Text          string     `json:"questionText"`
	Options       []string   `json:"options"`
	CorrectAnswer string     `json:"correctAnswer"`
	Difficulty    Difficulty `json:"difficulty"`
	Explanation   string     `json:"explanation,omitempty"`
}

// Public returns the question without its answer key and explanation.
func (q Question) Public() QuestionPublic {
	return QuestionPublic{
		ID:         q.ID,
		Subject:    q.Subject,
		Text:       q.Text,
		Options:    slices.Clone(q.Options),
		Difficulty: q.Difficulty,
	}
}

// Snapshot copies the reviewable content of the question.
func (q Question) Snapshot() QuestionSnapshot {
	return QuestionSnapshot{
		QuestionID:    q.ID,
		Subject:       q.Subject,
		Text:          q.Text,
		Options:       slices.Clone(q.Options),
		CorrectAnswer: q.CorrectAnswer,
		Explanation:   q.Explanation,
	}
}

// QuestionPublic is the form of a question sent to an exam taker.
type QuestionPublic struct {
	ID         string     `json:"id"`
	Subject    Subject    `json:"subject"`
	Text       string     `json:"questionText"`
	Options    []string   `json:"options"`
	Difficulty Difficulty `json:"difficulty"`
}

// SamplingRules controls how many questions an attempt draws.
type SamplingRules struct {
	BaseQuestionsPerSubject int `json:"baseQuestionsPerSubject"`
	ExtraQuestionsTotal     int `json:"extraQuestionsTotal"`
	ExtraDistinctSubjects   int `json:"extraDistinctSubjects"`
}

// ExamConfig holds the exit exam parameters. It is passed by value into every
// call and checked when an attempt is assembled.
type ExamConfig struct {
	ExamType        string
	Title           string
	SubjectLabel    string
	DurationMinutes int
	Subjects        []Subject
	Rules           SamplingRules
}

// AttemptPayload is returned to a client starting an attempt.
type AttemptPayload struct {
	ExamType        string           `json:"examType"`
	Title           string           `json:"title"`
	SubjectLabel    string           `json:"subjectLabel"`
	DurationMinutes int              `json:"duration"`
	DurationSeconds int              `json:"durationSeconds"`
	Subjects        []Subject        `json:"subjects"`
	Rules           SamplingRules    `json:"rules"`
	Questions       []QuestionPublic `json:"questions"`
}

// SubmittedAnswer is one answer sent back by the client. An empty
// SelectedAnswer means the question was left unanswered.
type SubmittedAnswer struct {
	QuestionID     string `json:"questionId"`
	SelectedAnswer string `json:"selectedAnswer"`
}

// GradedAnswer records the outcome for one question.
type GradedAnswer struct {
	QuestionID     string `json:"questionId"`
	SelectedAnswer string `json:"selectedAnswer"`
	IsCorrect      bool   `json:"isCorrect"`
}

// QuestionSnapshot is the copy of a question kept with a result for review.
type QuestionSnapshot struct {
	QuestionID    string   `json:"questionId"`
	Subject       Subject  `json:"subject"`
	Text          string   `json:"questionText"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

// Result is the immutable record of a graded attempt.
type Result struct {
	ID                string             `json:"id"`
	ExamType          string             `json:"examType"`
	ExamTitle         string             `json:"examTitle"`
	ExamSubject       string             `json:"examSubject"`
	ExamDuration      int                `json:"examDuration"`
	Score             int                `json:"score"`
	TotalQuestions    int                `json:"totalQuestions"`
	Answers           []GradedAnswer     `json:"answers"`
	QuestionsSnapshot []QuestionSnapshot `json:"questionsSnapshot"`
	CreatedAt         time.Time          `json:"createdAt"`
}

// QuestionImport is used for loading questions from JSON.
type QuestionImport struct {
	Subject       string     `json:"subject" validate:"required"`
	Text          string     `json:"questionText" validate:"required"`
	Options       []string   `json:"options" validate:"min=2,max=6,unique,dive,required"`
	CorrectAnswer string     `json:"correctAnswer" validate:"required"`
	Explanation   string     `json:"explanation"`
	Difficulty    Difficulty `json:"difficulty" validate:"oneof=easy medium hard"`
}
