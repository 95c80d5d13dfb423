// Package importer loads question bank files into a question store.
package importer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/pavelanni/exitexam/internal/model"
)

// Sink is a question store that can take seeded questions.
type Sink interface {
	UpsertQuestion(ctx context.Context, q model.Question) (model.UpsertOutcome, error)
	ImportedFileHash(ctx context.Context, name string) (string, error)
	SetImportedFileHash(ctx context.Context, name, hash string) error
}

// Drafter writes an explanation for a question that has none.
type Drafter interface {
	DraftExplanation(ctx context.Context, q model.Question) (string, error)
}

// Summary counts what one file import did.
type Summary struct {
	Path          string
	SkippedFile   bool // content unchanged since the last import
	Inserted      int
	Updated       int
	Unchanged     int
	Invalid       int
	Drafted       int
	DraftFailures int
}

type Importer struct {
	sink     Sink
	drafter  Drafter
	validate *validator.Validate
	force    bool
}

// Option configures an Importer.
type Option func(*Importer)

// WithDrafter fills missing explanations through d.
func WithDrafter(d Drafter) Option {
	return func(im *Importer) { im.drafter = d }
}

// WithForce re-imports files whose content hash is unchanged.
func WithForce(force bool) Option {
	return func(im *Importer) { im.force = force }
}

func New(sink Sink, opts ...Option) *Importer {
	v := validator.New()
	v.RegisterStructValidation(correctAnswerAmongOptions, model.QuestionImport{})
	im := &Importer{sink: sink, validate: v}
	for _, o := range opts {
		o(im)
	}
	return im
}

func correctAnswerAmongOptions(sl validator.StructLevel) {
	q := sl.Current().Interface().(model.QuestionImport)
	if q.CorrectAnswer != "" && !slices.Contains(q.Options, q.CorrectAnswer) {
		sl.ReportError(q.CorrectAnswer, "CorrectAnswer", "correctAnswer", "oneofoptions", "")
	}
}

// Normalize trims every field, drops empty options and defaults the
// difficulty to medium.
func Normalize(q model.QuestionImport) model.QuestionImport {
	out := model.QuestionImport{
		Subject:       strings.TrimSpace(q.Subject),
		Text:          strings.TrimSpace(q.Text),
		CorrectAnswer: strings.TrimSpace(q.CorrectAnswer),
		Explanation:   strings.TrimSpace(q.Explanation),
		Difficulty:    model.Difficulty(strings.TrimSpace(string(q.Difficulty))),
	}
	for _, o := range q.Options {
		if o = strings.TrimSpace(o); o != "" {
			out.Options = append(out.Options, o)
		}
	}
	if out.Difficulty == "" {
		out.Difficulty = model.DifficultyMedium
	}
	return out
}

// Validate checks a normalized entry.
func (im *Importer) Validate(q model.QuestionImport) error {
	err := im.validate.Struct(q)
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fe.Field()+": "+fe.Tag())
	}
	return errors.New(strings.Join(msgs, ", "))
}

// ImportFile imports a JSON array of questions from path. A file whose
// content hash matches the last clean import is skipped.
func (im *Importer) ImportFile(ctx context.Context, path string) (*Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	name, err := filepath.Abs(path)
	if err != nil {
		name = path
	}
	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	if !im.force {
		prev, err := im.sink.ImportedFileHash(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("read import hash: %w", err)
		}
		if prev == hash {
			slog.Info("seed file unchanged, skipping", "path", path)
			return &Summary{Path: path, SkippedFile: true}, nil
		}
	}

	s, err := im.Import(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", path, err)
	}
	s.Path = path

	// Files with bad entries or missing drafts are retried on the next run.
	if s.Invalid == 0 && s.DraftFailures == 0 {
		if err := im.sink.SetImportedFileHash(ctx, name, hash); err != nil {
			return nil, fmt.Errorf("record import hash: %w", err)
		}
	}
	return s, nil
}

// Import upserts every valid entry of a JSON array. Invalid entries are
// logged with their index and counted, not fatal.
func (im *Importer) Import(ctx context.Context, data []byte) (*Summary, error) {
	var raw []model.QuestionImport
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse questions: %w", err)
	}

	s := &Summary{}
	for idx, entry := range raw {
		entry = Normalize(entry)
		if err := im.Validate(entry); err != nil {
			slog.Warn("invalid question", "index", idx, "subject", entry.Subject, "error", err)
			s.Invalid++
			continue
		}

		q := model.Question{
			Subject:       entry.Subject,
			Text:          entry.Text,
			Options:       entry.Options,
			CorrectAnswer: entry.CorrectAnswer,
			Difficulty:    entry.Difficulty,
			Explanation:   entry.Explanation,
		}
		if q.Explanation == "" && im.drafter != nil {
			explanation, err := im.drafter.DraftExplanation(ctx, q)
			if err != nil {
				slog.Warn("draft explanation failed", "index", idx, "error", err)
				s.DraftFailures++
			} else {
				q.Explanation = explanation
				s.Drafted++
			}
		}

		outcome, err := im.sink.UpsertQuestion(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("upsert question %d: %w", idx, err)
		}
		switch outcome {
		case model.UpsertInserted:
			s.Inserted++
		case model.UpsertUpdated:
			s.Updated++
		case model.UpsertUnchanged:
			s.Unchanged++
		}
	}
	return s, nil
}
