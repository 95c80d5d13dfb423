// Package redisstore keeps the question bank in Redis: one JSON value per
// question plus a set of question ids per subject for random sampling.
package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sort"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/pavelanni/exitexam/internal/exam"
	"github.com/pavelanni/exitexam/internal/model"
)

// DefaultPrefix namespaces every key the store writes.
const DefaultPrefix = "exitexam:"

type Store struct {
	client *redis.Client
	prefix string
}

// New connects to Redis and checks the connection.
func New(ctx context.Context, addr, password string, db int) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return NewFromClient(rdb, DefaultPrefix), nil
}

// NewFromClient wraps an existing client. Keys are prefixed with prefix.
func NewFromClient(client *redis.Client, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

func (s *Store) Close() error {
	return s.client.Close()
}

// Ping checks that Redis is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) questionKey(id string) string { return s.prefix + "question:" + id }
func (s *Store) subjectKey(subject string) string { return s.prefix + "subject:" + subject }
func (s *Store) subjectsKey() string { return s.prefix + "subjects" }
func (s *Store) textIndexKey() string { return s.prefix + "question_index" }
func (s *Store) importsKey() string { return s.prefix + "imports" }

func textIndexField(subject, text string) string {
	return subject + "\x00" + text
}

// load reads questions by id. Missing keys are skipped.
func (s *Store) load(ctx context.Context, ids []string) ([]model.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.questionKey(id)
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("mget questions: %w", err)
	}
	questions := make([]model.Question, 0, len(vals))
	for i, v := range vals {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var q model.Question
		if err := json.Unmarshal([]byte(str), &q); err != nil {
			return nil, fmt.Errorf("decode question %s: %w", ids[i], err)
		}
		questions = append(questions, q)
	}
	return questions, nil
}

// SampleRandom returns up to size random questions matching f.
func (s *Store) SampleRandom(ctx context.Context, f exam.QuestionFilter, size int) ([]model.Question, error) {
	if size <= 0 {
		return nil, nil
	}
	ids, err := s.client.SRandMemberN(ctx, s.subjectKey(f.Subject), int64(size)).Result()
	if err != nil {
		return nil, fmt.Errorf("srandmember %q: %w", f.Subject, err)
	}
	return s.load(ctx, ids)
}

// SampleRandomExcluding is SampleRandom restricted to ids outside exclude.
// SRANDMEMBER with a positive count returns distinct members, so asking for
// size+len(exclude) always leaves size eligible ids when the set has them.
func (s *Store) SampleRandomExcluding(ctx context.Context, f exam.QuestionFilter, exclude []string, size int) ([]model.Question, error) {
	if size <= 0 {
		return nil, nil
	}
	ids, err := s.client.SRandMemberN(ctx, s.subjectKey(f.Subject), int64(size+len(exclude))).Result()
	if err != nil {
		return nil, fmt.Errorf("srandmember %q: %w", f.Subject, err)
	}
	eligible := make([]string, 0, size)
	for _, id := range ids {
		if len(eligible) == size {
			break
		}
		if !slices.Contains(exclude, id) {
			eligible = append(eligible, id)
		}
	}
	return s.load(ctx, eligible)
}

// FetchByIDs returns the questions with the given ids. Unknown ids are
// silently absent from the result.
func (s *Store) FetchByIDs(ctx context.Context, ids []string) ([]model.Question, error) {
	return s.load(ctx, ids)
}

// UpsertQuestion inserts q, or updates the question with the same subject and
// text.
func (s *Store) UpsertQuestion(ctx context.Context, q model.Question) (model.UpsertOutcome, error) {
	field := textIndexField(q.Subject, q.Text)
	existingID, err := s.client.HGet(ctx, s.textIndexKey(), field).Result()
	if err != nil && err != redis.Nil {
		return "", fmt.Errorf("lookup question: %w", err)
	}

	outcome := model.UpsertInserted
	if existingID != "" {
		existing, err := s.load(ctx, []string{existingID})
		if err != nil {
			return "", err
		}
		if len(existing) == 1 {
			e := existing[0]
			if slices.Equal(e.Options, q.Options) && e.CorrectAnswer == q.CorrectAnswer &&
				e.Difficulty == q.Difficulty && e.Explanation == q.Explanation {
				return model.UpsertUnchanged, nil
			}
			outcome = model.UpsertUpdated
		}
		q.ID = existingID
	} else if q.ID == "" {
		q.ID = uuid.NewString()
	}

	data, err := json.Marshal(q)
	if err != nil {
		return "", fmt.Errorf("encode question: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.questionKey(q.ID), data, 0)
		pipe.SAdd(ctx, s.subjectKey(q.Subject), q.ID)
		pipe.SAdd(ctx, s.subjectsKey(), q.Subject)
		pipe.HSet(ctx, s.textIndexKey(), field, q.ID)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("store question: %w", err)
	}
	return outcome, nil
}

// QuestionCount returns the number of stored questions.
func (s *Store) QuestionCount(ctx context.Context) (int, error) {
	n, err := s.client.HLen(ctx, s.textIndexKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return int(n), nil
}

// CountBySubject returns the bank size per subject, ordered by subject.
func (s *Store) CountBySubject(ctx context.Context) ([]model.SubjectCount, error) {
	subjects, err := s.client.SMembers(ctx, s.subjectsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	sort.Strings(subjects)

	cmds := make([]*redis.IntCmd, len(subjects))
	_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, subject := range subjects {
			cmds[i] = pipe.SCard(ctx, s.subjectKey(subject))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("count subjects: %w", err)
	}
	counts := make([]model.SubjectCount, len(subjects))
	for i, subject := range subjects {
		counts[i] = model.SubjectCount{Subject: subject, Count: int(cmds[i].Val())}
	}
	return counts, nil
}

// ImportedFileHash returns the content hash recorded for a seed file, or ""
// if the file was never imported.
func (s *Store) ImportedFileHash(ctx context.Context, name string) (string, error) {
	h, err := s.client.HGet(ctx, s.importsKey(), name).Result()
	if err == redis.Nil {
		return "", nil
	}
	return h, err
}

// SetImportedFileHash records the content hash of an imported seed file.
func (s *Store) SetImportedFileHash(ctx context.Context, name, hash string) error {
	return s.client.HSet(ctx, s.importsKey(), name, hash).Err()
}
