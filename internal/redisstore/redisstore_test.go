package redisstore

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/pavelanni/exitexam/internal/exam"
	"github.com/pavelanni/exitexam/internal/model"
)

// newTestStore connects to the Redis named by EXITEXAM_TEST_REDIS_ADDR and
// isolates the test under a random key prefix.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	addr := os.Getenv("EXITEXAM_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("EXITEXAM_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Fatalf("ping redis: %v", err)
	}
	prefix := "exitexam-test:" + uuid.NewString() + ":"
	t.Cleanup(func() {
		iter := rdb.Scan(ctx, 0, prefix+"*", 100).Iterator()
		for iter.Next(ctx) {
			rdb.Del(ctx, iter.Val())
		}
		rdb.Close()
	})
	return NewFromClient(rdb, prefix)
}

func upsert(t *testing.T, s *Store, subject, text string) string {
	t.Helper()
	q := model.Question{
		Subject:       subject,
		Text:          text,
		Options:       []string{"A", "B"},
		CorrectAnswer: "A",
		Difficulty:    model.DifficultyEasy,
	}
	if _, err := s.UpsertQuestion(context.Background(), q); err != nil {
		t.Fatalf("UpsertQuestion: %v", err)
	}
	field := textIndexField(subject, text)
	id, err := s.client.HGet(context.Background(), s.textIndexKey(), field).Result()
	if err != nil {
		t.Fatalf("lookup id: %v", err)
	}
	return id
}

func TestUpsertQuestion(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	q := model.Question{Subject: "X", Text: "Q1", Options: []string{"A", "B"}, CorrectAnswer: "A", Difficulty: model.DifficultyEasy}
	steps := []struct {
		mutate func(*model.Question)
		want   model.UpsertOutcome
	}{
		{func(*model.Question) {}, model.UpsertInserted},
		{func(*model.Question) {}, model.UpsertUnchanged},
		{func(q *model.Question) { q.CorrectAnswer = "B" }, model.UpsertUpdated},
	}
	for i, st := range steps {
		st.mutate(&q)
		got, err := s.UpsertQuestion(ctx, q)
		if err != nil {
			t.Fatalf("step %d: UpsertQuestion: %v", i, err)
		}
		if got != st.want {
			t.Errorf("step %d: expected %s, got %s", i, st.want, got)
		}
	}

	count, err := s.QuestionCount(ctx)
	if err != nil {
		t.Fatalf("QuestionCount: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 question, got %d", count)
	}
}

func TestSampling(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	var ids []string
	for i := 0; i < 4; i++ {
		ids = append(ids, upsert(t, s, "X", fmt.Sprintf("Q%d", i)))
	}
	upsert(t, s, "Y", "other")

	qs, err := s.SampleRandom(ctx, exam.QuestionFilter{Subject: "X"}, 3)
	if err != nil {
		t.Fatalf("SampleRandom: %v", err)
	}
	if len(qs) != 3 {
		t.Fatalf("expected 3, got %d", len(qs))
	}
	for _, q := range qs {
		if q.Subject != "X" {
			t.Errorf("unexpected subject %s", q.Subject)
		}
	}

	for i := 0; i < 10; i++ {
		qs, err = s.SampleRandomExcluding(ctx, exam.QuestionFilter{Subject: "X"}, ids[:3], 1)
		if err != nil {
			t.Fatalf("SampleRandomExcluding: %v", err)
		}
		if len(qs) != 1 || qs[0].ID != ids[3] {
			t.Fatalf("expected %s, got %+v", ids[3], qs)
		}
	}

	got, err := s.FetchByIDs(ctx, []string{ids[0], uuid.NewString()})
	if err != nil {
		t.Fatalf("FetchByIDs: %v", err)
	}
	if len(got) != 1 || got[0].ID != ids[0] {
		t.Errorf("expected only %s, got %+v", ids[0], got)
	}

	counts, err := s.CountBySubject(ctx)
	if err != nil {
		t.Fatalf("CountBySubject: %v", err)
	}
	if len(counts) != 2 || counts[0].Count != 4 || counts[1].Count != 1 {
		t.Errorf("unexpected counts %+v", counts)
	}
}

func TestImportedFileHash(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	h, err := s.ImportedFileHash(ctx, "bank.json")
	if err != nil || h != "" {
		t.Fatalf("expected no hash, got %q, %v", h, err)
	}
	if err := s.SetImportedFileHash(ctx, "bank.json", "abc"); err != nil {
		t.Fatalf("SetImportedFileHash: %v", err)
	}
	h, err = s.ImportedFileHash(ctx, "bank.json")
	if err != nil || h != "abc" {
		t.Errorf("expected abc, got %q, %v", h, err)
	}
}
