package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pavelanni/exitexam/internal/exam"
	"github.com/pavelanni/exitexam/internal/importer"
	"github.com/pavelanni/exitexam/internal/model"
	"github.com/pavelanni/exitexam/internal/redisstore"
	"github.com/pavelanni/exitexam/internal/store"
)

// questionStore is what every question bank backend provides.
type questionStore interface {
	exam.QuestionRepository
	importer.Sink
	CountBySubject(ctx context.Context) ([]model.SubjectCount, error)
	Ping(ctx context.Context) error
}

var (
	_ questionStore = (*store.Store)(nil)
	_ questionStore = (*redisstore.Store)(nil)
)

// addStorageFlags registers the database and question bank flags.
func addStorageFlags(f *pflag.FlagSet) {
	f.String("db-driver", string(store.DriverSQLite), "Database driver (sqlite, postgres)")
	f.String("db", "exitexam.db", "SQLite path or Postgres DSN")
	f.String("question-store", "sql", "Question bank backend (sql, redis)")
	f.String("redis-addr", "localhost:6379", "Redis address for --question-store redis")
	f.String("redis-password", "", "Redis password")
	f.Int("redis-db", 0, "Redis database number")
}

// backends holds the opened stores. Results always live in the SQL store.
type backends struct {
	db        *store.Store
	questions questionStore
	redis     *redisstore.Store
}

func openBackends(ctx context.Context, v *viper.Viper) (*backends, error) {
	db, err := store.Open(ctx, store.Driver(v.GetString("db-driver")), v.GetString("db"))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	b := &backends{db: db, questions: db}

	switch kind := v.GetString("question-store"); kind {
	case "sql", "":
	case "redis":
		rs, err := redisstore.New(ctx, v.GetString("redis-addr"), v.GetString("redis-password"), v.GetInt("redis-db"))
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("open redis: %w", err)
		}
		b.redis = rs
		b.questions = rs
	default:
		db.Close()
		return nil, fmt.Errorf("unsupported question store: %s", kind)
	}

	slog.Debug("opened backends", "db_driver", v.GetString("db-driver"), "question_store", v.GetString("question-store"))
	return b, nil
}

func (b *backends) Close() error {
	var errs []error
	if b.redis != nil {
		errs = append(errs, b.redis.Close())
	}
	errs = append(errs, b.db.Close())
	return errors.Join(errs...)
}

// logBankCounts reports the bank size for each configured subject.
func logBankCounts(ctx context.Context, qs questionStore, subjects []string) (map[string]int, error) {
	counts, err := qs.CountBySubject(ctx)
	if err != nil {
		return nil, fmt.Errorf("count questions: %w", err)
	}
	bySubject := make(map[string]int, len(counts))
	for _, c := range counts {
		bySubject[c.Subject] = c.Count
	}
	for _, s := range subjects {
		if bySubject[s] == 0 {
			slog.Warn("no questions for subject", "subject", s)
			continue
		}
		slog.Debug("question bank", "subject", s, "count", bySubject[s])
	}
	return bySubject, nil
}
