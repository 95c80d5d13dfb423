package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"

	"github.com/pavelanni/exitexam/internal/exam"
	"github.com/pavelanni/exitexam/internal/handler"
	appI18n "github.com/pavelanni/exitexam/internal/i18n"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP exam server",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.StringP("lang", "l", "en", "Default language for messages (en, ru)")
	f.StringSlice("cors-origins", []string{"http://localhost:3000"}, "Allowed CORS origins")
	addExamFlags(f)
	addStorageFlags(f)
	addLogFlags(f)
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	v := commandSetup(cmd)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	b, err := openBackends(ctx, v)
	if err != nil {
		return err
	}
	defer b.Close()

	examCfg := examConfigFrom(v)
	if err := exam.ValidateRules(examCfg.Subjects, examCfg.Rules); err != nil {
		// Start requests will report the same error; keep serving results.
		slog.Error("invalid exam configuration", "error", err)
	}
	if _, err := logBankCounts(ctx, b.questions, examCfg.Subjects); err != nil {
		return err
	}

	svc := exam.NewService(b.questions, b.db, nil)
	pingers := []handler.Pinger{b.db}
	if b.redis != nil {
		pingers = append(pingers, b.redis)
	}
	h := handler.New(svc, examCfg, pingers...)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: v.GetStringSlice("cors-origins"),
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Accept-Language", "Content-Type"},
		ExposedHeaders: []string{"Content-Length"},
		MaxAge:         300,
	}))
	r.Use(appI18n.Middleware(lang))
	h.Routes(r)

	addr := v.GetString("addr")
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("starting server",
		"addr", addr,
		"lang", lang,
		"exam_type", examCfg.ExamType,
		"subjects", len(examCfg.Subjects),
		"base_per_subject", examCfg.Rules.BaseQuestionsPerSubject,
		"extra_total", examCfg.Rules.ExtraQuestionsTotal,
		"duration", examCfg.DurationMinutes,
		"question_store", v.GetString("question-store"),
	)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
