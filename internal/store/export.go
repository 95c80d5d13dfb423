package store

import (
	"context"
	"fmt"
	"time"

	"github.com/pavelanni/exitexam/internal/model"
)

// ExportResults builds the export document for every stored result,
// newest first.
func (s *Store) ExportResults(ctx context.Context, examType, title string, now time.Time) (*model.ResultExport, error) {
	results, err := s.ListResults(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	if results == nil {
		results = []model.Result{}
	}
	return &model.ResultExport{
		ExamType:   examType,
		Title:      title,
		ExportedAt: now.UTC(),
		Count:      len(results),
		Results:    results,
	}, nil
}
