package model

import "time"

// ResultExport is the top-level JSON structure for result export.
type ResultExport struct {
	ExamType   string    `json:"examType"`
	Title      string    `json:"title"`
	ExportedAt time.Time `json:"exportedAt"`
	Count      int       `json:"count"`
	Results    []Result  `json:"results"`
}

// SubjectCount is the number of bank questions available for a subject.
type SubjectCount struct {
	Subject Subject `json:"subject"`
	Count   int     `json:"count"`
}

// UpsertOutcome tells what an upsert did to the stored question.
type UpsertOutcome string

const (
	UpsertInserted  UpsertOutcome = "inserted"
	UpsertUpdated   UpsertOutcome = "updated"
	UpsertUnchanged UpsertOutcome = "unchanged"
)
