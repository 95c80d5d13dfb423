package store

import (
	"context"
	"database/sql"
)

// SetMetadata upserts a key-value pair in the exam_metadata table.
func (s *Store) SetMetadata(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO exam_metadata (key, value) VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// GetMetadata returns the value for a metadata key.
// Returns empty string and nil error if the key is missing.
func (s *Store) GetMetadata(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM exam_metadata WHERE key = $1`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

func importHashKey(name string) string {
	return "import_sha256:" + name
}

// ImportedFileHash returns the content hash recorded for a seed file, or ""
// if the file was never imported.
func (s *Store) ImportedFileHash(ctx context.Context, name string) (string, error) {
	return s.GetMetadata(ctx, importHashKey(name))
}

// SetImportedFileHash records the content hash of an imported seed file.
func (s *Store) SetImportedFileHash(ctx context.Context, name, hash string) error {
	return s.SetMetadata(ctx, importHashKey(name), hash)
}
