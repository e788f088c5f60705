package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Migrate executes every *.sql file in dir in lexical order. Each file is
// sent as a single multi-statement batch, so files must be idempotent
// (CREATE ... IF NOT EXISTS, DROP ... IF EXISTS, INSERT IGNORE).
func Migrate(ctx context.Context, db *sql.DB, dir string) ([]string, error) {
	files, err := migrationFiles(dir)
	if err != nil {
		return nil, err
	}
	applied := make([]string, 0, len(files))
	for _, f := range files {
		body, err := os.ReadFile(f)
		if err != nil {
			return applied, fmt.Errorf("read %s: %w", f, err)
		}
		if strings.TrimSpace(string(body)) == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, string(body)); err != nil {
			return applied, fmt.Errorf("apply %s: %w", filepath.Base(f), err)
		}
		applied = append(applied, filepath.Base(f))
	}
	return applied, nil
}

func migrationFiles(dir string) ([]string, error) {
	st, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("migrations dir: %w", err)
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("migrations dir %s is not a directory", dir)
	}
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .sql files in %s", dir)
	}
	sort.Strings(files)
	return files, nil
}
