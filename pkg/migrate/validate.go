package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var migrationFileRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)

const (
	markerUp         = "-- +goose Up"
	markerDown       = "-- +goose Down"
	markerStmtBegin  = "-- +goose StatementBegin"
	markerStmtFinish = "-- +goose StatementEnd"
)

// ValidateDir checks every .sql file in dir: timestamped snake_case name,
// unique version, Up before Down, and balanced statement blocks.
func ValidateDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return fmt.Errorf("dir is required")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read dir %q: %w", dir, err)
	}

	versions := make(map[string]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".sql" {
			continue
		}
		match := migrationFileRe.FindStringSubmatch(name)
		if match == nil {
			return fmt.Errorf("invalid migration filename %q (want YYYYMMDDHHMMSS_name.sql)", name)
		}
		if prev, dup := versions[match[1]]; dup {
			return fmt.Errorf("version %s used by both %q and %q", match[1], prev, name)
		}
		versions[match[1]] = name

		body, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("read %q: %w", name, err)
		}
		if err := checkMigrationBody(string(body)); err != nil {
			return fmt.Errorf("migration %q: %w", name, err)
		}
	}
	if len(versions) == 0 {
		return fmt.Errorf("no migrations found in %q", dir)
	}
	return nil
}

func checkMigrationBody(body string) error {
	up := strings.Index(body, markerUp)
	down := strings.Index(body, markerDown)
	switch {
	case up < 0:
		return fmt.Errorf("missing %q", markerUp)
	case down < 0:
		return fmt.Errorf("missing %q", markerDown)
	case down < up:
		return fmt.Errorf("down section precedes up")
	}

	depth := 0
	for _, line := range strings.Split(body, "\n") {
		switch strings.TrimSpace(line) {
		case markerStmtBegin:
			depth++
			if depth > 1 {
				return fmt.Errorf("nested %q", markerStmtBegin)
			}
		case markerStmtFinish:
			depth--
			if depth < 0 {
				return fmt.Errorf("%q without a matching begin", markerStmtFinish)
			}
		}
	}
	if depth != 0 {
		return fmt.Errorf("unterminated %q", markerStmtBegin)
	}
	return nil
}
