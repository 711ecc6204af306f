package websites

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Load reads id,url pairs. Keys are lower-cased facility ids. A duplicate
// id, or a row missing its id or url, fails the whole load.
func Load(r io.Reader) (map[string]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	websites := map[string]string{}
	line := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read websites csv: %w", err)
		}
		line++

		id, url := field(record, 0), field(record, 1)
		if line == 1 && strings.EqualFold(id, "id") && strings.EqualFold(url, "url") {
			continue
		}
		if id == "" || url == "" {
			return nil, fmt.Errorf("websites csv line %d: missing id or url", line)
		}
		key := strings.ToLower(id)
		if _, exists := websites[key]; exists {
			return nil, fmt.Errorf("websites csv line %d: duplicate id %s", line, id)
		}
		websites[key] = url
	}
	return websites, nil
}

func field(record []string, i int) string {
	if i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// FileLoader reads the website table from disk on every call, so each
// collection run sees the current file.
type FileLoader struct {
	path string
}

// NewFileLoader creates a loader for path
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{path: path}
}

// Websites loads the website table
func (l *FileLoader) Websites(ctx context.Context) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open websites csv: %w", err)
	}
	defer f.Close()
	return Load(f)
}
