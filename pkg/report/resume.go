package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

// LoadResumeSet extracts the already-moved source paths from a previous
// report: rows labelled MOVED or MOVED_RENAMED. Header, PARAMETER and
// NOT_FOUND rows carry other labels and fall through naturally. Short or
// malformed rows (an interrupted run can leave a partial final line) are
// ignored rather than failing the load.
func LoadResumeSet(path string) (map[string]bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open resume report: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	set := make(map[string]bool)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				continue
			}
			return nil, fmt.Errorf("failed to read resume report: %w", err)
		}
		if len(row) < 4 {
			continue
		}
		if row[2] == LabelMoved || row[2] == LabelMovedRenamed {
			set[row[3]] = true
		}
	}

	return set, nil
}
