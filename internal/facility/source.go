package facility

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
)

type Option func(*Source)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Source) {
		s.logger = logger
	}
}

// Source reads facility IDs from the first column of a header-having CSV,
// e.g. the download.csv produced by the RIDB builder.
type Source struct {
	path   string
	logger *zap.Logger
}

func NewSource(path string, opts ...Option) *Source {
	s := &Source{
		path:   path,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IDs returns the facility IDs in file order. The header row, blank
// entries, and repeated IDs are dropped; the first occurrence wins.
func (s *Source) IDs() ([]string, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("opening facility list: %w", err)
	}
	defer f.Close()

	return ReadIDs(f)
}

func ReadIDs(r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var (
		ids    []string
		seen   = map[string]struct{}{}
		header = true
	)

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading facility list: %w", err)
		}

		if header {
			header = false
			continue
		}

		if len(row) == 0 {
			continue
		}

		id := strings.TrimSpace(row[0])
		if id == "" {
			continue
		}

		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	return ids, nil
}
