package merger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/campwatch/campwatch/internal"
)

type Option func(*Merger)

func WithLogger(logger *zap.Logger) Option {
	return func(m *Merger) {
		m.logger = logger
	}
}

func WithRepository(repo internal.Repository) Option {
	return func(m *Merger) {
		m.repo = repo
	}
}

// Stats summarizes one merge.
type Stats struct {
	NumArtifacts int
	NumMerged    int
	NumSkipped   int
	Key          string
}

// Merger combines every fetch artifact into one JSON object keyed by
// facility ID. Availability documents are opaque: their raw bytes are
// spliced into the output untouched rather than decoded and re-encoded,
// so payload formatting survives the merge verbatim.
type Merger struct {
	logger *zap.Logger
	repo   internal.Repository
}

func New(opts ...Option) *Merger {
	m := &Merger{
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// MergeAll rebuilds the merged index for month from whatever artifacts
// currently exist and publishes it atomically. Empty or invalid artifacts
// are skipped with a warning; zero usable artifacts yield the empty object.
// The same artifact set always produces byte-identical output.
func (m *Merger) MergeAll(ctx context.Context, month internal.Month) (*Stats, error) {
	keys, err := m.repo.List(ctx, internal.ArtifactPrefix())
	if err != nil {
		return nil, fmt.Errorf("listing artifacts: %w", err)
	}

	stats := &Stats{
		NumArtifacts: len(keys),
		Key:          month.IndexKey(),
	}

	var buf bytes.Buffer
	buf.WriteByte('{')

	// keys come back lexicographically sorted, so output is deterministic.
	for _, key := range keys {
		facilityID, ok := internal.FacilityIDFromKey(key)
		if !ok {
			continue
		}

		doc, err := m.repo.Read(ctx, key)
		if err != nil {
			m.logger.Warn("skipping unreadable artifact",
				zap.String("key", key),
				zap.Error(err),
			)
			stats.NumSkipped++
			continue
		}

		if len(doc) == 0 || !json.Valid(doc) {
			m.logger.Warn("skipping corrupt artifact",
				zap.String("key", key),
				zap.Int("size", len(doc)),
			)
			stats.NumSkipped++
			continue
		}

		if stats.NumMerged > 0 {
			buf.WriteByte(',')
		}

		quotedID, err := json.Marshal(facilityID)
		if err != nil {
			return nil, err
		}
		buf.Write(quotedID)
		buf.WriteByte(':')
		buf.Write(doc)

		stats.NumMerged++
	}

	buf.WriteByte('}')

	if err := m.repo.Write(ctx, stats.Key, &buf); err != nil {
		return nil, fmt.Errorf("publishing merged index: %w", err)
	}

	m.logger.Info("merged index published",
		zap.String("key", stats.Key),
		zap.Int("merged", stats.NumMerged),
		zap.Int("skipped", stats.NumSkipped),
	)

	return stats, nil
}
