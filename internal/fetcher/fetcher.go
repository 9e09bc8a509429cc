package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/campwatch/campwatch/internal"
	"github.com/campwatch/campwatch/internal/catalog"
)

type Outcome string

const (
	OutcomeDone    Outcome = "done"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// FailurePolicy decides what a transport failure for one facility does to
// the rest of the run.
type FailurePolicy string

const (
	// FailAbort stops the run on the first failure. Artifacts written so
	// far stay in place, so the next run resumes where this one stopped.
	FailAbort FailurePolicy = "abort"

	// FailRetry retries each facility with bounded backoff and continues
	// past facilities that still fail, recording them in the catalog.
	FailRetry FailurePolicy = "retry"
)

// ProgressFunc observes per-facility progress without coupling the fetcher
// to a logging mechanism.
type ProgressFunc func(index, total int, facilityID string, outcome Outcome)

type Option func(*Fetcher)

func WithLogger(logger *zap.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

func WithClient(client *Client) Option {
	return func(f *Fetcher) {
		f.client = client
	}
}

func WithRepository(repo internal.Repository) Option {
	return func(f *Fetcher) {
		f.repo = repo
	}
}

func WithLimiter(limiter Limiter) Option {
	return func(f *Fetcher) {
		f.limiter = limiter
	}
}

func WithWorkers(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.workers = n
		}
	}
}

func WithFailurePolicy(policy FailurePolicy) Option {
	return func(f *Fetcher) {
		f.policy = policy
	}
}

func WithMaxRetries(n int) Option {
	return func(f *Fetcher) {
		f.maxRetries = n
	}
}

func WithProgress(fn ProgressFunc) Option {
	return func(f *Fetcher) {
		f.progress = fn
	}
}

// Fetcher retrieves one availability document per facility and persists
// each as an artifact in the repository. Completed artifacts are the only
// record of progress: a facility whose artifact exists and is non-empty is
// never fetched again.
type Fetcher struct {
	logger     *zap.Logger
	client     *Client
	repo       internal.Repository
	limiter    Limiter
	workers    int
	policy     FailurePolicy
	maxRetries int
	progress   ProgressFunc
}

func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		logger:     zap.NewNop(),
		limiter:    NewIntervalLimiter(600 * time.Millisecond),
		workers:    1,
		policy:     FailAbort,
		maxRetries: 3,
	}

	for _, opt := range opts {
		opt(f)
	}

	if f.client == nil {
		f.client = NewClient(DefaultBaseURL, 30*time.Second)
	}

	if f.progress == nil {
		f.progress = func(index, total int, facilityID string, outcome Outcome) {
			f.logger.Info("fetch",
				zap.Int("index", index),
				zap.Int("total", total),
				zap.String("facility_id", facilityID),
				zap.String("outcome", string(outcome)),
			)
		}
	}

	return f
}

// FetchAll fetches month availability for every facility that does not yet
// have an artifact. The returned catalog summarizes the run even when the
// run aborts.
func (f *Fetcher) FetchAll(ctx context.Context, facilityIDs []string, month internal.Month) (*catalog.Catalog, error) {
	var ids []string
	for _, id := range facilityIDs {
		if strings.TrimSpace(id) != "" {
			ids = append(ids, id)
		}
	}

	cat := &catalog.Catalog{
		RunID:         uuid.NewString(),
		Month:         month.String(),
		StartTime:     time.Now().UTC(),
		NumFacilities: len(ids),
	}

	var mu sync.Mutex
	total := len(ids)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.workers)

	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			outcome, err := f.fetchOne(gctx, id, month)

			mu.Lock()
			switch outcome {
			case OutcomeDone:
				cat.NumFetched++
			case OutcomeSkipped:
				cat.NumSkipped++
			case OutcomeFailed:
				cat.NumFailed++
				cat.FailedIDs = append(cat.FailedIDs, id)
			}
			mu.Unlock()

			f.progress(i+1, total, id, outcome)

			if err != nil && f.policy == FailAbort {
				return err
			}
			if err != nil {
				f.logger.Warn("fetch failed, continuing",
					zap.String("facility_id", id),
					zap.Error(err),
				)
			}
			return nil
		})
	}

	runErr := g.Wait()

	cat.EndTime = time.Now().UTC()
	cat.Completed = runErr == nil && cat.NumFailed == 0

	if err := cat.Save(ctx, f.repo); err != nil {
		f.logger.Warn("saving run catalog", zap.Error(err))
	}

	if runErr != nil {
		return cat, runErr
	}
	if cat.NumFailed > 0 {
		return cat, fmt.Errorf("%d of %d facilities failed", cat.NumFailed, total)
	}
	return cat, nil
}

func (f *Fetcher) fetchOne(ctx context.Context, facilityID string, month internal.Month) (Outcome, error) {
	key := internal.ArtifactKey(facilityID)

	ok, err := f.repo.Exists(ctx, key)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("checking artifact %s: %w", key, err)
	}
	if ok {
		return OutcomeSkipped, nil
	}

	transfer := func() error {
		// The limiter is consulted before every attempt, retries included,
		// so backoff never slips past the global rate budget.
		if err := f.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}

		body, err := f.client.MonthlyAvailability(ctx, facilityID, month)
		if err != nil {
			return err
		}

		return f.repo.Write(ctx, key, bytes.NewReader(body))
	}

	if f.policy == FailRetry {
		b := backoff.WithContext(
			backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(f.maxRetries)),
			ctx,
		)
		err = backoff.Retry(transfer, b)
	} else {
		err = transfer()
	}

	if err != nil {
		return OutcomeFailed, err
	}
	return OutcomeDone, nil
}
