// Package portfolio owns the loaded portfolio snapshot and the read-side
// queries served to the explorer views.
package portfolio

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"sync"

	"golang.org/x/sync/singleflight"

	domain "github.com/ben-daghir/hercap/internal/domain/portfolio"
	"github.com/ben-daghir/hercap/internal/infrastructure/monitoring/logging"
	"github.com/ben-daghir/hercap/pkg/errors"
)

// Fetcher returns the parsed company list.  feed.Loader implements it.
type Fetcher interface {
	Load(ctx context.Context) ([]domain.Company, error)
}

// Snapshot is the store's observable state.  Before settlement Loading is
// true and Data is empty; afterwards exactly one of Data or Err is
// meaningful.
type Snapshot struct {
	Data    []domain.Company
	Loading bool
	Err     error
}

// Settled reports whether the load has finished.
func (s Snapshot) Settled() bool { return !s.Loading }

// Ready reports whether the load finished successfully.
func (s Snapshot) Ready() bool { return !s.Loading && s.Err == nil }

// ErrorMessage is the user-facing failure text, or "" when there is none.
func (s Snapshot) ErrorMessage() string {
	if s.Err == nil {
		return ""
	}
	var ae *errors.AppError
	if stderrors.As(s.Err, &ae) {
		return ae.Message
	}
	return s.Err.Error()
}

type snapshotJSON struct {
	Data    []domain.Company `json:"data"`
	Loading bool             `json:"loading"`
	Error   *string          `json:"error"`
}

// MarshalJSON renders the {data, loading, error} shape the views consume.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	out := snapshotJSON{Data: s.Data, Loading: s.Loading}
	if out.Data == nil {
		out.Data = []domain.Company{}
	}
	if msg := s.ErrorMessage(); msg != "" {
		out.Error = &msg
	}
	return json.Marshal(out)
}

// Store loads the portfolio at most once.  Concurrent Load calls share the
// same fetch and every later call returns the settled result, including a
// failure: a FetchError is terminal for the store's lifetime.
type Store struct {
	fetcher Fetcher
	logger  logging.Logger

	group singleflight.Group
	done  chan struct{}

	mu    sync.RWMutex
	state Snapshot
}

func NewStore(fetcher Fetcher, log logging.Logger) *Store {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Store{
		fetcher: fetcher,
		logger:  log.Named("portfolio.store"),
		done:    make(chan struct{}),
		state:   Snapshot{Data: []domain.Company{}, Loading: true},
	}
}

// Load triggers the fetch if it has not run yet and waits for settlement.
// Cancelling ctx abandons the wait only; the fetch itself runs to completion
// and settles the store for everyone else.
func (s *Store) Load(ctx context.Context) (Snapshot, error) {
	if snap := s.Snapshot(); snap.Settled() {
		return snap, snap.Err
	}

	ch := s.group.DoChan("load", func() (interface{}, error) {
		if snap := s.Snapshot(); snap.Settled() {
			return nil, nil
		}
		companies, err := s.fetcher.Load(context.WithoutCancel(ctx))
		s.settle(companies, err)
		return nil, nil
	})

	select {
	case <-ch:
		snap := s.Snapshot()
		return snap, snap.Err
	case <-ctx.Done():
		return s.Snapshot(), ctx.Err()
	}
}

// Start runs Load in the background.
func (s *Store) Start(ctx context.Context) {
	go func() {
		if _, err := s.Load(ctx); err != nil && ctx.Err() == nil {
			s.logger.Warn("portfolio load failed", logging.Err(err))
		}
	}()
}

func (s *Store) settle(companies []domain.Company, err error) {
	s.mu.Lock()
	if err != nil {
		s.state = Snapshot{Data: []domain.Company{}, Err: err}
	} else {
		if companies == nil {
			companies = []domain.Company{}
		}
		s.state = Snapshot{Data: companies}
	}
	s.mu.Unlock()
	close(s.done)

	if err != nil {
		s.logger.Error("portfolio store settled with error", logging.Err(err))
		return
	}
	s.logger.Info("portfolio store ready", logging.Int("companies", len(companies)))
}

// Snapshot returns the current state.  Data is shared and must not be
// modified.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Done is closed once the store has settled.
func (s *Store) Done() <-chan struct{} { return s.done }

// Ready reports whether the data loaded successfully.
func (s *Store) Ready() bool { return s.Snapshot().Ready() }

// Subscribe delivers the settled snapshot once.  If ctx ends first the
// channel is closed without a value, so a consumer that has gone away never
// sees the late result.
func (s *Store) Subscribe(ctx context.Context) <-chan Snapshot {
	out := make(chan Snapshot, 1)
	go func() {
		defer close(out)
		select {
		case <-s.done:
			if ctx.Err() == nil {
				out <- s.Snapshot()
			}
		case <-ctx.Done():
		}
	}()
	return out
}

// Companies implements domain.CompanyReader.  It does not trigger a load.
func (s *Store) Companies(ctx context.Context) ([]domain.Company, error) {
	snap := s.Snapshot()
	switch {
	case snap.Loading:
		return nil, errors.New(errors.ErrCodeFeedNotReady, "portfolio is still loading")
	case snap.Err != nil:
		return nil, snap.Err
	}
	return snap.Data, nil
}

var _ domain.CompanyReader = (*Store)(nil)

//Personal.AI order the ending
