// Package background runs maintenance goroutines that live alongside the HTTP server.
package background

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
)

// ScratchSweeper deletes upload scratch files that outlived their request, e.g. because
// the process crashed between saving a file and handing it to the media host.
type ScratchSweeper struct {
	Dir      string
	Interval time.Duration
	MaxAge   time.Duration
	Log      zerolog.Logger

	now func() time.Time
}

// Start launches the sweep loop. It sweeps once immediately, then on every tick, until
// stopChan is closed. The returned WaitGroup is done once the loop has exited.
func (s *ScratchSweeper) Start(stopChan <-chan struct{}) *sync.WaitGroup {
	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()
		defer s.Log.Info().Msg("scratch sweeper stopped")

		ticker := time.NewTicker(s.Interval)
		defer ticker.Stop()

		s.sweepAndLog()
		for {
			select {
			case <-ticker.C:
				s.sweepAndLog()
			case <-stopChan:
				return
			}
		}
	}()

	s.Log.Info().Str("dir", s.Dir).Dur("interval", s.Interval).Dur("max_age", s.MaxAge).Msg("scratch sweeper started")
	return &wg
}

func (s *ScratchSweeper) sweepAndLog() {
	removed, err := s.Sweep()
	if err != nil {
		s.Log.Warn().Err(err).Str("dir", s.Dir).Msg("scratch sweep failed")
		return
	}
	if removed > 0 {
		s.Log.Info().Int("removed", removed).Msg("removed stale scratch files")
	}
}

// Sweep removes regular files directly under Dir whose modification time is older than
// MaxAge. A missing directory is not an error.
func (s *ScratchSweeper) Sweep() (int, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}

	now := time.Now
	if s.now != nil {
		now = s.now
	}
	cutoff := now().Add(-s.MaxAge)

	removed := 0
	var result *multierror.Error
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// Removed by its own request while we were listing.
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.Dir, entry.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
			result = multierror.Append(result, err)
			continue
		}
		removed++
	}
	return removed, result.ErrorOrNil()
}
