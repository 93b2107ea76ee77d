// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"time"

	"github.com/MKhiriev/go-blog/internal/logger"
)

const defaultSweepInterval = time.Hour

type sessionSweeper struct {
	purger   SessionPurger
	interval time.Duration
	logger   *logger.Logger
}

// NewSessionSweeper returns a Worker that deletes expired sessions once on
// start and then every interval. A non-positive interval means one hour.
func NewSessionSweeper(purger SessionPurger, interval time.Duration, logger *logger.Logger) Worker {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	return &sessionSweeper{
		purger:   purger,
		interval: interval,
		logger:   logger,
	}
}

func (s *sessionSweeper) Run(ctx context.Context) {
	ctx = s.logger.WithContext(ctx)
	s.logger.Info().Str("func", "sessionSweeper.Run").Dur("interval", s.interval).Msg("session sweeper started")

	s.sweep(ctx)

	t := time.NewTicker(s.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Str("func", "sessionSweeper.Run").Msg("session sweeper stopped")
			return
		case <-t.C:
			s.sweep(ctx)
		}
	}
}

func (s *sessionSweeper) sweep(ctx context.Context) {
	purged, err := s.purger.PurgeExpiredSessions(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Err(err).Str("func", "sessionSweeper.sweep").Msg("failed to purge expired sessions")
		}
		return
	}
	if purged > 0 {
		s.logger.Info().Str("func", "sessionSweeper.sweep").Int64("purged", purged).Msg("expired sessions purged")
	}
}
