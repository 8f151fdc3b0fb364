package metrics

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// StatsSource provides functions to retrieve current counts for gauge metrics.
// Nil functions are skipped.
type StatsSource struct {
	RegisteredCount  func() int
	BlockedCount     func() int
	BannedEmailCount func() int
	VoiceCount       func() int
	UnderReviewCount func() int
	PendingJoinCount func() int
}

// StartCollector launches a goroutine that periodically updates gauge metrics.
// It runs every interval until the context is cancelled.
func StartCollector(ctx context.Context, src StatsSource, interval time.Duration) {
	// Do an initial collection immediately
	collect(src)

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				collect(src)
			}
		}
	}()

	log.Info().Dur("interval", interval).Msg("Metrics collector started")
}

func collect(src StatsSource) {
	if src.RegisteredCount != nil {
		RegisteredUsersTotal.Set(float64(src.RegisteredCount()))
	}
	if src.BlockedCount != nil {
		BlockedUsersTotal.Set(float64(src.BlockedCount()))
	}
	if src.BannedEmailCount != nil {
		BannedEmailsTotal.Set(float64(src.BannedEmailCount()))
	}
	if src.VoiceCount != nil {
		VoicesTotal.Set(float64(src.VoiceCount()))
	}
	if src.UnderReviewCount != nil {
		VoicesUnderReview.Set(float64(src.UnderReviewCount()))
	}
	if src.PendingJoinCount != nil {
		JoinRequestsPending.Set(float64(src.PendingJoinCount()))
	}
}
