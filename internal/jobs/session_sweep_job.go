package job

import (
	"context"
	"log/slog"
	"time"

	"github.com/maheshrc27/social-api/internal/repository"
)

// SessionSweepJob clears refresh tokens past their expiry so stored
// sessions match what verification would accept.
type SessionSweepJob struct {
	u   repository.AccountRepository
	now func() time.Time
}

func NewSessionSweepJob(u repository.AccountRepository) *SessionSweepJob {
	return &SessionSweepJob{
		u:   u,
		now: time.Now,
	}
}

func (c *SessionSweepJob) Sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cleared, err := c.u.ClearExpiredRefreshTokens(ctx, c.now())
	if err != nil {
		slog.Info("unable to sweep expired sessions", "error", err)
		return
	}
	if cleared > 0 {
		slog.Info("expired sessions cleared", "count", cleared)
	}
}
