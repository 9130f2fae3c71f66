package loan

import (
	"context"
	"time"
)

// RunOverdueSweeper sweeps on every tick until ctx is cancelled.
func (u *Usecase) RunOverdueSweeper(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			res, err := u.SweepNow(ctx)
			if err != nil {
				u.log.Error("overdue sweep failed", "err", err)
				continue
			}
			if n := len(res.Overdue); n > 0 {
				u.log.Info("overdue sweep", "transitioned", n)
			}
		}
	}
}
