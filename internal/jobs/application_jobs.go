package jobs

import (
	"context"
	"time"

	"membership-backend/internal/logger"
)

// sweepTimeout bounds a single sweep run so a stuck database cannot pile up cron invocations.
const sweepTimeout = 10 * time.Minute

// SweepExpiredApplications moves overdue PENDING applications to EXPIRED.
// Reads expire lazily as well; the sweep keeps listings and audit history current.
func (jr *JobRunner) SweepExpiredApplications() {
	jr.runWithRecovery("SweepExpiredApplications", func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()

		count, err := jr.services.Applications.SweepExpiredApplications(ctx)
		if err != nil {
			logger.Error("Failed to sweep expired applications", "error", err, "expired", count)
			return
		}
		logger.Info("Expired overdue applications", "count", count)
	})
}
