package jobs

import (
	"log/slog"
	"time"

	"github.com/RahulEdward/pinegeniev2-sub011/database"
	"github.com/RahulEdward/pinegeniev2-sub011/internal/domain/tokens"

	"github.com/robfig/cron/v3"
)

// Start schedules the ledger maintenance jobs and returns the running
// scheduler so main can Stop() it on shutdown.
func Start(log *slog.Logger) *cron.Cron {
	c := cron.New()

	// Nightly: deactivate leftover allocations for free-tier users.
	_, err := c.AddFunc("0 3 * * *", func() {
		report, err := tokens.ReconcileFreeTier(database.DB)
		if err != nil {
			log.Error("free-tier reconcile failed", "error", err)
			return
		}
		log.Info("free-tier reconcile finished",
			"users_scanned", report.UsersScanned,
			"free_tier_users", report.FreeTierUsers,
			"users_reconciled", report.UsersReconciled,
			"allocations_deactivated", report.AllocationsDeactivated,
			"errors", len(report.Errors),
		)
	})
	if err != nil {
		log.Error("failed to schedule reconcile job", "error", err)
	}

	// Hourly: flip is_active off on expired allocations so balance
	// queries stay cheap.
	_, err = c.AddFunc("@hourly", func() {
		n, err := tokens.SweepExpiredAllocations(database.DB, time.Now())
		if err != nil {
			log.Error("expired allocation sweep failed", "error", err)
			return
		}
		if n > 0 {
			log.Info("expired allocations swept", "count", n)
		}
	})
	if err != nil {
		log.Error("failed to schedule sweep job", "error", err)
	}

	c.Start()
	return c
}
