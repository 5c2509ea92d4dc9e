package scheduler

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/smmonirhasan92/man2man-sub004/internal/repository"
)

const (
	cronDailyReset = "0 0 0 * * *"    // local midnight: task quotas roll over
	cronPlanExpiry = "0 */30 * * * *" // lapsed plans swept every 30 minutes
)

// New wires the recurring jobs: the midnight reset of per-plan task counters
// and the plan-expiry sweep. Job errors are logged, never fatal.
func New(plans *repository.PlanRepository) *cron.Cron {
	c := cron.New(cron.WithSeconds(), cron.WithLocation(time.Local))

	c.AddFunc(cronDailyReset, func() {
		n, err := plans.ResetDailyCounters()
		if err != nil {
			log.Printf("[cron] daily reset: %v", err)
			return
		}
		log.Printf("[cron] daily task counters reset on %d plans", n)
	})

	c.AddFunc(cronPlanExpiry, func() {
		n, err := plans.ExpireLapsed(time.Now())
		if err != nil {
			log.Printf("[cron] plan expiry: %v", err)
			return
		}
		if n > 0 {
			log.Printf("[cron] expired %d lapsed plans", n)
		}
	})

	return c
}
