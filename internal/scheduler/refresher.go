package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// refreshTimeout bounds one background refresh run.
const refreshTimeout = time.Minute

// Refresher reruns the batch weather refresh on a cron schedule so the saved
// list stays warm without a client asking for it.
type Refresher struct {
	cron *cron.Cron
	log  *zap.SugaredLogger
}

// RefreshFunc is the batch refresh entry point the job calls.
type RefreshFunc func(ctx context.Context) error

// NewRefresher schedules refresh according to spec ("@every 30m",
// "0 */15 * * * *", ...). Overlapping runs are skipped, not stacked.
func NewRefresher(spec string, refresh RefreshFunc, log *zap.SugaredLogger) (*Refresher, error) {
	c := cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()
		if err := refresh(ctx); err != nil {
			log.Warnw("scheduled refresh failed", "error", err)
		} else {
			log.Infow("scheduled refresh completed")
		}
	})
	if err != nil {
		return nil, err
	}
	return &Refresher{cron: c, log: log}, nil
}

func (r *Refresher) Start() {
	r.cron.Start()
}

// Stop halts scheduling and waits for a running job to finish.
func (r *Refresher) Stop() {
	<-r.cron.Stop().Done()
}
