package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	appLog "wxcal/internal/log"
)

// Job is a named function run on a cron schedule.
type Job struct {
	Name string
	Spec string
	Run  func()
}

// Scheduler runs the periodic jobs of a host: the midnight "today"
// rollover and, when configured, ICS refreshes.
type Scheduler struct {
	cron *cron.Cron
}

// New builds a scheduler evaluating specs in loc. Jobs with an empty spec
// are skipped; an invalid spec is an error.
func New(loc *time.Location, jobs ...Job) (*Scheduler, error) {
	if loc == nil {
		loc = time.Local
	}
	logger := cronLogger{}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(logger),
		// A slow run (an ICS refresh on a bad network) must not overlap
		// the next one.
		cron.WithChain(cron.SkipIfStillRunning(logger)),
	)
	for _, job := range jobs {
		if job.Spec == "" {
			continue
		}
		if _, err := c.AddFunc(job.Spec, func() {
			appLog.Debug("scheduled job run", "job", job.Name)
			job.Run()
		}); err != nil {
			return nil, fmt.Errorf("schedule: job %s: invalid spec %q: %w", job.Name, job.Spec, err)
		}
		appLog.Info("scheduled job registered", "job", job.Name, "spec", job.Spec, "timezone", loc.String())
	}
	return &Scheduler{cron: c}, nil
}

// Start runs the scheduler until ctx is cancelled, then waits for running
// jobs to finish.
func (s *Scheduler) Start(ctx context.Context) {
	s.cron.Start()
	go func() {
		<-ctx.Done()
		<-s.cron.Stop().Done()
	}()
}

func (s *Scheduler) entries() int {
	return len(s.cron.Entries())
}

// ValidSpec reports whether spec parses the way New parses it: a standard
// 5-field cron line or a descriptor such as @hourly.
func ValidSpec(spec string) error {
	_, err := cron.ParseStandard(spec)
	return err
}

// cronLogger routes cron's own messages (skipped runs, panics) to the
// application log.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	appLog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	appLog.Error("cron: "+msg, err, keysAndValues...)
}
