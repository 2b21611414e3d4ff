package main

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"

	"github.com/AI-Fit-GMS/gms/core"
	"github.com/AI-Fit-GMS/gms/core/billing"
	"github.com/AI-Fit-GMS/gms/core/member"
)

const jobTimeout = 5 * time.Minute

// cronLogger adapts a core.Logger to cron.Logger.
type cronLogger struct {
	logger core.Logger
}

var _ cron.Logger = cronLogger{}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(fmt.Sprintf("cron: %s: %v", msg, err), append([]interface{}{err}, keysAndValues...)...)
}

type jobs struct {
	logger     core.Logger
	memberSvc  *member.Service
	billingSvc *billing.Service
	now        func() time.Time
}

// expireMemberships expires the memberships past their end date.
func (j *jobs) expireMemberships(ctx context.Context) error {
	_, err := j.memberSvc.ExpireMemberships(ctx, j.now())
	return err
}

// chaseInvoices marks the invoices past their due date as overdue, then reminds the members of every overdue invoice.
func (j *jobs) chaseInvoices(ctx context.Context) error {
	if _, err := j.billingSvc.MarkOverdue(ctx, j.now()); err != nil {
		return err
	}
	_, err := j.billingSvc.SendReminders(ctx)
	return err
}

func (j *jobs) run(name string, job func(ctx context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		if err := job(ctx); err != nil {
			j.logger.Error(fmt.Sprintf("job %s failed", name), err)
		}
	}
}

func newScheduler(conf *core.Config, logger core.Logger, memberSvc *member.Service, billingSvc *billing.Service) (*cron.Cron, error) {
	j := &jobs{logger: logger, memberSvc: memberSvc, billingSvc: billingSvc, now: time.Now}

	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(cronLogger{logger}),
		cron.WithChain(cron.Recover(cronLogger{logger}), cron.SkipIfStillRunning(cronLogger{logger})),
	)
	if _, err := c.AddFunc(conf.Scheduler.ExpirySpec, j.run("expire-memberships", j.expireMemberships)); err != nil {
		return nil, errors.Wrapf(err, "scheduling memberships expiry (%q)", conf.Scheduler.ExpirySpec)
	}
	if _, err := c.AddFunc(conf.Scheduler.OverdueSpec, j.run("chase-invoices", j.chaseInvoices)); err != nil {
		return nil, errors.Wrapf(err, "scheduling overdue invoices (%q)", conf.Scheduler.OverdueSpec)
	}
	return c, nil
}
