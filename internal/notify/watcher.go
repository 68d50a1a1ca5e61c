package notify

import (
	"context"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/riverwatch/go-flood-routes/internal/models"
	"github.com/riverwatch/go-flood-routes/internal/repository"
	"github.com/riverwatch/go-flood-routes/internal/risk"
)

// Watcher turns significant gauge readings into email alerts. Every broadcast
// reading triggers a sweep: each subscription is re-assessed and mailed when
// its risk level RISES above the last level it was notified at. Dropping back
// to LOW re-arms the subscription.
type Watcher struct {
	subs     repository.SubscriptionRepository
	assessor *risk.Assessor
	mailer   Mailer
	cron     *cron.Cron
	wg       sync.WaitGroup
}

func NewWatcher(subs repository.SubscriptionRepository, assessor *risk.Assessor, mailer Mailer) *Watcher {
	return &Watcher{
		subs:     subs,
		assessor: assessor,
		mailer:   mailer,
	}
}

// Start consumes the broadcaster until the context is cancelled or the
// broadcaster closes.
func (w *Watcher) Start(ctx context.Context, b *Broadcaster) {
	id, ch := b.Subscribe()

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer b.Unsubscribe(id)

		for {
			select {
			case <-ctx.Done():
				return
			case r, ok := <-ch:
				if !ok {
					return
				}
				w.Sweep(ctx)
				slog.Debug("alert sweep complete", "trigger", r.ID)
			}
		}
	}()
}

// StartDigest schedules a daily summary mail for every subscriber. The
// schedule is a standard cron expression, e.g. "0 8 * * *".
func (w *Watcher) StartDigest(ctx context.Context, schedule string) error {
	w.cron = cron.New()
	_, err := w.cron.AddFunc(schedule, func() {
		w.digest(ctx)
	})
	if err != nil {
		return err
	}
	w.cron.Start()
	return nil
}

func (w *Watcher) Stop() {
	if w.cron != nil {
		stopCtx := w.cron.Stop()
		<-stopCtx.Done()
	}
	w.wg.Wait()
}

// Sweep re-assesses every subscription once and sends alerts for risen risk.
func (w *Watcher) Sweep(ctx context.Context) {
	subs, err := w.subs.ListSubscriptions(ctx)
	if err != nil {
		slog.Error("error listing subscriptions", "error", err)
		return
	}

	for i := range subs {
		if ctx.Err() != nil {
			return
		}
		w.check(ctx, &subs[i])
	}
}

func (w *Watcher) check(ctx context.Context, sub *models.Subscription) {
	assessment, err := w.assessor.Assess(ctx, sub.Latitude, sub.Longitude)
	if err != nil {
		slog.Error("error assessing subscription", "id", sub.ID, "error", err)
		return
	}

	level := assessment.RiskLevel
	switch {
	case level.Severity() > sub.LastNotified.Severity():
		if err := w.mailer.Send(sub.Email, alertSubject(level), alertBody(sub, assessment)); err != nil {
			slog.Error("error sending alert", "id", sub.ID, "error", err)
			return
		}
		if err := w.subs.SetLastNotified(ctx, sub.ID, level); err != nil {
			slog.Error("error recording notification", "id", sub.ID, "error", err)
			return
		}
		slog.Info("alert sent", "id", sub.ID, "level", level)

	case level == models.RiskLevelLow && sub.LastNotified != models.RiskLevelLow:
		// Risk receded; re-arm so the next rise alerts again.
		if err := w.subs.SetLastNotified(ctx, sub.ID, models.RiskLevelLow); err != nil {
			slog.Error("error resetting notification level", "id", sub.ID, "error", err)
		}
	}
}

// digest mails every subscriber their current assessment, independent of
// level changes.
func (w *Watcher) digest(ctx context.Context) {
	subs, err := w.subs.ListSubscriptions(ctx)
	if err != nil {
		slog.Error("error listing subscriptions for digest", "error", err)
		return
	}

	for i := range subs {
		sub := &subs[i]
		assessment, err := w.assessor.Assess(ctx, sub.Latitude, sub.Longitude)
		if err != nil {
			slog.Error("error assessing subscription for digest", "id", sub.ID, "error", err)
			continue
		}
		if err := w.mailer.Send(sub.Email, "Daily flood risk summary", digestBody(sub, assessment)); err != nil {
			slog.Error("error sending digest", "id", sub.ID, "error", err)
		}
	}
	slog.Info("digest complete", "subscribers", len(subs))
}
