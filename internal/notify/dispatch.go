package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"

	"github.com/swelljoe/weatherpulse/internal/alerts"
	"github.com/swelljoe/weatherpulse/internal/db"
	"github.com/swelljoe/weatherpulse/internal/forecast"
	"github.com/swelljoe/weatherpulse/internal/metrics"
)

// SubscriptionStore is the persistence the dispatcher reads and updates
type SubscriptionStore interface {
	AllSubscriptions(ctx context.Context) ([]db.Subscription, error)
	MarkSubscriptionSent(ctx context.Context, id int64, hash string, at time.Time) error
}

// ForecastFetcher loads a forecast for a coordinate
type ForecastFetcher interface {
	Forecast(ctx context.Context, lat, lon float64, tz string) (forecast.Document, error)
}

// Summary counts what one dispatch run did
type Summary struct {
	Checked int
	Sent    int
	Skipped int
	Failed  int
}

// Dispatcher emails subscribers when their alert set changes
type Dispatcher struct {
	store       SubscriptionStore
	fetcher     ForecastFetcher
	mailer      Mailer
	minInterval time.Duration
	now         func() time.Time
	log         hclog.Logger
	metrics     *metrics.Metrics
}

// Options configures a Dispatcher
type Options struct {
	MinInterval time.Duration
	Now         func() time.Time
	Logger      hclog.Logger
	Metrics     *metrics.Metrics
}

// NewDispatcher creates a dispatcher
func NewDispatcher(store SubscriptionStore, fetcher ForecastFetcher, mailer Mailer, opts Options) *Dispatcher {
	d := &Dispatcher{
		store:       store,
		fetcher:     fetcher,
		mailer:      mailer,
		minInterval: opts.MinInterval,
		now:         opts.Now,
		log:         opts.Logger,
		metrics:     opts.Metrics,
	}
	if d.now == nil {
		d.now = time.Now
	}
	if d.log == nil {
		d.log = hclog.NewNullLogger()
	}
	return d
}

// ShouldSend applies the suppression policy: nothing is sent for an empty
// list; a changed alert set, a first send, or an elapsed minimum interval
// allows a send.
func ShouldSend(filtered []alerts.Alert, hash, lastHash string, lastSent *time.Time, now time.Time, minInterval time.Duration) bool {
	if len(filtered) == 0 {
		return false
	}
	if hash != lastHash || lastSent == nil {
		return true
	}
	return now.Sub(*lastSent) >= minInterval
}

// Run checks every subscription once. Failures on one subscription are logged
// and do not stop the batch.
func (d *Dispatcher) Run(ctx context.Context) (Summary, error) {
	var sum Summary

	subs, err := d.store.AllSubscriptions(ctx)
	if err != nil {
		return sum, errors.Wrap(err, "failed to load subscriptions")
	}
	if len(subs) == 0 {
		d.log.Info("No alert subscriptions found.")
		return sum, nil
	}

	for _, sub := range subs {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		sum.Checked++

		outcome := d.process(ctx, sub)
		switch outcome {
		case "sent":
			sum.Sent++
		case "failed":
			sum.Failed++
		default:
			sum.Skipped++
		}
		d.metrics.Notification(outcome)
	}

	d.log.Info("Alert dispatch finished",
		"checked", sum.Checked,
		"sent", sum.Sent,
		"skipped", sum.Skipped,
		"failed", sum.Failed)
	return sum, nil
}

func (d *Dispatcher) process(ctx context.Context, sub db.Subscription) string {
	log := d.log.With("subscription", sub.ID, "location", sub.Name)

	if sub.Email == "" {
		log.Debug("Skipping subscription without email")
		return "skipped"
	}

	doc, err := d.fetcher.Forecast(ctx, sub.Lat, sub.Lon, sub.Timezone)
	if err != nil {
		log.Error("Failed to fetch forecast", "error", err)
		return "failed"
	}

	types := make([]alerts.Type, 0, len(sub.Types))
	for _, t := range sub.Types {
		types = append(types, alerts.Type(t))
	}
	filtered := alerts.Filter(alerts.Build(doc), types, alerts.Severity(sub.MinSeverity))
	hash := alerts.Hash(filtered)

	now := d.now()
	if !ShouldSend(filtered, hash, sub.LastAlertHash, sub.LastSentAt, now, d.minInterval) {
		return "skipped"
	}

	if err := d.mailer.Send(ctx, Compose(sub, filtered)); err != nil {
		log.Error("Failed to send alert email", "to", sub.Email, "error", err)
		return "failed"
	}

	if err := d.store.MarkSubscriptionSent(ctx, sub.ID, hash, now); err != nil {
		log.Error("Failed to record alert send", "error", err)
		return "failed"
	}
	log.Info("Sent alert email", "to", sub.Email, "alerts", len(filtered))
	return "sent"
}

// Compose builds the email for a subscription's filtered alerts
func Compose(sub db.Subscription, list []alerts.Alert) Message {
	lines := make([]string, 0, len(list))
	for _, a := range list {
		lines = append(lines, fmt.Sprintf("%s - %s", a.Title, a.Detail))
	}
	return Message{
		To:      sub.Email,
		Subject: "WeatherPulse alerts for " + sub.Name,
		Body:    strings.Join(lines, "\n"),
	}
}
