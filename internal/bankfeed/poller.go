package bankfeed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"saldo/internal/amqp"
	"saldo/internal/core"
)

// Publisher forwards fetched records to the import queue.
type Publisher interface {
	PublishTransactionImported(ctx context.Context, msg *amqp.TransactionImportedMessage) error
}

// Poller manages the per-feed cron tasks.
type Poller struct {
	Cron      *cron.Cron
	Ctx       context.Context
	publisher Publisher
	fetchers  []Fetcher
	specs     map[string]string // feed name -> cron spec
	lookback  int
}

// NewPoller creates a poller over the configured feeds.
func NewPoller(ctx context.Context, cfg *Config, publisher Publisher, fetchers []Fetcher) *Poller {
	specs := make(map[string]string, len(cfg.Feeds))
	for _, feed := range cfg.Feeds {
		specs[feed.Name] = feed.Cron
	}
	return &Poller{
		Cron:      cron.New(cron.WithSeconds()),
		Ctx:       ctx,
		publisher: publisher,
		fetchers:  fetchers,
		specs:     specs,
		lookback:  cfg.LookbackDays,
	}
}

// RegisterAll registers one cron task per feed.
func (p *Poller) RegisterAll() error {
	for _, fetcher := range p.fetchers {
		spec, ok := p.specs[fetcher.Name()]
		if !ok {
			return fmt.Errorf("no cron spec for feed %s", fetcher.Name())
		}
		f := fetcher
		if _, err := p.Cron.AddFunc(spec, func() {
			if err := p.pollFeed(p.Ctx, f); err != nil {
				slog.Error("Feed poll failed", "feed", f.Name(), "error", err)
			}
		}); err != nil {
			return fmt.Errorf("register feed %s: %w", fetcher.Name(), err)
		}
	}
	return nil
}

// Start starts the cron scheduler.
func (p *Poller) Start() {
	p.Cron.Start()
	slog.Info("Feed poller started", "feeds", len(p.fetchers))
}

// Stop stops the cron scheduler gracefully.
func (p *Poller) Stop() {
	ctx := p.Cron.Stop()
	<-ctx.Done()
	slog.Info("Feed poller stopped")
}

// RunAllNow polls every feed immediately, fanning out one goroutine
// per feed. Used for RUN_ON_START and manual triggers.
func (p *Poller) RunAllNow(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, fetcher := range p.fetchers {
		f := fetcher
		g.Go(func() error {
			return p.pollFeed(ctx, f)
		})
	}
	return g.Wait()
}

func (p *Poller) pollFeed(ctx context.Context, f Fetcher) error {
	since := core.Today().AddDays(-p.lookback)

	start := time.Now()
	records, err := f.FetchTransactions(ctx, since)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", f.Name(), err)
	}

	published := 0
	for _, rec := range records {
		msg := &amqp.TransactionImportedMessage{
			ExternalRef: f.Name() + ":" + rec.Ref,
			Date:        rec.Date.ISO(),
			Kind:        string(rec.Kind),
			AmountCents: rec.AmountCents,
			Note:        rec.Note,
			Feed:        f.Name(),
			Timestamp:   time.Now(),
		}
		if err := p.publisher.PublishTransactionImported(ctx, msg); err != nil {
			return fmt.Errorf("publish %s record %s: %w", f.Name(), rec.Ref, err)
		}
		published++
	}

	slog.Info("Feed polled",
		"feed", f.Name(),
		"since", since.ISO(),
		"records", len(records),
		"published", published,
		"duration_ms", time.Since(start).Milliseconds())

	return nil
}
