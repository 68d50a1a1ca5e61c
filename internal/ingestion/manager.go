package ingestion

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/riverwatch/go-flood-routes/internal/config"
	"github.com/riverwatch/go-flood-routes/internal/models"
	"github.com/riverwatch/go-flood-routes/internal/notify"
	"github.com/riverwatch/go-flood-routes/internal/repository"
	"github.com/riverwatch/go-flood-routes/internal/worker"
)

type Manager struct {
	cfg         *config.Config
	repo        repository.RiverRepository
	broadcaster *notify.Broadcaster
	pool        *worker.Pool
	wg          sync.WaitGroup
}

func NewManager(cfg *config.Config, repo repository.RiverRepository, broadcaster *notify.Broadcaster) *Manager {
	return &Manager{
		cfg:         cfg,
		repo:        repo,
		broadcaster: broadcaster,
	}
}

func (m *Manager) Start(ctx context.Context) {
	processor := func(ctx context.Context, r *models.RiverReading) error {
		if err := m.repo.UpsertReading(ctx, r); err != nil {
			slog.Error("error upserting reading", "id", r.ID, "error", err)
			return err
		}

		// Wake the alert watcher only for readings that can move a
		// risk level; broadcast after the upsert so sweeps see fresh data.
		if m.broadcaster != nil && shouldBroadcast(r) {
			m.broadcaster.Broadcast(r)
		}

		slog.Debug("stored reading", "id", r.ID, "station", r.Station, "level", r.Level)
		return nil
	}

	m.pool = worker.NewPool(m.cfg.Worker.Count, m.cfg.Worker.BufferSize, processor)
	m.pool.Start(ctx)

	if m.cfg.Sources.EAEnabled {
		m.wg.Add(1)
		go m.runPoller(ctx, "ea", m.cfg.Sources.EAURL, m.cfg.Sources.EAPollInterval)
	}
}

func (m *Manager) runPoller(ctx context.Context, source, url string, interval time.Duration) {
	defer m.wg.Done()
	slog.Info("starting poller", "source", source, "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Initial poll
	m.poll(ctx, source, url)

	for {
		select {
		case <-ctx.Done():
			slog.Info("poller shutting down", "source", source)
			return
		case <-ticker.C:
			m.poll(ctx, source, url)
		}
	}
}

func (m *Manager) poll(ctx context.Context, source, url string) {
	slog.Debug("polling", "source", source)

	var (
		readings []*models.RiverReading
		err      error
	)

	switch source {
	case "ea":
		readings, err = m.pollEA(ctx, url)
	}
	if err != nil {
		slog.Error("poll failed", "source", source, "error", err)
		return
	}

	for _, r := range readings {
		m.pool.Submit(r)
	}

	slog.Debug("poll complete", "source", source, "count", len(readings))
}

func (m *Manager) Stop() {
	m.wg.Wait()
	m.pool.Stop()
	slog.Info("ingestion manager stopped")
}

// shouldBroadcast returns true if the reading can move a risk level: the
// gauge publishes a critical threshold and the level is within 5m of it or
// above. Gauges without a published range never trigger alert sweeps.
func shouldBroadcast(r *models.RiverReading) bool {
	if r.CriticalThreshold == nil {
		return false
	}
	return r.Level > *r.CriticalThreshold-5
}
