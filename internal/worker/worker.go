package worker

import (
	"context"
	"log/slog"
	"sync"

	"github.com/riverwatch/go-flood-routes/internal/models"
)

// ProcessFunc handles one ingested gauge reading.
type ProcessFunc func(ctx context.Context, r *models.RiverReading) error

// Pool fans ingested readings out over a fixed set of workers with a bounded
// submission buffer.
type Pool struct {
	numWorkers int
	jobs       chan *models.RiverReading
	processor  ProcessFunc
	wg         sync.WaitGroup
}

func NewPool(numWorkers int, bufferSize int, processor ProcessFunc) *Pool {
	return &Pool{
		numWorkers: numWorkers,
		jobs:       make(chan *models.RiverReading, bufferSize),
		processor:  processor,
	}
}

func (p *Pool) Start(ctx context.Context) {
	for i := 1; i <= p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case r, ok := <-p.jobs:
			if !ok {
				return
			}
			if err := p.processor(ctx, r); err != nil {
				slog.Error("failed to process reading", "worker", id, "id", r.ID, "error", err)
			}
		}
	}
}

// Submit blocks when the buffer is full.
func (p *Pool) Submit(r *models.RiverReading) {
	p.jobs <- r
}

func (p *Pool) Stop() {
	close(p.jobs)
	p.wg.Wait()
}
