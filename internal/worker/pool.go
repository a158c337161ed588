// Package worker provides caller-side batch processing of generation
// requests. Concurrency lives entirely here: every job drives the registry
// through one full, sequential lifecycle with its own model instance, so
// workers never share live strategy state.
package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/moodika/moodika/internal/core/domain"
	"github.com/moodika/moodika/internal/core/ports"
	"github.com/moodika/moodika/internal/core/services"
)

// Job is one playlist generation request on behalf of a principal.
type Job struct {
	ID        string
	Principal string
	Prompt    string
	Config    domain.GenerationConfig
}

// Pool manages background workers for generation jobs.
type Pool struct {
	registry *services.Registry
	store    ports.CredentialStore
	log      *zap.Logger
	jobs     chan Job
	wg       sync.WaitGroup
}

// NewPool creates a worker pool with the given queue size.
func NewPool(registry *services.Registry, store ports.CredentialStore, queueSize int, log *zap.Logger) *Pool {
	if queueSize < 1 {
		queueSize = 1
	}
	return &Pool{
		registry: registry,
		store:    store,
		log:      log,
		jobs:     make(chan Job, queueSize),
	}
}

// Start launches the worker goroutines.
func (p *Pool) Start(ctx context.Context, workers int) {
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				p.processJob(ctx, job)
			}
		}()
	}
}

// Stop waits for workers to finish after closing the queue.
func (p *Pool) Stop() {
	close(p.jobs)
	p.wg.Wait()
}

// Submit queues a job without blocking.
func (p *Pool) Submit(job Job) {
	select {
	case p.jobs <- job:
	default:
		p.log.Warn("dropping job, queue full",
			zap.String("job_id", job.ID),
			zap.String("prompt", job.Prompt))
	}
}

func (p *Pool) processJob(ctx context.Context, job Job) {
	log := p.log.With(
		zap.String("job_id", job.ID),
		zap.String("principal", job.Principal),
		zap.String("model", job.Config.Model))

	cred, err := p.store.Get(ctx, job.Principal)
	if err != nil {
		log.Error("load credential failed", zap.Error(err))
		return
	}
	issuedBefore := cred.IssuedAt

	var gctx domain.GenerationContext
	result, genErr := p.registry.GeneratePlaylist(ctx, job.Prompt, job.Config, &gctx, &cred)

	// A refresh may have rotated the credential even when generation failed
	// later in the pipeline; persist it either way.
	if !cred.IssuedAt.Equal(issuedBefore) {
		if _, err := p.store.Update(ctx, job.Principal, cred); err != nil {
			log.Warn("persist refreshed credential failed", zap.Error(err))
		}
	}

	if genErr != nil {
		log.Error("generation failed", zap.Error(genErr))
		return
	}

	log.Info("job done",
		zap.String("playlist_id", result.Context.ExternalPlaylistID),
		zap.Time("created_at", result.Context.CreatedAt))
}
