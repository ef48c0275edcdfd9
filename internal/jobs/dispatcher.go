// Package jobs runs paper reviews as background tasks behind a bounded
// worker pool.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/draftproof/paper-warden/internal/core"
)

// Dispatcher implements core.JobDispatcher with a pool of worker
// goroutines draining a bounded queue of review requests.
type Dispatcher struct {
	reviewJob  core.Job
	jobQueue   chan *core.ReviewRequest
	maxWorkers int
	wg         sync.WaitGroup
	logger     *slog.Logger
}

// NewDispatcher initializes a dispatcher with a worker pool.
// If maxWorkers is 0 or negative, it defaults to 1.
func NewDispatcher(reviewJob core.Job, maxWorkers int, logger *slog.Logger) *Dispatcher {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	d := &Dispatcher{
		reviewJob:  reviewJob,
		maxWorkers: maxWorkers,
		jobQueue:   make(chan *core.ReviewRequest, 100),
		logger:     logger,
	}
	d.startWorkers()
	return d
}

// startWorkers launches maxWorkers goroutines to process jobs from the queue.
func (d *Dispatcher) startWorkers() {
	for i := range d.maxWorkers {
		d.wg.Add(1)
		go d.startWorker(i)
	}
}

// startWorker processes requests from the queue until it's closed.
func (d *Dispatcher) startWorker(workerID int) {
	defer d.wg.Done()
	d.logger.Info("starting review worker", "id", workerID)

	for req := range d.jobQueue {
		d.processRequest(workerID, req)
	}

	d.logger.Info("shutting down review worker", "id", workerID)
}

// processRequest runs one review job.
func (d *Dispatcher) processRequest(workerID int, req *core.ReviewRequest) {
	d.logger.Info("worker processing job",
		"worker_id", workerID,
		"session_id", req.SessionID,
	)

	err := d.reviewJob.Run(context.Background(), req)
	if err != nil {
		d.logger.Error("review job failed",
			"session_id", req.SessionID,
			"error", err,
		)
	}
}

// Dispatch queues a review request for processing by a worker.
func (d *Dispatcher) Dispatch(_ context.Context, req *core.ReviewRequest) error {
	d.logger.Info("queuing review job", "session_id", req.SessionID)

	select {
	case d.jobQueue <- req:
		return nil
	default:
		return fmt.Errorf("job queue is full, cannot accept new review job")
	}
}

// Stop gracefully shuts down the dispatcher, waiting for all workers to finish.
func (d *Dispatcher) Stop() {
	d.logger.Info("stopping dispatcher and waiting for jobs to finish")
	close(d.jobQueue)
	d.wg.Wait()
	d.logger.Info("all review jobs have finished")
}
