package core

import "context"

// JobDispatcher defines the contract for a system that can accept and queue
// background review jobs for asynchronous processing. This interface
// decouples the HTTP layer from the job execution mechanism.
type JobDispatcher interface {
	// Dispatch accepts a review request and queues it for processing.
	// It returns an error if the job cannot be queued, for example when
	// the queue is full, providing a mechanism for backpressure.
	Dispatch(ctx context.Context, req *ReviewRequest) error
}

// Job represents a single, executable unit of work processed by the
// dispatcher. Each job runs one review and records its outcome.
type Job interface {
	Run(ctx context.Context, req *ReviewRequest) error
}
