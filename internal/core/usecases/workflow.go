package usecases

import (
	"context"
	"fmt"
	"log"
	"time"

	"jobwatch/internal/core/domain"
)

// ProjectSource starts pipeline operations on a remote project. Each call
// kicks off one asynchronous operation on the job service and returns its
// initial snapshot.
type ProjectSource interface {
	Project(ctx context.Context, id string) (domain.Project, error)
	RefreshUnifiedDataset(ctx context.Context, projectID string) (domain.Operation, error)
	TrainModel(ctx context.Context, projectID string) (domain.Operation, error)
	PredictModel(ctx context.Context, projectID string) (domain.Operation, error)
}

// WorkflowOptions select which pipeline steps to run
type WorkflowOptions struct {
	RefreshDataset bool
	ApplyFeedback  bool
	UpdateResults  bool

	// Asynchronous returns each operation as soon as it has started
	// instead of waiting for it to succeed. Required for concurrent
	// pipelines; the caller monitors the returned operations itself.
	Asynchronous bool

	// PollInterval and Timeout bound the synchronous wait per step.
	// PollInterval defaults to 1s; a zero Timeout waits indefinitely.
	PollInterval time.Duration
	Timeout      time.Duration
}

// WorkflowRunner executes the steps of a categorization project's pipeline:
// refreshing the unified dataset, training the model on feedback, and
// updating categorization results.
type WorkflowRunner struct {
	projects   ProjectSource
	operations OperationSource
}

func NewWorkflowRunner(projects ProjectSource, operations OperationSource) *WorkflowRunner {
	return &WorkflowRunner{
		projects:   projects,
		operations: operations,
	}
}

// Run executes the selected steps in pipeline order and returns the
// operations that were started, one per step. In synchronous mode each step
// must succeed before the next starts.
func (r *WorkflowRunner) Run(ctx context.Context, projectID string, opts WorkflowOptions) ([]domain.Operation, error) {
	project, err := r.projects.Project(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if project.Type != domain.ProjectCategorization {
		log.Printf("Cannot run pipeline for project %s: type %s", projectID, project.Type)
		return nil, fmt.Errorf("%w (project type: %s)", domain.ErrNotCategorization, project.Type)
	}

	var completed []domain.Operation

	if opts.RefreshDataset {
		log.Printf("Updating the unified dataset for project %s (id=%s)", project.Name, project.ID)
		op, err := r.runStep(ctx, opts, func() (domain.Operation, error) {
			return r.projects.RefreshUnifiedDataset(ctx, projectID)
		})
		if err != nil {
			return completed, err
		}
		completed = append(completed, op)
	}

	if opts.ApplyFeedback {
		log.Printf("Applying feedback to the categorization model for project %s (id=%s)", project.Name, project.ID)
		op, err := r.runStep(ctx, opts, func() (domain.Operation, error) {
			return r.projects.TrainModel(ctx, projectID)
		})
		if err != nil {
			return completed, err
		}
		completed = append(completed, op)
	}

	if opts.UpdateResults {
		log.Printf("Updating categorization results for project %s (id=%s)", project.Name, project.ID)
		op, err := r.runStep(ctx, opts, func() (domain.Operation, error) {
			return r.projects.PredictModel(ctx, projectID)
		})
		if err != nil {
			return completed, err
		}
		completed = append(completed, op)
	}

	return completed, nil
}

// RunAll refreshes the unified dataset and updates results, optionally
// retraining the model in between.
func (r *WorkflowRunner) RunAll(ctx context.Context, projectID string, applyFeedback, asynchronous bool) ([]domain.Operation, error) {
	return r.Run(ctx, projectID, WorkflowOptions{
		RefreshDataset: true,
		ApplyFeedback:  applyFeedback,
		UpdateResults:  true,
		Asynchronous:   asynchronous,
	})
}

// UpdateUnifiedDataset runs only the dataset refresh step
func (r *WorkflowRunner) UpdateUnifiedDataset(ctx context.Context, projectID string, asynchronous bool) ([]domain.Operation, error) {
	return r.Run(ctx, projectID, WorkflowOptions{
		RefreshDataset: true,
		Asynchronous:   asynchronous,
	})
}

// ApplyFeedback trains the model only
func (r *WorkflowRunner) ApplyFeedback(ctx context.Context, projectID string, asynchronous bool) ([]domain.Operation, error) {
	return r.Run(ctx, projectID, WorkflowOptions{
		ApplyFeedback: true,
		Asynchronous:  asynchronous,
	})
}

// UpdateResultsOnly updates predictions from the existing model
func (r *WorkflowRunner) UpdateResultsOnly(ctx context.Context, projectID string, asynchronous bool) ([]domain.Operation, error) {
	return r.Run(ctx, projectID, WorkflowOptions{
		UpdateResults: true,
		Asynchronous:  asynchronous,
	})
}

func (r *WorkflowRunner) runStep(ctx context.Context, opts WorkflowOptions, start func() (domain.Operation, error)) (domain.Operation, error) {
	op, err := start()
	if err != nil {
		return domain.Operation{}, err
	}

	if opts.Asynchronous {
		return op, nil
	}

	return r.waitForSuccess(ctx, op.ID, opts)
}

// waitForSuccess polls the operation until it reaches a terminal state and
// fails unless that state is SUCCEEDED.
func (r *WorkflowRunner) waitForSuccess(ctx context.Context, operationID string, opts WorkflowOptions) (domain.Operation, error) {
	interval := opts.PollInterval
	if interval <= 0 {
		interval = time.Second
	}

	var deadline time.Time
	if opts.Timeout > 0 {
		deadline = time.Now().Add(opts.Timeout)
	}

	for {
		op, err := r.operations.Operation(ctx, operationID)
		if err != nil {
			return domain.Operation{}, err
		}

		if op.State.Terminal() {
			if op.State != domain.StateSucceeded {
				return op, fmt.Errorf("operation %s finished in state %s", op.ID, op.State)
			}
			return op, nil
		}

		wait := interval
		if !deadline.IsZero() {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				return op, &domain.TimeoutError{OperationID: operationID, Budget: opts.Timeout}
			}
			if remaining < wait {
				wait = remaining
			}
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return op, ctx.Err()
		case <-timer.C:
		}
	}
}
