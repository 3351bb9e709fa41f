package cron

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
)

// Job is one unit of periodic work.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Registry holds jobs in registration order, one per name.
type Registry struct {
	order  []string
	byName map[string]Job
}

func NewRegistry(jobs ...Job) *Registry {
	r := &Registry{byName: make(map[string]Job, len(jobs))}
	for _, job := range jobs {
		r.Register(job)
	}
	return r
}

// Register adds job. A job with an already registered name replaces the
// earlier one in place.
func (r *Registry) Register(job Job) {
	if job == nil {
		return
	}
	name := job.Name()
	if _, seen := r.byName[name]; !seen {
		r.order = append(r.order, name)
	}
	r.byName[name] = job
}

func (r *Registry) Len() int { return len(r.order) }

// Jobs returns a copy of the registered jobs.
func (r *Registry) Jobs() []Job {
	out := make([]Job, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// RunAll hands each job to run in order and collects every failure. It stops
// early only when ctx is done.
func (r *Registry) RunAll(ctx context.Context, run func(context.Context, Job) error) error {
	var errs error
	for _, job := range r.Jobs() {
		if ctx.Err() != nil {
			return multierr.Append(errs, ctx.Err())
		}
		if err := run(ctx, job); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("job %s: %w", job.Name(), err))
		}
	}
	return errs
}
