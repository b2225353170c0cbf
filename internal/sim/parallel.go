package sim

import (
	"context"
	"fmt"

	"github.com/san-kum/curvsim/internal/dynamo"
)

// Job builds a fresh simulator per run so runs share no controller state.
type Job struct {
	Name   string
	Build  func() (*Simulator, error)
	Config Config
}

// Compare runs jobs in parallel and returns results in job order.
func Compare(ctx context.Context, jobs []Job, workers int) ([]*Result, error) {
	results := make([]*Result, len(jobs))
	err := dynamo.RunAll(ctx, len(jobs), workers, func(ctx context.Context, idx int) error {
		job := jobs[idx]
		s, err := job.Build()
		if err != nil {
			return fmt.Errorf("%s: %w", job.Name, err)
		}
		res, err := s.Run(ctx, job.Config)
		if err != nil {
			return fmt.Errorf("%s: %w", job.Name, err)
		}
		results[idx] = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}
