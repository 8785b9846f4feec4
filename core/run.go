package core

import (
	"golang.org/x/sync/errgroup"
)

// Run drains tasks across a pool of poolSize workers, each running
// WorkerLoop.Run to completion for every task it pulls. Run returns once
// every task has been processed (I4: all three counters reach len(tasks)).
// Matching the teacher's own ext/dsort pattern, the pool is bounded with
// errgroup.Group.SetLimit rather than a hand-rolled semaphore. No
// cancellation is defined at this layer (spec §5): a failing task fails
// locally and never aborts its peers.
func Run(cfg *Config, tasks []*Task, poolSize int) error {
	cfg.N = len(tasks)
	loop := NewWorkerLoop(cfg)

	g := &errgroup.Group{}
	g.SetLimit(poolSize)

	for _, task := range tasks {
		task := task
		g.Go(func() error {
			loop.Run(task)
			return nil
		})
	}
	return g.Wait()
}
