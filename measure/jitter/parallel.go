package jitter

import (
	"context"
	"runtime"
	"sync"
)

// RunParallel measures the full level range with the given number of worker
// goroutines and merges the results into the sweep's curve. workers <= 0
// selects one worker per CPU.
//
// Levels are independent and each derives its own noise generator, so the
// merged curve is identical to a serial Run with the same configuration and
// seed. The sweep itself must not be used concurrently while RunParallel is
// running.
func (s *Sweep) RunParallel(ctx context.Context, workers int) (*Curve, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	if workers > s.cfg.Levels() {
		workers = s.cfg.Levels()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	levels := make(chan int)
	results := make(chan *Step, workers)
	errc := make(chan error, workers)

	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for level := range levels {
				step, err := s.measure(level)
				if err != nil {
					errc <- err

					cancel()

					return
				}

				select {
				case results <- step:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(levels)

		for level := s.cfg.MinLevel; level <= s.cfg.MaxLevel; level++ {
			select {
			case levels <- level:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for step := range results {
		s.record(step)
	}

	select {
	case err := <-errc:
		return nil, err
	default:
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.level = s.cfg.MinLevel

	return s.curve, nil
}
