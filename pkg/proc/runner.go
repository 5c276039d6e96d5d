package proc

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

func waitGroupToChannel(wg *sync.WaitGroup) <-chan struct{} {
	d := make(chan struct{})
	go func() {
		wg.Wait()
		close(d)
	}()

	return d
}

// Boot runs all configured boot jobs concurrently and returns the first error
// that occurred.
func (r *Runner) Boot(ctx context.Context) error {
	for j := range r.Config.BootJobs {
		job, err := NewBootJob(&r.Config.BootJobs[j])
		if err != nil {
			return err
		}

		r.bootJobs = append(r.bootJobs, job)
	}

	if len(r.bootJobs) == 0 {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	wg := sync.WaitGroup{}
	bootErrs := make(chan error, len(r.bootJobs))

	for _, job := range r.bootJobs {
		wg.Add(1)
		go func(job *BootJob) {
			defer wg.Done()

			if err := job.Run(ctx); err != nil {
				bootErrs <- err
			}
		}(job)
	}

	select {
	case <-waitGroupToChannel(&wg):
		select {
		case err := <-bootErrs:
			return err
		default:
			return nil
		}

	case <-ctx.Done():
		log.Warn("context cancelled")
		return ctx.Err()

	case err := <-bootErrs:
		log.Error("boot job error occurred: ", err)
		cancel()
		wg.Wait()
		return err
	}
}
