package download

import (
	"context"
	"fmt"
)

// Job is one file to fetch into TargetDir.
type Job struct {
	Name      string
	URL       string
	TargetDir string
}

// Result reports a finished job. Completed counts jobs finished so far,
// including this one.
type Result struct {
	Job       Job
	Err       error
	Completed int
	Total     int
}

// Queue downloads many files with bounded concurrency.
type Queue struct {
	Manager     *Manager
	Concurrency int
	Attempts    int
}

// Run downloads every job and calls onResult from the calling goroutine as
// jobs finish. It returns the number of failed jobs. Cancelling ctx stops
// jobs that have not started and aborts running transfers.
func (q *Queue) Run(ctx context.Context, jobs []Job, onResult func(Result)) int {
	if onResult == nil {
		onResult = func(Result) {}
	}
	concurrency := q.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	total := len(jobs)
	if total == 0 {
		return 0
	}

	q.Manager.console.Log(fmt.Sprintf("Starting bulk download of %d files with concurrency %d", total, concurrency))

	type done struct {
		job Job
		err error
	}

	// Semaphore to limit concurrent downloads
	sem := make(chan struct{}, concurrency)
	doneCh := make(chan done, total)

	for _, j := range jobs {
		go func(j Job) {
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				doneCh <- done{job: j, err: ctx.Err()}
				return
			}
			err := q.Manager.DownloadFileWithRetry(ctx, j.URL, j.TargetDir, nil, q.Attempts)
			<-sem
			doneCh <- done{job: j, err: err}
		}(j)
	}

	failed := 0
	for i := 1; i <= total; i++ {
		d := <-doneCh
		if d.err != nil {
			failed++
		}
		onResult(Result{Job: d.job, Err: d.err, Completed: i, Total: total})
	}

	q.Manager.console.Log(fmt.Sprintf("Bulk download finished: %d ok, %d failed", total-failed, failed))
	return failed
}
