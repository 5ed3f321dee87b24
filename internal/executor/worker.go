package executor

import (
	"context"
	"sync"

	"github.com/specialistvlad/shotgrid/internal/browser"
	"github.com/specialistvlad/shotgrid/internal/ctxlog"
	"github.com/specialistvlad/shotgrid/internal/model"
)

// worker is the core processing loop for a single concurrent worker of one
// browser. It drains case indexes until the channel closes; indexes received
// after cancellation are settled as skipped.
func (e *Executor) worker(ctx context.Context, b browser.Browser, jobs <-chan int, cases []model.TestCase, results []model.CaptureResult, wg *sync.WaitGroup, workerID int) {
	defer wg.Done()
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Worker started.", "workerID", workerID)

	for i := range jobs {
		logger.Debug("Worker picked up case.", "workerID", workerID, "case", cases[i].Key())
		results[i] = e.runOne(ctx, b, cases[i])
	}
	logger.Debug("Worker finished.", "workerID", workerID)
}
