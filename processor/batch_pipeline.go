package processor

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/nci/gcube/reader"
	"github.com/nci/gcube/region"
)

// MaskRef names a configured mask applied to the outputs of an item.
type MaskRef struct {
	Name     string
	Polarity Polarity
}

// BatchItem is one product to process.
type BatchItem struct {
	ProductType          string
	Path                 string
	Bands                []string
	Formulas             []string
	Masks                []string
	Apply                []MaskRef
	Region               *region.Descriptor
	OutResolution        float64
	ProcessingResolution float64
	Options              reader.Options
}

// BatchResult is the outcome of one item, in the position of the item
// within the batch.
type BatchResult struct {
	ID       string
	Item     *BatchItem
	Products []*CompositeProduct
	Err      error
	Duration time.Duration
}

// Runner processes a single item.
type Runner interface {
	Run(ctx context.Context, item *BatchItem) ([]*CompositeProduct, error)
}

// LocalRunner runs items in process with a fresh Builder each.
type LocalRunner struct {
	Config *BuilderConfig
}

func (r *LocalRunner) Run(ctx context.Context, item *BatchItem) ([]*CompositeProduct, error) {
	b := NewBuilder(r.Config)
	if err := Configure(b, item); err != nil {
		return nil, err
	}
	if err := b.Extract(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := b.Compute(); err != nil {
		return nil, err
	}
	if len(item.Apply) > 0 {
		layers := make([]*MaskLayer, 0, len(item.Apply))
		for _, ref := range item.Apply {
			l, err := b.ComputeMaskLayer(ref.Name, ref.Polarity)
			if err != nil {
				return nil, err
			}
			layers = append(layers, l)
		}
		if err := b.Mask(layers...); err != nil {
			return nil, err
		}
	}
	return b.Products()
}

// Configure applies the settings of item to b.  Masks applied to the
// outputs are read along with the requested bands.
func Configure(b *Builder, item *BatchItem) error {
	if err := b.SetReader(item.ProductType, item.Path, item.OutResolution, item.ProcessingResolution, item.Options); err != nil {
		return err
	}
	if err := b.SetRegion(item.Region); err != nil {
		return err
	}
	if err := b.SetBands(item.Bands); err != nil {
		return err
	}
	if err := b.SetFormulas(item.Formulas); err != nil {
		return err
	}
	if err := b.SetMasks(item.Masks); err != nil {
		return err
	}
	var apply []string
	for _, ref := range item.Apply {
		apply = append(apply, ref.Name)
	}
	return b.RequireMasks(apply)
}

// BatchPipeline fans items out over a bounded pool of workers.  By
// default every item runs and fails on its own; with FailFast the
// first failure cancels the items still pending or running, which
// report the cancellation.
type BatchPipeline struct {
	Runner      Runner
	MaxWorkers  int
	FailFast    bool
	ItemTimeout time.Duration
	// RunID identifies the batch in logs and metrics.
	RunID string
	// OnResult, when set, is called as each item completes.  Calls
	// may be concurrent.
	OnResult func(*BatchResult)
	Verbose  bool
}

func NewBatchPipeline(runner Runner, maxWorkers int, failFast bool, itemTimeout time.Duration) *BatchPipeline {
	return &BatchPipeline{
		Runner:      runner,
		MaxWorkers:  maxWorkers,
		FailFast:    failFast,
		ItemTimeout: itemTimeout,
		RunID:       uuid.New().String(),
	}
}

// Run processes items and returns one result per item, in input
// order.  The error is the first item failure under FailFast, nil
// otherwise.
func (bp *BatchPipeline) Run(ctx context.Context, items []*BatchItem) ([]*BatchResult, error) {
	results := make([]*BatchResult, len(items))
	for i, item := range items {
		results[i] = &BatchResult{ID: uuid.New().String(), Item: item}
	}
	if len(items) == 0 {
		return results, nil
	}

	size := PoolSize(len(items), bp.MaxWorkers)
	if bp.Verbose {
		log.Printf("batch %s: %d items, %d workers, fail fast %v", bp.RunID, len(items), size, bp.FailFast)
	}
	start := time.Now()

	var err error
	if bp.FailFast {
		err = bp.runFailFast(ctx, results, size)
	} else {
		bp.runBestEffort(ctx, results, size)
	}

	if bp.Verbose {
		failed := 0
		for _, r := range results {
			if r.Err != nil {
				failed++
			}
		}
		log.Printf("batch %s: %d/%d items succeeded in %v", bp.RunID, len(items)-failed, len(items), time.Since(start))
	}
	return results, err
}

func (bp *BatchPipeline) runBestEffort(ctx context.Context, results []*BatchResult, size int) {
	cLimiter := NewConcLimiter(size)
	for _, r := range results {
		if err := cLimiter.Increase(ctx); err != nil {
			bp.finish(r, err)
			continue
		}
		go func(r *BatchResult) {
			defer cLimiter.Decrease()
			bp.runItem(ctx, r)
		}(r)
	}
	cLimiter.Wait()
}

func (bp *BatchPipeline) runFailFast(ctx context.Context, results []*BatchResult, size int) error {
	g, gctx := errgroup.WithContext(ctx)
	cLimiter := NewConcLimiter(size)
	for _, r := range results {
		if err := cLimiter.Increase(gctx); err != nil {
			bp.finish(r, err)
			continue
		}
		g.Go(func() error {
			defer cLimiter.Decrease()
			bp.runItem(gctx, r)
			return r.Err
		})
	}
	err := g.Wait()
	cLimiter.Wait()
	return err
}

// runItem runs one item under the item timeout, turning panics into
// the item's error.  It returns once the runner has returned.
func (bp *BatchPipeline) runItem(ctx context.Context, r *BatchResult) {
	if err := ctx.Err(); err != nil {
		bp.finish(r, err)
		return
	}
	if bp.ItemTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, bp.ItemTimeout)
		defer cancel()
	}

	type outcome struct {
		products []*CompositeProduct
		err      error
	}
	done := make(chan outcome, 1)
	start := time.Now()
	go func() {
		var o outcome
		defer func() {
			if p := recover(); p != nil {
				o = outcome{err: fmt.Errorf("panic processing %s: %v", r.Item.Path, p)}
			}
			done <- o
		}()
		o.products, o.err = bp.Runner.Run(ctx, r.Item)
	}()

	select {
	case o := <-done:
		r.Products = o.products
		r.Duration = time.Since(start)
		bp.finish(r, o.err)
	case <-ctx.Done():
		r.Duration = time.Since(start)
		err := ctx.Err()
		// The worker slot is held until the runner returns, so that
		// a timed out extraction still counts against MaxWorkers.
		<-done
		bp.finish(r, err)
	}
}

func (bp *BatchPipeline) finish(r *BatchResult, err error) {
	if err != nil {
		r.Err = err
		r.Products = nil
		if bp.Verbose {
			log.Printf("batch %s: item %s %s failed: %v", bp.RunID, r.ID, r.Item.Path, err)
		}
	}
	if bp.OnResult != nil {
		bp.OnResult(r)
	}
}
