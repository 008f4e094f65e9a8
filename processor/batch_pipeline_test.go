package processor

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nci/gcube/raster"
)

type runnerFunc func(ctx context.Context, item *BatchItem) ([]*CompositeProduct, error)

func (f runnerFunc) Run(ctx context.Context, item *BatchItem) ([]*CompositeProduct, error) {
	return f(ctx, item)
}

func items(paths ...string) []*BatchItem {
	var out []*BatchItem
	for _, p := range paths {
		out = append(out, &BatchItem{ProductType: "S2_ESA_L1C", Path: p})
	}
	return out
}

func TestBatchPipelineOrderAndIsolation(t *testing.T) {
	runner := runnerFunc(func(ctx context.Context, item *BatchItem) ([]*CompositeProduct, error) {
		if item.Path == "bad" {
			return nil, fmt.Errorf("corrupted product")
		}
		// later items finish first
		d := time.Duration(5-len(item.Path)) * time.Millisecond
		time.Sleep(d)
		return []*CompositeProduct{singleVar(item.Path, 0, 20, 10, 2, 2, nil)}, nil
	})

	var calls int32
	bp := NewBatchPipeline(runner, 4, false, 0)
	bp.OnResult = func(*BatchResult) { atomic.AddInt32(&calls, 1) }
	results, err := bp.Run(context.Background(), items("a", "bb", "bad", "dddd"))
	if err != nil {
		t.Fatal(err)
	}
	if calls != 4 {
		t.Errorf("OnResult called %d times", calls)
	}
	ids := map[string]bool{}
	for i, want := range []string{"a", "bb", "bad", "dddd"} {
		r := results[i]
		if r.Item.Path != want {
			t.Fatalf("result %d is for %s, want %s", i, r.Item.Path, want)
		}
		if ids[r.ID] || r.ID == "" {
			t.Errorf("result %d has id %q", i, r.ID)
		}
		ids[r.ID] = true
		if want == "bad" {
			if r.Err == nil || r.Products != nil {
				t.Errorf("failing item: %v, %v", r.Err, r.Products)
			}
			continue
		}
		if r.Err != nil || len(r.Products) != 1 || r.Products[0].Name != want {
			t.Errorf("item %s: %v, %v", want, r.Err, r.Products)
		}
	}
	if bp.RunID == "" {
		t.Error("no run id")
	}
}

func TestBatchPipelineFailFast(t *testing.T) {
	failure := fmt.Errorf("corrupted product")
	runner := runnerFunc(func(ctx context.Context, item *BatchItem) ([]*CompositeProduct, error) {
		if item.Path == "bad" {
			return nil, failure
		}
		<-ctx.Done()
		return nil, ctx.Err()
	})

	bp := NewBatchPipeline(runner, 2, true, 0)
	results, err := bp.Run(context.Background(), items("bad", "b", "c", "d"))
	if err != failure {
		t.Fatalf("got %v, want the item failure", err)
	}
	if results[0].Err != failure {
		t.Errorf("failing item reported %v", results[0].Err)
	}
	for _, r := range results[1:] {
		if !errors.Is(r.Err, context.Canceled) {
			t.Errorf("item %s: %v, want cancellation", r.Item.Path, r.Err)
		}
	}
}

func TestBatchPipelineItemTimeout(t *testing.T) {
	runner := runnerFunc(func(ctx context.Context, item *BatchItem) ([]*CompositeProduct, error) {
		if item.Path == "slow" {
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return []*CompositeProduct{singleVar(item.Path, 0, 20, 10, 2, 2, nil)}, nil
	})
	bp := NewBatchPipeline(runner, 0, false, 20*time.Millisecond)
	results, err := bp.Run(context.Background(), items("slow", "fast"))
	if err != nil {
		t.Fatal(err)
	}
	if !errors.Is(results[0].Err, context.DeadlineExceeded) {
		t.Errorf("slow item: %v", results[0].Err)
	}
	if results[1].Err != nil {
		t.Errorf("fast item: %v", results[1].Err)
	}
}

func TestBatchPipelineTimeoutKeepsPoolBound(t *testing.T) {
	var running, peak int32
	runner := runnerFunc(func(ctx context.Context, item *BatchItem) ([]*CompositeProduct, error) {
		n := atomic.AddInt32(&running, 1)
		defer atomic.AddInt32(&running, -1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		// a reader that does not look at ctx
		time.Sleep(30 * time.Millisecond)
		return []*CompositeProduct{singleVar(item.Path, 0, 20, 10, 2, 2, nil)}, nil
	})
	bp := NewBatchPipeline(runner, 1, false, 5*time.Millisecond)
	results, err := bp.Run(context.Background(), items("a", "b", "c", "d"))
	if err != nil {
		t.Fatal(err)
	}
	if p := atomic.LoadInt32(&peak); p != 1 {
		t.Errorf("%d concurrent runs with one worker", p)
	}
	if n := atomic.LoadInt32(&running); n != 0 {
		t.Errorf("%d runs still going after Run returned", n)
	}
	for i, r := range results {
		if !errors.Is(r.Err, context.DeadlineExceeded) || r.Products != nil {
			t.Errorf("item %d: %v, %d products", i, r.Err, len(r.Products))
		}
	}
}

func TestBatchPipelineRecoversPanics(t *testing.T) {
	runner := runnerFunc(func(ctx context.Context, item *BatchItem) ([]*CompositeProduct, error) {
		var p *CompositeProduct
		return []*CompositeProduct{{Name: p.Name}}, nil
	})
	results, err := NewBatchPipeline(runner, 1, false, 0).Run(context.Background(), items("x"))
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Err == nil || !strings.Contains(results[0].Err.Error(), "panic") {
		t.Errorf("got %v", results[0].Err)
	}
}

func TestBatchPipelineCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var ran int32
	runner := runnerFunc(func(ctx context.Context, item *BatchItem) ([]*CompositeProduct, error) {
		atomic.AddInt32(&ran, 1)
		return nil, nil
	})
	results, _ := NewBatchPipeline(runner, 1, false, 0).Run(ctx, items("a", "b"))
	for _, r := range results {
		if !errors.Is(r.Err, context.Canceled) {
			t.Errorf("item %s: %v", r.Item.Path, r.Err)
		}
	}
	if ran != 0 {
		t.Errorf("runner called %d times", ran)
	}
}

func TestBatchPipelineWithBuilder(t *testing.T) {
	op, dir := s2Product(t)
	cfg := testBuilderConfig(t, op, raster.BBox{})
	batch := []*BatchItem{
		{ProductType: "S2_ESA_L1C", Path: dir, Bands: []string{"B4"}},
		{ProductType: "S2_ESA_L1C", Path: dir, Formulas: []string{"evi"}},
	}
	results, err := NewBatchPipeline(&LocalRunner{Config: cfg}, 2, false, 0).Run(context.Background(), batch)
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Err != nil || len(results[0].Products) != 1 {
		t.Errorf("first item: %v", results[0].Err)
	}
	if results[1].Err == nil {
		t.Error("unknown formula accepted")
	}
}

func TestPoolSize(t *testing.T) {
	cpus := runtime.NumCPU()
	if got := PoolSize(1, 0); got != 1 {
		t.Errorf("one item: %d workers", got)
	}
	if got := PoolSize(1000, 0); got != cpus {
		t.Errorf("no limit: %d workers, want %d", got, cpus)
	}
	if got := PoolSize(1000, 1); got != 1 {
		t.Errorf("limit 1: %d workers", got)
	}
	if got := PoolSize(0, 0); got != 1 {
		t.Errorf("empty batch: %d workers", got)
	}
}
