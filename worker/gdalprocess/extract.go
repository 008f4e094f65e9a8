package gdalprocess

import (
	"fmt"
	"log"
	"sync"
	"time"

	humanize "github.com/dustin/go-humanize"
	"golang.org/x/net/context"

	"github.com/nci/gcube/processor"
	"github.com/nci/gcube/raster"
	"github.com/nci/gcube/reader"
	"github.com/nci/gcube/region"
	"github.com/nci/gcube/utils"
	pb "github.com/nci/gcube/worker/gdalservice"
)

// Extractor serves extraction requests inside gdal-process.  Builder
// configurations are compiled once per namespace.
type Extractor struct {
	Debug bool

	configs  map[string]*utils.Config
	resolver *region.Resolver

	mu       sync.Mutex
	builders map[string]*processor.BuilderConfig
}

func NewExtractor(configs map[string]*utils.Config, debug bool) *Extractor {
	return &Extractor{
		Debug:    debug,
		configs:  configs,
		resolver: region.NewResolver(Engine{}),
		builders: make(map[string]*processor.BuilderConfig),
	}
}

func (e *Extractor) builderConfig(namespace string) (*processor.BuilderConfig, error) {
	if len(namespace) == 0 {
		namespace = "."
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if cfg, ok := e.builders[namespace]; ok {
		return cfg, nil
	}

	conf, ok := e.configs[namespace]
	if !ok {
		if len(e.configs) > 0 {
			return nil, raster.InputErrorf("unknown namespace %q", namespace)
		}
		conf = &utils.Config{}
	}
	env := &reader.Env{
		Opener:   &Opener{Debug: e.Debug},
		Resolver: e.resolver,
		Verbose:  e.Debug,
	}
	cfg, err := processor.NewBuilderConfig(conf, env)
	if err != nil {
		return nil, fmt.Errorf("namespace %s: %v", namespace, err)
	}
	e.builders[namespace] = cfg
	return cfg, nil
}

// Extract runs req to completion.  Failures are reported in the
// result, never as a Go error, so that their kind survives the trip.
func (e *Extractor) Extract(ctx context.Context, req *pb.ExtractRequest) (res *pb.Result) {
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			res = processor.ErrorResult(fmt.Errorf("extract %s: %v", req.Path, p))
		}
		if e.Debug || req.Verbose {
			log.Printf("extract: %s %s: %s in %v", req.ProductType, req.Path, res.Error, time.Since(start))
		}
	}()

	cfg, err := e.builderConfig(req.Namespace)
	if err != nil {
		return processor.ErrorResult(err)
	}
	item, err := processor.DecodeItem(req)
	if err != nil {
		return processor.ErrorResult(err)
	}
	products, err := (&processor.LocalRunner{Config: cfg}).Run(ctx, item)
	if err != nil {
		return processor.ErrorResult(err)
	}

	var size int64
	for _, p := range products {
		for _, v := range p.Vars {
			for _, d := range v.Data {
				size += int64(len(d)) * 4
			}
		}
	}
	if e.Debug || req.Verbose {
		log.Printf("extract: %s produced %d products, %s", req.Path, len(products), humanize.Bytes(uint64(size)))
	}
	return &pb.Result{
		Error:    "OK",
		Products: processor.EncodeProducts(products),
		Metrics:  &pb.WorkerMetrics{BytesRead: size, DurationNs: time.Since(start).Nanoseconds()},
	}
}
