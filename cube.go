package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nci/gcube/metrics"
	"github.com/nci/gcube/processor"
	"github.com/nci/gcube/reader"
	"github.com/nci/gcube/region"
	"github.com/nci/gcube/utils"
	gp "github.com/nci/gcube/worker/gdalprocess"
)

var (
	confDir     = flag.String("conf_dir", utils.EtcDir, "Config directory.")
	nameSpace   = flag.String("ns", ".", "Config namespace, relative to conf_dir.")
	productType = flag.String("product_type", "", "Product type of the products given as arguments.")
	productList = flag.String("products", "", "File listing products, one 'product_type path' or crawl record per line.")

	bands        = flag.String("bands", "", "Comma separated bands to extract.")
	formulas     = flag.String("formulas", "", "Comma separated configured formulas to compute.")
	masks        = flag.String("masks", "", "Comma separated configured masks to compute.")
	apply        = flag.String("apply", "", "Comma separated masks applied to the outputs, as name[:include|:exclude].")
	outRes       = flag.Float64("out_res", 0, "Output resolution, 0 for the product default.")
	procRes      = flag.Float64("proc_res", 0, "Processing resolution, 0 for the output resolution.")
	theiaBands   = flag.String("theia_bands", "", "THEIA reflectances: FRE or SRE.")
	theiaMasks   = flag.String("theia_masks", "", "THEIA masks and bits, e.g. 'CLM:0,1;MG2'.")
	noGlint      = flag.Bool("no_glint_correction", false, "GRS reflectances before sunglint removal.")
	grsFlags     = flag.Bool("flags", false, "Apply the GRS water flags.")
	sensingDate  = flag.String("sensing_date", "", "C2RCC acquisition date, YYYY-MM-DD.")
	wkt          = flag.String("wkt", "", "Region as WKT.")
	wktFile      = flag.String("wkt_file", "", "Region read from a WKT file.")
	geojsonFile  = flag.String("geojson", "", "Region read from a GeoJSON Feature or FeatureCollection.")
	vectorFile   = flag.String("shp", "", "Region read from the first feature of a vector file.")
	lat          = flag.Float64("lat", 0, "Latitude of a point region.")
	lon          = flag.Float64("lon", 0, "Longitude of a point region.")
	buffer       = flag.Float64("buffer", 0, "Region buffer, in source CRS units.")
	srs          = flag.String("srs", region.DefaultSRS, "CRS of the WKT and point regions.")
	startTime    = flag.String("start", "", "Catalogue query start, YYYY-MM-DD.")
	endTime      = flag.String("end", "", "Catalogue query end, YYYY-MM-DD.")
	catalogLimit = flag.Int("limit", 0, "Maximum number of catalogue products.")

	remote      = flag.Bool("remote", false, "Run products on the configured gRPC worker nodes.")
	maxWorkers  = flag.Int("max_workers", -1, "Maximum concurrent products, overriding the config.")
	failFast    = flag.Bool("fail_fast", false, "Abort the batch at the first failure.")
	itemTimeout = flag.Duration("item_timeout", 0, "Per product timeout, overriding the config.")
	timeSeries  = flag.Bool("timeseries", false, "Stack the products along time.")
	logDir      = flag.String("log_dir", "", "Metrics log directory, '-' for stdout.")
	reportFile  = flag.String("report", "", "Report template, the built-in one when empty.")
	verbose     = flag.Bool("v", false, "Verbose mode.")
)

func main() {
	flag.Parse()
	utils.EtcDir = *confDir

	confMap, err := utils.LoadAllConfigFiles(utils.EtcDir)
	if err != nil {
		if *verbose {
			log.Printf("cube: no config loaded, using defaults: %v", err)
		}
		confMap = map[string]*utils.Config{".": {}}
	}
	conf, ok := confMap[*nameSpace]
	if !ok {
		log.Fatalf("cube: unknown namespace %q", *nameSpace)
	}

	utils.InitGdal()
	resolver := region.NewResolver(&gp.Engine{})
	env := &reader.Env{Opener: &gp.Opener{Debug: *verbose}, Resolver: resolver, Verbose: *verbose}

	roi, err := regionFromFlags(&gp.Engine{})
	if err != nil {
		log.Fatalf("cube: %v", err)
	}
	tmpl, err := itemFromFlags(roi)
	if err != nil {
		log.Fatalf("cube: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-signals
		log.Printf("cube: interrupted, cancelling")
		cancel()
	}()

	items, err := listItems(ctx, conf, tmpl, resolver)
	if err != nil {
		log.Fatalf("cube: %v", err)
	}
	if len(items) == 0 {
		log.Fatalf("cube: no product to process")
	}

	var runner processor.Runner
	worker := "local"
	if *remote {
		maxMsg := conf.ServiceConfig.MaxGrpcRecvMsgSize
		if maxMsg <= 0 {
			maxMsg = utils.DefaultRecvMsgSize
		}
		r, err := processor.NewGRPCRunner(conf.ServiceConfig.WorkerNodes, maxMsg)
		if err != nil {
			log.Fatalf("cube: %v", err)
		}
		defer r.Close()
		r.Namespace = *nameSpace
		r.Verbose = *verbose
		runner = r
		worker = "grpc"
	} else {
		bc, err := processor.NewBuilderConfig(conf, env)
		if err != nil {
			log.Fatalf("cube: %v", err)
		}
		runner = &processor.LocalRunner{Config: bc}
	}

	workers := conf.ServiceConfig.MaxWorkers
	if *maxWorkers >= 0 {
		workers = *maxWorkers
	}
	timeout := conf.ServiceConfig.ItemTimeoutDuration()
	if *itemTimeout > 0 {
		timeout = *itemTimeout
	}
	bp := processor.NewBatchPipeline(runner, workers, *failFast || conf.ServiceConfig.FailFast, timeout)
	bp.Verbose = *verbose

	metricsLogger, closeLogger := newMetricsLogger(conf)
	if metricsLogger != nil {
		bp.OnResult = processor.ResultLogger(metricsLogger, bp.RunID, worker)
	}

	start := time.Now()
	results, runErr := bp.Run(ctx, items)
	closeLogger()

	var series []*processor.CompositeProduct
	if *timeSeries {
		series, err = stackResults(results)
		if err != nil {
			log.Printf("cube: time series: %v", err)
		}
	}

	report, err := renderReport(*reportFile, &reportView{RunID: bp.RunID, Duration: time.Since(start), Results: results, Series: series})
	if err != nil {
		log.Fatalf("cube: %v", err)
	}
	os.Stdout.Write(report)

	if runErr != nil || countFailed(results) > 0 {
		os.Exit(1)
	}
}

// newMetricsLogger follows log_dir, falling back to the configured
// metrics directory.
func newMetricsLogger(conf *utils.Config) (metrics.Logger, func()) {
	dir := *logDir
	if len(dir) == 0 {
		dir = conf.ServiceConfig.MetricsLogDir
	}
	switch dir {
	case "":
		return nil, func() {}
	case "-":
		return metrics.NewStdoutLogger(), func() {}
	}
	l := metrics.NewFileLogger(dir, 0, 0, *verbose)
	return l, l.Close
}

func countFailed(results []*processor.BatchResult) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

func stackResults(results []*processor.BatchResult) ([]*processor.CompositeProduct, error) {
	var products []*processor.CompositeProduct
	for _, r := range results {
		products = append(products, r.Products...)
	}
	if len(products) == 0 {
		return nil, fmt.Errorf("no product to stack")
	}
	return processor.TimeSeries(products)
}
