package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	reuseport "github.com/kavu/go_reuseport"
	"golang.org/x/net/context"
	"google.golang.org/grpc"

	gp "github.com/nci/gcube/worker/gdalprocess"
	pb "github.com/nci/gcube/worker/gdalservice"
)

type server struct {
	Pool *pb.ProcessPool
}

// Extract forwards the request to a gdal-process child.  Extraction
// failures travel inside the result; only transport failures become
// gRPC errors.
func (s *server) Extract(ctx context.Context, in *pb.ExtractRequest) (*pb.Result, error) {
	return s.Pool.Submit(ctx, in)
}

func main() {
	port := flag.Int("p", 6000, "gRPC server listening port.")
	poolSize := flag.Int("n", 8, "Maximum number of requests handled concurrently.")
	executable := flag.String("exec", "", "Executable filepath")
	pprofAddr := flag.String("pprof", "", "pprof listening address, e.g. localhost:6060")
	oomThreshold := flag.Int64("oom_threshold", 0, "Available memory, in MB, under which the largest gdal-process is killed. 0 disables the monitor.")
	maxMsgSize := flag.Int("max_msg_size", 256, "Maximum gRPC message size in MB.")
	debug := flag.Bool("debug", false, "verbose logging")
	flag.Parse()

	if len(*pprofAddr) > 0 {
		go func() {
			log.Println(http.ListenAndServe(*pprofAddr, nil))
		}()
	}

	p, err := pb.CreateProcessPool(*poolSize, *executable, *debug)
	if err != nil {
		log.Printf("Failed to create process pool: %v", err)
		os.Exit(2)
	}

	ctx, cancel := context.WithCancel(context.Background())
	if *oomThreshold > 0 {
		mon := gp.NewOOMMonitor("gdal-process", *oomThreshold*1024*1024, *debug)
		go func() {
			if err := mon.Run(ctx); err != nil && err != context.Canceled {
				log.Printf("OOM monitor stopped: %v", err)
			}
		}()
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-signals
		cancel()
		p.DeleteProcessPool()
		os.Exit(1)
	}()

	s := grpc.NewServer(grpc.MaxSendMsgSize(*maxMsgSize*1024*1024), grpc.MaxRecvMsgSize(*maxMsgSize*1024*1024))
	pb.RegisterExtractorServer(s, &server{Pool: p})

	lis, err := reuseport.Listen("tcp", fmt.Sprintf(":%d", *port))
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}
	log.Printf("gRPC server listening on :%d with %d processes", *port, *poolSize)

	if err := s.Serve(lis); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
