package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"runtime"

	"github.com/golang/protobuf/proto"
	"golang.org/x/net/context"

	"github.com/nci/gcube/utils"
	gp "github.com/nci/gcube/worker/gdalprocess"
	pb "github.com/nci/gcube/worker/gdalservice"
)

func sendOutput(out *pb.Result, conn net.Conn) error {
	outb, err := proto.Marshal(out)
	if err != nil {
		return err
	}

	_, err = conn.Write(outb)
	return err
}

func dataHandler(conn net.Conn, extractor *gp.Extractor) {
	defer conn.Close()

	var buf bytes.Buffer
	n, err := io.Copy(&buf, conn)
	if err != nil {
		sendOutput(&pb.Result{Error: fmt.Sprintf("Error reading data %d from socket: %v", n, err)}, conn)
		return
	}

	in := new(pb.ExtractRequest)
	if err = proto.Unmarshal(buf.Bytes(), in); err != nil {
		sendOutput(&pb.Result{Error: fmt.Sprintf("Error unmarshaling protobuf request: %v", err)}, conn)
		return
	}

	out := extractor.Extract(context.Background(), in)
	if err = sendOutput(out, conn); err != nil {
		log.Println(err)
	}
}

func init() {
	if _, ok := os.LookupEnv("GOMAXPROCS"); !ok {
		runtime.GOMAXPROCS(2)
	}

	utils.InitGdal()
}

func main() {
	debug := flag.Bool("debug", false, "verbose logging")
	sock := flag.String("sock", "", "unix socket path")
	confDir := flag.String("conf_dir", utils.EtcDir, "Configuration directory")
	flag.Parse()

	utils.EtcDir = *confDir
	configs, err := utils.LoadAllConfigFiles(*confDir)
	if err != nil {
		log.Printf("No namespace configuration loaded, serving the default one: %v", err)
		configs = map[string]*utils.Config{}
	}
	utils.WatchConfig(log.New(os.Stdout, "", log.LstdFlags), log.New(os.Stderr, "", log.LstdFlags), &configs)
	extractor := gp.NewExtractor(configs, *debug)

	l, err := net.ListenUnix("unix", &net.UnixAddr{Name: *sock, Net: "unix"})
	if err != nil {
		log.Fatal(err)
	}
	defer os.Remove(*sock)

	log.Println("Listening on", *sock)

	for {
		conn, err := l.Accept()
		if err != nil {
			log.Fatal(err)
		}

		dataHandler(conn, extractor)
	}
}
