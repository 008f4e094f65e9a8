package gdalservice

import (
	"net"
	"testing"

	"github.com/golang/protobuf/proto"
	"golang.org/x/net/context"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"
)

func TestResultEncoding(t *testing.T) {
	in := &Result{
		Error: "OK",
		Products: []*Product{{
			Name:       "ndvi",
			Crs:        "EPSG:32631",
			X:          []float64{300005, 300015},
			Y:          []float64{4999995},
			Resolution: 10,
			Times:      []int64{1590993031024000000},
			Vars:       []*Variable{{Name: "ndvi", Data: []float32{0.25, -1}, Attrs: map[string]string{"units": "1"}}},
			Attrs:      map[string]string{"Convention": "CF-1.8"},
		}},
		Metrics: &WorkerMetrics{BytesRead: 8},
	}
	buf, err := proto.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	out := new(Result)
	if err := proto.Unmarshal(buf, out); err != nil {
		t.Fatal(err)
	}
	if !proto.Equal(in, out) {
		t.Errorf("decoded %v, want %v", out, in)
	}
}

func TestDescriptors(t *testing.T) {
	md := (&Result{}).ProtoReflect().Descriptor()
	if md.FullName() != "gdalservice.Result" {
		t.Errorf("message %s", md.FullName())
	}
	if f := md.Fields().ByName("error_kind"); f == nil || f.Number() != 3 || f.JSONName() != "errorKind" {
		t.Errorf("error_kind field %v", f)
	}
	opts := (&ExtractRequest{}).ProtoReflect().Descriptor().Fields().ByName("options")
	if opts == nil || !opts.IsMap() || opts.Number() != 10 {
		t.Errorf("options field %v", opts)
	}

	sd := File_gdalservice_proto.Services().ByName("Extractor")
	if sd == nil {
		t.Fatal("Extractor service missing")
	}
	m := sd.Methods().ByName("Extract")
	if m == nil || m.Input().FullName() != "gdalservice.ExtractRequest" || m.Output().FullName() != "gdalservice.Result" {
		t.Errorf("Extract method %v", m)
	}
	if path := "/" + string(sd.FullName()) + "/" + string(m.Name()); path != extractMethod {
		t.Errorf("method path %s, client uses %s", path, extractMethod)
	}
}

type echoServer struct{}

func (echoServer) Extract(ctx context.Context, req *ExtractRequest) (*Result, error) {
	if req.Path == "" {
		return &Result{Error: "missing path", ErrorKind: "input"}, nil
	}
	return &Result{Error: "OK", Products: []*Product{{Name: req.ProductType, Attrs: req.Options}}}, nil
}

func TestExtractorRoundTrip(t *testing.T) {
	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer()
	RegisterExtractorServer(s, echoServer{})
	go s.Serve(lis)
	defer s.Stop()

	conn, err := grpc.Dial("bufnet",
		grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) { return lis.Dial() }),
		grpc.WithInsecure())
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	c := NewExtractorClient(conn)

	res, err := c.Extract(context.Background(), &ExtractRequest{ProductType: "S2_THEIA", Path: "/data/x.zip", Options: map[string]string{"flags": "true"}})
	if err != nil {
		t.Fatal(err)
	}
	if res.Error != "OK" || len(res.Products) != 1 || res.Products[0].Name != "S2_THEIA" || res.Products[0].Attrs["flags"] != "true" {
		t.Errorf("unexpected result %v", res)
	}

	res, err = c.Extract(context.Background(), &ExtractRequest{ProductType: "S2_THEIA"})
	if err != nil {
		t.Fatal(err)
	}
	if res.ErrorKind != "input" {
		t.Errorf("unexpected result %v", res)
	}
}
