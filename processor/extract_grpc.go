package processor

import (
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"golang.org/x/net/context"
	"google.golang.org/grpc"

	"github.com/nci/gcube/raster"
	"github.com/nci/gcube/reader"
	"github.com/nci/gcube/region"
	pb "github.com/nci/gcube/worker/gdalservice"
)

// GRPCRunner sends batch items to remote extraction workers, round
// robin over the worker nodes.
type GRPCRunner struct {
	Namespace string
	Verbose   bool
	conns     []*grpc.ClientConn
	next      uint32
}

func NewGRPCRunner(nodes []string, maxRecvMsgSize int) (*GRPCRunner, error) {
	if len(nodes) == 0 {
		return nil, fmt.Errorf("no worker node configured")
	}
	r := &GRPCRunner{}
	for _, node := range nodes {
		conn, err := grpc.Dial(node, grpc.WithInsecure(), grpc.WithDefaultCallOptions(grpc.MaxCallRecvMsgSize(maxRecvMsgSize)))
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("gRPC connection problem: %v", err)
		}
		r.conns = append(r.conns, conn)
	}
	return r, nil
}

func (r *GRPCRunner) Close() {
	for _, conn := range r.conns {
		conn.Close()
	}
}

func (r *GRPCRunner) Run(ctx context.Context, item *BatchItem) ([]*CompositeProduct, error) {
	idx := int(atomic.AddUint32(&r.next, 1)-1) % len(r.conns)
	c := pb.NewExtractorClient(r.conns[idx])

	req := EncodeItem(item)
	req.Namespace = r.Namespace
	req.Verbose = r.Verbose
	start := time.Now()
	res, err := c.Extract(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := ResultError(res); err != nil {
		return nil, err
	}
	if r.Verbose {
		log.Printf("extract gRPC: %s on %s in %v", item.Path, r.conns[idx].Target(), time.Since(start))
	}
	return DecodeProducts(res.Products)
}

// ResultError rebuilds the typed error carried by res, nil on success.
func ResultError(res *pb.Result) error {
	if res.Error == "OK" {
		return nil
	}
	if res.Error == "" {
		return fmt.Errorf("worker returned an empty result")
	}
	return raster.ErrorFromKind(res.ErrorKind, res.Error)
}

// ErrorResult is the wire form of err.
func ErrorResult(err error) *pb.Result {
	return &pb.Result{Error: err.Error(), ErrorKind: raster.ErrorKind(err)}
}

func EncodeItem(item *BatchItem) *pb.ExtractRequest {
	req := &pb.ExtractRequest{
		ProductType:          item.ProductType,
		Path:                 item.Path,
		Bands:                item.Bands,
		Formulas:             item.Formulas,
		Masks:                item.Masks,
		OutResolution:        item.OutResolution,
		ProcessingResolution: item.ProcessingResolution,
		Options:              item.Options.Encode(),
	}
	for _, ref := range item.Apply {
		req.Apply = append(req.Apply, &pb.MaskRef{Name: ref.Name, Exclude: ref.Polarity == Exclude})
	}
	if d := item.Region; d != nil {
		req.Region = &pb.Region{Geometry: d.Geometry, Encoding: d.Encoding, Srs: d.SRS, Buffer: d.Buffer}
	}
	return req
}

func DecodeItem(req *pb.ExtractRequest) (*BatchItem, error) {
	opts, err := reader.DecodeOptions(req.Options)
	if err != nil {
		return nil, err
	}
	item := &BatchItem{
		ProductType:          req.ProductType,
		Path:                 req.Path,
		Bands:                req.Bands,
		Formulas:             req.Formulas,
		Masks:                req.Masks,
		OutResolution:        req.OutResolution,
		ProcessingResolution: req.ProcessingResolution,
		Options:              opts,
	}
	for _, ref := range req.Apply {
		pol := Include
		if ref.Exclude {
			pol = Exclude
		}
		item.Apply = append(item.Apply, MaskRef{Name: ref.Name, Polarity: pol})
	}
	if g := req.Region; g != nil {
		item.Region = &region.Descriptor{Geometry: g.Geometry, Encoding: g.Encoding, SRS: g.Srs, Buffer: g.Buffer}
	}
	return item, nil
}

func EncodeProducts(products []*CompositeProduct) []*pb.Product {
	out := make([]*pb.Product, 0, len(products))
	for _, p := range products {
		pp := &pb.Product{
			Name:       p.Name,
			Crs:        p.CRS,
			X:          p.Grid.X,
			Y:          p.Grid.Y,
			Resolution: p.Grid.Resolution,
			Attrs:      p.Attrs,
			Metadata:   p.Metadata,
		}
		for _, t := range p.Times {
			pp.Times = append(pp.Times, t.UnixNano())
		}
		for _, v := range p.Vars {
			pv := &pb.Variable{Name: v.Name, Categorical: v.Categorical, Attrs: v.Attrs}
			for _, d := range v.Data {
				pv.Data = append(pv.Data, d...)
			}
			pp.Vars = append(pp.Vars, pv)
		}
		out = append(out, pp)
	}
	return out
}

func DecodeProducts(products []*pb.Product) ([]*CompositeProduct, error) {
	out := make([]*CompositeProduct, 0, len(products))
	for _, pp := range products {
		p := &CompositeProduct{
			Name:     pp.Name,
			CRS:      pp.Crs,
			Grid:     &raster.Grid{X: pp.X, Y: pp.Y, Resolution: pp.Resolution},
			Attrs:    pp.Attrs,
			Metadata: pp.Metadata,
		}
		if p.Attrs == nil {
			p.Attrs = make(map[string]string)
		}
		if p.Metadata == nil {
			p.Metadata = make(map[string]string)
		}
		for _, t := range pp.Times {
			p.Times = append(p.Times, time.Unix(0, t).UTC())
		}
		n := len(pp.X) * len(pp.Y)
		for _, pv := range pp.Vars {
			if len(pv.Data) != n*len(pp.Times) {
				return nil, fmt.Errorf("variable %s of %s holds %d values, expected %d", pv.Name, pp.Name, len(pv.Data), n*len(pp.Times))
			}
			v := &Variable{Name: pv.Name, Categorical: pv.Categorical, Attrs: pv.Attrs}
			for t := range pp.Times {
				v.Data = append(v.Data, pv.Data[t*n:(t+1)*n])
			}
			p.Vars = append(p.Vars, v)
		}
		out = append(out, p)
	}
	return out, nil
}
