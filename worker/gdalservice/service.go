package gdalservice

import (
	"golang.org/x/net/context"
	"google.golang.org/grpc"
)

const extractMethod = "/gdalservice.Extractor/Extract"

type ExtractorClient interface {
	Extract(ctx context.Context, in *ExtractRequest, opts ...grpc.CallOption) (*Result, error)
}

type extractorClient struct {
	cc grpc.ClientConnInterface
}

func NewExtractorClient(cc grpc.ClientConnInterface) ExtractorClient {
	return &extractorClient{cc}
}

func (c *extractorClient) Extract(ctx context.Context, in *ExtractRequest, opts ...grpc.CallOption) (*Result, error) {
	out := new(Result)
	err := c.cc.Invoke(ctx, extractMethod, in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

type ExtractorServer interface {
	Extract(context.Context, *ExtractRequest) (*Result, error)
}

func RegisterExtractorServer(s *grpc.Server, srv ExtractorServer) {
	s.RegisterService(&extractorServiceDesc, srv)
}

func extractHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ExtractRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ExtractorServer).Extract(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: extractMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ExtractorServer).Extract(ctx, req.(*ExtractRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var extractorServiceDesc = grpc.ServiceDesc{
	ServiceName: "gdalservice.Extractor",
	HandlerType: (*ExtractorServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Extract",
			Handler:    extractHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "gdalservice.proto",
}
