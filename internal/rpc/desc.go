// package rpc contains the gRPC front-end for the gateway
//
// The service contract lives in proto/catalog.proto. Stub generation is not
// wired into this build: the messages, service descriptor and client below
// are maintained by hand against the proto file, and payloads travel with the
// JSON codec rather than generated protobuf marshaling.
package rpc

import (
	"context"

	"google.golang.org/grpc"
)

const getTracksWithFeaturesMethod = "/catalog.CatalogSearch/GetTracksWithFeatures"

// GetTracksWithFeaturesRequest mirrors catalog.GetTracksWithFeaturesRequest.
type GetTracksWithFeaturesRequest struct {
	TrackIDs []string `json:"track_ids"`
}

// TrackWithFeatures mirrors catalog.TrackWithFeatures.
type TrackWithFeatures struct {
	ID        string            `json:"id"`
	Embedding []float64         `json:"embedding"`
	Metadata  map[string]string `json:"metadata"`
}

// GetTracksWithFeaturesResponse mirrors catalog.GetTracksWithFeaturesResponse.
type GetTracksWithFeaturesResponse struct {
	Tracks []*TrackWithFeatures `json:"tracks"`
}

// CatalogSearchServer is the server API for the catalog.CatalogSearch service.
type CatalogSearchServer interface {
	GetTracksWithFeatures(ctx context.Context, req *GetTracksWithFeaturesRequest) (*GetTracksWithFeaturesResponse, error)
}

// RegisterCatalogSearchServer registers srv with the given gRPC registrar.
func RegisterCatalogSearchServer(s grpc.ServiceRegistrar, srv CatalogSearchServer) {
	s.RegisterService(&catalogSearchServiceDesc, srv)
}

func getTracksWithFeaturesHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetTracksWithFeaturesRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CatalogSearchServer).GetTracksWithFeatures(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: getTracksWithFeaturesMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CatalogSearchServer).GetTracksWithFeatures(ctx, req.(*GetTracksWithFeaturesRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var catalogSearchServiceDesc = grpc.ServiceDesc{
	ServiceName: "catalog.CatalogSearch",
	HandlerType: (*CatalogSearchServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetTracksWithFeatures",
			Handler:    getTracksWithFeaturesHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "proto/catalog.proto",
}

// CatalogSearchClient is the client API for the catalog.CatalogSearch service.
type CatalogSearchClient interface {
	GetTracksWithFeatures(ctx context.Context, in *GetTracksWithFeaturesRequest, opts ...grpc.CallOption) (*GetTracksWithFeaturesResponse, error)
}

type catalogSearchClient struct {
	cc grpc.ClientConnInterface
}

// NewCatalogSearchClient creates a client that speaks this service's JSON
// codec over the given connection.
func NewCatalogSearchClient(cc grpc.ClientConnInterface) CatalogSearchClient {
	return &catalogSearchClient{cc: cc}
}

func (c *catalogSearchClient) GetTracksWithFeatures(ctx context.Context, in *GetTracksWithFeaturesRequest, opts ...grpc.CallOption) (*GetTracksWithFeaturesResponse, error) {
	out := new(GetTracksWithFeaturesResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codecName)}, opts...)
	if err := c.cc.Invoke(ctx, getTracksWithFeaturesMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
