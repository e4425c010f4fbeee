// Package server exposes the compiler as a gRPC service.
//
// The service has a single unary method, comprehend.Compiler/Compile.
// Requests and responses are google.protobuf.Struct messages so any gRPC
// client can call it without generated stubs:
//
//	request:  {source, target, file, elem, key, value, dup}
//	response: {request_id, code, type, imports, diagnostics}
//
// Compile errors are returned as diagnostics in a successful response.
// Malformed requests fail with codes.InvalidArgument.
package server

import (
	"context"
	"fmt"
	"net"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/funvibe/comprehend/internal/cache"
	"github.com/funvibe/comprehend/internal/config"
	"github.com/funvibe/comprehend/internal/logger"
	"github.com/funvibe/comprehend/pkg/comprehend"
)

const (
	ServiceName   = "comprehend.Compiler"
	CompileMethod = "/" + ServiceName + "/Compile"
)

// CompilerServer is the handler type registered with grpc.
type CompilerServer interface {
	Compile(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// Server compiles requests with its default options, filling in whatever a
// request leaves unset. Cache may be nil.
type Server struct {
	Defaults comprehend.Options
	Cache    *cache.Cache

	grpc *grpc.Server
}

// New creates a server with the options of cfg.
func New(cfg *config.Config, c *cache.Cache) *Server {
	s := &Server{Defaults: cfg.Options(), Cache: c, grpc: grpc.NewServer()}
	s.grpc.RegisterService(serviceDesc, s)
	return s
}

var serviceDesc = &grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CompilerServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Compile",
			Handler:    compileHandler,
		},
	},
	Streams: []grpc.StreamDesc{},
}

func compileHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CompilerServer).Compile(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: CompileMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CompilerServer).Compile(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// Serve accepts connections on lis until Stop is called.
func (s *Server) Serve(lis net.Listener) error {
	logger.Info("serving", "addr", lis.Addr().String(), "service", ServiceName)
	return s.grpc.Serve(lis)
}

// ListenAndServe listens on the TCP address addr.
func (s *Server) ListenAndServe(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return s.Serve(lis)
}

// Stop lets in-flight calls finish and closes the listeners.
func (s *Server) Stop() {
	s.grpc.GracefulStop()
}

// Compile implements CompilerServer.
func (s *Server) Compile(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id := uuid.NewString()
	fields := req.GetFields()
	str := func(name string) string { return fields[name].GetStringValue() }

	src := str("source")
	if src == "" {
		return nil, status.Error(codes.InvalidArgument, "source is required")
	}
	target := comprehend.Eager(comprehend.KindVec)
	if name := str("target"); name != "" {
		t, err := comprehend.ParseTarget(name)
		if err != nil {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		target = t
	}
	opts := s.Defaults
	if v := str("elem"); v != "" {
		opts.Elem = v
	}
	if v := str("key"); v != "" {
		opts.Key = v
	}
	if v := str("value"); v != "" {
		opts.Value = v
	}
	if v := str("dup"); v != "" {
		dup, err := config.ParseDupPolicy(v)
		if err != nil {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		opts.Dup = dup
	}

	resp := map[string]interface{}{"request_id": id}
	res, err := s.compile(str("file"), src, target, opts)
	if err != nil {
		cerr, ok := err.(*comprehend.Error)
		if !ok {
			return nil, status.Error(codes.Internal, err.Error())
		}
		resp["diagnostics"] = diagnosticList(cerr.Diagnostics)
		logger.Debug("compile rejected", "request_id", id, "code", cerr.Code())
	} else {
		imports := make([]interface{}, len(res.Imports))
		for i, imp := range res.Imports {
			imports[i] = imp
		}
		resp["code"] = res.Code
		resp["type"] = res.Type
		resp["imports"] = imports
		resp["diagnostics"] = []interface{}{}
		logger.Debug("compiled", "request_id", id, "target", target.String())
	}

	out, err := structpb.NewStruct(resp)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func (s *Server) compile(file, src string, target comprehend.Target, opts comprehend.Options) (*comprehend.Result, error) {
	if s.Cache == nil {
		return comprehend.CompileFile(file, src, target, opts)
	}
	key := cache.Key(src, target.String(), opts)
	if entry, err := s.Cache.Get(key); err != nil {
		logger.Warn("cache lookup failed", "error", err)
	} else if entry != nil {
		return &comprehend.Result{Code: entry.Code, Type: entry.Type, Imports: entry.Imports}, nil
	}
	res, err := comprehend.CompileFile(file, src, target, opts)
	if err != nil {
		return nil, err
	}
	if err := s.Cache.Put(key, cache.Entry{Code: res.Code, Type: res.Type, Imports: res.Imports}); err != nil {
		logger.Warn("cache store failed", "error", err)
	}
	return res, nil
}

func diagnosticList(ds []comprehend.Diagnostic) []interface{} {
	out := make([]interface{}, len(ds))
	for i, d := range ds {
		out[i] = map[string]interface{}{
			"code":    d.Code,
			"file":    d.File,
			"line":    float64(d.Line),
			"column":  float64(d.Column),
			"message": d.Message,
		}
	}
	return out
}
