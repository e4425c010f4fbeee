package server

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/funvibe/comprehend/pkg/comprehend"
)

// Request is one call to Compile. Empty fields take the server defaults.
type Request struct {
	Source string
	Target string
	File   string
	Elem   string
	Key    string
	Value  string
	Dup    string
}

// Response is the decoded reply. Diagnostics is empty on success.
type Response struct {
	RequestID   string
	Code        string
	Type        string
	Imports     []string
	Diagnostics []comprehend.Diagnostic
}

// Client calls a remote compiler.
type Client struct {
	conn *grpc.ClientConn
}

// Dial connects to target without transport security.
func Dial(target string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", target, err)
	}
	return &Client{conn: conn}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// Compile sends r and decodes the reply.
func (c *Client) Compile(ctx context.Context, r Request) (*Response, error) {
	req, err := structpb.NewStruct(map[string]interface{}{
		"source": r.Source,
		"target": r.Target,
		"file":   r.File,
		"elem":   r.Elem,
		"key":    r.Key,
		"value":  r.Value,
		"dup":    r.Dup,
	})
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, CompileMethod, req, out); err != nil {
		return nil, err
	}
	return decodeResponse(out), nil
}

func decodeResponse(s *structpb.Struct) *Response {
	f := s.GetFields()
	resp := &Response{
		RequestID: f["request_id"].GetStringValue(),
		Code:      f["code"].GetStringValue(),
		Type:      f["type"].GetStringValue(),
	}
	for _, v := range f["imports"].GetListValue().GetValues() {
		resp.Imports = append(resp.Imports, v.GetStringValue())
	}
	for _, v := range f["diagnostics"].GetListValue().GetValues() {
		d := v.GetStructValue().GetFields()
		resp.Diagnostics = append(resp.Diagnostics, comprehend.Diagnostic{
			Code:    d["code"].GetStringValue(),
			File:    d["file"].GetStringValue(),
			Line:    int(d["line"].GetNumberValue()),
			Column:  int(d["column"].GetNumberValue()),
			Message: d["message"].GetStringValue(),
		})
	}
	return resp
}
