package rpc

import (
	"context"

	"google.golang.org/grpc"

	"github.com/copyleftdev/tundr-problems/internal/wire"
)

// Client calls a remote OptimizerService.
type Client struct {
	conn  grpc.ClientConnInterface
	close func() error
}

// Dial creates a client for target. The returned client owns the connection.
func Dial(target string, opts ...grpc.DialOption) (*Client, error) {
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn, close: conn.Close}, nil
}

// NewClient wraps an existing connection. Close is a no-op for such clients.
func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

// Close releases the connection if the client created it.
func (c *Client) Close() error {
	if c.close == nil {
		return nil
	}
	return c.close()
}

func (c *Client) invoke(ctx context.Context, method string, in, out interface{}) error {
	return c.conn.Invoke(ctx, "/"+serviceName+"/"+method, in, out, grpc.ForceCodec(binaryCodec{}))
}

// RegisterProblem registers msg and returns its id.
func (c *Client) RegisterProblem(ctx context.Context, msg *wire.OptimizationProblem) (string, error) {
	out := new(wire.ProblemHandle)
	if err := c.invoke(ctx, "RegisterProblem", msg, out); err != nil {
		return "", err
	}
	return out.GetId(), nil
}

// GetProblem fetches the wire form of a registered problem.
func (c *Client) GetProblem(ctx context.Context, id string) (*wire.OptimizationProblem, error) {
	out := new(wire.OptimizationProblem)
	if err := c.invoke(ctx, "GetProblem", &wire.ProblemHandle{Id: id}, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListProblems returns the ids of all registered problems.
func (c *Client) ListProblems(ctx context.Context) ([]string, error) {
	out := new(wire.ProblemList)
	if err := c.invoke(ctx, "ListProblems", &wire.Empty{}, out); err != nil {
		return nil, err
	}
	return out.Ids, nil
}

// DeleteProblem removes a registered problem.
func (c *Client) DeleteProblem(ctx context.Context, id string) error {
	return c.invoke(ctx, "DeleteProblem", &wire.ProblemHandle{Id: id}, new(wire.Empty))
}
