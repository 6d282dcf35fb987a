package client

import (
	"github.com/ValentinKolb/hKV/lib/service"
	"github.com/ValentinKolb/hKV/lib/storage"
	"github.com/ValentinKolb/hKV/rpc/common"
	"github.com/ValentinKolb/hKV/rpc/serializer"
	"github.com/ValentinKolb/hKV/rpc/transport"
)

// Client sends commands to an hKV server. It is safe for concurrent use.
type Client struct {
	config     common.ClientConfig
	transport  transport.IRPCClientTransport
	serializer serializer.IRPCSerializer
}

// NewRPCClient connects the transport and returns a client using it.
// The serializer must match the one of the server.
func NewRPCClient(
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (*Client, error) {
	if err := transport.Connect(config); err != nil {
		return nil, err
	}

	Logger.Debugf("created rpc client: %s", config.String())

	return &Client{
		config:     config,
		transport:  transport,
		serializer: serializer,
	}, nil
}

// Execute sends a request and returns the raw response. The error is only set
// if the request could not be delivered; use resp.Err() for command errors.
func (c *Client) Execute(req *service.CommandRequest) (*service.CommandResponse, error) {
	return invokeRPCRequest(req, c.transport, c.serializer)
}

// Close closes the underlying transport
func (c *Client) Close() error {
	return c.transport.Close()
}

// --------------------------------------------------------------------------
// Typed Commands
//
// All of these return a *storage.Error for failed commands and a plain error
// for transport failures.
// --------------------------------------------------------------------------

// run executes a request and converts a failed response into an error
func (c *Client) run(req *service.CommandRequest) (*service.CommandResponse, error) {
	resp, err := c.Execute(req)
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return resp, nil
}

// single runs a request expected to answer with exactly one value
func (c *Client) single(req *service.CommandRequest) (storage.Value, error) {
	resp, err := c.run(req)
	if err != nil {
		return storage.Value{}, err
	}
	if err := expectValues(req, resp, 1); err != nil {
		return storage.Value{}, err
	}
	return resp.Values[0], nil
}

// multi runs a request expected to answer with one value per key
func (c *Client) multi(req *service.CommandRequest, n int) ([]storage.Value, error) {
	resp, err := c.run(req)
	if err != nil {
		return nil, err
	}
	if err := expectValues(req, resp, n); err != nil {
		return nil, err
	}
	return resp.Values, nil
}

// Hget returns the value of a key. A missing key is reported as a RetCNotFound error.
func (c *Client) Hget(table, key string) (storage.Value, error) {
	return c.single(service.NewHget(table, key))
}

// Hgetall returns all pairs of a table
func (c *Client) Hgetall(table string) ([]storage.Kvpair, error) {
	resp, err := c.run(service.NewHgetall(table))
	if err != nil {
		return nil, err
	}
	return resp.Pairs, nil
}

// Hmget returns one value per key, the empty value for missing keys
func (c *Client) Hmget(table string, keys ...string) ([]storage.Value, error) {
	return c.multi(service.NewHmget(table, keys...), len(keys))
}

// Hset stores a value and returns the previous one (or the empty value)
func (c *Client) Hset(table, key string, value storage.Value) (storage.Value, error) {
	return c.single(service.NewHset(table, key, value))
}

// Hmset stores several pairs and returns the previous value of each
func (c *Client) Hmset(table string, pairs ...storage.Kvpair) ([]storage.Value, error) {
	return c.multi(service.NewHmset(table, pairs...), len(pairs))
}

// Hdel removes a key and returns the removed value (or the empty value)
func (c *Client) Hdel(table, key string) (storage.Value, error) {
	return c.single(service.NewHdel(table, key))
}

// Hmdel removes several keys and returns the removed value of each
func (c *Client) Hmdel(table string, keys ...string) ([]storage.Value, error) {
	return c.multi(service.NewHmdel(table, keys...), len(keys))
}

// Hexist reports whether a key exists
func (c *Client) Hexist(table, key string) (bool, error) {
	req := service.NewHexist(table, key)
	v, err := c.single(req)
	if err != nil {
		return false, err
	}
	return asBool(req, v)
}

// Hmexist reports for each key whether it exists
func (c *Client) Hmexist(table string, keys ...string) ([]bool, error) {
	req := service.NewHmexist(table, keys...)
	values, err := c.multi(req, len(keys))
	if err != nil {
		return nil, err
	}
	result := make([]bool, len(values))
	for i, v := range values {
		if result[i], err = asBool(req, v); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func asBool(req *service.CommandRequest, v storage.Value) (bool, error) {
	b, ok := v.AsBool()
	if !ok {
		return false, storage.NewInternalError("%s: expected bool value in response, got %s", req.CommandName(), v)
	}
	return b, nil
}
