package client

import (
	"errors"
	"iter"
	"slices"

	"github.com/ValentinKolb/hKV/lib/storage"
	"github.com/ValentinKolb/hKV/rpc/common"
	"github.com/ValentinKolb/hKV/rpc/serializer"
	"github.com/ValentinKolb/hKV/rpc/transport"
)

// NewRPCStorage creates a storage.Storage that forwards every call to a remote server.
//
// The wire protocol only returns values, so two results are derived:
// Set reports replaced and Delete reports found if the returned previous value
// is not empty. Storing the empty value is therefore indistinguishable from a
// miss for these two methods.
func NewRPCStorage(
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (storage.Storage, error) {
	c, err := NewRPCClient(config, transport, serializer)
	if err != nil {
		return nil, err
	}
	return &rpcStorage{client: c}, nil
}

type rpcStorage struct {
	client *Client
}

// --------------------------------------------------------------------------
// Interface Methods (docu see storage.Storage)
// --------------------------------------------------------------------------

func (s *rpcStorage) Get(table, key string) (storage.Value, bool, error) {
	v, err := s.client.Hget(table, key)
	if storage.CodeOf(err) == storage.RetCNotFound {
		return storage.Value{}, false, nil
	}
	if err != nil {
		return storage.Value{}, false, asStorageError(err)
	}
	return v, true, nil
}

func (s *rpcStorage) Set(table, key string, value storage.Value) (storage.Value, bool, error) {
	prev, err := s.client.Hset(table, key, value)
	if err != nil {
		return storage.Value{}, false, asStorageError(err)
	}
	return prev, !prev.IsEmpty(), nil
}

func (s *rpcStorage) Contains(table, key string) (bool, error) {
	found, err := s.client.Hexist(table, key)
	if err != nil {
		return false, asStorageError(err)
	}
	return found, nil
}

func (s *rpcStorage) Delete(table, key string) (storage.Value, bool, error) {
	prev, err := s.client.Hdel(table, key)
	if err != nil {
		return storage.Value{}, false, asStorageError(err)
	}
	return prev, !prev.IsEmpty(), nil
}

func (s *rpcStorage) GetAll(table string) ([]storage.Kvpair, error) {
	pairs, err := s.client.Hgetall(table)
	if err != nil {
		return nil, asStorageError(err)
	}
	return pairs, nil
}

// GetIter fetches the whole table once and iterates over that snapshot
func (s *rpcStorage) GetIter(table string) (iter.Seq[storage.Kvpair], error) {
	pairs, err := s.GetAll(table)
	if err != nil {
		return nil, err
	}
	return slices.Values(pairs), nil
}

// Close closes the underlying transport
func (s *rpcStorage) Close() error {
	return s.client.Close()
}

// asStorageError keeps *storage.Error values and wraps transport failures
// into a RetCStorageError
func asStorageError(err error) error {
	var sErr *storage.Error
	if errors.As(err, &sErr) {
		return err
	}
	return storage.NewStorageError("rpc: %v", err)
}
