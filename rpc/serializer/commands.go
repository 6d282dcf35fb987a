package serializer

import (
	"fmt"

	"github.com/ValentinKolb/hKV/lib/service"
	"github.com/ValentinKolb/hKV/lib/storage"
)

// --------------------------------------------------------------------------
// Flat view of the command variants (shared by binary, proto and resp)
// --------------------------------------------------------------------------

// Command numbers. They double as the protobuf field numbers of the
// CommandRequest oneof.
const (
	cmdNone    byte = 0
	cmdHget    byte = 1
	cmdHgetall byte = 2
	cmdHmget   byte = 3
	cmdHset    byte = 4
	cmdHmset   byte = 5
	cmdHdel    byte = 6
	cmdHmdel   byte = 7
	cmdHexist  byte = 8
	cmdHmexist byte = 9
)

// shape describes which fields besides the table a command carries
type shape int

const (
	shapeTable shape = iota // table only
	shapeKey                // table, key
	shapeKeys               // table, keys
	shapePair               // table, optional pair
	shapePairs              // table, pairs
)

func shapeOf(cmd byte) shape {
	switch cmd {
	case cmdHget, cmdHdel, cmdHexist:
		return shapeKey
	case cmdHmget, cmdHmdel, cmdHmexist:
		return shapeKeys
	case cmdHset:
		return shapePair
	case cmdHmset:
		return shapePairs
	default:
		return shapeTable
	}
}

// commandFields holds the union of all variant fields
type commandFields struct {
	table string
	key   string
	keys  []string
	pair  *storage.Kvpair
	pairs []storage.Kvpair
}

func deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// flatten converts a variant into its command number and fields.
// A nil variant yields cmdNone.
func flatten(data service.RequestData) (byte, commandFields, error) {
	switch c := data.(type) {
	case nil:
		return cmdNone, commandFields{}, nil
	case *service.Hget:
		v := deref(c)
		return cmdHget, commandFields{table: v.Table, key: v.Key}, nil
	case *service.Hgetall:
		v := deref(c)
		return cmdHgetall, commandFields{table: v.Table}, nil
	case *service.Hmget:
		v := deref(c)
		return cmdHmget, commandFields{table: v.Table, keys: v.Keys}, nil
	case *service.Hset:
		v := deref(c)
		return cmdHset, commandFields{table: v.Table, pair: v.Pair}, nil
	case *service.Hmset:
		v := deref(c)
		return cmdHmset, commandFields{table: v.Table, pairs: v.Pairs}, nil
	case *service.Hdel:
		v := deref(c)
		return cmdHdel, commandFields{table: v.Table, key: v.Key}, nil
	case *service.Hmdel:
		v := deref(c)
		return cmdHmdel, commandFields{table: v.Table, keys: v.Keys}, nil
	case *service.Hexist:
		v := deref(c)
		return cmdHexist, commandFields{table: v.Table, key: v.Key}, nil
	case *service.Hmexist:
		v := deref(c)
		return cmdHmexist, commandFields{table: v.Table, keys: v.Keys}, nil
	default:
		return cmdNone, commandFields{}, fmt.Errorf("unsupported command %T", data)
	}
}

// unflatten is the inverse of flatten
func unflatten(cmd byte, f commandFields) (service.RequestData, error) {
	switch cmd {
	case cmdNone:
		return nil, nil
	case cmdHget:
		return &service.Hget{Table: f.table, Key: f.key}, nil
	case cmdHgetall:
		return &service.Hgetall{Table: f.table}, nil
	case cmdHmget:
		return &service.Hmget{Table: f.table, Keys: f.keys}, nil
	case cmdHset:
		return &service.Hset{Table: f.table, Pair: f.pair}, nil
	case cmdHmset:
		return &service.Hmset{Table: f.table, Pairs: f.pairs}, nil
	case cmdHdel:
		return &service.Hdel{Table: f.table, Key: f.key}, nil
	case cmdHmdel:
		return &service.Hmdel{Table: f.table, Keys: f.keys}, nil
	case cmdHexist:
		return &service.Hexist{Table: f.table, Key: f.key}, nil
	case cmdHmexist:
		return &service.Hmexist{Table: f.table, Keys: f.keys}, nil
	default:
		return nil, fmt.Errorf("unknown command number %d", cmd)
	}
}

// commandNumber returns the number of a command name ("hget" -> 1)
func commandNumber(name string) (byte, bool) {
	data, err := service.NewRequestData(name)
	if err != nil {
		return cmdNone, false
	}
	cmd, _, err := flatten(data)
	return cmd, err == nil
}
