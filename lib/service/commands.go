package service

import (
	"github.com/ValentinKolb/hKV/lib/storage"
)

// --------------------------------------------------------------------------
// Validation
// --------------------------------------------------------------------------

// validate checks the structurally required fields of a variant
func validate(cmd RequestData) error {
	if cmd.tableName() == "" {
		return storage.NewInvalidCommandError("%s: missing table name", cmd.CommandName())
	}
	return nil
}

// --------------------------------------------------------------------------
// Single Key Commands
// --------------------------------------------------------------------------

// Execute returns the value of the key or a 404 response if it does not exist
func (c *Hget) Execute(store storage.Storage) *CommandResponse {
	if err := validate(c); err != nil {
		return NewErrorResponse(err)
	}
	v, found, err := store.Get(c.Table, c.Key)
	if err != nil {
		return NewErrorResponse(err)
	}
	if !found {
		return NewErrorResponse(storage.NewNotFoundError(c.Table, c.Key))
	}
	return NewValuesResponse(v)
}

// Execute stores the pair and returns the previous value (or the empty value).
// Without a pair nothing is written and the empty value is returned.
func (c *Hset) Execute(store storage.Storage) *CommandResponse {
	if err := validate(c); err != nil {
		return NewErrorResponse(err)
	}
	if c.Pair == nil {
		return NewValuesResponse(storage.Value{})
	}
	prev, _, err := store.Set(c.Table, c.Pair.Key, c.Pair.ValueOrEmpty())
	if err != nil {
		return NewErrorResponse(err)
	}
	return NewValuesResponse(prev)
}

// Execute removes the key and returns the removed value (or the empty value)
func (c *Hdel) Execute(store storage.Storage) *CommandResponse {
	if err := validate(c); err != nil {
		return NewErrorResponse(err)
	}
	prev, _, err := store.Delete(c.Table, c.Key)
	if err != nil {
		return NewErrorResponse(err)
	}
	return NewValuesResponse(prev)
}

// Execute returns a single bool value
func (c *Hexist) Execute(store storage.Storage) *CommandResponse {
	if err := validate(c); err != nil {
		return NewErrorResponse(err)
	}
	found, err := store.Contains(c.Table, c.Key)
	if err != nil {
		return NewErrorResponse(err)
	}
	return NewValuesResponse(storage.BoolValue(found))
}

// --------------------------------------------------------------------------
// Table Commands
// --------------------------------------------------------------------------

// Execute returns a snapshot of all pairs of the table
func (c *Hgetall) Execute(store storage.Storage) *CommandResponse {
	if err := validate(c); err != nil {
		return NewErrorResponse(err)
	}
	pairs, err := store.GetAll(c.Table)
	if err != nil {
		return NewErrorResponse(err)
	}
	return NewPairsResponse(pairs)
}

// --------------------------------------------------------------------------
// Multi Key Commands
//
// These run one storage call per key, in order. They are not atomic: if the
// backend fails in the middle, the earlier keys have already been processed.
// --------------------------------------------------------------------------

// Execute returns one value per key, the empty value for missing keys
func (c *Hmget) Execute(store storage.Storage) *CommandResponse {
	if err := validate(c); err != nil {
		return NewErrorResponse(err)
	}
	values := make([]storage.Value, 0, len(c.Keys))
	for _, key := range c.Keys {
		v, _, err := store.Get(c.Table, key)
		if err != nil {
			return NewErrorResponse(err)
		}
		values = append(values, v)
	}
	return NewValuesResponse(values...)
}

// Execute stores all pairs and returns the previous value of each
func (c *Hmset) Execute(store storage.Storage) *CommandResponse {
	if err := validate(c); err != nil {
		return NewErrorResponse(err)
	}
	values := make([]storage.Value, 0, len(c.Pairs))
	for _, pair := range c.Pairs {
		prev, _, err := store.Set(c.Table, pair.Key, pair.ValueOrEmpty())
		if err != nil {
			return NewErrorResponse(err)
		}
		values = append(values, prev)
	}
	return NewValuesResponse(values...)
}

// Execute removes all keys and returns the removed value of each
func (c *Hmdel) Execute(store storage.Storage) *CommandResponse {
	if err := validate(c); err != nil {
		return NewErrorResponse(err)
	}
	values := make([]storage.Value, 0, len(c.Keys))
	for _, key := range c.Keys {
		prev, _, err := store.Delete(c.Table, key)
		if err != nil {
			return NewErrorResponse(err)
		}
		values = append(values, prev)
	}
	return NewValuesResponse(values...)
}

// Execute returns one bool per key
func (c *Hmexist) Execute(store storage.Storage) *CommandResponse {
	if err := validate(c); err != nil {
		return NewErrorResponse(err)
	}
	values := make([]storage.Value, 0, len(c.Keys))
	for _, key := range c.Keys {
		found, err := store.Contains(c.Table, key)
		if err != nil {
			return NewErrorResponse(err)
		}
		values = append(values, storage.BoolValue(found))
	}
	return NewValuesResponse(values...)
}
