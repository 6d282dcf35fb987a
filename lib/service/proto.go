package service

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/ValentinKolb/hKV/lib/storage"
)

// --------------------------------------------------------------------------
// Status Codes
// --------------------------------------------------------------------------

const (
	StatusOK            uint32 = 200
	StatusBadRequest    uint32 = 400
	StatusNotFound      uint32 = 404
	StatusInternalError uint32 = 500
)

// --------------------------------------------------------------------------
// Request Types
// --------------------------------------------------------------------------

// CommandService is implemented by every command variant. Execute runs the
// command against a store and never returns a Go error: failures are encoded
// in the response.
type CommandService interface {
	Execute(store storage.Storage) *CommandResponse
}

// RequestData is the tagged union of all command variants. It is sealed: only
// the variants of this package implement it.
type RequestData interface {
	CommandService
	// CommandName returns the lower case name of the variant, e.g. "hget"
	CommandName() string
	// tableName returns the target table ("" for a nil variant)
	tableName() string
}

// CommandRequest wraps exactly one command variant. A request without a
// variant is invalid.
type CommandRequest struct {
	RequestData RequestData
}

// CommandName returns the name of the populated variant or "none"
func (r *CommandRequest) CommandName() string {
	if r == nil || r.RequestData == nil {
		return "none"
	}
	return r.RequestData.CommandName()
}

func (r *CommandRequest) String() string {
	if r == nil || r.RequestData == nil {
		return "CommandRequest{none}"
	}
	return fmt.Sprintf("CommandRequest{%s %+v}", r.CommandName(), r.RequestData)
}

// Hget reads a single key
type Hget struct {
	Table string `json:"table"`
	Key   string `json:"key"`
}

// Hgetall reads all pairs of a table
type Hgetall struct {
	Table string `json:"table"`
}

// Hmget reads several keys
type Hmget struct {
	Table string   `json:"table"`
	Keys  []string `json:"keys"`
}

// Hset writes a single pair. A nil Pair is a benign no-op.
type Hset struct {
	Table string          `json:"table"`
	Pair  *storage.Kvpair `json:"pair,omitempty"`
}

// Hmset writes several pairs one after the other
type Hmset struct {
	Table string           `json:"table"`
	Pairs []storage.Kvpair `json:"pairs"`
}

// Hdel removes a single key
type Hdel struct {
	Table string `json:"table"`
	Key   string `json:"key"`
}

// Hmdel removes several keys
type Hmdel struct {
	Table string   `json:"table"`
	Keys  []string `json:"keys"`
}

// Hexist checks whether a key exists
type Hexist struct {
	Table string `json:"table"`
	Key   string `json:"key"`
}

// Hmexist checks several keys
type Hmexist struct {
	Table string   `json:"table"`
	Keys  []string `json:"keys"`
}

func (*Hget) CommandName() string    { return "hget" }
func (*Hgetall) CommandName() string { return "hgetall" }
func (*Hmget) CommandName() string   { return "hmget" }
func (*Hset) CommandName() string    { return "hset" }
func (*Hmset) CommandName() string   { return "hmset" }
func (*Hdel) CommandName() string    { return "hdel" }
func (*Hmdel) CommandName() string   { return "hmdel" }
func (*Hexist) CommandName() string  { return "hexist" }
func (*Hmexist) CommandName() string { return "hmexist" }

func (c *Hget) tableName() string {
	if c == nil {
		return ""
	}
	return c.Table
}

func (c *Hgetall) tableName() string {
	if c == nil {
		return ""
	}
	return c.Table
}

func (c *Hmget) tableName() string {
	if c == nil {
		return ""
	}
	return c.Table
}

func (c *Hset) tableName() string {
	if c == nil {
		return ""
	}
	return c.Table
}

func (c *Hmset) tableName() string {
	if c == nil {
		return ""
	}
	return c.Table
}

func (c *Hdel) tableName() string {
	if c == nil {
		return ""
	}
	return c.Table
}

func (c *Hmdel) tableName() string {
	if c == nil {
		return ""
	}
	return c.Table
}

func (c *Hexist) tableName() string {
	if c == nil {
		return ""
	}
	return c.Table
}

func (c *Hmexist) tableName() string {
	if c == nil {
		return ""
	}
	return c.Table
}

// requestTypes maps command names to constructors of empty variants
var requestTypes = map[string]func() RequestData{
	"hget":    func() RequestData { return &Hget{} },
	"hgetall": func() RequestData { return &Hgetall{} },
	"hmget":   func() RequestData { return &Hmget{} },
	"hset":    func() RequestData { return &Hset{} },
	"hmset":   func() RequestData { return &Hmset{} },
	"hdel":    func() RequestData { return &Hdel{} },
	"hmdel":   func() RequestData { return &Hmdel{} },
	"hexist":  func() RequestData { return &Hexist{} },
	"hmexist": func() RequestData { return &Hmexist{} },
}

// NewRequestData returns an empty variant for a command name (case-insensitive)
func NewRequestData(name string) (RequestData, error) {
	newFn, ok := requestTypes[strings.ToLower(name)]
	if !ok {
		return nil, storage.NewInvalidCommandError("unknown command %q", name)
	}
	return newFn(), nil
}

// CommandNames returns the sorted names of all command variants
func CommandNames() []string {
	names := make([]string, 0, len(requestTypes))
	for name := range requestTypes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// --------------------------------------------------------------------------
// Request Factory Functions
// --------------------------------------------------------------------------

// NewRequest wraps a variant into a request
func NewRequest(data RequestData) *CommandRequest {
	return &CommandRequest{RequestData: data}
}

// NewHget creates a new Hget request
func NewHget(table, key string) *CommandRequest {
	return NewRequest(&Hget{Table: table, Key: key})
}

// NewHgetall creates a new Hgetall request
func NewHgetall(table string) *CommandRequest {
	return NewRequest(&Hgetall{Table: table})
}

// NewHmget creates a new Hmget request
func NewHmget(table string, keys ...string) *CommandRequest {
	return NewRequest(&Hmget{Table: table, Keys: keys})
}

// NewHset creates a new Hset request
func NewHset(table, key string, value storage.Value) *CommandRequest {
	pair := storage.NewKvpair(key, value)
	return NewRequest(&Hset{Table: table, Pair: &pair})
}

// NewHmset creates a new Hmset request
func NewHmset(table string, pairs ...storage.Kvpair) *CommandRequest {
	return NewRequest(&Hmset{Table: table, Pairs: pairs})
}

// NewHdel creates a new Hdel request
func NewHdel(table, key string) *CommandRequest {
	return NewRequest(&Hdel{Table: table, Key: key})
}

// NewHmdel creates a new Hmdel request
func NewHmdel(table string, keys ...string) *CommandRequest {
	return NewRequest(&Hmdel{Table: table, Keys: keys})
}

// NewHexist creates a new Hexist request
func NewHexist(table, key string) *CommandRequest {
	return NewRequest(&Hexist{Table: table, Key: key})
}

// NewHmexist creates a new Hmexist request
func NewHmexist(table string, keys ...string) *CommandRequest {
	return NewRequest(&Hmexist{Table: table, Keys: keys})
}

// --------------------------------------------------------------------------
// Request JSON Encoding
// --------------------------------------------------------------------------

// MarshalJSON encodes the request as an envelope named after the variant,
// e.g. {"hget":{"table":"t","key":"k"}}. A request without variant is {}.
func (r CommandRequest) MarshalJSON() ([]byte, error) {
	if r.RequestData == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]RequestData{r.RequestData.CommandName(): r.RequestData})
}

// UnmarshalJSON implements json.Unmarshaler (see MarshalJSON for the format)
func (r *CommandRequest) UnmarshalJSON(data []byte) error {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return err
	}

	r.RequestData = nil
	if len(envelope) == 0 {
		return nil
	}
	if len(envelope) > 1 {
		return fmt.Errorf("request must contain exactly one command, got %d", len(envelope))
	}

	for name, raw := range envelope {
		cmd, err := NewRequestData(name)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(raw, cmd); err != nil {
			return fmt.Errorf("invalid %s command: %w", name, err)
		}
		r.RequestData = cmd
	}
	return nil
}

// --------------------------------------------------------------------------
// Response Type
// --------------------------------------------------------------------------

// CommandResponse is the result of a command. Status 200 denotes success;
// each command only populates the field relevant to it (Values or Pairs).
type CommandResponse struct {
	Status  uint32           `json:"status"`
	Message string           `json:"message,omitempty"`
	Values  []storage.Value  `json:"values,omitempty"`
	Pairs   []storage.Kvpair `json:"pairs,omitempty"`
}

// NewValuesResponse creates a success response carrying values
func NewValuesResponse(values ...storage.Value) *CommandResponse {
	return &CommandResponse{Status: StatusOK, Values: values}
}

// NewPairsResponse creates a success response carrying pairs
func NewPairsResponse(pairs []storage.Kvpair) *CommandResponse {
	return &CommandResponse{Status: StatusOK, Pairs: pairs}
}

// Ok reports whether the response denotes success
func (r *CommandResponse) Ok() bool {
	return r != nil && r.Status == StatusOK
}

// Err converts a failed response back into a *storage.Error.
// It returns nil for successful responses.
func (r *CommandResponse) Err() error {
	if r == nil {
		return storage.NewInternalError("missing response")
	}
	if r.Status == StatusOK {
		return nil
	}
	code := codeForStatus(r.Status, r.Message)
	return storage.ParseError(code, r.Message)
}

func (r *CommandResponse) String() string {
	if r == nil {
		return "CommandResponse{nil}"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "CommandResponse{status=%d", r.Status)
	if r.Message != "" {
		fmt.Fprintf(&sb, " message=%q", r.Message)
	}
	if len(r.Values) > 0 {
		fmt.Fprintf(&sb, " values=%v", r.Values)
	}
	if len(r.Pairs) > 0 {
		fmt.Fprintf(&sb, " pairs=%v", r.Pairs)
	}
	sb.WriteString("}")
	return sb.String()
}
