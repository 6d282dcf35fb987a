// Package service implements the command layer of hKV: the typed requests
// and responses, the per-command execution against a storage backend and the
// Service façade consumed by transports.
//
// Key Components:
//
//   - CommandRequest / RequestData: A request wraps exactly one command
//     variant. RequestData is a sealed interface implemented by Hget, Hgetall,
//     Hmget, Hset, Hmset, Hdel, Hmdel, Hexist and Hmexist. Every variant
//     implements CommandService, i.e. knows how to execute itself against a
//     storage.Storage.
//
//   - CommandResponse: Status, Message, Values and Pairs. Status 200 is success;
//     a command only fills the field relevant to it. Hgetall returns Pairs,
//     all other commands return Values (one per key for the multi-key
//     variants).
//
//   - Dispatch: Selects the variant of a request and executes it. A request
//     without variant results in a 400 response, an unknown variant in a 500
//     response.
//
//   - NewErrorResponse: The explicit mapping from errors to responses used on
//     every failure path. *storage.Error codes map to 404 (NotFound), 400
//     (InvalidCommand) and 500 (InternalError, StorageError); any other error
//     is reported as 500. CommandResponse.Err performs the inverse mapping on
//     the client side.
//
//   - Service: A cheap-to-copy handle around one storage backend. Clones share
//     the backend and may be used concurrently from many connections. Execute
//     never panics and never returns a Go error, all failures are encoded in
//     the response. It also records the hkv_commands_total and
//     hkv_command_duration_seconds metrics.
//
// Command Semantics:
//
//   - Hget: miss -> 404 "Not found for table: T, key: K"
//   - Hset: returns the previous value or the empty value. A request without
//     a pair writes nothing and returns the empty value. A pair without value
//     stores the empty value.
//   - Hdel: returns the removed value or the empty value
//   - Hexist: returns a bool value
//   - Hmget, Hmset, Hmdel, Hmexist: the single key semantics applied to each
//     key in order; missing keys yield the empty value (Hmget). These
//     commands are not transactional.
//
// Every command requires a table name; an empty name is rejected with 400.
package service
