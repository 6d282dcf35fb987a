package service

import (
	"github.com/ValentinKolb/hKV/lib/storage"
)

// Dispatch runs the command of the request against the store. It has no side
// effects besides the storage calls of the command and always returns a
// response:
//   - nil request or request without command: 400
//   - a variant this package does not know: 500
func Dispatch(req *CommandRequest, store storage.Storage) *CommandResponse {
	if req == nil || req.RequestData == nil {
		return NewErrorResponse(storage.NewInvalidCommandError("request has no command set"))
	}

	switch cmd := req.RequestData.(type) {
	case *Hget:
		return cmd.Execute(store)
	case *Hgetall:
		return cmd.Execute(store)
	case *Hmget:
		return cmd.Execute(store)
	case *Hset:
		return cmd.Execute(store)
	case *Hmset:
		return cmd.Execute(store)
	case *Hdel:
		return cmd.Execute(store)
	case *Hmdel:
		return cmd.Execute(store)
	case *Hexist:
		return cmd.Execute(store)
	case *Hmexist:
		return cmd.Execute(store)
	default:
		return NewErrorResponse(storage.NewInternalError("unsupported command %T", cmd))
	}
}
