package userctx

import "context"

// Context key type
type contextKey string

const clientIDKey contextKey = "client_id"
const sessionIDKey contextKey = "session_id"
const remoteAddrKey contextKey = "remote_addr"

// SetClientID adds the client-declared id to the request context
func SetClientID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, clientIDKey, id)
}

// GetClientID retrieves the client-declared id from the request context
func GetClientID(ctx context.Context) string {
	id, ok := ctx.Value(clientIDKey).(string)
	if !ok {
		return "anonymous"
	}
	return id
}

// SetSessionID adds the per-request session id to the context
func SetSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey, id)
}

// GetSessionID retrieves the per-request session id from the context
func GetSessionID(ctx context.Context) string {
	if id := ctx.Value(sessionIDKey); id != nil {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}

// SetRemoteAddr adds the peer address of the connection to the context
func SetRemoteAddr(ctx context.Context, addr string) context.Context {
	return context.WithValue(ctx, remoteAddrKey, addr)
}

// GetRemoteAddr retrieves the peer address from the context
func GetRemoteAddr(ctx context.Context) string {
	addr, _ := ctx.Value(remoteAddrKey).(string)
	return addr
}

// Fields returns the request identity as log fields
func Fields(ctx context.Context) map[string]interface{} {
	fields := map[string]interface{}{
		"client_id": GetClientID(ctx),
	}
	if id := GetSessionID(ctx); id != "" {
		fields["session_id"] = id
	}
	if addr := GetRemoteAddr(ctx); addr != "" {
		fields["remote"] = addr
	}
	return fields
}
