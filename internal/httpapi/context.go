package httpapi

import "context"

// serverBaseCtx bounds long-lived handlers such as /events. Canceling it
// ends every open stream even when the client keeps the connection.
var serverBaseCtx = context.Background()

// SetBaseContext installs the process context. Nil resets it.
func SetBaseContext(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	serverBaseCtx = ctx
}

// joinContexts derives a context from req that is also canceled when base
// is done. cancel must be called when the handler returns.
func joinContexts(req, base context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(req)
	stop := context.AfterFunc(base, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}
