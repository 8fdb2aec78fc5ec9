package overtime

import (
	"context"
	"time"
)

// WithOvertimeContext returns a context that stays valid for overtime after
// parent is done.
//
// It is meant for the steps that follow a cancellation, such as asking a
// child process to exit and waiting for it:
//
//	graceCtx, graceCancel := overtime.WithOvertimeContext(ctx, 5*time.Second)
//	defer graceCancel()
//
//	<-ctx.Done()
//	proc.Signal(unix.SIGTERM)
//	select {
//	case <-proc.Done():
//	case <-graceCtx.Done():
//		proc.Kill()
//	}
//
// The returned context does not inherit values or the deadline of parent.
func WithOvertimeContext(parent context.Context, overtime time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	stopParent := context.AfterFunc(parent, func() {
		timer := time.AfterFunc(overtime, cancel)
		context.AfterFunc(ctx, func() { timer.Stop() })
	})

	return ctx, func() {
		stopParent()
		cancel()
	}
}
