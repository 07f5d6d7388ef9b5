// Package audithook is a netqueue extension that writes task lifecycle
// events to an audit trail backend such as Chronicle.
//
// Each hook becomes an AuditEvent sent through the [Recorder] interface:
// info severity for normal progress, warning for cancellations, critical
// for failed runs. Metadata carries the queue, task name, limiter key and
// elapsed time.
//
// # Usage with Chronicle
//
//	audithook.New(audithook.RecorderFunc(func(ctx context.Context, evt *audithook.AuditEvent) error {
//	    return chronicle.Info(ctx, evt.Action, evt.Resource, evt.ResourceID).
//	        Category(evt.Category).
//	        Outcome(evt.Outcome).
//	        Record()
//	}))
//
// # Selective filtering
//
//	audithook.New(recorder,
//	    audithook.WithActions(audithook.ActionTaskFailed, audithook.ActionTaskCancelled),
//	)
package audithook
