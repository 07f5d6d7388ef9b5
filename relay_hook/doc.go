// Package relayhook sends netqueue task lifecycle events to Relay for
// webhook delivery (netqueue.task.completed, netqueue.task.failed, ...).
//
//	r, _ := relay.New(relay.WithStore(store))
//	relayhook.RegisterAll(ctx, r)
//
//	q, _ := netqueue.New(netqueue.WithExtension(relayhook.New(r)))
//
// Events are tenant-scoped by the task's org when it implements
// task.Scoped. To send only some events:
//
//	relayhook.New(r, relayhook.WithEvents(relayhook.EventTaskFailed))
package relayhook
