// Package broadcast fans messages out to any number of subscribers.
//
// Live forms publish every batch of DOM patches through a Broadcaster so each
// open event stream of the page receives it:
//
//	patches := broadcast.NewMemoryBroadcaster[[]dom.Patch](32)
//	defer patches.Close()
//
//	sub := patches.Subscribe(r.Context())
//	for msg := range sub.Receive(r.Context()) {
//		for _, p := range msg.Data {
//			// forward p.HTML to the client
//		}
//	}
//
// The memory implementation never blocks a publisher. A subscriber whose
// buffer is full misses the message and is dropped, and subscribers are
// released when their context ends or the broadcaster is closed.
package broadcast
