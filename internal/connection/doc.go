// Package connection manages the table socket: connecting to a room,
// dispatching server frames, reconnecting with bounded exponential backoff
// and fanning events out to UI subscribers.
//
// Every transition (socket callbacks, the reconnect timer and the public
// Manager methods) runs under the Manager's mutex, so transitions never
// overlap. Arrival order alone is not trusted: each socket's callbacks are
// bound to that socket, and events from a socket that has been replaced or
// dropped never schedule a reconnect. Hub publications are delivered after
// the mutex is released, so listeners may call back into the Manager.
package connection
