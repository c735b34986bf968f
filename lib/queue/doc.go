// Package queue provides the outgoing request queue of the client: a
// lock-free Multi-Producer Single-Consumer (MPSC) queue.
//
// Features and Guarantees:
//
//   - Lock-Free Push: atomic operations only, any number of goroutines may push
//   - Unbounded Size: limited only by available memory
//   - Single Consumer: one goroutine drains the queue via the Recv() channel
//   - Per-Producer Order: values pushed by one goroutine are received in push
//     order. Values of concurrent producers are ordered by the moment their
//     push completes, not by the moment it started.
//   - Drain on Close: values pushed before Close are still delivered
//
// The client uses this ordering to shut down its writer: the shutdown packet
// is pushed after all requests, so the writer sees every request first.
package queue
