// Package engine drives the feature-guided search.
//
// The engine pops a feed from its queue, asks the generator for a workload of
// outputs, scores every output against the current target and keeps iterating
// the feed until a candidate improves on the feed's score or the per-feed
// evaluation ceiling is reached.
//
// # Run
//
// A Run covers one target:
//
//   - Queue empty: the next corpus item becomes the root feed (generation 0)
//   - Per feed: rounds of generate, evaluate, write samples in the background
//   - Selection: the root keeps the Width best candidates of its last round,
//     later generations keep the improving candidate, if any
//   - Branching: a selected candidate that improves on its feed is queued
//     again while its generation stays within MaxDepth
//   - Every selected candidate is recorded once per Run (content hash dedup)
//   - The search state is checkpointed after every feed
//
// When the queue drains the target set advances and Run returns the accepted
// candidates.
//
// # Failure Model
//
// Cancelling the context interrupts the search at the next round boundary. A
// round that has started still generates and evaluates all of its outputs.
// Background writes are joined, an unfinished feed goes back to the front of
// the queue and a partial Result is returned. The next Run reports
// ErrInterrupted once and the one after resumes from the queue.
//
// Any other failure is stored: Run returns it with the partial result, and
// every later Run returns it again without doing work.
package engine
