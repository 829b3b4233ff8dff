// Package classifier serves image classification through a pool of workers,
// each owning one prediction engine.
//
// Producers call Classify, which wraps the payload in a WorkItem, admits it
// into a bounded FIFO RequestChannel and waits on the item's single-use Reply.
// Workers take items in admission order, decode and normalize the image for
// the configured Variant, run the engine and post the top predictions back.
//
// Failures are scoped to the item: an undecodable payload yields an input
// error, a failing or panicking engine yields an engine fault, and the worker
// continues with the next item either way.
package classifier
