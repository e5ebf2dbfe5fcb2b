// Package audit delivers authentication attempt records to a pluggable sink
// without blocking the attempt that produced them.
//
// [Dispatcher] owns a bounded buffer and a single delivery goroutine. When
// the buffer is full it either drops the record and counts the drop, or
// blocks the caller until space frees up or its context ends.
package audit
