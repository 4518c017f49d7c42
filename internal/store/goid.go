package store

import "github.com/petermattis/goid"

// goroutineID identifies the calling goroutine for commit-lock ownership.
// Ids are positive, so 0 marks a free lock.
func goroutineID() int64 {
	return goid.Get()
}
