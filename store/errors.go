package store

import "fmt"

// WriteError means the store rejected a record or the whole batch.
// Recovered per record into the write report.
type WriteError struct {
	Reason string
	Err    error
}

func (it *WriteError) Error() string {
	if it.Err != nil {
		return fmt.Sprintf("store write failed: %s: %v", it.Reason, it.Err)
	}
	return fmt.Sprintf("store write failed: %s", it.Reason)
}

func (it *WriteError) Unwrap() error {
	return it.Err
}

// WriteTimeoutError means the bulk call exceeded its deadline. The run
// records it and moves on instead of hanging.
type WriteTimeoutError struct {
	Err error
}

func (it *WriteTimeoutError) Error() string {
	return fmt.Sprintf("store write timed out: %v", it.Err)
}

func (it *WriteTimeoutError) Unwrap() error {
	return it.Err
}
