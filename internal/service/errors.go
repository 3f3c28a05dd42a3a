package service

import "fmt"

// PartialWriteError reports a multi-step fan-out write that landed only
// partially: the steps in Done succeeded before Failed was rejected. Nothing
// is rolled back; the caller sees exactly which indexes diverged.
type PartialWriteError struct {
	Op     string
	Done   []string
	Failed string
	Err    error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("%s: wrote %v but %s failed: %v", e.Op, e.Done, e.Failed, e.Err)
}

func (e *PartialWriteError) Unwrap() error {
	return e.Err
}
