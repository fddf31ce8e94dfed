package models

import (
	"fmt"
	"strings"
)

// BatchError reports a batch that stopped part way through persisting.
// Committed lists the identifiers written before Failed could not be.
type BatchError struct {
	Committed []string
	Failed    string
	Err       error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batch halted at %s after committing %d of the batch [%s]: %v",
		e.Failed, len(e.Committed), strings.Join(e.Committed, ","), e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

// CommittedValues lets the HTTP edge report partial progress.
func (e *BatchError) CommittedValues() []string {
	return e.Committed
}
