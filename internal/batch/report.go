package batch

import (
	"errors"
	"fmt"
)

// FileResult is the outcome of processing one input file. Err is nil when
// the whole file was converted; output written before a failure is kept.
type FileResult struct {
	Input       string
	Output      string
	Rows        int
	Numbers     int
	Unparseable int
	NoPhone     int
	ArchiveKey  string
	Err         error
}

// OK reports whether the file was processed without a file-level error.
func (r FileResult) OK() bool { return r.Err == nil }

// Report aggregates the results of one batch run in processing order.
type Report struct {
	RunID string
	Files []FileResult
}

// Succeeded returns the number of files processed without error.
func (r *Report) Succeeded() int {
	n := 0
	for _, f := range r.Files {
		if f.OK() {
			n++
		}
	}
	return n
}

// Failed returns the results of files that could not be processed.
func (r *Report) Failed() []FileResult {
	var failed []FileResult
	for _, f := range r.Files {
		if !f.OK() {
			failed = append(failed, f)
		}
	}
	return failed
}

// Numbers returns the total number of output rows and how many of them carry the sentinel.
func (r *Report) Numbers() (written, unparseable int) {
	for _, f := range r.Files {
		written += f.Numbers
		unparseable += f.Unparseable
	}
	return written, unparseable
}

// Err joins the errors of all failed files, or returns nil.
func (r *Report) Err() error {
	var errs []error
	for _, f := range r.Failed() {
		errs = append(errs, fmt.Errorf("%s: %w", f.Input, f.Err))
	}
	return errors.Join(errs...)
}
