// Package reporter persists finished correspondence analysis results
// to files.
package reporter

import (
	"github.com/tgehrmann/corrana/lib"
)

type Reporter interface {
	// Initialize tells the reporter which result it is recording and
	// which directory the files go into.
	Initialize(resultID string, directory string)

	AddResult(r *lib.Result) error

	Flush() error
}
