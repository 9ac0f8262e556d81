// Package sources reads labeled matrices from files. Everything
// downstream works on a LabeledMatrix, no matter where it came from.
package sources

import (
	"github.com/tgehrmann/corrana/lib/datatypes"
)

type MatrixSource interface {
	Read() (*datatypes.LabeledMatrix, error)
}
