package demux

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidBarcodeFormat = errors.New("invalid barcodes file format")
	ErrDuplicateBarcode     = errors.New("duplicate barcode")
	ErrStreamDesync         = errors.New("input streams have different lengths")
	ErrNoInputs             = errors.New("no input files")
	ErrOutputCollision      = errors.New("output file used twice")
)

// DesyncError names the stream that ran out before the others.
type DesyncError struct {
	Stream  string
	Records int // complete record tuples read before the mismatch
}

func (e *DesyncError) Error() string {
	return fmt.Sprintf("%v: %s ended after %d records", ErrStreamDesync, e.Stream, e.Records)
}

func (e *DesyncError) Unwrap() error { return ErrStreamDesync }
