package demux

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/Altius/demultiplex/internal/barcode"
)

// FragmentSet is one line of a match mode barcode file: a label and the
// patterns that must occur, in order, in a read.
type FragmentSet struct {
	Label     string
	Fragments []string
}

// ReadBarcodes parses "name barcode" lines. Blank lines are skipped. A
// pattern listed twice is an error when rejectDuplicates is set; otherwise
// the later name wins.
func ReadBarcodes(r io.Reader, rejectDuplicates bool) ([]barcode.Entry, error) {
	var entries []barcode.Entry
	seen := make(map[string]string)

	err := eachLine(r, func(n int, fields []string) error {
		if len(fields) != 2 {
			return fmt.Errorf("%w: line %d has %d fields, want 2", ErrInvalidBarcodeFormat, n, len(fields))
		}
		name, pattern := fields[0], fields[1]
		if prev, dup := seen[pattern]; dup && rejectDuplicates {
			return fmt.Errorf("%w: %s on line %d is already used by %s", ErrDuplicateBarcode, pattern, n, prev)
		}
		seen[pattern] = name
		entries = append(entries, barcode.Entry{Label: name, Pattern: pattern})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// ReadFragmentSets parses "name fragment..." lines; a name without
// fragments matches every read.
func ReadFragmentSets(r io.Reader) ([]FragmentSet, error) {
	var sets []FragmentSet
	err := eachLine(r, func(n int, fields []string) error {
		sets = append(sets, FragmentSet{Label: fields[0], Fragments: fields[1:]})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sets, nil
}

func eachLine(r io.Reader, fn func(n int, fields []string) error) error {
	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if err := fn(n, fields); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read barcodes: %w", err)
	}
	return nil
}
