// Package writer emits the output files for one assembled source: the
// macro-expanded intermediate, the object file, and the entries and
// externals side-files.
package writer

import (
	"bufio"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/lookbusy1344/w12-assembler/encoder"
	"github.com/lookbusy1344/w12-assembler/parser"
)

// Output file extensions.
const (
	ExtSource       = ".as"
	ExtIntermediate = ".am"
	ExtObject       = ".ob"
	ExtEntries      = ".ent"
	ExtExternals    = ".ext"
)

// WriteIntermediate writes the macro-expanded text to <base>.am. It is
// written even for files that fail later passes, so the expansion can be
// inspected.
func WriteIntermediate(base, expanded string) error {
	path := base + ExtIntermediate
	if err := os.WriteFile(path, []byte(expanded), 0644); err != nil { // #nosec G306 -- ordinary output file
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}

// WriteObject writes <base>.ob: a header with the instruction and data
// word counts, then one base-64 word per line, instructions before data.
func WriteObject(base string, icCount, dcCount int, code, data []encoder.Word) (err error) {
	path := base + ExtObject
	f, err := os.Create(path) // #nosec G304 -- output path derived from user argument
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "closing %s", path)
		}
	}()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "%d\t%d\n", icCount, dcCount)
	for _, word := range code {
		fmt.Fprintf(w, "%s\n", encoder.Base64(word))
	}
	for _, word := range data {
		fmt.Fprintf(w, "%s\n", encoder.Base64(word))
	}
	if err := w.Flush(); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}

// WriteEntries writes <base>.ent, one "name\taddress" line per entry
// symbol in definition order.
func WriteEntries(base string, entries []*parser.Symbol) error {
	path := base + ExtEntries
	var lines []byte
	for _, sym := range entries {
		lines = append(lines, fmt.Sprintf("%s\t%d\n", sym.Name, sym.Address)...)
	}
	if err := os.WriteFile(path, lines, 0644); err != nil { // #nosec G306 -- ordinary output file
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}

// WriteExternals writes <base>.ext, one "name\taddress" line per
// external use-site in the order the second pass recorded them.
func WriteExternals(base string, uses []parser.ExternalUse) error {
	path := base + ExtExternals
	var lines []byte
	for _, use := range uses {
		lines = append(lines, fmt.Sprintf("%s\t%d\n", use.Name, use.Address)...)
	}
	if err := os.WriteFile(path, lines, 0644); err != nil { // #nosec G306 -- ordinary output file
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}
