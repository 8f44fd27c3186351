package writer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lookbusy1344/w12-assembler/encoder"
	"github.com/lookbusy1344/w12-assembler/parser"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", path, err)
	}
	return string(data)
}

func TestWriteObject(t *testing.T) {
	base := filepath.Join(t.TempDir(), "prog")

	code := []encoder.Word{480, 1556}
	data := []encoder.Word{5, 1018}
	if err := WriteObject(base, len(code), len(data), code, data); err != nil {
		t.Fatalf("WriteObject failed: %v", err)
	}

	want := "2\t2\n" +
		encoder.Base64(480) + "\n" +
		encoder.Base64(1556) + "\n" +
		encoder.Base64(5) + "\n" +
		encoder.Base64(1018) + "\n"
	if got := readFile(t, base+ExtObject); got != want {
		t.Errorf("Object file mismatch:\n%q\nwant:\n%q", got, want)
	}
}

func TestWriteObjectEmptyProgram(t *testing.T) {
	base := filepath.Join(t.TempDir(), "empty")
	if err := WriteObject(base, 0, 0, nil, nil); err != nil {
		t.Fatalf("WriteObject failed: %v", err)
	}
	if got := readFile(t, base+ExtObject); got != "0\t0\n" {
		t.Errorf("Empty object file = %q, want header only", got)
	}
}

func TestWriteEntries(t *testing.T) {
	base := filepath.Join(t.TempDir(), "prog")
	entries := []*parser.Symbol{
		{Name: "MAIN", Address: 100, Kind: parser.SymbolEntry},
		{Name: "LOOP", Address: 105, Kind: parser.SymbolEntry},
	}
	if err := WriteEntries(base, entries); err != nil {
		t.Fatalf("WriteEntries failed: %v", err)
	}
	want := "MAIN\t100\nLOOP\t105\n"
	if got := readFile(t, base+ExtEntries); got != want {
		t.Errorf("Entries file = %q, want %q", got, want)
	}
}

func TestWriteExternals(t *testing.T) {
	base := filepath.Join(t.TempDir(), "prog")
	uses := []parser.ExternalUse{
		{Name: "LBL", Address: 101},
		{Name: "LBL", Address: 107},
		{Name: "OTHER", Address: 110},
	}
	if err := WriteExternals(base, uses); err != nil {
		t.Fatalf("WriteExternals failed: %v", err)
	}
	want := "LBL\t101\nLBL\t107\nOTHER\t110\n"
	if got := readFile(t, base+ExtExternals); got != want {
		t.Errorf("Externals file = %q, want %q", got, want)
	}
}

func TestWriteIntermediate(t *testing.T) {
	base := filepath.Join(t.TempDir(), "prog")
	text := "inc @r1\nstop\n"
	if err := WriteIntermediate(base, text); err != nil {
		t.Fatalf("WriteIntermediate failed: %v", err)
	}
	if got := readFile(t, base+ExtIntermediate); got != text {
		t.Errorf("Intermediate file = %q, want %q", got, text)
	}
}

func TestWriteObjectBadPath(t *testing.T) {
	base := filepath.Join(t.TempDir(), "missing", "prog")
	if err := WriteObject(base, 0, 0, nil, nil); err == nil {
		t.Error("Expected error for unwritable path")
	}
}
