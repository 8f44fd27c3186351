package parser

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func expand(t *testing.T, source string) (string, *ErrorList) {
	t.Helper()
	errs := &ErrorList{}
	table := NewMacroTable()
	out := NewExpander(table, errs).Expand(source, "test.as")
	return out, errs
}

func TestExpandNoMacros(t *testing.T) {
	source := "mov X, @r2\n.data 5\nstop\n"
	out, errs := expand(t, source)
	if errs.HasErrors() {
		t.Fatalf("Unexpected errors: %v", errs)
	}
	if out != source {
		t.Errorf("Macro-free source should pass through unchanged:\n%q\n%q", source, out)
	}
}

func TestExpandSimpleMacro(t *testing.T) {
	source := strings.Join([]string{
		"mcro M",
		"inc @r1",
		"endmcro",
		"M",
		"M",
		"stop",
	}, "\n")

	out, errs := expand(t, source)
	if errs.HasErrors() {
		t.Fatalf("Unexpected errors: %v", errs)
	}

	want := "inc @r1\ninc @r1\nstop\n"
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("Expansion mismatch (-want +got):\n%s", diff)
	}
}

func TestExpandMultiLineBody(t *testing.T) {
	source := strings.Join([]string{
		"mcro pair",
		"inc @r1",
		"dec @r2",
		"endmcro",
		"pair",
	}, "\n")

	out, errs := expand(t, source)
	if errs.HasErrors() {
		t.Fatalf("Unexpected errors: %v", errs)
	}
	if out != "inc @r1\ndec @r2\n" {
		t.Errorf("Unexpected expansion: %q", out)
	}
}

func TestExpandEmptyBody(t *testing.T) {
	source := "mcro nothing\nendmcro\nnothing\nstop\n"
	out, errs := expand(t, source)
	if errs.HasErrors() {
		t.Fatalf("Unexpected errors: %v", errs)
	}
	if out != "stop\n" {
		t.Errorf("Empty macro should expand to nothing, got %q", out)
	}
}

func TestMacroBodyNotRescanned(t *testing.T) {
	// A macro defined after another macro's body was committed does not
	// affect the earlier body: expansion is pure text paste.
	source := strings.Join([]string{
		"mcro outer",
		"inner",
		"endmcro",
		"mcro inner",
		"stop",
		"endmcro",
		"outer",
	}, "\n")

	out, errs := expand(t, source)
	if errs.HasErrors() {
		t.Fatalf("Unexpected errors: %v", errs)
	}
	// "inner" was pasted verbatim, not expanded again
	if out != "inner\n" {
		t.Errorf("Expansion should not be re-scanned, got %q", out)
	}
}

func TestNestedMacroDefinition(t *testing.T) {
	source := strings.Join([]string{
		"mcro outer",
		"mcro inner",
		"endmcro",
		"outer",
	}, "\n")

	out, errs := expand(t, source)
	if !errs.HasErrors() {
		t.Fatal("Expected NestedMacroDefinition error")
	}
	if errs.Errors[0].Kind != NestedMacroDefinition {
		t.Errorf("Expected NestedMacroDefinition, got %v", errs.Errors[0].Kind)
	}
	// The inner mcro line becomes part of the body
	if out != "mcro inner\n" {
		t.Errorf("Inner mcro line should be in the body, got %q", out)
	}
}

func TestMacroNameReserved(t *testing.T) {
	source := "mcro mov\ninc @r1\nendmcro\n"
	_, errs := expand(t, source)
	found := false
	for _, e := range errs.Errors {
		if e.Kind == MacroNameIsReserved {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected MacroNameIsReserved, got %v", errs)
	}
}

func TestMacroNameInvalid(t *testing.T) {
	for _, source := range []string{"mcro 1bad\nendmcro\n", "mcro\nendmcro\n"} {
		_, errs := expand(t, source)
		if !errs.HasErrors() || errs.Errors[0].Kind != InvalidMacroName {
			t.Errorf("Expected InvalidMacroName for %q, got %v", source, errs)
		}
	}
}

func TestMacroAlreadyExists(t *testing.T) {
	source := strings.Join([]string{
		"mcro M",
		"inc @r1",
		"endmcro",
		"mcro M",
		"dec @r1",
		"endmcro",
	}, "\n")

	_, errs := expand(t, source)
	if !errs.HasErrors() || errs.Errors[0].Kind != MacroAlreadyExists {
		t.Errorf("Expected MacroAlreadyExists, got %v", errs)
	}
}

func TestEndmcroOutsideBody(t *testing.T) {
	// Stray endmcro is left for the first pass to reject as an unknown
	// instruction.
	out, errs := expand(t, "endmcro\nstop\n")
	if errs.HasErrors() {
		t.Fatalf("Unexpected errors: %v", errs)
	}
	if out != "endmcro\nstop\n" {
		t.Errorf("Stray endmcro should pass through, got %q", out)
	}
}

func TestMacroHeaderNotEmitted(t *testing.T) {
	out, errs := expand(t, "mcro M\ninc @r1\nendmcro\nstop\n")
	if errs.HasErrors() {
		t.Fatalf("Unexpected errors: %v", errs)
	}
	if strings.Contains(out, "mcro") || strings.Contains(out, "endmcro") {
		t.Errorf("Macro delimiters must not be emitted: %q", out)
	}
}

func TestExpandEmptySource(t *testing.T) {
	out, errs := expand(t, "")
	if errs.HasErrors() || out != "" {
		t.Errorf("Empty source should expand to empty text, got %q (%v)", out, errs)
	}
}

func TestMacroTableOrder(t *testing.T) {
	mt := NewMacroTable()
	for _, name := range []string{"z", "a", "m"} {
		if err := mt.Define(&Macro{Name: name}); err != nil {
			t.Fatal(err)
		}
	}
	var got []string
	for _, m := range mt.Macros() {
		got = append(got, m.Name)
	}
	if diff := cmp.Diff([]string{"z", "a", "m"}, got); diff != "" {
		t.Errorf("Definition order not preserved (-want +got):\n%s", diff)
	}
}
