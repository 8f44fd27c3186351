package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/lookbusy1344/w12-assembler/assembler"
	"github.com/lookbusy1344/w12-assembler/config"
	"github.com/lookbusy1344/w12-assembler/inspector"
	"github.com/lookbusy1344/w12-assembler/parser"
	"github.com/lookbusy1344/w12-assembler/writer"
)

// Version information - can be overridden at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"     // Version number (set by git tag at build time)
	Commit  = "unknown" // Git commit hash
	Date    = "unknown" // Build date
)

// MaxFilenameLength bounds the base-name argument length.
const MaxFilenameLength = 255

// ANSI colours for diagnostic output; enabled through the config file.
const (
	colorRed   = "\x1b[31m"
	colorGreen = "\x1b[32m"
	colorReset = "\x1b[0m"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		showHelp    = flag.Bool("help", false, "Show help information")
		verboseMode = flag.Bool("verbose", false, "Verbose output")
		configPath  = flag.String("config", "", "Configuration file (default: platform config path)")
		tuiMode     = flag.Bool("tui", false, "Open the TUI inspector on the first successfully assembled file")
		dumpSymbols = flag.Bool("dump-symbols", false, "Dump each file's symbol table after assembly")
		symbolsFile = flag.String("symbols-file", "", "Symbol dump output file (default: stdout)")
	)

	flag.Parse()

	if *showVersion {
		fmt.Printf("W12 Assembler %s\n", Version)
		if Commit != "unknown" {
			fmt.Printf("Commit: %s\n", Commit)
		}
		if Date != "unknown" {
			fmt.Printf("Built: %s\n", Date)
		}
		os.Exit(0)
	}

	if *showHelp {
		printHelp()
		os.Exit(0)
	}

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: assembly files required")
		printHelp()
		os.Exit(1)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	if *verboseMode {
		cfg.Display.Verbose = true
	}

	// Each file owns all of its state, so the pipelines run
	// concurrently. Reports are buffered and printed in argument order,
	// with each file's diagnostics in source-line order.
	names := flag.Args()
	results := make([]*fileResult, len(names))

	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			results[i] = processFile(name, cfg)
		}(i, name)
	}
	wg.Wait()

	var firstSuccess *assembler.File
	for _, res := range results {
		fmt.Print(res.report)
		if firstSuccess == nil && res.file != nil && res.file.Succeeded() {
			firstSuccess = res.file
		}
	}

	if *dumpSymbols {
		for _, res := range results {
			if res.file != nil {
				if err := dumpSymbolTable(res.file, *symbolsFile); err != nil {
					fmt.Fprintf(os.Stderr, "Error dumping symbols: %v\n", err)
				}
			}
		}
	}

	if *tuiMode {
		if firstSuccess == nil {
			fmt.Fprintln(os.Stderr, "No successfully assembled file to inspect")
		} else if err := inspector.Run(firstSuccess, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
			os.Exit(1)
		}
	}

	// Translation diagnostics are reported textually; the process itself
	// succeeded once it had files to work on.
	os.Exit(0)
}

// fileResult pairs one argument's assembled state with its buffered
// report text.
type fileResult struct {
	file   *assembler.File
	report string
}

// processFile runs the pipeline for one base-name argument and buffers
// everything it has to say.
func processFile(name string, cfg *config.Config) *fileResult {
	var sb strings.Builder
	res := &fileResult{}

	if len(name) > MaxFilenameLength {
		fmt.Fprintf(&sb, "%s: file name too long\n", name)
		res.report = sb.String()
		return res
	}
	if _, err := os.Stat(name + writer.ExtSource); err != nil {
		fmt.Fprintf(&sb, "%s%s: cannot open file\n", name, writer.ExtSource)
		res.report = sb.String()
		return res
	}

	f, err := assembler.Assemble(name)
	if err != nil {
		fmt.Fprintf(&sb, "%s%s: %v\n", name, writer.ExtSource, err)
		res.report = sb.String()
		return res
	}
	res.file = f

	outBase := outputBase(name, cfg)

	// The intermediate is written even for files with diagnostics; an
	// ill-formed expansion is still worth inspecting.
	if err := writer.WriteIntermediate(outBase, f.Expanded); err != nil {
		fmt.Fprintf(&sb, "%v\n", err)
	}

	if f.Errors.HasErrors() {
		for _, diag := range f.Errors.Errors {
			fmt.Fprintf(&sb, "%s\n", colorize(diag.Error(), colorRed, cfg))
		}
		fmt.Fprintf(&sb, "%s\n", colorize(
			fmt.Sprintf("%s: Number of errors: %d; compilation not completed", f.SourceName, f.Errors.Count()),
			colorRed, cfg))
		res.report = sb.String()
		return res
	}

	if err := writeOutputs(f, outBase, cfg); err != nil {
		fmt.Fprintf(&sb, "%v\n", err)
		res.report = sb.String()
		return res
	}

	fmt.Fprintf(&sb, "%s\n", colorize(
		fmt.Sprintf("%s: Compilation completed successfully, %d lines parsed", f.SourceName, f.LinesParsed),
		colorGreen, cfg))
	if cfg.Display.Verbose {
		fmt.Fprintf(&sb, "  %d instruction words, %d data words, %d symbols\n",
			f.IC-parser.FirstCell, f.DC, f.Symbols.Len())
	}
	res.report = sb.String()
	return res
}

// writeOutputs emits the object file and side-files for a clean assembly.
func writeOutputs(f *assembler.File, outBase string, cfg *config.Config) error {
	if err := writer.WriteObject(outBase, f.IC-parser.FirstCell, f.DC, f.Code.Words(), f.Data.Words()); err != nil {
		return err
	}
	if f.HasEntry {
		if err := writer.WriteEntries(outBase, f.Symbols.Entries()); err != nil {
			return err
		}
	}
	if f.HasExtern && len(f.Externals) > 0 {
		if err := writer.WriteExternals(outBase, f.Externals); err != nil {
			return err
		}
	}
	if !cfg.Assembler.KeepIntermediate {
		_ = os.Remove(outBase + writer.ExtIntermediate)
	}
	return nil
}

// outputBase maps a source base name to the base path for output files,
// honouring the configured output directory.
func outputBase(name string, cfg *config.Config) string {
	if cfg.Assembler.OutputDir == "" {
		return name
	}
	return filepath.Join(cfg.Assembler.OutputDir, filepath.Base(name))
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

func colorize(s, color string, cfg *config.Config) string {
	if !cfg.Display.ColorOutput {
		return s
	}
	return color + s + colorReset
}

// dumpSymbolTable outputs one file's symbol table in a readable format
func dumpSymbolTable(f *assembler.File, filename string) error {
	var out *os.File
	var err error

	if filename == "" {
		out = os.Stdout
	} else {
		out, err = os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644) // #nosec G302 G304 -- user-specified symbol output path
		if err != nil {
			return fmt.Errorf("failed to create symbol file: %w", err)
		}
		defer func() {
			if cerr := out.Close(); cerr != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close symbol file: %v\n", cerr)
			}
		}()
	}

	symbols := f.Symbols.Symbols()
	_, _ = fmt.Fprintf(out, "Symbol table for %s\n", f.SourceName)
	if len(symbols) == 0 {
		_, _ = fmt.Fprintln(out, "  (no symbols defined)")
		return nil
	}
	_, _ = fmt.Fprintf(out, "  %-32s %-10s %s\n", "Name", "Kind", "Address")
	for _, sym := range symbols {
		_, _ = fmt.Fprintf(out, "  %-32s %-10s %d\n", sym.Name, sym.Kind, sym.Address)
	}
	return nil
}

func printHelp() {
	fmt.Printf(`W12 Assembler %s

Usage: w12asm [options] file1 file2 ...

Each file argument is a base name without extension; the assembler reads
<name>.as and writes <name>.am, <name>.ob and, when the source declares
them, <name>.ent and <name>.ext. Files with diagnostics produce no
output; processing continues with the next argument.

Options:
  -help              Show this help message
  -version           Show version information
  -verbose           Enable verbose output
  -config PATH       Configuration file (default: platform config path)
  -tui               Open the TUI inspector on the first assembled file
  -dump-symbols      Dump each file's symbol table after assembly
  -symbols-file FILE Symbol dump output file (default: stdout)

Examples:
  # Assemble one program
  w12asm examples/countdown

  # Assemble several programs in one run
  w12asm prog1 prog2 prog3

  # Inspect the assembled images and symbol table
  w12asm -tui examples/countdown
`, Version)
}
