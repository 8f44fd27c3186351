// Package inspector provides a read-only terminal UI for browsing the
// result of one assembled file: its memory images, symbol table, and
// entry and external records.
package inspector

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/lookbusy1344/w12-assembler/assembler"
	"github.com/lookbusy1344/w12-assembler/config"
	"github.com/lookbusy1344/w12-assembler/encoder"
	"github.com/lookbusy1344/w12-assembler/parser"
)

// TUI represents the inspector interface
type TUI struct {
	File *assembler.File
	App  *tview.Application
	Cfg  *config.Config

	// Layout containers
	MainLayout *tview.Flex
	LeftPanel  *tview.Flex
	RightPanel *tview.Flex

	// View panels
	CodeView    *tview.TextView
	DataView    *tview.TextView
	SymbolView  *tview.TextView
	ExportsView *tview.TextView
	StatusView  *tview.TextView

	focusRing []tview.Primitive
	focusPos  int

	// Current page of each image pane; the page size comes from the
	// inspector configuration.
	codePage int
	dataPage int
}

// Run opens the inspector over an assembled file and blocks until the
// user quits.
func Run(f *assembler.File, cfg *config.Config) error {
	tui := NewTUI(f, cfg)
	return tui.App.SetRoot(tui.MainLayout, true).SetFocus(tui.CodeView).Run()
}

// NewTUI creates a new inspector interface
func NewTUI(f *assembler.File, cfg *config.Config) *TUI {
	tui := &TUI{
		File: f,
		App:  tview.NewApplication(),
		Cfg:  cfg,
	}

	tui.initializeViews()
	tui.buildLayout()
	tui.setupKeyBindings()
	tui.refreshAll()

	return tui
}

// initializeViews creates all the view panels
func (t *TUI) initializeViews() {
	t.CodeView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	t.CodeView.SetBorder(true).SetTitle(" Instruction Image ")

	t.DataView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	t.DataView.SetBorder(true).SetTitle(" Data Image ")

	t.SymbolView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	t.SymbolView.SetBorder(true).SetTitle(" Symbols ")

	t.ExportsView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	t.ExportsView.SetBorder(true).SetTitle(" Entries / Externals ")

	t.StatusView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)
	t.StatusView.SetBorder(true).SetTitle(" File ")

	t.focusRing = []tview.Primitive{t.CodeView, t.DataView, t.SymbolView, t.ExportsView}
}

// buildLayout constructs the TUI layout
func (t *TUI) buildLayout() {
	// Left panel: both memory images
	t.LeftPanel = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.CodeView, 0, 3, true).
		AddItem(t.DataView, 0, 2, false)

	// Right panel: symbols and export records
	t.RightPanel = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.SymbolView, 0, 2, false).
		AddItem(t.ExportsView, 0, 1, false)

	mainContent := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(t.LeftPanel, 0, 2, true).
		AddItem(t.RightPanel, 0, 1, false)

	t.MainLayout = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(mainContent, 0, 1, true).
		AddItem(t.StatusView, 5, 0, false)
}

// setupKeyBindings sets up keyboard shortcuts
func (t *TUI) setupKeyBindings() {
	t.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyTab:
			t.focusPos = (t.focusPos + 1) % len(t.focusRing)
			t.App.SetFocus(t.focusRing[t.focusPos])
			return nil
		case tcell.KeyPgDn:
			t.pageFocused(1)
			return nil
		case tcell.KeyPgUp:
			t.pageFocused(-1)
			return nil
		case tcell.KeyCtrlC, tcell.KeyEscape:
			t.App.Stop()
			return nil
		case tcell.KeyCtrlL:
			t.refreshAll()
			return nil
		}
		if event.Rune() == 'q' {
			t.App.Stop()
			return nil
		}
		return event
	})
}

// refreshAll redraws every panel from the assembled file.
func (t *TUI) refreshAll() {
	t.renderImage(t.CodeView, t.File.Code, t.File.Code.Origin(), t.codePage)
	// Data follows the instruction image in memory, so its words are
	// shown at their relocated addresses.
	t.renderImage(t.DataView, t.File.Data, t.File.IC, t.dataPage)
	t.renderSymbols()
	t.renderExports()
	t.renderStatus()
}

// wordsPerPage returns the configured image page size.
func (t *TUI) wordsPerPage() int {
	if n := t.Cfg.Inspector.WordsPerPage; n > 0 {
		return n
	}
	return 32
}

// pageCount returns how many pages an image occupies; an empty image
// still has one page.
func (t *TUI) pageCount(img *assembler.Image) int {
	n := (img.Len() + t.wordsPerPage() - 1) / t.wordsPerPage()
	if n < 1 {
		n = 1
	}
	return n
}

// pageFocused turns the page of whichever image pane holds the focus.
func (t *TUI) pageFocused(delta int) {
	switch t.focusRing[t.focusPos] {
	case tview.Primitive(t.CodeView):
		t.codePage = clampPage(t.codePage+delta, t.pageCount(t.File.Code))
	case tview.Primitive(t.DataView):
		t.dataPage = clampPage(t.dataPage+delta, t.pageCount(t.File.Data))
	default:
		return
	}
	t.refreshAll()
}

func clampPage(page, pages int) int {
	if page < 0 {
		return 0
	}
	if page >= pages {
		return pages - 1
	}
	return page
}

// renderImage writes one page of a memory image, one word per line.
func (t *TUI) renderImage(view *tview.TextView, img *assembler.Image, base, page int) {
	wpp := t.wordsPerPage()
	pages := t.pageCount(img)
	page = clampPage(page, pages)

	words := img.Words()
	start := page * wpp
	end := start + wpp
	if end > len(words) {
		end = len(words)
	}

	var sb strings.Builder
	for i := start; i < end; i++ {
		sb.WriteString(fmt.Sprintf("[yellow]%4d[white]  %s  %s\n",
			base+i, t.formatWord(words[i]), encoder.Base64(words[i])))
	}
	if img.Len() == 0 {
		sb.WriteString("[grey](empty)\n")
	}
	if pages > 1 {
		sb.WriteString(fmt.Sprintf("[grey]page %d/%d\n", page+1, pages))
	}
	view.SetText(sb.String())
	view.ScrollToBeginning()
}

// formatWord renders one word per the configured number format.
func (t *TUI) formatWord(w encoder.Word) string {
	switch t.Cfg.Inspector.NumberFormat {
	case "dec":
		return fmt.Sprintf("%4d", w)
	case "both":
		return fmt.Sprintf("%04o/%4d", uint16(w), w)
	default:
		return fmt.Sprintf("%04o", uint16(w))
	}
}

func (t *TUI) renderSymbols() {
	var sb strings.Builder
	for _, sym := range t.File.Symbols.Symbols() {
		color := "white"
		switch sym.Kind {
		case parser.SymbolEntry:
			color = "green"
		case parser.SymbolExternal:
			color = "red"
		}
		sb.WriteString(fmt.Sprintf("[%s]%-20s %-9s %d\n", color, sym.Name, sym.Kind, sym.Address))
	}
	if t.File.Symbols.Len() == 0 {
		sb.WriteString("[grey](no symbols)\n")
	}
	t.SymbolView.SetText(sb.String())
}

func (t *TUI) renderExports() {
	var sb strings.Builder
	for _, sym := range t.File.Symbols.Entries() {
		sb.WriteString(fmt.Sprintf("[green]ent[white]  %s\t%d\n", sym.Name, sym.Address))
	}
	for _, use := range t.File.Externals {
		sb.WriteString(fmt.Sprintf("[red]ext[white]  %s\t%d\n", use.Name, use.Address))
	}
	if len(t.File.Externals) == 0 && len(t.File.Symbols.Entries()) == 0 {
		sb.WriteString("[grey](none)\n")
	}
	t.ExportsView.SetText(sb.String())
}

func (t *TUI) renderStatus() {
	a := t.Cfg.Assembler
	t.StatusView.SetText(fmt.Sprintf(
		"%s   IC=%d (%d words)   DC=%d\n"+
			"machine: %d cells, first cell %d, lines <= %d chars, labels <= %d chars\n"+
			"Tab cycle panes, PgUp/PgDn page images, q/Esc/Ctrl-C quit",
		t.File.SourceName, t.File.IC, t.File.IC-parser.FirstCell, t.File.DC,
		a.MemorySize, a.FirstCell, a.MaxLineLength, a.MaxLabelLength))
}
