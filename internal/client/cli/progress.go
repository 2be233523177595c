package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/medsupply/internal/client/models"
	"golang.org/x/term"
)

// isTerminal is a test seam for term.IsTerminal.
var isTerminal = term.IsTerminal

// progressPrinter draws a redrawn bar on terminals and one line per committed
// chunk everywhere.
type progressPrinter struct {
	w     io.Writer
	tty   bool
	width int
	last  int
}

func newProgressPrinter(w io.Writer) *progressPrinter {
	p := &progressPrinter{w: w, width: 30, last: -1}
	if f, ok := w.(*os.File); ok && isTerminal(int(f.Fd())) {
		p.tty = true
		if cols, _, err := term.GetSize(int(f.Fd())); err == nil && cols > 60 {
			p.width = min(50, cols-30)
		}
	}
	return p
}

func (p *progressPrinter) Update(ev models.Progress) {
	switch ev.Kind {
	case models.ProgressRecord:
		if !p.tty || ev.Percentage == p.last {
			return
		}
		p.last = ev.Percentage
		filled := p.width * ev.Percentage / 100
		fmt.Fprintf(p.w, "\r[%s%s] %3d%% (%d/%d)",
			strings.Repeat("#", filled), strings.Repeat(".", p.width-filled), ev.Percentage, ev.Current, ev.Total)
	case models.ProgressChunk:
		if p.tty {
			fmt.Fprint(p.w, "\r\x1b[K")
		}
		fmt.Fprintf(p.w, "Chunk %d/%d done: %d/%d records (%d%%)\n",
			ev.Chunk+1, ev.ChunkCount, ev.Current, ev.Total, ev.Percentage)
		p.last = -1
	}
}
