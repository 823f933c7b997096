// Package printer renders slab usage reports and heap statistics.
package printer

import (
	"fmt"
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joshuapare/slabkit/slab"
)

// Format specifies the output format for printing.
type Format string

const (
	// FormatText outputs an aligned human-readable table.
	FormatText Format = "text"

	// FormatJSON outputs JSON format.
	FormatJSON Format = "json"
)

// Options controls printing behavior.
type Options struct {
	// Format specifies output format (text, json).
	// Default: FormatText
	Format Format

	// Language selects digit grouping for text output.
	// Default: language.English
	Language language.Tag

	// Totals appends a summary row to text usage tables.
	// Default: true
	Totals bool
}

// DefaultOptions returns sensible defaults for printing.
func DefaultOptions() Options {
	return Options{
		Format:   FormatText,
		Language: language.English,
		Totals:   true,
	}
}

// Printer writes reports to an io.Writer.
type Printer struct {
	opts   Options
	writer io.Writer
	num    *message.Printer
}

// New creates a new Printer.
//
// Example:
//
//	p := printer.New(os.Stdout, printer.DefaultOptions())
//	p.Usage(h.Snapshot())
func New(w io.Writer, opts Options) *Printer {
	if opts.Language == language.Und {
		opts.Language = language.English
	}
	return &Printer{
		opts:   opts,
		writer: w,
		num:    message.NewPrinter(opts.Language),
	}
}

// Usage prints one row per bound node in chain order.
func (p *Printer) Usage(usage []slab.Usage) error {
	switch p.opts.Format {
	case FormatJSON:
		return p.usageJSON(usage)
	case FormatText:
		return p.usageText(usage)
	default:
		return fmt.Errorf("printer: unknown format %q", p.opts.Format)
	}
}

// Stats prints heap-wide counters.
func (p *Printer) Stats(st slab.Stats) error {
	switch p.opts.Format {
	case FormatJSON:
		return p.statsJSON(st)
	case FormatText:
		return p.statsText(st)
	default:
		return fmt.Errorf("printer: unknown format %q", p.opts.Format)
	}
}

// Report prints the usage table followed by heap-wide counters. JSON output
// is a single object with "usage" and "stats" fields.
func (p *Printer) Report(usage []slab.Usage, st slab.Stats) error {
	switch p.opts.Format {
	case FormatJSON:
		return p.encode(jsonReport{Usage: p.usageRows(usage), Stats: st})
	case FormatText:
		if err := p.usageText(usage); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(p.writer); err != nil {
			return err
		}
		return p.statsText(st)
	default:
		return fmt.Errorf("printer: unknown format %q", p.opts.Format)
	}
}
