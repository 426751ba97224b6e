// Package importer loads bank statements into storage. CSV exports and
// OFX/QFX statements both end up as expense rows deduplicated by content
// hash, so re-importing the same file is safe.
package importer

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/schollz/progressbar/v3"

	"expensebot/internal/category"
	"expensebot/internal/service"
)

// Importer converts statement files into stored expenses.
type Importer struct {
	store    service.Storage
	resolver *category.Resolver
	out      io.Writer
}

// NewImporter creates an importer. A nil writer reports progress to stdout.
func NewImporter(store service.Storage, resolver *category.Resolver, out io.Writer) *Importer {
	if out == nil {
		out = os.Stdout
	}
	return &Importer{
		store:    store,
		resolver: resolver,
		out:      out,
	}
}

// Result summarizes one import run.
type Result struct {
	// Parsed counts rows that became expense candidates.
	Parsed int
	// Imported counts rows actually inserted.
	Imported int
	// Duplicates counts rows already present under the same hash.
	Duplicates int
	// Skipped counts rows dropped before saving (bad rows, credits).
	Skipped int
}

func (r Result) summary() string {
	return fmt.Sprintf("Imported %d of %d expenses (%d duplicates, %d skipped)",
		r.Imported, r.Parsed, r.Duplicates, r.Skipped)
}

func (im *Importer) newProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(im.out),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]"+description+"[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(im.out); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
}

func (im *Importer) finish(source string, result Result) {
	slog.Info("Import finished",
		"source", source,
		"parsed", result.Parsed,
		"imported", result.Imported,
		"duplicates", result.Duplicates,
		"skipped", result.Skipped)
	if _, err := fmt.Fprintln(im.out, result.summary()); err != nil {
		slog.Warn("Failed to write import summary", "error", err)
	}
}
