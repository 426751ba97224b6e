package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"expensebot/internal/cli"
	"expensebot/internal/importer"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [files...]",
		Short: "Import expenses from CSV or OFX statement files",
		Long: `Import bank statement files. Debits become expenses with categories
filled in by the keyword resolver; rows already imported (same date, amount,
and item) are skipped.

Examples:
  # Import a CSV export
  expensebot import ~/Downloads/statement.csv

  # Import all QFX files in a directory
  expensebot import ~/Downloads/*.qfx

  # Force the parser when the extension is unhelpful
  expensebot import --format ofx ~/Downloads/statement.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImportFiles,
	}

	cmd.Flags().String("format", "auto", "statement format (auto, csv, ofx)")
	cmd.Flags().String("user", defaultUserID, "user id to log expenses under")

	return cmd
}

func runImportFiles(cmd *cobra.Command, args []string) error {
	handler := cli.NewInterruptHandler(os.Stdout)
	ctx := handler.HandleInterrupts(cmd.Context(), true)

	format, _ := cmd.Flags().GetString("format")
	user, _ := cmd.Flags().GetString("user")

	// Expand globs and collect all files
	var allFiles []string
	for _, pattern := range args {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			// If no glob matches, check if it's a direct file
			if _, err := os.Stat(pattern); err == nil {
				allFiles = append(allFiles, pattern)
			} else {
				slog.Warn("No files found matching pattern", "pattern", pattern)
			}
		} else {
			allFiles = append(allFiles, matches...)
		}
	}

	if len(allFiles) == 0 {
		return fmt.Errorf("no files found to import")
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	resolver, err := newResolver()
	if err != nil {
		return fmt.Errorf("failed to load category mapping: %w", err)
	}

	im := importer.NewImporter(store, resolver, os.Stdout)

	slog.Info("Importing statement files", "file_count", len(allFiles), "user", user)

	var total importer.Result
	failed := 0
	for _, filePath := range allFiles {
		result, err := importFile(ctx, im, user, filePath, format)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				break
			}
			slog.Error("Failed to import file", "file", filepath.Base(filePath), "error", err)
			failed++
			continue
		}
		total.Parsed += result.Parsed
		total.Imported += result.Imported
		total.Duplicates += result.Duplicates
		total.Skipped += result.Skipped
	}

	content := fmt.Sprintf(`Files: %d (%d failed)
Rows parsed: %d
Expenses imported: %d
Duplicates skipped: %d
Rows skipped: %d`,
		len(allFiles), failed, total.Parsed, total.Imported, total.Duplicates, total.Skipped)
	fmt.Println(cli.RenderBox("Import Summary", content))

	if handler.WasInterrupted() {
		return nil
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed to import", failed, len(allFiles))
	}
	return nil
}

func importFile(ctx context.Context, im *importer.Importer, user, filePath, format string) (importer.Result, error) {
	detected, err := detectFormat(filePath, format)
	if err != nil {
		return importer.Result{}, err
	}

	f, err := os.Open(filePath)
	if err != nil {
		return importer.Result{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	switch detected {
	case "csv":
		return im.ImportCSV(ctx, user, f)
	default:
		return im.ImportOFX(ctx, user, f)
	}
}

// detectFormat maps a file to its parser. An explicit format wins; "auto"
// goes by extension.
func detectFormat(path, format string) (string, error) {
	switch format {
	case "csv", "ofx":
		return format, nil
	case "", "auto":
	default:
		return "", fmt.Errorf("unsupported format %q: must be auto, csv, or ofx", format)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return "csv", nil
	case ".ofx", ".qfx":
		return "ofx", nil
	default:
		return "", fmt.Errorf("cannot detect format of %s: pass --format csv or --format ofx", filepath.Base(path))
	}
}
