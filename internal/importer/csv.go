package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"expensebot/internal/model"
)

// csvDateFormats are tried in order when parsing the date column.
var csvDateFormats = []string{
	"2006-01-02",
	"2006/01/02",
	"02-01-2006",
	"02/01/2006",
	"Jan 2, 2006",
	time.RFC3339,
}

// columnAliases maps the header names seen in the wild onto our columns.
var columnAliases = map[string]string{
	"date":             "date",
	"transaction date": "date",
	"spent_at":         "date",
	"amount":           "amount",
	"value":            "amount",
	"debit":            "amount",
	"item":             "item",
	"description":      "item",
	"details":          "item",
	"merchant":         "item",
	"category":         "category",
}

type csvColumns struct {
	date     int
	amount   int
	item     int
	category int
}

// ImportCSV reads a header-mapped CSV export and saves every parseable row
// as an expense for userID. Bad rows are logged and skipped; the whole batch
// is written in one transaction.
func (im *Importer) ImportCSV(ctx context.Context, userID string, r io.Reader) (Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return Result{}, fmt.Errorf("failed to read CSV header: %w", err)
	}
	cols, err := mapColumns(header)
	if err != nil {
		return Result{}, err
	}

	records, err := reader.ReadAll()
	if err != nil {
		return Result{}, fmt.Errorf("failed to read CSV rows: %w", err)
	}

	if err := im.store.EnsureUser(ctx, userID); err != nil {
		return Result{}, fmt.Errorf("failed to ensure user: %w", err)
	}

	var result Result
	expenses := make([]model.Expense, 0, len(records))
	bar := im.newProgressBar(len(records), "Importing CSV rows...")
	for i, record := range records {
		if err := bar.Add(1); err != nil {
			slog.Warn("Failed to update progress bar", "error", err)
		}

		expense, err := im.rowToExpense(userID, cols, record)
		if err != nil {
			// Header row number, 1-based data rows start at 2.
			slog.Warn("Skipping CSV row", "row", i+2, "error", err)
			result.Skipped++
			continue
		}
		expenses = append(expenses, expense)
	}
	result.Parsed = len(expenses)

	inserted, err := im.store.SaveExpenses(ctx, expenses)
	if err != nil {
		return result, fmt.Errorf("failed to save expenses: %w", err)
	}
	result.Imported = inserted
	result.Duplicates = result.Parsed - inserted

	im.finish("csv", result)
	return result, nil
}

func mapColumns(header []string) (csvColumns, error) {
	cols := csvColumns{date: -1, amount: -1, item: -1, category: -1}
	for i, name := range header {
		alias, ok := columnAliases[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			continue
		}
		switch alias {
		case "date":
			cols.date = i
		case "amount":
			cols.amount = i
		case "item":
			cols.item = i
		case "category":
			cols.category = i
		}
	}

	var missing []string
	if cols.date == -1 {
		missing = append(missing, "date")
	}
	if cols.amount == -1 {
		missing = append(missing, "amount")
	}
	if cols.item == -1 {
		missing = append(missing, "item/description")
	}
	if len(missing) > 0 {
		return cols, fmt.Errorf("CSV header is missing columns: %s", strings.Join(missing, ", "))
	}
	return cols, nil
}

func (im *Importer) rowToExpense(userID string, cols csvColumns, record []string) (model.Expense, error) {
	need := cols.item
	if cols.amount > need {
		need = cols.amount
	}
	if cols.date > need {
		need = cols.date
	}
	if len(record) <= need {
		return model.Expense{}, errors.New("row has too few columns")
	}

	spentAt, err := parseCSVDate(record[cols.date])
	if err != nil {
		return model.Expense{}, err
	}
	amount, err := parseCSVAmount(record[cols.amount])
	if err != nil {
		return model.Expense{}, err
	}
	item := strings.TrimSpace(record[cols.item])
	if item == "" {
		return model.Expense{}, errors.New("empty item description")
	}

	cat := ""
	if cols.category != -1 && cols.category < len(record) {
		cat = strings.ToLower(strings.TrimSpace(record[cols.category]))
	}
	if cat == "" {
		cat = im.resolver.Resolve(item)
	}

	expense := model.Expense{
		ID:       uuid.NewString(),
		UserID:   userID,
		Amount:   amount,
		Item:     item,
		Category: cat,
		Currency: model.DefaultCurrency,
		Source:   model.SourceCSV,
		SpentAt:  spentAt,
	}
	expense.Hash = expense.GenerateHash()
	return expense, nil
}

func parseCSVDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, format := range csvDateFormats {
		if t, err := time.Parse(format, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}

// parseCSVAmount accepts bank-export conventions: thousands separators,
// currency markers, and negative debits. The sign is dropped because every
// kept row is a spend.
func parseCSVAmount(raw string) (float64, error) {
	cleaned := strings.NewReplacer(",", "", "PKR", "", "Rs.", "", "Rs", "").Replace(strings.TrimSpace(raw))
	cleaned = strings.TrimSpace(cleaned)
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("unrecognized amount %q", raw)
	}
	v = math.Abs(v)
	if v == 0 {
		return 0, fmt.Errorf("zero amount %q", raw)
	}
	return v, nil
}
