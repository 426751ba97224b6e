package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"
	"github.com/google/uuid"

	"expensebot/internal/model"
)

var (
	severityRe = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	openTagRe  = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// preprocessOFX fixes the formatting quirks banks ship in SGML-style files:
// mixed-case SEVERITY values and opening tags missing their closing bracket.
func preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRe.ReplaceAllStringFunc(content, strings.ToUpper)
	return openTagRe.ReplaceAllString(content, "$1>")
}

// ImportOFX reads an OFX/QFX statement and saves its debit transactions as
// expenses for userID. Credits are income and are skipped.
func (im *Importer) ImportOFX(ctx context.Context, userID string, r io.Reader) (Result, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocessOFX(string(content))))
	if err != nil {
		return Result{}, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var statements []*ofxgo.TransactionList
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			statements = append(statements, stmt.BankTranList)
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			statements = append(statements, stmt.BankTranList)
		}
	}

	var transactions []ofxgo.Transaction
	for _, list := range statements {
		if list == nil {
			continue
		}
		transactions = append(transactions, list.Transactions...)
	}
	slog.Info("Parsed OFX file",
		"statements", len(statements),
		"transactions", len(transactions))

	if err := im.store.EnsureUser(ctx, userID); err != nil {
		return Result{}, fmt.Errorf("failed to ensure user: %w", err)
	}

	var result Result
	expenses := make([]model.Expense, 0, len(transactions))
	bar := im.newProgressBar(len(transactions), "Importing transactions...")
	for _, tx := range transactions {
		if err := bar.Add(1); err != nil {
			slog.Warn("Failed to update progress bar", "error", err)
		}

		amount, _ := tx.TrnAmt.Float64()
		if amount >= 0 {
			result.Skipped++
			continue
		}

		item := merchantName(tx)
		if item == "" {
			slog.Warn("Skipping OFX transaction without a merchant name", "fitid", string(tx.FiTID))
			result.Skipped++
			continue
		}
		expense := model.Expense{
			ID:       uuid.NewString(),
			UserID:   userID,
			Amount:   -amount,
			Item:     item,
			Category: im.resolver.Resolve(item),
			Currency: model.DefaultCurrency,
			Source:   model.SourceOFX,
			SpentAt:  tx.DtPosted.Time,
		}
		expense.Hash = expense.GenerateHash()
		expenses = append(expenses, expense)
	}
	result.Parsed = len(expenses)

	inserted, err := im.store.SaveExpenses(ctx, expenses)
	if err != nil {
		return result, fmt.Errorf("failed to save expenses: %w", err)
	}
	result.Imported = inserted
	result.Duplicates = result.Parsed - inserted

	im.finish("ofx", result)
	return result, nil
}

// genericNames are transaction names too vague to identify a merchant.
var genericNames = map[string]struct{}{
	"DEBIT": {}, "CREDIT": {}, "PURCHASE": {}, "PAYMENT": {},
	"POS TRANSACTION": {}, "CARD PURCHASE": {},
}

// merchantPrefixes are processor boilerplate stripped from statement names.
var merchantPrefixes = []string{
	"POS PURCHASE ",
	"PURCHASE AUTHORIZED ON ",
	"DEBIT CARD PURCHASE ",
	"ACH DEBIT ",
	"CHECK CARD ",
	"VISA PURCHASE ",
	"MC PURCHASE ",
}

// merchantName extracts the cleanest merchant description a statement line
// offers: the payee record when present, otherwise the name, with the memo
// standing in when the name is generic boilerplate.
func merchantName(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return string(tx.Payee.Name)
	}

	name := string(tx.Name)
	if _, generic := genericNames[strings.ToUpper(name)]; generic && tx.Memo != "" {
		name = string(tx.Memo)
	}
	name = strings.TrimSpace(name)

	for _, prefix := range merchantPrefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Strip a leading MM/DD posting date.
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}
	return name
}
