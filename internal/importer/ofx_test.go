package importer

import (
	"context"
	"strings"
	"testing"

	"github.com/aclindsa/ofxgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensebot/internal/model"
	"expensebot/internal/service"
)

const sampleBankOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20250315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>PKR
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20250301120000[0:GMT]
<DTEND>20250315120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20250303120000[0:GMT]
<TRNAMT>-850.00
<FITID>2025030301
<NAME>FOODPANDA ORDER 8839
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20250310120000[0:GMT]
<TRNAMT>-2500.00
<FITID>2025031001
<NAME>POS PURCHASE UBER TRIP
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20250312120000[0:GMT]
<TRNAMT>50000.00
<FITID>2025031201
<NAME>SALARY TRANSFER
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>46650.00
<DTASOF>20250315120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

func TestImportOFX(t *testing.T) {
	im, store := newTestImporter(t)
	ctx := context.Background()

	result, err := im.ImportOFX(ctx, "user-1", strings.NewReader(sampleBankOFX))
	require.NoError(t, err)

	assert.Equal(t, 2, result.Parsed)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 0, result.Duplicates)
	assert.Equal(t, 1, result.Skipped, "the salary credit is income, not spend")

	expenses, err := store.ListExpenses(ctx, "user-1", service.ExpenseFilter{})
	require.NoError(t, err)
	require.Len(t, expenses, 2)

	byItem := make(map[string]model.Expense)
	for _, e := range expenses {
		assert.Equal(t, model.SourceOFX, e.Source)
		byItem[e.Item] = e
	}

	require.Contains(t, byItem, "FOODPANDA ORDER 8839")
	assert.Equal(t, 850.0, byItem["FOODPANDA ORDER 8839"].Amount)
	assert.Equal(t, "food", byItem["FOODPANDA ORDER 8839"].Category)

	// Processor boilerplate is stripped before the keyword lookup.
	require.Contains(t, byItem, "UBER TRIP")
	assert.Equal(t, 2500.0, byItem["UBER TRIP"].Amount)
	assert.Equal(t, "transportation", byItem["UBER TRIP"].Category)
}

func TestImportOFXIsIdempotent(t *testing.T) {
	im, _ := newTestImporter(t)
	ctx := context.Background()

	first, err := im.ImportOFX(ctx, "user-1", strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	require.Equal(t, 2, first.Imported)

	second, err := im.ImportOFX(ctx, "user-1", strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	assert.Equal(t, 0, second.Imported)
	assert.Equal(t, 2, second.Duplicates)
}

func TestImportOFXRejectsGarbage(t *testing.T) {
	im, _ := newTestImporter(t)

	_, err := im.ImportOFX(context.Background(), "user-1", strings.NewReader("not an ofx file"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse OFX file")
}

func TestMerchantName(t *testing.T) {
	tests := []struct {
		name string
		tx   ofxgo.Transaction
		want string
	}{
		{
			name: "payee preferred over name",
			tx: ofxgo.Transaction{
				Name:  "CARD PURCHASE",
				Payee: &ofxgo.Payee{Name: "Local Cafe"},
			},
			want: "Local Cafe",
		},
		{
			name: "memo replaces generic name",
			tx:   ofxgo.Transaction{Name: "DEBIT", Memo: "CHAI KHANA GULBERG"},
			want: "CHAI KHANA GULBERG",
		},
		{
			name: "processor prefix stripped",
			tx:   ofxgo.Transaction{Name: "POS PURCHASE METRO STORE"},
			want: "METRO STORE",
		},
		{
			name: "leading posting date stripped",
			tx:   ofxgo.Transaction{Name: "03/10 DAEWOO BUS"},
			want: "DAEWOO BUS",
		},
		{
			name: "clean name untouched",
			tx:   ofxgo.Transaction{Name: "NETFLIX.COM"},
			want: "NETFLIX.COM",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, merchantName(tt.tx))
		})
	}
}

func TestPreprocessOFX(t *testing.T) {
	in := "\n  OFXHEADER:100\n<SEVERITY>Info</SEVERITY>\n<STMTTRN\n"
	out := preprocessOFX(in)
	assert.True(t, strings.HasPrefix(out, "OFXHEADER:100"))
	assert.Contains(t, out, "<SEVERITY>INFO</SEVERITY>")
	assert.Contains(t, out, "<STMTTRN>")
}
