package ledger

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/copilot/internal/model"
	"github.com/cleared-dev/copilot/internal/period"
)

const testdataDir = "../../testdata/ledger"

func TestLoadTestdata(t *testing.T) {
	store, err := Load(testdataDir, "")
	require.NoError(t, err)

	actuals := store.Actuals()
	require.Len(t, actuals, 12)
	assert.Len(t, store.Budget(), 4)
	assert.Len(t, store.Cash(), 3)
	assert.Len(t, store.FX(), 3)

	// Every date form collapses onto canonical periods.
	byPeriod := make(map[period.Period]int)
	for _, row := range actuals {
		byPeriod[row.Period]++
	}
	assert.Equal(t, map[period.Period]int{
		period.New(2025, time.January):  5,
		period.New(2025, time.February): 4,
		period.New(2025, time.March):    3,
	}, byPeriod)

	sales := actuals[8]
	assert.Equal(t, model.CategoryOpexSales, sales.Category)
	assert.True(t, sales.Amount.Equal(dec("1000")))
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{TableActuals, TableBudget, TableCash} {
		data, err := os.ReadFile(filepath.Join(testdataDir, name+".csv"))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name+".csv"), data, 0o644))
	}

	_, err := Load(dir, FormatCSV)
	var dle *DataLoadError
	require.ErrorAs(t, err, &dle)
	assert.Equal(t, TableFx, dle.Table)
	assert.ErrorIs(t, err, ErrMissingTable)
}

func TestLoadRaggedCSV(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteCSV(dir, validSheets()))
	ragged := "month,entity,account_category,amount,currency\n2025-01,ParentCo,Revenue\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "actuals.csv"), []byte(ragged), 0o644))

	_, err := Load(dir, "")
	var dle *DataLoadError
	require.ErrorAs(t, err, &dle)
	assert.Equal(t, TableActuals, dle.Table)
}

func TestWorkbookRoundTrip(t *testing.T) {
	sheets := validSheets()
	sheets[TableActuals] = append(sheets[TableActuals], []string{"Jun'25", "EMEA", "COGS", "40", "EUR"})

	path := filepath.Join(t.TempDir(), "data.xlsx")
	require.NoError(t, WriteXLSX(path, sheets))

	store, err := Load(path, "")
	require.NoError(t, err)

	actuals := store.Actuals()
	require.Len(t, actuals, 2)
	assert.Equal(t, period.New(2025, time.June), actuals[1].Period)
	assert.Equal(t, model.CategoryCOGS, actuals[1].Category)
	assert.True(t, actuals[1].Amount.Equal(dec("40")))
	assert.Len(t, store.FX(), 1)
}

func TestWorkbookMissingSheet(t *testing.T) {
	sheets := validSheets()
	delete(sheets, TableCash)

	path := filepath.Join(t.TempDir(), "data.xlsx")
	require.NoError(t, WriteXLSX(path, sheets))

	_, err := Load(path, "")
	var dle *DataLoadError
	require.ErrorAs(t, err, &dle)
	assert.Equal(t, TableCash, dle.Table)
}

func TestInferFormat(t *testing.T) {
	f, err := InferFormat(testdataDir)
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	path := filepath.Join(t.TempDir(), "Data.XLSX")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	f, err = InferFormat(path)
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	other := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(other, nil, 0o644))
	_, err = InferFormat(other)
	assert.Error(t, err)

	_, err = InferFormat(filepath.Join(t.TempDir(), "absent"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadUnknownFormat(t *testing.T) {
	_, err := Load(testdataDir, "parquet")
	var dle *DataLoadError
	require.ErrorAs(t, err, &dle)
	assert.Contains(t, err.Error(), "unknown ledger format")
}

func TestLoadUnreadableSource(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "ledger.xlsx")
	require.NoError(t, os.WriteFile(garbage, []byte("not a workbook"), 0o644))

	tests := []struct {
		name   string
		path   string
		format string
		isErr  error
	}{
		{"absent, inferred", filepath.Join(dir, "absent"), "", os.ErrNotExist},
		{"absent csv dir", filepath.Join(dir, "absent"), FormatCSV, os.ErrNotExist},
		{"absent workbook", filepath.Join(dir, "absent.xlsx"), FormatXLSX, nil},
		{"corrupt workbook", garbage, "", nil},
		{"csv format on a file", garbage, FormatCSV, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path, tt.format)
			var dle *DataLoadError
			require.ErrorAs(t, err, &dle)
			assert.Empty(t, dle.Table)
			assert.Contains(t, err.Error(), "loading ledger: ")
			if tt.isErr != nil {
				assert.ErrorIs(t, err, tt.isErr)
			}
		})
	}
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.NotNil(t, r.Get("CSV"))
	assert.NotNil(t, r.Get("xlsx"))
	assert.Nil(t, r.Get("ods"))
	assert.Panics(t, func() { r.Register(&CSVReader{}) })
}

func TestStoreIsImmutable(t *testing.T) {
	rows := []model.Posting{{Period: period.MustParse("2025-01"), Category: model.CategoryRevenue, Amount: dec("1"), Currency: "USD"}}
	store := NewStore(rows, nil, nil, nil)

	rows[0].Amount = dec("999")
	got := store.Actuals()
	assert.True(t, got[0].Amount.Equal(dec("1")), "constructor copies input")

	got[0].Amount = dec("999")
	assert.True(t, store.Actuals()[0].Amount.Equal(dec("1")), "accessor returns a copy")
}

func TestSummary(t *testing.T) {
	store, err := Load(testdataDir, "")
	require.NoError(t, err)

	sum := store.Summary()
	assert.Equal(t, 12, sum.Actuals)
	assert.Equal(t, period.New(2025, time.January), sum.First)
	assert.Equal(t, period.New(2025, time.March), sum.Last)
	assert.Equal(t, period.New(2025, time.April), sum.LatestCash)
	assert.Equal(t, []string{"EUR", "USD"}, sum.Currencies)
}
