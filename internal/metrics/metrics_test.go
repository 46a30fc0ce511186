package metrics

import (
	"bytes"
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/copilot/internal/ledger"
	"github.com/cleared-dev/copilot/internal/model"
	"github.com/cleared-dev/copilot/internal/period"
)

const testdataDir = "../../testdata/ledger"

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func p(s string) period.Period {
	return period.MustParse(s)
}

func post(month string, cat model.Category, amount, currency string) model.Posting {
	return model.Posting{
		Period:   p(month),
		Entity:   "ParentCo",
		Category: cat,
		Amount:   dec(amount),
		Currency: currency,
	}
}

func cash(month, amount string) model.CashBalance {
	return model.CashBalance{Period: p(month), Entity: "ParentCo", Amount: dec(amount)}
}

func assertDec(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), append([]any{"want %s, got %s", want, got}, msgAndArgs...)...)
}

func loadTestdata(t *testing.T) *Engine {
	t.Helper()
	store, err := ledger.Load(testdataDir, ledger.FormatCSV)
	require.NoError(t, err)
	return New(store, Options{ReportingCurrency: "USD"})
}

func TestRevenueVarianceSingleMonth(t *testing.T) {
	store := ledger.NewStore(
		[]model.Posting{post("2025-01", model.CategoryRevenue, "100", "USD")},
		[]model.Posting{post("2025-01", model.CategoryRevenue, "90", "USD")},
		nil, nil,
	)
	e := New(store, Options{})

	got := e.RevenueVariance(p("2025-01"), p("2025-01"))
	assertDec(t, "10", got.Variance)
	assertDec(t, "100", got.Actual)
	assertDec(t, "90", got.Budget)
}

func TestRevenueVarianceEmptyRange(t *testing.T) {
	e := loadTestdata(t)

	inverted := e.RevenueVariance(p("2025-03"), p("2025-01"))
	assert.True(t, inverted.Variance.IsZero())
	assert.True(t, inverted.Actual.IsZero())
	assert.True(t, inverted.Budget.IsZero())

	outside := e.RevenueVariance(p("2019-01"), p("2019-12"))
	assert.True(t, outside.Actual.IsZero())
}

func TestRevenueVarianceTestdata(t *testing.T) {
	e := loadTestdata(t)

	got := e.RevenueVariance(p("2025-01"), p("2025-03"))
	assertDec(t, "3650", got.Actual)
	assertDec(t, "3750", got.Budget)
	assertDec(t, "-100", got.Variance)
	assert.True(t, got.Variance.Equal(got.Actual.Sub(got.Budget)))
}

func TestGrossMarginTestdata(t *testing.T) {
	e := loadTestdata(t)

	got := e.GrossMarginPct(p("2025-01"), p("2025-03"))
	require.Len(t, got, 3)
	assert.Equal(t, []period.Period{p("2025-01"), p("2025-02"), p("2025-03")},
		[]period.Period{got[0].Period, got[1].Period, got[2].Period})
	assertDec(t, "74.19", got[0].Value)
	assertDec(t, "58.33", got[1].Value)
	assertDec(t, "50", got[2].Value)

	m := got.Map()
	assertDec(t, "58.33", m["2025-02"])
}

func TestGrossMarginZeroRevenue(t *testing.T) {
	store := ledger.NewStore(
		[]model.Posting{
			post("2025-01", model.CategoryCOGS, "40", "USD"),
			post("2025-02", model.CategoryRevenue, "200", "USD"),
			post("2025-02", model.CategoryCOGS, "50", "USD"),
		},
		nil, nil, nil,
	)
	e := New(store, Options{})

	got := e.GrossMarginPct(p("2025-01"), p("2025-02"))
	require.Len(t, got, 2)
	assert.True(t, got[0].Value.IsZero(), "zero revenue reports 0, got %s", got[0].Value)
	assertDec(t, "75", got[1].Value)
}

func TestGrossMarginOnlyPeriodsPresent(t *testing.T) {
	e := loadTestdata(t)

	got := e.GrossMarginPct(p("2024-01"), p("2025-01"))
	require.Len(t, got, 1)
	assert.Equal(t, p("2025-01"), got[0].Period)

	assert.Empty(t, e.GrossMarginPct(p("2025-03"), p("2025-01")))
}

func TestOpexBreakdownTestdata(t *testing.T) {
	e := loadTestdata(t)

	got := e.OpexBreakdown(p("2025-01"), p("2025-03"))
	require.Len(t, got, 4)
	assertDec(t, "300", got[model.CategoryOpexMarketing])
	assertDec(t, "55", got[model.CategoryOpexAdmin])
	assertDec(t, "300", got[model.CategoryOpexRD])
	assertDec(t, "1200", got[model.CategoryOpexSales])
	assertDec(t, "1855", got.Total())

	assert.Equal(t, []model.Category{
		model.CategoryOpexAdmin,
		model.CategoryOpexMarketing,
		model.CategoryOpexRD,
		model.CategoryOpexSales,
	}, got.Categories())
}

func TestOpexBreakdownOmitsAbsentCategories(t *testing.T) {
	e := loadTestdata(t)

	got := e.OpexBreakdown(p("2025-03"), p("2025-03"))
	require.Len(t, got, 1)
	assertDec(t, "200", got[model.CategoryOpexMarketing])
	_, ok := got[model.CategoryOpexSales]
	assert.False(t, ok)
}

func TestOpexBreakdownPrefixMatch(t *testing.T) {
	store := ledger.NewStore(
		[]model.Posting{
			post("2025-01", "Opex:Travel", "25", "USD"),
			post("2025-01", model.CategoryRevenue, "100", "USD"),
		},
		nil, nil, nil,
	)
	e := New(store, Options{})

	got := e.OpexBreakdown(p("2025-01"), p("2025-01"))
	assertDec(t, "25", got["Opex:Travel"])
}

func TestEBITDAProxyTestdata(t *testing.T) {
	e := loadTestdata(t)

	got := e.EBITDAProxy(p("2025-01"), p("2025-03"))
	assertDec(t, "3650", got.Revenue)
	assertDec(t, "1350", got.COGS)
	assertDec(t, "1855", got.Opex)
	assertDec(t, "445", got.Value)

	// EBITDA proxy equals revenue less COGS less the opex breakdown total.
	opex := e.OpexBreakdown(p("2025-01"), p("2025-03"))
	assert.True(t, got.Value.Equal(got.Revenue.Sub(got.COGS).Sub(opex.Total())))
}

func TestCashRunwayAverageBurn(t *testing.T) {
	store := ledger.NewStore(
		[]model.Posting{
			post("2025-01", model.CategoryCOGS, "10", "USD"),
			post("2025-02", model.CategoryOpexSales, "20", "USD"),
			post("2025-03", model.CategoryCOGS, "20", "USD"),
			post("2025-03", model.CategoryOpexAdmin, "10", "USD"),
		},
		nil,
		[]model.CashBalance{cash("2025-04", "120")},
		nil,
	)
	e := New(store, Options{})

	got := e.CashRunway(p("2025-04"), 3)
	assert.InDelta(t, 6.0, got.Months, 1e-9)
	assertDec(t, "20", got.AvgBurn)
	assertDec(t, "120", got.CashBalance)
	assert.Equal(t, []period.Period{p("2025-01"), p("2025-02"), p("2025-03")}, got.Window())
	assert.False(t, got.Infinite())
}

func TestCashRunwayNonPositiveBurnIsInfinite(t *testing.T) {
	e := loadTestdata(t)

	got := e.CashRunway(p("2025-04"), 3)
	assert.True(t, math.IsInf(got.Months, 1))
	assert.True(t, got.Infinite())
	assert.True(t, got.AvgBurn.IsNegative(), "avg burn %s", got.AvgBurn)

	breakEven := ledger.NewStore(
		[]model.Posting{
			post("2025-01", model.CategoryRevenue, "50", "USD"),
			post("2025-01", model.CategoryCOGS, "50", "USD"),
		},
		nil,
		[]model.CashBalance{cash("2025-02", "100")},
		nil,
	)
	got = New(breakEven, Options{}).CashRunway(p("2025-02"), 3)
	assert.True(t, got.Infinite())
	assert.True(t, got.AvgBurn.IsZero())
}

func TestCashRunwayShorterWindow(t *testing.T) {
	e := loadTestdata(t)

	got := e.CashRunway(p("2025-04"), 2)
	assertDec(t, "275", got.AvgBurn)
	assertDec(t, "6000", got.CashBalance)
	assert.InDelta(t, 21.8181818, got.Months, 1e-6)
	assert.Equal(t, []period.Period{p("2025-02"), p("2025-03")}, got.Window())
}

func TestCashRunwayFewerPeriodsThanRequested(t *testing.T) {
	e := loadTestdata(t)

	got := e.CashRunway(p("2025-03"), 12)
	require.Len(t, got.Burns, 2, "only Jan and Feb precede March")
	assertDec(t, "-995", got.Burns[0].Value)
	assertDec(t, "800", got.Burns[1].Value)
	assertDec(t, "-97.5", got.AvgBurn)
	assert.True(t, got.Infinite())
}

func TestCashRunwayDefaults(t *testing.T) {
	e := loadTestdata(t)

	got := e.CashRunway(period.Period{}, 0)
	assert.Equal(t, p("2025-04"), got.AsOf, "latest cash period")
	assert.Len(t, got.Burns, DefaultRunwayMonths)
}

func TestCashRunwayNoHistory(t *testing.T) {
	store := ledger.NewStore(nil, nil, []model.CashBalance{cash("2025-01", "500")}, nil)

	got := New(store, Options{}).CashRunway(period.Period{}, 3)
	assert.True(t, got.Infinite())
	assert.Empty(t, got.Burns)
	assert.True(t, got.AvgBurn.IsZero())
}

func TestMissingRateFallsBackAndLogs(t *testing.T) {
	store := ledger.NewStore(
		[]model.Posting{
			post("2025-01", model.CategoryRevenue, "100", "GBP"),
			post("2025-01", model.CategoryRevenue, "10", "USD"),
		},
		nil, nil, nil,
	)
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.WarnLevel)
	e := New(store, Options{ReportingCurrency: "USD", Logger: &log})

	got := e.RevenueVariance(p("2025-01"), p("2025-01"))
	assertDec(t, "110", got.Actual)
	assert.Contains(t, buf.String(), `"currency":"GBP"`)
	assert.NotContains(t, buf.String(), `"currency":"USD"`, "reporting currency fallback is debug only")
}

func TestEngineDoesNotMutateStore(t *testing.T) {
	store, err := ledger.Load(testdataDir, ledger.FormatCSV)
	require.NoError(t, err)
	before := store.Actuals()

	e := New(store, Options{})
	e.RevenueVariance(p("2025-01"), p("2025-03"))
	e.CashRunway(period.Period{}, 3)

	assert.Equal(t, before, store.Actuals())
	assert.Equal(t, "USD", e.ReportingCurrency())
}
