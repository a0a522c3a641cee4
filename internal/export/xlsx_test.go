package export

import (
	"path/filepath"
	"testing"
	"time"

	"StockRadar/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteXLSX(t *testing.T) {
	date := time.Date(2024, 6, 3, 9, 30, 0, 0, time.UTC)
	report := &model.ScanReport{
		StartedAt: date,
		Result: model.ScanResult{
			Buy: []model.Classification{
				{Symbol: "2330.TW", Name: "台積電", Signal: model.SignalStrongBuy, Date: date, Close: 202, MA200: 174.4137, RSI: 21.834, Deviation: 15.816},
			},
			Sell: []model.Classification{
				{Symbol: "6488.TWO", Name: "環球晶", Signal: model.SignalOverheated, Date: date, Close: 512.5, MA200: 430, RSI: 77.77},
			},
		},
		Outcomes: []model.Outcome{
			{Symbol: "2330.TW", Status: model.StatusClassified},
			{Symbol: "6488.TWO", Status: model.StatusClassified},
			{Symbol: "1101.TW", Status: model.StatusSkipped, Reason: model.SkipInsufficientHistory, Detail: "150 bars"},
		},
	}

	path := filepath.Join(t.TempDir(), "out", FileName(report))
	assert.Equal(t, "radar_20240603_093000.xlsx", filepath.Base(path))
	require.NoError(t, WriteXLSX(report, path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetBuy, SheetSell, SheetSkipped}, f.GetSheetList())

	buy, err := f.GetRows(SheetBuy)
	require.NoError(t, err)
	require.Len(t, buy, 2)
	assert.Equal(t, "代碼", buy[0][0])
	assert.Equal(t, []string{"2330", "台積電", "2024-06-03", "202", "21.8", "174.41", "15.8%", "長多回檔 (強烈買訊)"}, buy[1])

	sell, err := f.GetRows(SheetSell)
	require.NoError(t, err)
	require.Len(t, sell, 2)
	assert.Equal(t, "6488", sell[1][0])
	assert.Equal(t, "77.8", sell[1][4])

	skipped, err := f.GetRows(SheetSkipped)
	require.NoError(t, err)
	require.Len(t, skipped, 2)
	assert.Equal(t, []string{"1101.TW", "INSUFFICIENT_HISTORY", "150 bars"}, skipped[1])
}

func TestWriteXLSX_EmptyReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, WriteXLSX(&model.ScanReport{}, path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(SheetBuy)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
