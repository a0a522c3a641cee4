// Package export writes scan reports to spreadsheet files.
package export

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"StockRadar/internal/model"
	"StockRadar/internal/notifier"
	"StockRadar/internal/universe"

	"github.com/xuri/excelize/v2"
)

const (
	SheetBuy     = "Buy"
	SheetSell    = "Sell"
	SheetSkipped = "Skipped"
)

var (
	buyHeader     = []interface{}{"代碼", "名稱", "日期", "收盤價", "RSI", "200MA", "乖離率", "狀態"}
	sellHeader    = []interface{}{"代碼", "名稱", "日期", "收盤價", "RSI", "200MA", "狀態"}
	skippedHeader = []interface{}{"代碼", "原因", "說明"}
)

// FileName returns the default workbook name for a report.
func FileName(r *model.ScanReport) string {
	return fmt.Sprintf("radar_%s.xlsx", r.StartedAt.Format("20060102_150405"))
}

// WriteXLSX saves the report as a workbook with one sheet per table.
// Numeric columns are written as numbers rounded the way they are shown.
func WriteXLSX(r *model.ScanReport, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetBuy); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetSell, SheetSkipped} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	if err := writeRow(f, SheetBuy, 1, buyHeader); err != nil {
		return err
	}
	for i, c := range r.Result.Buy {
		row := []interface{}{
			universe.ShortCode(c.Symbol), c.Name, c.Date.Format("2006-01-02"),
			round(c.Close, 2), round(c.RSI, 1), round(c.MA200, 2),
			fmt.Sprintf("%.1f%%", c.Deviation), notifier.StatusLabel(c.Signal),
		}
		if err := writeRow(f, SheetBuy, i+2, row); err != nil {
			return err
		}
	}

	if err := writeRow(f, SheetSell, 1, sellHeader); err != nil {
		return err
	}
	for i, c := range r.Result.Sell {
		row := []interface{}{
			universe.ShortCode(c.Symbol), c.Name, c.Date.Format("2006-01-02"),
			round(c.Close, 2), round(c.RSI, 1), round(c.MA200, 2),
			notifier.StatusLabel(c.Signal),
		}
		if err := writeRow(f, SheetSell, i+2, row); err != nil {
			return err
		}
	}

	if err := writeRow(f, SheetSkipped, 1, skippedHeader); err != nil {
		return err
	}
	for i, o := range r.Skipped() {
		if err := writeRow(f, SheetSkipped, i+2, []interface{}{o.Symbol, string(o.Reason), o.Detail}); err != nil {
			return err
		}
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create export dir: %w", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s!%s: %w", sheet, cell, err)
	}
	return nil
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
