// Package report writes a conformance run to an xlsx workbook, one sheet per
// run, so results can be archived and diffed outside the terminal.
package report

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/soundprobe/soundprobe/internal/conformance"
	"github.com/soundprobe/soundprobe/internal/util"
)

const (
	sheetNameFormat = "Run_%s"
	timeFormat      = "2006-01-02_15-04-05"

	failBgColor = "FF5900"
	skipBgColor = "FFEB9C"

	maxDetailLen = 300
)

var headers = []string{"#", "Check", "Status", "Detail"}

// Data is everything the report needs from one run.
type Data struct {
	BaseURL   string
	StartedAt time.Time
	Elapsed   time.Duration
	Passed    int
	Failed    int
	Skipped   int
	Results   []conformance.Result
}

// Write creates or appends to the workbook at path, adding one sheet for the
// run.
func Write(path string, data Data) error {
	f, err := excelize.OpenFile(path)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist):
		// First run against this path: start a fresh workbook.
		f = excelize.NewFile()
	default:
		// An unreadable existing workbook must not be clobbered.
		return fmt.Errorf("failed to open existing report %s: %w", path, err)
	}
	defer f.Close()

	sheet := fmt.Sprintf(sheetNameFormat, data.StartedAt.Format(timeFormat))
	index, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("failed to create report sheet: %w", err)
	}
	f.SetActiveSheet(index)

	f.SetColWidth(sheet, "A", "A", 6)
	f.SetColWidth(sheet, "B", "B", 42)
	f.SetColWidth(sheet, "C", "C", 10)
	f.SetColWidth(sheet, "D", "D", 80)

	for i, h := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheet, cell, h)
	}

	failStyle, err := bgStyle(f, failBgColor)
	if err != nil {
		return err
	}
	skipStyle, err := bgStyle(f, skipBgColor)
	if err != nil {
		return err
	}

	for i, res := range data.Results {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), i+1)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), res.Name)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), string(res.Status))
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), util.Truncate(res.Detail, maxDetailLen))

		switch res.Status {
		case conformance.StatusFail:
			f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("D%d", row), failStyle)
		case conformance.StatusSkip:
			f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("D%d", row), skipStyle)
		}
	}

	summaryRow := len(data.Results) + 3
	f.SetCellValue(sheet, fmt.Sprintf("B%d", summaryRow), "Server")
	f.SetCellValue(sheet, fmt.Sprintf("D%d", summaryRow), data.BaseURL)
	f.SetCellValue(sheet, fmt.Sprintf("B%d", summaryRow+1), "Results")
	f.SetCellValue(sheet, fmt.Sprintf("D%d", summaryRow+1),
		fmt.Sprintf("%d passed, %d failed, %d skipped", data.Passed, data.Failed, data.Skipped))
	f.SetCellValue(sheet, fmt.Sprintf("B%d", summaryRow+2), "Elapsed")
	f.SetCellValue(sheet, fmt.Sprintf("D%d", summaryRow+2), fmt.Sprintf("%.1fs", data.Elapsed.Seconds()))

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

func bgStyle(f *excelize.File, color string) (int, error) {
	style, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create report style: %w", err)
	}
	return style, nil
}
