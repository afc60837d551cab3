package excel

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/JoeLimewire/weather-app/internal/domain/entities"
	"github.com/JoeLimewire/weather-app/internal/domain/ports"
	"github.com/JoeLimewire/weather-app/internal/pkg/logger"
)

const (
	SheetName = "Forecast"

	// Rows 1-2 hold the title and unit line, row 3 is blank.
	headerRow    = 4
	firstDataRow = headerRow + 1
)

var headers = []string{
	"Day", "Date", "Temperature", "Feels Like", "Pressure (hPa)",
	"Description", "Wind (m/s)", "Humidity (%)", "Icon",
}

type WorkbookExporter struct {
	logger logger.Logger
	now    func() time.Time
}

var _ ports.WorkbookExporter = (*WorkbookExporter)(nil)

func NewWorkbookExporter(log logger.Logger) *WorkbookExporter {
	return &WorkbookExporter{
		logger: log.WithField("component", "workbook_exporter"),
		now:    time.Now,
	}
}

// Export writes one row per forecast day to w as an xlsx workbook.
func (e *WorkbookExporter) Export(result *entities.ForecastResult, w io.Writer) error {
	if result == nil {
		return fmt.Errorf("no forecast to export")
	}

	e.logger.Debugf("Exporting %d day forecast for %s", len(result.Days), result.Title())

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetDocProps(&excelize.DocProperties{
		Title:       fmt.Sprintf("Forecast - %s", result.Title()),
		Subject:     "Weather Forecast",
		Creator:     "Forecast Viewer",
		Description: fmt.Sprintf("%d day forecast for %s in %s", len(result.Days), result.Title(), result.Units.Label()),
		Created:     e.now().UTC().Format(time.RFC3339),
	}); err != nil {
		return fmt.Errorf("failed to set document properties: %w", err)
	}

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	if err := e.writeForecastSheet(f, result); err != nil {
		return fmt.Errorf("failed to create forecast sheet: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	return nil
}

func (e *WorkbookExporter) writeForecastSheet(f *excelize.File, result *entities.ForecastResult) error {
	lastColumn := colLetter(len(headers))

	if err := f.SetCellValue(SheetName, "A1", fmt.Sprintf("Forecast: %s", result.Title())); err != nil {
		return err
	}
	if err := f.MergeCell(SheetName, "A1", lastColumn+"1"); err != nil {
		return err
	}
	if err := f.SetCellValue(SheetName, "A2", fmt.Sprintf("Units: %s", result.Units.Label())); err != nil {
		return err
	}
	if err := f.MergeCell(SheetName, "A2", lastColumn+"2"); err != nil {
		return err
	}

	for i, header := range headers {
		if err := f.SetCellValue(SheetName, cell(i+1, headerRow), header); err != nil {
			return err
		}
	}

	symbol := result.Units.Symbol()
	for rowIdx, day := range result.Days {
		row := firstDataRow + rowIdx
		values := []interface{}{
			day.Weekday,
			day.DateText,
			fmt.Sprintf("%.1f %s", day.Temperature, symbol),
			fmt.Sprintf("%.1f %s", day.FeelsLike, symbol),
			day.PressureHPa,
			day.Description,
			day.WindSpeed,
			day.HumidityPercent,
			day.IconURL(),
		}
		if err := f.SetSheetRow(SheetName, cell(1, row), &values); err != nil {
			return err
		}
	}

	for i := 1; i <= len(headers); i++ {
		width := 15.0
		switch headers[i-1] {
		case "Date", "Description":
			width = 20.0
		case "Icon":
			width = 45.0
		}
		if err := f.SetColWidth(SheetName, colLetter(i), colLetter(i), width); err != nil {
			return err
		}
	}

	return nil
}

// FileName is safe to use in a Content-Disposition header.
func (e *WorkbookExporter) FileName(result *entities.ForecastResult) string {
	name := "forecast"
	if result != nil && result.LocationName != "" {
		name = "forecast-" + slug(result.Title())
	}
	return name + "-" + e.now().Format("20060102") + ".xlsx"
}

func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func colLetter(col int) string {
	letter, _ := excelize.ColumnNumberToName(col)
	return letter
}
