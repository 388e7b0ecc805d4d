package reports

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/jung-kurt/gofpdf"
	"go.uber.org/multierr"

	"github.com/omerfarooq187/pizza-pos-backend/pkg/config"
	"github.com/omerfarooq187/pizza-pos-backend/pkg/logger"
	"github.com/omerfarooq187/pizza-pos-backend/pkg/metrics"
)

// filenameLayout timestamps exports to the second so repeated exports never
// overwrite each other.
const filenameLayout = "20060102_150405"

// Exporter renders report summaries to PDF and Excel files on disk.
type Exporter struct {
	outputDir string
	logg      *logger.Logger
	metrics   *metrics.POSMetrics
	now       func() time.Time
}

// NewExporter constructs an Exporter writing into the configured directory.
func NewExporter(cfg config.ReportsConfig, logg *logger.Logger, m *metrics.POSMetrics) (*Exporter, error) {
	if cfg.OutputDir == "" {
		return nil, fmt.Errorf("reports output directory required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Exporter{outputDir: cfg.OutputDir, logg: logg, metrics: m, now: time.Now}, nil
}

// ExportPDF writes the summary as a PDF and returns the file path.
func (e *Exporter) ExportPDF(ctx context.Context, summary *Summary) (string, error) {
	started := e.now()
	path, err := e.exportPDF(summary)
	e.observe(ctx, "pdf", started, path, err)
	return path, err
}

// ExportExcel writes the summary as an Excel workbook and returns the file
// path.
func (e *Exporter) ExportExcel(ctx context.Context, summary *Summary) (string, error) {
	started := e.now()
	path, err := e.exportExcel(summary)
	e.observe(ctx, "excel", started, path, err)
	return path, err
}

func (e *Exporter) observe(ctx context.Context, format string, started time.Time, path string, err error) {
	if e.metrics != nil {
		e.metrics.ObserveExport(format, e.now().Sub(started), err)
	}
	if err != nil {
		e.logg.Error(ctx, "report export failed", err)
		return
	}
	e.logg.Info(e.logg.WithField(ctx, "path", path), "report exported")
}

func (e *Exporter) exportPDF(summary *Summary) (string, error) {
	path, err := e.outputPath("pdf")
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Sales Report")
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Period: %s to %s",
		summary.From.Format(dateLayout),
		summary.To.AddDate(0, 0, -1).Format(dateLayout)))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Orders: %d    Sales: %s", summary.TotalOrders, summary.TotalSales.StringFixed(2)))
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(35, 7, "Date", "1", 0, "L", false, 0, "")
	pdf.CellFormat(25, 7, "Orders", "1", 0, "R", false, 0, "")
	pdf.CellFormat(30, 7, "Sales", "1", 0, "R", false, 0, "")
	pdf.CellFormat(90, 7, "Most Sold Item", "1", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, day := range summary.Days {
		pdf.CellFormat(35, 7, day.Date, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 7, fmt.Sprintf("%d", day.TotalOrders), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, day.TotalSales.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(90, 7, day.MostSoldItem, "1", 1, "L", false, 0, "")
	}

	if len(summary.TopItems) > 0 {
		pdf.Ln(6)
		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(0, 8, "Top Items")
		pdf.Ln(8)

		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(90, 7, "Item", "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, "Size", "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 7, "Units", "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, "Revenue", "1", 1, "R", false, 0, "")

		pdf.SetFont("Arial", "", 10)
		for _, item := range summary.TopItems {
			pdf.CellFormat(90, 7, item.ItemName, "1", 0, "L", false, 0, "")
			pdf.CellFormat(30, 7, item.VariantSize, "1", 0, "L", false, 0, "")
			pdf.CellFormat(25, 7, fmt.Sprintf("%d", item.QuantitySold), "1", 0, "R", false, 0, "")
			pdf.CellFormat(35, 7, item.Revenue.StringFixed(2), "1", 1, "R", false, 0, "")
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating report file: %w", err)
	}
	err = pdf.Output(file)
	err = multierr.Append(err, file.Close())
	if err != nil {
		return "", fmt.Errorf("writing pdf report: %w", err)
	}
	return path, nil
}

func (e *Exporter) exportExcel(summary *Summary) (string, error) {
	path, err := e.outputPath("xlsx")
	if err != nil {
		return "", err
	}

	const sheet = "Sheet1"
	xlsx := excelize.NewFile()

	xlsx.SetCellValue(sheet, "A1", "Sales Report")
	xlsx.SetCellValue(sheet, "A2", "Period")
	xlsx.SetCellValue(sheet, "B2", summary.From.Format(dateLayout))
	xlsx.SetCellValue(sheet, "C2", summary.To.AddDate(0, 0, -1).Format(dateLayout))
	xlsx.SetCellValue(sheet, "A3", "Total Orders")
	xlsx.SetCellValue(sheet, "B3", summary.TotalOrders)
	xlsx.SetCellValue(sheet, "A4", "Total Sales")
	totalSales, _ := summary.TotalSales.Float64()
	xlsx.SetCellValue(sheet, "B4", totalSales)

	headerRow := 6
	xlsx.SetCellValue(sheet, cell("A", headerRow), "Date")
	xlsx.SetCellValue(sheet, cell("B", headerRow), "Orders")
	xlsx.SetCellValue(sheet, cell("C", headerRow), "Sales")
	xlsx.SetCellValue(sheet, cell("D", headerRow), "Most Sold Item")
	row := headerRow + 1
	for _, day := range summary.Days {
		sales, _ := day.TotalSales.Float64()
		xlsx.SetCellValue(sheet, cell("A", row), day.Date)
		xlsx.SetCellValue(sheet, cell("B", row), day.TotalOrders)
		xlsx.SetCellValue(sheet, cell("C", row), sales)
		xlsx.SetCellValue(sheet, cell("D", row), day.MostSoldItem)
		row++
	}

	if len(summary.TopItems) > 0 {
		row++
		xlsx.SetCellValue(sheet, cell("A", row), "Item")
		xlsx.SetCellValue(sheet, cell("B", row), "Size")
		xlsx.SetCellValue(sheet, cell("C", row), "Units")
		xlsx.SetCellValue(sheet, cell("D", row), "Revenue")
		row++
		for _, item := range summary.TopItems {
			revenue, _ := item.Revenue.Float64()
			xlsx.SetCellValue(sheet, cell("A", row), item.ItemName)
			xlsx.SetCellValue(sheet, cell("B", row), item.VariantSize)
			xlsx.SetCellValue(sheet, cell("C", row), item.QuantitySold)
			xlsx.SetCellValue(sheet, cell("D", row), revenue)
			row++
		}
	}

	if err := xlsx.SaveAs(path); err != nil {
		return "", fmt.Errorf("writing excel report: %w", err)
	}
	return path, nil
}

func (e *Exporter) outputPath(ext string) (string, error) {
	if err := os.MkdirAll(e.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating reports directory: %w", err)
	}
	name := fmt.Sprintf("sales_report_%s.%s", e.now().Format(filenameLayout), ext)
	return filepath.Join(e.outputDir, name), nil
}

func cell(column string, row int) string {
	return fmt.Sprintf("%s%d", column, row)
}
