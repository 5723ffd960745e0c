package service

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"cafe-pos/internal/model"
	"cafe-pos/internal/repository"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/gocarina/gocsv"
)

var ErrUnsupportedFormat = errors.New("unsupported export format")

const (
	ExportCSV  = "csv"
	ExportXLSX = "xlsx"
)

type ReportService interface {
	GetSalesSummary(from, to time.Time) (*repository.SalesSummary, error)
	GetDailySales(from, to time.Time) ([]repository.DailySales, error)
	GetTopProducts(from, to time.Time, limit int) ([]repository.TopProduct, error)
	GetPaymentBreakdown(from, to time.Time) ([]repository.PaymentBreakdown, error)
	GetDashboardStats() (*repository.DashboardStats, error)
	ExportSales(from, to time.Time, format string) (*Export, error)
}

// Export is a rendered report file.
type Export struct {
	Filename    string
	ContentType string
	Data        []byte
}

// SaleExportRow is one line of the sales export.
type SaleExportRow struct {
	ID            string `csv:"id"`
	ReceiptNumber string `csv:"receipt_number"`
	Date          string `csv:"date"`
	Source        string `csv:"source"`
	Status        string `csv:"status"`
	PaymentMethod string `csv:"payment_method"`
	PaymentStatus string `csv:"payment_status"`
	CustomerName  string `csv:"customer_name"`
	CustomerPhone string `csv:"customer_phone"`
	Subtotal      string `csv:"subtotal"`
	Tax           string `csv:"tax"`
	Discount      string `csv:"discount"`
	Total         string `csv:"total"`
}

var exportHeader = []string{
	"ID", "Receipt Number", "Date", "Source", "Status", "Payment Method", "Payment Status",
	"Customer", "Phone", "Subtotal", "Tax", "Discount", "Total",
}

func (r SaleExportRow) cells() []interface{} {
	return []interface{}{
		r.ID, r.ReceiptNumber, r.Date, r.Source, r.Status, r.PaymentMethod, r.PaymentStatus,
		r.CustomerName, r.CustomerPhone, r.Subtotal, r.Tax, r.Discount, r.Total,
	}
}

type reportService struct {
	reportRepo repository.ReportRepository
}

func NewReportService(reportRepo repository.ReportRepository) ReportService {
	return &reportService{reportRepo: reportRepo}
}

func (s *reportService) GetSalesSummary(from, to time.Time) (*repository.SalesSummary, error) {
	return s.reportRepo.GetSalesSummary(from, to)
}

func (s *reportService) GetDailySales(from, to time.Time) ([]repository.DailySales, error) {
	return s.reportRepo.GetDailySales(from, to)
}

func (s *reportService) GetTopProducts(from, to time.Time, limit int) ([]repository.TopProduct, error) {
	return s.reportRepo.GetTopProducts(from, to, limit)
}

func (s *reportService) GetPaymentBreakdown(from, to time.Time) ([]repository.PaymentBreakdown, error) {
	return s.reportRepo.GetPaymentBreakdown(from, to)
}

func (s *reportService) GetDashboardStats() (*repository.DashboardStats, error) {
	return s.reportRepo.GetDashboardStats()
}

func (s *reportService) ExportSales(from, to time.Time, format string) (*Export, error) {
	if format != ExportCSV && format != ExportXLSX {
		return nil, ErrUnsupportedFormat
	}

	sales, err := s.reportRepo.FindSalesForExport(from, to)
	if err != nil {
		return nil, err
	}
	rows := make([]SaleExportRow, 0, len(sales))
	for i := range sales {
		rows = append(rows, exportRow(&sales[i]))
	}

	name := fmt.Sprintf("sales_%s_%s.%s", from.Format("20060102"), to.Format("20060102"), format)
	if format == ExportCSV {
		data, err := gocsv.MarshalBytes(&rows)
		if err != nil {
			return nil, err
		}
		return &Export{Filename: name, ContentType: "text/csv", Data: data}, nil
	}

	data, err := salesWorkbook(rows)
	if err != nil {
		return nil, err
	}
	return &Export{
		Filename:    name,
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Data:        data,
	}, nil
}

func exportRow(sale *model.Sale) SaleExportRow {
	row := SaleExportRow{
		ID:            sale.ID.String(),
		Date:          sale.SaleDate.Format("2006-01-02 15:04:05"),
		Source:        string(sale.Source),
		Status:        string(sale.Status),
		PaymentMethod: string(sale.PaymentMethod),
		PaymentStatus: string(sale.PaymentStatus),
		CustomerName:  sale.CustomerName,
		CustomerPhone: sale.CustomerPhone,
		Subtotal:      sale.Subtotal.StringFixed(2),
		Tax:           sale.Tax.StringFixed(2),
		Discount:      sale.Discount.StringFixed(2),
		Total:         sale.Total.StringFixed(2),
	}
	if sale.ReceiptNumber != nil {
		row.ReceiptNumber = *sale.ReceiptNumber
	}
	return row
}

const salesSheet = "Sheet1"

func salesWorkbook(rows []SaleExportRow) ([]byte, error) {
	f := excelize.NewFile()
	for col, title := range exportHeader {
		f.SetCellValue(salesSheet, cellName(col, 1), title)
	}
	for i, row := range rows {
		for col, value := range row.cells() {
			f.SetCellValue(salesSheet, cellName(col, i+2), value)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// cellName converts a zero-based column and one-based row into "A1" notation.
func cellName(col, row int) string {
	name := ""
	for n := col + 1; n > 0; n = (n - 1) / 26 {
		name = string(rune('A'+(n-1)%26)) + name
	}
	return fmt.Sprintf("%s%d", name, row)
}
