package services

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/fadhlanhapp/taskaloop-ledger/models"
	"github.com/fadhlanhapp/taskaloop-ledger/utils"
)

const (
	summarySheet      = "Summary"
	transactionsSheet = "Transactions"
	categoriesSheet   = "Categories"
)

// ExportService handles Excel export functionality
type ExportService struct {
	ledger *LedgerService
	now    func() time.Time
}

// NewExportService creates a new Excel export service
func NewExportService(ledger *LedgerService) *ExportService {
	return &ExportService{
		ledger: ledger,
		now:    time.Now,
	}
}

// ExportLedgerToExcel generates a workbook with balances, transactions and categories
func (s *ExportService) ExportLedgerToExcel(ctx context.Context, userID string) (*excelize.File, string, error) {
	summary, err := s.ledger.Summary(ctx, userID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to calculate summary: %w", err)
	}

	transactions, err := s.ledger.ListTransactions(ctx, userID, models.TransactionFilter{})
	if err != nil {
		return nil, "", fmt.Errorf("failed to get transactions: %w", err)
	}

	categories, err := s.ledger.CategoryBreakdown(ctx, userID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get categories: %w", err)
	}

	f := excelize.NewFile()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, "", fmt.Errorf("failed to create header style: %w", err)
	}

	// The default sheet becomes the summary so it stays active
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		f.Close()
		return nil, "", fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := s.writeSummarySheet(f, headerStyle, summary); err != nil {
		f.Close()
		return nil, "", fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := s.writeTransactionsSheet(f, headerStyle, transactions); err != nil {
		f.Close()
		return nil, "", fmt.Errorf("failed to create transactions sheet: %w", err)
	}
	if err := s.writeCategoriesSheet(f, headerStyle, categories); err != nil {
		f.Close()
		return nil, "", fmt.Errorf("failed to create categories sheet: %w", err)
	}

	filename := fmt.Sprintf("%s_Ledger_%s.xlsx",
		utils.CleanFileName(userID),
		s.now().Format("2006-01-02"))

	return f, filename, nil
}

// writeRow writes values starting at column A of the given row
func writeRow(f *excelize.File, sheet string, row int, values ...interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

// writeHeader writes and styles a header row
func writeHeader(f *excelize.File, sheet string, row, style int, headers ...interface{}) error {
	if err := writeRow(f, sheet, row, headers...); err != nil {
		return err
	}

	first, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(headers), row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, first, last, style)
}

// writeSummarySheet lists balances followed by the recommended settlements
func (s *ExportService) writeSummarySheet(f *excelize.File, headerStyle int, summary *models.LedgerSummary) error {
	if err := writeHeader(f, summarySheet, 1, headerStyle, "Person", "Total Spent", "Owes", "Owed", "Net Balance"); err != nil {
		return err
	}

	for i, balance := range summary.Balances {
		err := writeRow(f, summarySheet, i+2,
			balance.UserName,
			utils.Round(balance.TotalSpent),
			utils.Round(balance.OwesAmount),
			utils.Round(balance.OwedAmount),
			utils.Round(balance.NetBalance),
		)
		if err != nil {
			return err
		}
	}

	row := len(summary.Balances) + 4
	if err := f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), "Recommended Settlements:"); err != nil {
		return err
	}

	row++
	if err := writeHeader(f, summarySheet, row, headerStyle, "From", "To", "Amount"); err != nil {
		return err
	}
	for i, rec := range summary.Recommendations {
		if err := writeRow(f, summarySheet, row+1+i, rec.From.Name, rec.To.Name, rec.Amount); err != nil {
			return err
		}
	}

	return f.SetColWidth(summarySheet, "A", "E", 15)
}

// writeTransactionsSheet lists every transaction regardless of status
func (s *ExportService) writeTransactionsSheet(f *excelize.File, headerStyle int, transactions []models.Transaction) error {
	if _, err := f.NewSheet(transactionsSheet); err != nil {
		return err
	}

	err := writeHeader(f, transactionsSheet, 1, headerStyle,
		"Date", "Description", "Type", "Status", "From", "To", "Amount", "Split", "Category", "Trip")
	if err != nil {
		return err
	}

	for i, tx := range transactions {
		err := writeRow(f, transactionsSheet, i+2,
			tx.CreatedAt().Format("2006-01-02"),
			tx.Description,
			string(tx.Type),
			string(tx.Status),
			tx.FromUserName,
			tx.ToUserName,
			utils.Round(tx.Amount),
			tx.IsSplit,
			string(tx.Category),
			tx.TripID,
		)
		if err != nil {
			return err
		}
	}

	if err := f.SetColWidth(transactionsSheet, "A", "J", 12); err != nil {
		return err
	}
	return f.SetColWidth(transactionsSheet, "B", "B", 24)
}

// writeCategoriesSheet lists completed expense totals per category
func (s *ExportService) writeCategoriesSheet(f *excelize.File, headerStyle int, categories []models.CategorySummary) error {
	if _, err := f.NewSheet(categoriesSheet); err != nil {
		return err
	}

	if err := writeHeader(f, categoriesSheet, 1, headerStyle, "Category", "Total", "Count"); err != nil {
		return err
	}
	for i, summary := range categories {
		if err := writeRow(f, categoriesSheet, i+2, string(summary.Category), summary.Total, summary.Count); err != nil {
			return err
		}
	}

	return f.SetColWidth(categoriesSheet, "A", "C", 15)
}
