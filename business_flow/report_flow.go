package businessflow

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/amirphl/dynamic-pricing/app/dto"
	"github.com/amirphl/dynamic-pricing/models"
	"github.com/amirphl/dynamic-pricing/pricing"
	"github.com/amirphl/dynamic-pricing/repository"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const reportDateLayout = "2006-01-02"

// PricingReportFlow reports on quotes created in a date range
type PricingReportFlow interface {
	PricingReport(ctx context.Context, req *dto.ReportRangeRequest) (*dto.PricingReportDTO, error)
	OptimizationReport(ctx context.Context, req *dto.OptimizationReportRequest) (*dto.OptimizationReportDTO, error)
	ExportQuotes(ctx context.Context, req *dto.ReportRangeRequest) (string, []byte, error)
}

// PricingReportFlowImpl implements PricingReportFlow
type PricingReportFlowImpl struct {
	quoteRepo repository.PriceQuoteRepository
	logger    *zap.Logger
	// maxExportRows bounds the data rows of one sheet, below the header
	maxExportRows int
}

func NewPricingReportFlow(quoteRepo repository.PriceQuoteRepository, logger *zap.Logger) PricingReportFlow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PricingReportFlowImpl{
		quoteRepo:     quoteRepo,
		logger:        logger.Named("report_flow"),
		maxExportRows: excelize.TotalRows - 1,
	}
}

// PricingReport summarises quotes created in [start, end)
func (f *PricingReportFlowImpl) PricingReport(ctx context.Context, req *dto.ReportRangeRequest) (*dto.PricingReportDTO, error) {
	if req == nil {
		return nil, NewBusinessError("INVALID_DATE_RANGE", "Date range is required", ErrInvalidDateRange)
	}
	from, to, err := parseDateRange(req.Start, req.End)
	if err != nil {
		return nil, err
	}

	summary, err := f.quoteRepo.Summary(ctx, from, to)
	if err != nil {
		return nil, NewBusinessError("REPORT_FAILED", "Failed to summarise quotes", err)
	}
	segments, err := f.quoteRepo.SegmentBreakdown(ctx, from, to)
	if err != nil {
		return nil, NewBusinessError("REPORT_FAILED", "Failed to break quotes down by segment", err)
	}

	out := &dto.PricingReportDTO{
		Start:           req.Start,
		End:             req.End,
		TotalQuotes:     summary.TotalQuotes,
		AcceptedQuotes:  summary.AcceptedQuotes,
		AveragePrice:    summary.AveragePrice,
		AverageDiscount: summary.AverageDiscount,
		ConversionRate:  conversionRate(summary.AcceptedQuotes, summary.TotalQuotes),
		Segments:        make([]dto.SegmentBreakdownDTO, 0, len(segments)),
	}
	for _, s := range segments {
		out.Segments = append(out.Segments, dto.SegmentBreakdownDTO{
			Segment:        string(s.Segment),
			TotalQuotes:    s.TotalQuotes,
			AcceptedQuotes: s.AcceptedQuotes,
			AveragePrice:   s.AveragePrice,
			ConversionRate: conversionRate(s.AcceptedQuotes, s.TotalQuotes),
		})
	}
	return out, nil
}

// OptimizationReport buckets one model's quotes by final price and recommends a
// direction per bucket
func (f *PricingReportFlowImpl) OptimizationReport(ctx context.Context, req *dto.OptimizationReportRequest) (*dto.OptimizationReportDTO, error) {
	if req == nil || strings.TrimSpace(req.Model) == "" {
		return nil, NewBusinessError("PRICING_VALIDATION_FAILED", "Pricing model is required", ErrPricingValidation)
	}
	from, to, err := parseDateRange(req.Start, req.End)
	if err != nil {
		return nil, err
	}

	points, err := f.quoteRepo.PerformancePoints(ctx, req.Model, from, to)
	if err != nil {
		return nil, NewBusinessError("REPORT_FAILED", "Failed to load quote performance", err)
	}
	report := pricing.AnalyzePricePerformance(req.Model, points)
	return &report, nil
}

// ExportQuotes writes every quote created in [start, end) to an XLSX workbook
func (f *PricingReportFlowImpl) ExportQuotes(ctx context.Context, req *dto.ReportRangeRequest) (string, []byte, error) {
	if req == nil {
		return "", nil, NewBusinessError("INVALID_DATE_RANGE", "Date range is required", ErrInvalidDateRange)
	}
	from, to, err := parseDateRange(req.Start, req.End)
	if err != nil {
		return "", nil, err
	}

	quotes, err := f.quoteRepo.ListByCreatedRange(ctx, from, to)
	if err != nil {
		return "", nil, NewBusinessError("FETCH_QUOTES_FAILED", "Failed to fetch quotes", err)
	}
	if len(quotes) > f.maxExportRows {
		return "", nil, NewBusinessErrorf("INVALID_DATE_RANGE", "Range holds %d quotes, at most %d fit in one export; narrow the range", ErrInvalidDateRange, len(quotes), f.maxExportRows)
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	sheet := "quotes"
	if err := xl.SetSheetName(xl.GetSheetName(0), sheet); err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to prepare Excel sheet", err)
	}

	header := []any{"id", "client_id", "product_service", "pricing_model", "segment", "base_price",
		"calculated_price", "discount_percentage", "premium_multiplier", "status", "valid_until",
		"created_at", "market_snapshot_id", "factors_applied"}
	if err := xl.SetSheetRow(sheet, "A1", &header); err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel header", err)
	}

	for i, q := range quotes {
		record := exportRow(q)
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to address Excel row", err)
		}
		if err := xl.SetSheetRow(sheet, cellRef, &record); err != nil {
			return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel row", err)
		}
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}

	f.logger.Debug("quotes exported", zap.Int("rows", len(quotes)), zap.String("start", req.Start), zap.String("end", req.End))
	filename := fmt.Sprintf("quotes_%s_%s.xlsx", req.Start, req.End)
	return filename, buf.Bytes(), nil
}

func exportRow(q *models.PriceQuote) []any {
	return []any{
		q.UUID.String(),
		q.ClientUUID.String(),
		q.ProductService,
		q.PricingModel,
		string(q.Segment),
		q.BasePrice.InexactFloat64(),
		q.CalculatedPrice.InexactFloat64(),
		q.DiscountPercentage.InexactFloat64(),
		q.PremiumMultiplier,
		string(q.Status),
		q.ValidUntil.UTC().Format(time.RFC3339),
		q.CreatedAt.UTC().Format(time.RFC3339),
		q.MarketSnapshotID,
		FormatFactorLog(q.FactorsApplied),
	}
}

// FormatFactorLog renders a factor log as "stage=value" pairs in application order
func FormatFactorLog(factors []pricing.FactorEntry) string {
	parts := make([]string, len(factors))
	for i, fe := range factors {
		parts[i] = fe.Stage + "=" + strconv.FormatFloat(fe.Value, 'f', -1, 64)
	}
	return strings.Join(parts, ", ")
}

// parseDateRange parses YYYY-MM-DD dates as UTC midnights; end must be after start
func parseDateRange(start, end string) (time.Time, time.Time, error) {
	from, err := time.ParseInLocation(reportDateLayout, strings.TrimSpace(start), time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, NewBusinessErrorf("INVALID_DATE_RANGE", "Invalid start date %q", fmt.Errorf("%w: %w", ErrInvalidDateRange, err), start)
	}
	to, err := time.ParseInLocation(reportDateLayout, strings.TrimSpace(end), time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, NewBusinessErrorf("INVALID_DATE_RANGE", "Invalid end date %q", fmt.Errorf("%w: %w", ErrInvalidDateRange, err), end)
	}
	if !to.After(from) {
		return time.Time{}, time.Time{}, NewBusinessErrorf("INVALID_DATE_RANGE", "End date %s must be after start date %s", ErrInvalidDateRange, end, start)
	}
	return from, to, nil
}

func conversionRate(accepted, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(accepted) / float64(total)
}
