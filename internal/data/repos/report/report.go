package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/fairprice-backend/internal/domain"
	"github.com/yungbote/fairprice-backend/internal/platform/logger"
	"github.com/yungbote/fairprice-backend/internal/pricing"
)

type ReportRepo interface {
	Create(ctx context.Context, tx *gorm.DB, reports []*domain.Report) ([]*domain.Report, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Report, error)
	ListFlagged(ctx context.Context, tx *gorm.DB) ([]*domain.Report, error)
	BaselineMoments(ctx context.Context, tx *gorm.DB, key domain.BaselineKey) (pricing.Moments, error)
	MarkVerified(ctx context.Context, tx *gorm.DB, id uuid.UUID, verifiedBy string, at time.Time) (*domain.Report, error)
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	ScanFacts(ctx context.Context, tx *gorm.DB, fn func(domain.ReportFacts) error) error
}

type reportRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReportRepo(db *gorm.DB, baseLog *logger.Logger) ReportRepo {
	repoLog := baseLog.With("repo", "ReportRepo")
	return &reportRepo{db: db, log: repoLog}
}

func (rr *reportRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return rr.db
}

func (rr *reportRepo) Create(ctx context.Context, tx *gorm.DB, reports []*domain.Report) ([]*domain.Report, error) {
	if len(reports) == 0 {
		return []*domain.Report{}, nil
	}
	if err := rr.conn(tx).WithContext(ctx).Create(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}

func (rr *reportRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Report, error) {
	var r domain.Report
	err := rr.conn(tx).WithContext(ctx).Where("id = ?", id).Take(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("report %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListFlagged returns every report still marked anomalous, largest
// deviation first.
func (rr *reportRepo) ListFlagged(ctx context.Context, tx *gorm.DB) ([]*domain.Report, error) {
	var results []*domain.Report
	if err := rr.conn(tx).WithContext(ctx).
		Where("ml_anomaly = ?", true).
		Order("ml_deviation DESC").
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// BaselineMoments sums the non-anomalous prices for key in a single
// aggregate query.
func (rr *reportRepo) BaselineMoments(ctx context.Context, tx *gorm.DB, key domain.BaselineKey) (pricing.Moments, error) {
	var row struct {
		Count      int64
		Sum        *float64
		SumSquares *float64
	}
	if err := rr.conn(tx).WithContext(ctx).
		Model(&domain.Report{}).
		Select("COUNT(*) AS count, SUM(price) AS sum, SUM(price * price) AS sum_squares").
		Where("item_key = ? AND market_key = ? AND ml_anomaly = ?", key.Item, key.Market, false).
		Scan(&row).Error; err != nil {
		return pricing.Moments{}, err
	}
	m := pricing.Moments{Count: row.Count}
	if row.Sum != nil {
		m.Sum = *row.Sum
	}
	if row.SumSquares != nil {
		m.SumSquares = *row.SumSquares
	}
	return m, nil
}

// MarkVerified moves a flagged report to verified in one conditional UPDATE,
// so concurrent admin actions on the same id are serialized by the store.
func (rr *reportRepo) MarkVerified(ctx context.Context, tx *gorm.DB, id uuid.UUID, verifiedBy string, at time.Time) (*domain.Report, error) {
	t := rr.conn(tx).WithContext(ctx)
	res := t.Model(&domain.Report{}).
		Where("id = ? AND status = ?", id, domain.ReportStatusFlagged).
		Updates(map[string]any{
			"ml_anomaly":          false,
			"status":              domain.ReportStatusVerified,
			"verification_method": domain.VerificationManualAdmin,
			"verified_by":         verifiedBy,
			"verified_at":         at,
			"updated_at":          at,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		existing, err := rr.GetByID(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("report %s is %s: %w", id, existing.Status, domain.ErrInvalidTransition)
	}
	return rr.GetByID(ctx, tx, id)
}

func (rr *reportRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	res := rr.conn(tx).WithContext(ctx).Where("id = ?", id).Delete(&domain.Report{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("report %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

type factRow struct {
	MarketKey       string
	MarketName      string
	UserID          string
	Price           float64
	MlExpectedPrice *float64
	MlAnomaly       bool
	CreatedAt       time.Time
}

// ScanFacts streams the aggregation projection of every report through fn
// from a single query. It stops at the first error from fn.
func (rr *reportRepo) ScanFacts(ctx context.Context, tx *gorm.DB, fn func(domain.ReportFacts) error) error {
	t := rr.conn(tx).WithContext(ctx)
	rows, err := t.Model(&domain.Report{}).
		Select("market_key, market_name, user_id, price, ml_expected_price, ml_anomaly, created_at").
		Rows()
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var row factRow
		if err := t.ScanRows(rows, &row); err != nil {
			return err
		}
		if err := fn(domain.ReportFacts{
			MarketKey:     row.MarketKey,
			MarketName:    row.MarketName,
			UserID:        row.UserID,
			Price:         row.Price,
			ExpectedPrice: row.MlExpectedPrice,
			Anomaly:       row.MlAnomaly,
			CreatedAt:     row.CreatedAt,
		}); err != nil {
			return err
		}
	}
	return rows.Err()
}
