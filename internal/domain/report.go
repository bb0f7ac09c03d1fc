package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReportStatus string

const (
	ReportStatusPending  ReportStatus = "pending"
	ReportStatusFlagged  ReportStatus = "flagged"
	ReportStatusVerified ReportStatus = "verified"
)

const (
	VerificationAutomatic   = "automatic"
	VerificationManualAdmin = "manual_admin"
)

// Report is a persisted price submission with its classification snapshot.
// Records are hard-deleted.
type Report struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     string    `gorm:"column:user_id;not null;index" json:"user_id"`
	ItemName   string    `gorm:"column:item_name;not null" json:"item_name"`
	ItemKey    string    `gorm:"column:item_key;not null;index:idx_report_series,priority:1" json:"-"`
	MarketName string    `gorm:"column:market_name;not null" json:"market_name"`
	MarketKey  string    `gorm:"column:market_key;not null;index:idx_report_series,priority:2" json:"-"`
	Price      float64   `gorm:"column:price;not null" json:"price"`
	Unit       string    `gorm:"column:unit" json:"unit"`
	Month      string    `gorm:"column:month;type:varchar(7)" json:"month"`

	Classification Classification `gorm:"embedded;embeddedPrefix:ml_" json:"ml_analysis"`
	Explanation    string         `gorm:"column:explanation;type:text" json:"explanation"`

	Status             ReportStatus `gorm:"column:status;type:varchar(16);not null;index" json:"status"`
	VerificationMethod string       `gorm:"column:verification_method;type:varchar(32);not null" json:"verification_method"`
	VerifiedBy         *string      `gorm:"column:verified_by" json:"verified_by,omitempty"`
	VerifiedAt         *time.Time   `gorm:"column:verified_at" json:"verified_at,omitempty"`

	SubmittedAt time.Time `gorm:"column:submitted_at;not null" json:"submitted_at"`
	CreatedAt   time.Time `gorm:"column:created_at;not null;index" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;not null" json:"updated_at"`
}

func (Report) TableName() string { return "price_report" }

func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// NewReport builds the record for a freshly scored sample. The initial status
// is decided only by the classification's anomaly flag.
func NewReport(sample PriceSample, cls Classification, explanation string) *Report {
	status := ReportStatusPending
	if cls.Anomaly {
		status = ReportStatusFlagged
	}
	key := sample.Key()
	submitted := sample.SubmittedAt.UTC()
	month := sample.Month
	if month == "" {
		month = submitted.Format("2006-01")
	}
	return &Report{
		ID:                 uuid.New(),
		UserID:             sample.UserID,
		ItemName:           sample.Item,
		ItemKey:            key.Item,
		MarketName:         sample.Market,
		MarketKey:          key.Market,
		Price:              sample.Price,
		Unit:               sample.Unit,
		Month:              month,
		Classification:     cls,
		Explanation:        explanation,
		Status:             status,
		VerificationMethod: VerificationAutomatic,
		SubmittedAt:        submitted,
	}
}
