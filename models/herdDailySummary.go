package models

import (
	"context"
	"time"

	"github.com/herdlink/livestock_backend/config"
	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"
)

// HerdDailySummary is a small, query-friendly snapshot of a farm's active
// herd, one row per (farm, day). It is derived data: the scheduler and the
// summary-backfill command rebuild it from the KPI engine at any time.
type HerdDailySummary struct {
	FarmId      int       `gorm:"primaryKey" json:"farm_id"`
	SummaryDate time.Time `gorm:"primaryKey" json:"summary_date"`

	ActiveAnimals int `gorm:"not null;default:0" json:"active_animals"`
	Males         int `gorm:"not null;default:0" json:"males"`
	Females       int `gorm:"not null;default:0" json:"females"`

	AverageAgeMonths          decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"average_age_months"`
	AverageGmdKg              decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"average_gmd_kg"`
	AverageForecastedWeightKg decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"average_forecasted_weight_kg"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// UpsertHerdDailySummary replaces the row for (farm, day); reruns are
// idempotent.
func UpsertHerdDailySummary(ctx context.Context, summary *HerdDailySummary) error {
	db := config.GetDB()
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "farm_id"}, {Name: "summary_date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"active_animals", "males", "females",
			"average_age_months", "average_gmd_kg", "average_forecasted_weight_kg",
			"updated_at",
		}),
	}).Create(summary).Error
}

func ListHerdDailySummaries(ctx context.Context, farmId int, startDate time.Time, endDate time.Time) ([]HerdDailySummary, error) {
	db := config.GetDB()
	var summaries []HerdDailySummary
	err := db.WithContext(ctx).
		Where("farm_id = ? AND summary_date BETWEEN ? AND ?", farmId, startDate, endDate).
		Order("summary_date").
		Find(&summaries).Error
	return summaries, err
}
