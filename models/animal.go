package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/herdlink/livestock_backend/config"
	"github.com/herdlink/livestock_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Animal is the entry (purchase) record of a single animal. It is immutable
// after creation except through its terminal event; all later state lives in
// the event tables.
type Animal struct {
	ID            int              `gorm:"primary_key" json:"id"`
	FarmId        int              `gorm:"index;uniqueIndex:idx_animal_tag_lot_farm;not null" json:"farm_id"`
	EarTag        string           `gorm:"size:20;index;uniqueIndex:idx_animal_tag_lot_farm;not null" json:"ear_tag" binding:"required"`
	Lot           string           `gorm:"size:20;index;uniqueIndex:idx_animal_tag_lot_farm;not null" json:"lot" binding:"required"`
	EntryDate     time.Time        `gorm:"index;not null" json:"entry_date" binding:"required"`
	EntryWeight   decimal.Decimal  `gorm:"type:decimal(20,4);not null" json:"entry_weight" binding:"required"`
	Sex           Sex              `gorm:"size:1;not null" json:"sex" binding:"required"`
	EntryAge      decimal.Decimal  `gorm:"type:decimal(20,4);not null" json:"entry_age"`
	PurchasePrice *decimal.Decimal `gorm:"type:decimal(20,4)" json:"purchase_price"`
	Breed         string           `gorm:"size:50" json:"breed"`
	CreatedAt     time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

// NewAnimal is the purchase payload. Creating a purchase also records the
// anchor weighing, the initial location change and, when provided, the
// initial diet log and sanitary protocols, all in one transaction.
type NewAnimal struct {
	EarTag                string                 `json:"ear_tag" binding:"required"`
	Lot                   string                 `json:"lot" binding:"required"`
	EntryDate             time.Time              `json:"entry_date" binding:"required"`
	EntryWeight           decimal.Decimal        `json:"entry_weight" binding:"required"`
	Sex                   Sex                    `json:"sex" binding:"required"`
	EntryAge              decimal.Decimal        `json:"entry_age"`
	PurchasePrice         *decimal.Decimal       `json:"purchase_price"`
	Breed                 string                 `json:"breed"`
	LocationId            int                    `json:"location_id" binding:"required"`
	SublocationId         *int                   `json:"sublocation_id"`
	InitialDietType       string                 `json:"initial_diet_type"`
	DailyIntakePercentage *decimal.Decimal       `json:"daily_intake_percentage"`
	SanitaryProtocols     []*NewSanitaryProtocol `json:"sanitary_protocols"`
}

func (input *NewAnimal) validate(ctx context.Context, farmId int) error {
	if err := input.Sex.Validate(); err != nil {
		return err
	}
	if !input.EntryWeight.IsPositive() {
		return errors.New("entry weight must be positive")
	}
	if input.EntryAge.IsNegative() {
		return errors.New("entry age cannot be negative")
	}
	if err := ValidateLocationOnFarm(ctx, farmId, input.LocationId, input.SublocationId); err != nil {
		return err
	}

	db := config.GetDB()
	var count int64
	err := db.WithContext(ctx).Model(&Animal{}).
		Where("farm_id = ? AND ear_tag = ? AND lot = ?", farmId, strings.TrimSpace(input.EarTag), strings.TrimSpace(input.Lot)).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return errors.New("this animal (ear_tag and lot combination) already exists")
	}
	return nil
}

// CreateAnimal stores the purchase and its companion records atomically.
// The anchor weighing carries the entry date/weight so the weighing series
// is never empty.
func CreateAnimal(ctx context.Context, farmId int, input *NewAnimal) (*Animal, error) {
	if err := ValidateFarmExists(ctx, farmId); err != nil {
		return nil, err
	}
	if err := input.validate(ctx, farmId); err != nil {
		return nil, err
	}

	entryDate := utils.TruncateToDay(input.EntryDate)
	animal := Animal{
		FarmId:        farmId,
		EarTag:        strings.TrimSpace(input.EarTag),
		Lot:           strings.TrimSpace(input.Lot),
		EntryDate:     entryDate,
		EntryWeight:   input.EntryWeight,
		Sex:           input.Sex,
		EntryAge:      input.EntryAge,
		PurchasePrice: input.PurchasePrice,
		Breed:         input.Breed,
	}

	db := config.GetDB()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&animal).Error; err != nil {
			return err
		}

		anchor := Weighing{
			FarmId:   farmId,
			AnimalId: animal.ID,
			Date:     entryDate,
			WeightKg: input.EntryWeight,
		}
		if err := tx.Create(&anchor).Error; err != nil {
			return err
		}

		initialMove := LocationChange{
			FarmId:        farmId,
			AnimalId:      animal.ID,
			Date:          entryDate,
			LocationId:    input.LocationId,
			SublocationId: input.SublocationId,
		}
		if err := tx.Create(&initialMove).Error; err != nil {
			return err
		}

		if input.InitialDietType != "" {
			initialDiet := DietLog{
				FarmId:                farmId,
				AnimalId:              animal.ID,
				Date:                  entryDate,
				DietType:              input.InitialDietType,
				DailyIntakePercentage: input.DailyIntakePercentage,
			}
			if err := tx.Create(&initialDiet).Error; err != nil {
				return err
			}
		}

		for _, p := range input.SanitaryProtocols {
			protocol := SanitaryProtocol{
				FarmId:        farmId,
				AnimalId:      animal.ID,
				Date:          utils.TruncateToDay(p.Date),
				ProtocolType:  p.ProtocolType,
				ProductName:   p.ProductName,
				Dosage:        p.Dosage,
				InvoiceNumber: p.InvoiceNumber,
			}
			if err := tx.Create(&protocol).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &animal, nil
}

func GetAnimal(ctx context.Context, farmId int, animalId int) (*Animal, error) {
	db := config.GetDB()
	var animal Animal
	err := db.WithContext(ctx).Where("farm_id = ?", farmId).First(&animal, animalId).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &animal, nil
}

// ListAnimals returns all purchases for a farm, newest entry first,
// optionally bounded by entry date.
func ListAnimals(ctx context.Context, farmId int, startDate *time.Time, endDate *time.Time) ([]*Animal, error) {
	db := config.GetDB()
	query := db.WithContext(ctx).Where("farm_id = ?", farmId)
	if startDate != nil {
		query = query.Where("entry_date >= ?", utils.TruncateToDay(*startDate))
	}
	if endDate != nil {
		query = query.Where("entry_date <= ?", utils.TruncateToDay(*endDate))
	}
	var animals []*Animal
	if err := query.Order("entry_date DESC, id DESC").Find(&animals).Error; err != nil {
		return nil, err
	}
	return animals, nil
}

func GetAnimalsByIds(ctx context.Context, ids []int) ([]*Animal, error) {
	db := config.GetDB()
	var animals []*Animal
	if err := db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&animals).Error; err != nil {
		return nil, err
	}
	return animals, nil
}

// activeScope excludes every animal holding a terminal event.
func activeScope(db *gorm.DB, farmId int) *gorm.DB {
	soldIds := db.Model(&Sale{}).Select("animal_id").Where("farm_id = ?", farmId)
	deadIds := db.Model(&Death{}).Select("animal_id").Where("farm_id = ?", farmId)
	return db.Where("farm_id = ?", farmId).
		Where("id NOT IN (?)", soldIds).
		Where("id NOT IN (?)", deadIds)
}

func ListActiveAnimals(ctx context.Context, farmId int) ([]*Animal, error) {
	db := config.GetDB().WithContext(ctx)
	var animals []*Animal
	if err := activeScope(db, farmId).Order("id").Find(&animals).Error; err != nil {
		return nil, err
	}
	return animals, nil
}

func ListAnimalsByLot(ctx context.Context, farmId int, lot string) ([]*Animal, error) {
	db := config.GetDB()
	var animals []*Animal
	err := db.WithContext(ctx).
		Where("farm_id = ? AND lot = ?", farmId, lot).
		Order("id").
		Find(&animals).Error
	if err != nil {
		return nil, err
	}
	return animals, nil
}

func SearchActiveAnimalsByEarTag(ctx context.Context, farmId int, earTag string) ([]*Animal, error) {
	db := config.GetDB().WithContext(ctx)
	var animals []*Animal
	err := activeScope(db, farmId).
		Where("ear_tag = ?", strings.TrimSpace(earTag)).
		Order("id").
		Limit(config.SearchLimit).
		Find(&animals).Error
	if err != nil {
		return nil, err
	}
	return animals, nil
}
