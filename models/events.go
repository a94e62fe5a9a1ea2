package models

import (
	"context"
	"errors"
	"time"

	"github.com/herdlink/livestock_backend/config"
	"github.com/herdlink/livestock_backend/utils"
	"github.com/shopspring/decimal"
)

// Event tables are append-only. Ordering within one animal is always
// (date, id): the autoincrement id is the insertion-order tie breaker.

type Weighing struct {
	ID       int             `gorm:"primary_key" json:"id"`
	FarmId   int             `gorm:"index;not null" json:"farm_id"`
	AnimalId int             `gorm:"index;not null" json:"animal_id"`
	Date     time.Time       `gorm:"index;not null" json:"date"`
	WeightKg decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"weight_kg"`
}

type LocationChange struct {
	ID            int       `gorm:"primary_key" json:"id"`
	FarmId        int       `gorm:"index;not null" json:"farm_id"`
	AnimalId      int       `gorm:"index;not null" json:"animal_id"`
	Date          time.Time `gorm:"index;not null" json:"date"`
	LocationId    int       `gorm:"index;not null" json:"location_id"`
	SublocationId *int      `gorm:"index" json:"sublocation_id"`
}

type DietLog struct {
	ID                    int              `gorm:"primary_key" json:"id"`
	FarmId                int              `gorm:"index;not null" json:"farm_id"`
	AnimalId              int              `gorm:"index;not null" json:"animal_id"`
	Date                  time.Time        `gorm:"index;not null" json:"date"`
	DietType              string           `gorm:"size:50;not null" json:"diet_type"`
	DailyIntakePercentage *decimal.Decimal `gorm:"type:decimal(20,4)" json:"daily_intake_percentage"`
}

type SanitaryProtocol struct {
	ID            int       `gorm:"primary_key" json:"id"`
	FarmId        int       `gorm:"index;not null" json:"farm_id"`
	AnimalId      int       `gorm:"index;not null" json:"animal_id"`
	Date          time.Time `gorm:"index;not null" json:"date"`
	ProtocolType  string    `gorm:"size:50;not null" json:"protocol_type"`
	ProductName   string    `gorm:"size:100" json:"product_name"`
	Dosage        string    `gorm:"size:50" json:"dosage"`
	InvoiceNumber string    `gorm:"size:50" json:"invoice_number"`
}

func (w Weighing) EventDate() time.Time       { return w.Date }
func (w Weighing) EventId() int               { return w.ID }
func (c LocationChange) EventDate() time.Time { return c.Date }
func (c LocationChange) EventId() int         { return c.ID }
func (d DietLog) EventDate() time.Time        { return d.Date }
func (d DietLog) EventId() int                { return d.ID }
func (p SanitaryProtocol) EventDate() time.Time { return p.Date }
func (p SanitaryProtocol) EventId() int         { return p.ID }

func (w Weighing) OwnerAnimalId() int       { return w.AnimalId }
func (c LocationChange) OwnerAnimalId() int { return c.AnimalId }
func (d DietLog) OwnerAnimalId() int        { return d.AnimalId }

type NewWeighing struct {
	Date     time.Time       `json:"date" binding:"required"`
	WeightKg decimal.Decimal `json:"weight_kg" binding:"required"`
}

type NewLocationChange struct {
	Date          time.Time `json:"date" binding:"required"`
	LocationId    int       `json:"location_id" binding:"required"`
	SublocationId *int      `json:"sublocation_id"`
}

type NewDietLog struct {
	Date                  time.Time        `json:"date" binding:"required"`
	DietType              string           `json:"diet_type" binding:"required"`
	DailyIntakePercentage *decimal.Decimal `json:"daily_intake_percentage"`
}

type NewSanitaryProtocol struct {
	Date          time.Time `json:"date" binding:"required"`
	ProtocolType  string    `json:"protocol_type" binding:"required"`
	ProductName   string    `json:"product_name"`
	Dosage        string    `json:"dosage"`
	InvoiceNumber string    `json:"invoice_number"`
}

func CreateWeighing(ctx context.Context, farmId int, animalId int, input *NewWeighing) (*Weighing, error) {
	animal, err := GetAnimal(ctx, farmId, animalId)
	if err != nil {
		return nil, err
	}
	if !input.WeightKg.IsPositive() {
		return nil, errors.New("weight_kg must be positive")
	}

	weighing := Weighing{
		FarmId:   animal.FarmId,
		AnimalId: animal.ID,
		Date:     utils.TruncateToDay(input.Date),
		WeightKg: input.WeightKg,
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&weighing).Error; err != nil {
		return nil, err
	}
	return &weighing, nil
}

func CreateLocationChange(ctx context.Context, farmId int, animalId int, input *NewLocationChange) (*LocationChange, error) {
	animal, err := GetAnimal(ctx, farmId, animalId)
	if err != nil {
		return nil, err
	}
	if err := ValidateLocationOnFarm(ctx, farmId, input.LocationId, input.SublocationId); err != nil {
		return nil, err
	}

	change := LocationChange{
		FarmId:        animal.FarmId,
		AnimalId:      animal.ID,
		Date:          utils.TruncateToDay(input.Date),
		LocationId:    input.LocationId,
		SublocationId: input.SublocationId,
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&change).Error; err != nil {
		return nil, err
	}
	return &change, nil
}

func CreateDietLog(ctx context.Context, farmId int, animalId int, input *NewDietLog) (*DietLog, error) {
	animal, err := GetAnimal(ctx, farmId, animalId)
	if err != nil {
		return nil, err
	}

	dietLog := DietLog{
		FarmId:                animal.FarmId,
		AnimalId:              animal.ID,
		Date:                  utils.TruncateToDay(input.Date),
		DietType:              input.DietType,
		DailyIntakePercentage: input.DailyIntakePercentage,
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&dietLog).Error; err != nil {
		return nil, err
	}
	return &dietLog, nil
}

func CreateSanitaryProtocol(ctx context.Context, farmId int, animalId int, input *NewSanitaryProtocol) (*SanitaryProtocol, error) {
	animal, err := GetAnimal(ctx, farmId, animalId)
	if err != nil {
		return nil, err
	}

	protocol := SanitaryProtocol{
		FarmId:        animal.FarmId,
		AnimalId:      animal.ID,
		Date:          utils.TruncateToDay(input.Date),
		ProtocolType:  input.ProtocolType,
		ProductName:   input.ProductName,
		Dosage:        input.Dosage,
		InvoiceNumber: input.InvoiceNumber,
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&protocol).Error; err != nil {
		return nil, err
	}
	return &protocol, nil
}

/* per-animal event reads, ordered (date, id) */

func ListWeighings(ctx context.Context, animalId int) ([]Weighing, error) {
	db := config.GetDB()
	var events []Weighing
	err := db.WithContext(ctx).Where("animal_id = ?", animalId).
		Order("date, id").Find(&events).Error
	return events, err
}

func ListLocationChanges(ctx context.Context, animalId int) ([]LocationChange, error) {
	db := config.GetDB()
	var events []LocationChange
	err := db.WithContext(ctx).Where("animal_id = ?", animalId).
		Order("date, id").Find(&events).Error
	return events, err
}

func ListDietLogs(ctx context.Context, animalId int) ([]DietLog, error) {
	db := config.GetDB()
	var events []DietLog
	err := db.WithContext(ctx).Where("animal_id = ?", animalId).
		Order("date, id").Find(&events).Error
	return events, err
}

func ListSanitaryProtocols(ctx context.Context, animalId int) ([]SanitaryProtocol, error) {
	db := config.GetDB()
	var events []SanitaryProtocol
	err := db.WithContext(ctx).Where("animal_id = ?", animalId).
		Order("date, id").Find(&events).Error
	return events, err
}

/* batched variants: one query for many animals, grouped in memory.
   Aggregate endpoints must never loop one round trip per animal. */

func ListWeighingsForAnimals(ctx context.Context, animalIds []int) (map[int][]Weighing, error) {
	db := config.GetDB()
	var events []Weighing
	err := db.WithContext(ctx).Where("animal_id IN ?", animalIds).
		Order("date, id").Find(&events).Error
	if err != nil {
		return nil, err
	}
	grouped := make(map[int][]Weighing, len(animalIds))
	for _, e := range events {
		grouped[e.AnimalId] = append(grouped[e.AnimalId], e)
	}
	return grouped, nil
}

func ListLocationChangesForAnimals(ctx context.Context, animalIds []int) (map[int][]LocationChange, error) {
	db := config.GetDB()
	var events []LocationChange
	err := db.WithContext(ctx).Where("animal_id IN ?", animalIds).
		Order("date, id").Find(&events).Error
	if err != nil {
		return nil, err
	}
	grouped := make(map[int][]LocationChange, len(animalIds))
	for _, e := range events {
		grouped[e.AnimalId] = append(grouped[e.AnimalId], e)
	}
	return grouped, nil
}

func ListDietLogsForAnimals(ctx context.Context, animalIds []int) (map[int][]DietLog, error) {
	db := config.GetDB()
	var events []DietLog
	err := db.WithContext(ctx).Where("animal_id IN ?", animalIds).
		Order("date, id").Find(&events).Error
	if err != nil {
		return nil, err
	}
	grouped := make(map[int][]DietLog, len(animalIds))
	for _, e := range events {
		grouped[e.AnimalId] = append(grouped[e.AnimalId], e)
	}
	return grouped, nil
}

/* farm-wide event listings with optional date range, newest first */

func ListFarmWeighings(ctx context.Context, farmId int, startDate *time.Time, endDate *time.Time) ([]Weighing, error) {
	db := config.GetDB()
	query := db.WithContext(ctx).Where("farm_id = ?", farmId)
	if startDate != nil {
		query = query.Where("date >= ?", utils.TruncateToDay(*startDate))
	}
	if endDate != nil {
		query = query.Where("date <= ?", utils.TruncateToDay(*endDate))
	}
	var events []Weighing
	err := query.Order("date DESC, id DESC").Find(&events).Error
	return events, err
}

func ListFarmLocationChanges(ctx context.Context, farmId int, startDate *time.Time, endDate *time.Time) ([]LocationChange, error) {
	db := config.GetDB()
	query := db.WithContext(ctx).Where("farm_id = ?", farmId)
	if startDate != nil {
		query = query.Where("date >= ?", utils.TruncateToDay(*startDate))
	}
	if endDate != nil {
		query = query.Where("date <= ?", utils.TruncateToDay(*endDate))
	}
	var events []LocationChange
	err := query.Order("date DESC, id DESC").Find(&events).Error
	return events, err
}

func ListFarmDietLogs(ctx context.Context, farmId int, startDate *time.Time, endDate *time.Time) ([]DietLog, error) {
	db := config.GetDB()
	query := db.WithContext(ctx).Where("farm_id = ?", farmId)
	if startDate != nil {
		query = query.Where("date >= ?", utils.TruncateToDay(*startDate))
	}
	if endDate != nil {
		query = query.Where("date <= ?", utils.TruncateToDay(*endDate))
	}
	var events []DietLog
	err := query.Order("date DESC, id DESC").Find(&events).Error
	return events, err
}

func ListFarmSanitaryProtocols(ctx context.Context, farmId int, startDate *time.Time, endDate *time.Time) ([]SanitaryProtocol, error) {
	db := config.GetDB()
	query := db.WithContext(ctx).Where("farm_id = ?", farmId)
	if startDate != nil {
		query = query.Where("date >= ?", utils.TruncateToDay(*startDate))
	}
	if endDate != nil {
		query = query.Where("date <= ?", utils.TruncateToDay(*endDate))
	}
	var events []SanitaryProtocol
	err := query.Order("date DESC, id DESC").Find(&events).Error
	return events, err
}
