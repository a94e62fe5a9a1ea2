package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/herdlink/livestock_backend/config"
	"github.com/herdlink/livestock_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Sale and Death are the two terminal events. An animal may carry at most
// one of either; the unique index on animal_id plus the pre-insert checks
// below enforce it. Everything downstream (the KPI engine) relies on this.

type Sale struct {
	ID        int             `gorm:"primary_key" json:"id"`
	FarmId    int             `gorm:"index;not null" json:"farm_id"`
	AnimalId  int             `gorm:"uniqueIndex;not null" json:"animal_id"`
	Date      time.Time       `gorm:"index;not null" json:"date"`
	SalePrice decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"sale_price"`
}

type Death struct {
	ID       int       `gorm:"primary_key" json:"id"`
	FarmId   int       `gorm:"index;not null" json:"farm_id"`
	AnimalId int       `gorm:"uniqueIndex;not null" json:"animal_id"`
	Date     time.Time `gorm:"index;not null" json:"date"`
	Cause    string    `gorm:"size:255" json:"cause"`
}

type NewSale struct {
	Date       time.Time       `json:"date" binding:"required"`
	SalePrice  decimal.Decimal `json:"sale_price" binding:"required"`
	ExitWeight decimal.Decimal `json:"exit_weight" binding:"required"`
}

type NewDeath struct {
	Date  time.Time `json:"date" binding:"required"`
	Cause string    `json:"cause"`
}

// terminalEventLock serializes sale/death recording per animal across
// instances. Best effort: the unique indexes remain the source of truth,
// the lock just turns a racing insert into a clean conflict error.
func terminalEventLock(ctx context.Context, animalId int) (*redislock.Lock, error) {
	locker := config.GetRedisLock()
	if locker == nil {
		return nil, nil
	}
	lockKey := fmt.Sprintf("terminal-event:%d", animalId)
	lock, err := locker.Obtain(ctx, lockKey, 10*time.Second, nil)
	if err == redislock.ErrNotObtained {
		return nil, errors.New("another terminal event is being recorded for this animal")
	} else if err != nil {
		return nil, err
	}
	return lock, nil
}

func animalHasTerminalEvent(ctx context.Context, db *gorm.DB, animalId int) (bool, bool, error) {
	var soldCount, deadCount int64
	if err := db.WithContext(ctx).Model(&Sale{}).Where("animal_id = ?", animalId).Count(&soldCount).Error; err != nil {
		return false, false, err
	}
	if err := db.WithContext(ctx).Model(&Death{}).Where("animal_id = ?", animalId).Count(&deadCount).Error; err != nil {
		return false, false, err
	}
	return soldCount > 0, deadCount > 0, nil
}

// CreateSale records the sale together with the animal's final weighing in
// one transaction, so a reader never observes one without the other.
func CreateSale(ctx context.Context, farmId int, animalId int, input *NewSale) (*Sale, error) {
	animal, err := GetAnimal(ctx, farmId, animalId)
	if err != nil {
		return nil, err
	}
	if !input.ExitWeight.IsPositive() {
		return nil, errors.New("exit_weight must be positive")
	}

	lock, err := terminalEventLock(ctx, animal.ID)
	if err != nil {
		return nil, err
	}
	if lock != nil {
		defer func() { _ = lock.Release(ctx) }()
	}

	db := config.GetDB()
	sold, dead, err := animalHasTerminalEvent(ctx, db, animal.ID)
	if err != nil {
		return nil, err
	}
	if sold {
		return nil, errors.New("this animal has already been sold")
	}
	if dead {
		return nil, errors.New("cannot sell an animal that has been recorded as dead")
	}

	saleDate := utils.TruncateToDay(input.Date)
	sale := Sale{
		FarmId:    animal.FarmId,
		AnimalId:  animal.ID,
		Date:      saleDate,
		SalePrice: input.SalePrice,
	}
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		finalWeighing := Weighing{
			FarmId:   animal.FarmId,
			AnimalId: animal.ID,
			Date:     saleDate,
			WeightKg: input.ExitWeight,
		}
		if err := tx.Create(&finalWeighing).Error; err != nil {
			return err
		}
		return tx.Create(&sale).Error
	})
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func CreateDeath(ctx context.Context, farmId int, animalId int, input *NewDeath) (*Death, error) {
	animal, err := GetAnimal(ctx, farmId, animalId)
	if err != nil {
		return nil, err
	}

	lock, err := terminalEventLock(ctx, animal.ID)
	if err != nil {
		return nil, err
	}
	if lock != nil {
		defer func() { _ = lock.Release(ctx) }()
	}

	db := config.GetDB()
	sold, dead, err := animalHasTerminalEvent(ctx, db, animal.ID)
	if err != nil {
		return nil, err
	}
	if sold {
		return nil, errors.New("cannot record death, this animal has already been sold")
	}
	if dead {
		return nil, errors.New("a death record for this animal already exists")
	}

	death := Death{
		FarmId:   animal.FarmId,
		AnimalId: animal.ID,
		Date:     utils.TruncateToDay(input.Date),
		Cause:    input.Cause,
	}
	if err := db.WithContext(ctx).Create(&death).Error; err != nil {
		return nil, err
	}
	return &death, nil
}

func GetSaleForAnimal(ctx context.Context, animalId int) (*Sale, error) {
	db := config.GetDB()
	var sale Sale
	err := db.WithContext(ctx).Where("animal_id = ?", animalId).First(&sale).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sale, nil
}

func GetDeathForAnimal(ctx context.Context, animalId int) (*Death, error) {
	db := config.GetDB()
	var death Death
	err := db.WithContext(ctx).Where("animal_id = ?", animalId).First(&death).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &death, nil
}

/* batched variants for aggregate endpoints */

func ListSalesForAnimals(ctx context.Context, animalIds []int) (map[int]*Sale, error) {
	db := config.GetDB()
	var sales []Sale
	if err := db.WithContext(ctx).Where("animal_id IN ?", animalIds).Find(&sales).Error; err != nil {
		return nil, err
	}
	grouped := make(map[int]*Sale, len(sales))
	for i := range sales {
		grouped[sales[i].AnimalId] = &sales[i]
	}
	return grouped, nil
}

func ListDeathsForAnimals(ctx context.Context, animalIds []int) (map[int]*Death, error) {
	db := config.GetDB()
	var deaths []Death
	if err := db.WithContext(ctx).Where("animal_id IN ?", animalIds).Find(&deaths).Error; err != nil {
		return nil, err
	}
	grouped := make(map[int]*Death, len(deaths))
	for i := range deaths {
		grouped[deaths[i].AnimalId] = &deaths[i]
	}
	return grouped, nil
}

// ListSales returns a farm's sales with their animals preloaded, newest
// first, optionally bounded by sale date.
func ListSales(ctx context.Context, farmId int, startDate *time.Time, endDate *time.Time) ([]Sale, error) {
	db := config.GetDB()
	query := db.WithContext(ctx).Where("farm_id = ?", farmId)
	if startDate != nil {
		query = query.Where("date >= ?", utils.TruncateToDay(*startDate))
	}
	if endDate != nil {
		query = query.Where("date <= ?", utils.TruncateToDay(*endDate))
	}
	var sales []Sale
	err := query.Order("date DESC, id DESC").Find(&sales).Error
	return sales, err
}

// ListDeaths returns a farm's death records newest first, optionally bounded
// by death date.
func ListDeaths(ctx context.Context, farmId int, startDate *time.Time, endDate *time.Time) ([]Death, error) {
	db := config.GetDB()
	query := db.WithContext(ctx).Where("farm_id = ?", farmId)
	if startDate != nil {
		query = query.Where("date >= ?", utils.TruncateToDay(*startDate))
	}
	if endDate != nil {
		query = query.Where("date <= ?", utils.TruncateToDay(*endDate))
	}
	var deaths []Death
	err := query.Order("date DESC, id DESC").Find(&deaths).Error
	return deaths, err
}
