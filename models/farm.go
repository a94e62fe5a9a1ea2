package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/herdlink/livestock_backend/config"
	"github.com/herdlink/livestock_backend/utils"
	"gorm.io/gorm"
)

type Farm struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:100;not null" json:"name" binding:"required"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewFarm struct {
	Name string `json:"name" binding:"required"`
}

func (input *NewFarm) validate(ctx context.Context, id int) error {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return errors.New("farm name is required")
	}

	db := config.GetDB()
	var count int64
	query := db.WithContext(ctx).Model(&Farm{}).Where("name = ?", name)
	if id > 0 {
		query = query.Where("id <> ?", id)
	}
	if err := query.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return errors.New("a farm with this name already exists")
	}
	return nil
}

func CreateFarm(ctx context.Context, input *NewFarm) (*Farm, error) {
	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	farm := Farm{Name: strings.TrimSpace(input.Name)}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&farm).Error; err != nil {
		return nil, err
	}
	return &farm, nil
}

func UpdateFarm(ctx context.Context, id int, input *NewFarm) (*Farm, error) {
	farm, err := GetFarmById(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	db := config.GetDB()
	farm.Name = strings.TrimSpace(input.Name)
	if err := db.WithContext(ctx).Save(farm).Error; err != nil {
		return nil, err
	}
	if err := utils.ClearRedisInstance[Farm](id); err != nil {
		return nil, err
	}
	return farm, nil
}

// DeleteFarm removes the farm and all its records (cascading foreign keys).
func DeleteFarm(ctx context.Context, id int) error {
	farm, err := GetFarmById(ctx, id)
	if err != nil {
		return err
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(farm).Error; err != nil {
		return err
	}
	return utils.ClearRedisInstance[Farm](id)
}

func GetFarmById(ctx context.Context, id int) (*Farm, error) {
	// reference data: redis first, then db
	cached, err := utils.RetrieveRedis[Farm](id)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		return cached, nil
	}

	db := config.GetDB()
	var farm Farm
	if err := db.WithContext(ctx).First(&farm, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	if err := utils.StoreRedis[Farm](&farm, farm.ID); err != nil {
		return nil, err
	}
	return &farm, nil
}

func ListFarms(ctx context.Context) ([]*Farm, error) {
	db := config.GetDB()
	var farms []*Farm
	if err := db.WithContext(ctx).Order("name").Find(&farms).Error; err != nil {
		return nil, err
	}
	return farms, nil
}

// ValidateFarmExists is the referential check used by every farm-scoped route.
func ValidateFarmExists(ctx context.Context, farmId int) error {
	_, err := GetFarmById(ctx, farmId)
	return err
}
