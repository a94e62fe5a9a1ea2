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

// Location is a named physical area on a farm (pasture, feedlot, module).
// AreaHectares is optional; capacity-rate KPIs are only defined when it is
// present and positive.
type Location struct {
	ID           int              `gorm:"primary_key" json:"id"`
	FarmId       int              `gorm:"uniqueIndex:idx_location_farm_name;not null" json:"farm_id"`
	Name         string           `gorm:"size:100;not null;uniqueIndex:idx_location_farm_name" json:"name" binding:"required"`
	AreaHectares *decimal.Decimal `gorm:"type:decimal(20,4)" json:"area_hectares"`
	GrassType    string           `gorm:"size:50" json:"grass_type"`
	LocationType string           `gorm:"size:50" json:"location_type"`
	GeoJsonData  string           `gorm:"type:text" json:"geo_json_data"`
	Sublocations []*Sublocation   `gorm:"foreignKey:ParentLocationId" json:"sublocations"`
	CreatedAt    time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

// Sublocation is a paddock-style subdivision of a Location, always on the
// same farm as its parent.
type Sublocation struct {
	ID               int              `gorm:"primary_key" json:"id"`
	FarmId           int              `gorm:"index;not null" json:"farm_id"`
	ParentLocationId int              `gorm:"index;not null" json:"parent_location_id"`
	Name             string           `gorm:"size:100;not null" json:"name" binding:"required"`
	AreaHectares     *decimal.Decimal `gorm:"type:decimal(20,4)" json:"area_hectares"`
	GeoJsonData      string           `gorm:"type:text" json:"geo_json_data"`
	CreatedAt        time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewLocation struct {
	Name         string           `json:"name" binding:"required"`
	AreaHectares *decimal.Decimal `json:"area_hectares"`
	GrassType    string           `json:"grass_type"`
	LocationType string           `json:"location_type"`
	GeoJsonData  string           `json:"geo_json_data"`
}

type NewSublocation struct {
	Name         string           `json:"name" binding:"required"`
	AreaHectares *decimal.Decimal `json:"area_hectares"`
	GeoJsonData  string           `json:"geo_json_data"`
}

func (input *NewLocation) validate(ctx context.Context, farmId int) error {
	if strings.TrimSpace(input.Name) == "" {
		return errors.New("location name is required")
	}

	db := config.GetDB()
	var count int64
	err := db.WithContext(ctx).Model(&Location{}).
		Where("farm_id = ? AND name = ?", farmId, strings.TrimSpace(input.Name)).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return errors.New("a location with this name already exists on this farm")
	}
	return nil
}

func CreateLocation(ctx context.Context, farmId int, input *NewLocation) (*Location, error) {
	if err := ValidateFarmExists(ctx, farmId); err != nil {
		return nil, err
	}
	if err := input.validate(ctx, farmId); err != nil {
		return nil, err
	}

	location := Location{
		FarmId:       farmId,
		Name:         strings.TrimSpace(input.Name),
		AreaHectares: input.AreaHectares,
		GrassType:    input.GrassType,
		LocationType: input.LocationType,
		GeoJsonData:  input.GeoJsonData,
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&location).Error; err != nil {
		return nil, err
	}
	if err := utils.ClearRedisList[Location](farmId); err != nil {
		return nil, err
	}
	return &location, nil
}

func CreateSublocation(ctx context.Context, farmId int, locationId int, input *NewSublocation) (*Sublocation, error) {
	parent, err := GetLocation(ctx, farmId, locationId)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, errors.New("sublocation name is required")
	}

	sublocation := Sublocation{
		FarmId:           parent.FarmId,
		ParentLocationId: parent.ID,
		Name:             strings.TrimSpace(input.Name),
		AreaHectares:     input.AreaHectares,
		GeoJsonData:      input.GeoJsonData,
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&sublocation).Error; err != nil {
		return nil, err
	}
	if err := utils.ClearRedisList[Location](farmId); err != nil {
		return nil, err
	}
	return &sublocation, nil
}

func GetLocation(ctx context.Context, farmId int, locationId int) (*Location, error) {
	db := config.GetDB()
	var location Location
	err := db.WithContext(ctx).Preload("Sublocations").
		Where("farm_id = ?", farmId).
		First(&location, locationId).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &location, nil
}

// ListLocations returns the farm's locations with sublocations preloaded,
// ordered by name. Cached in redis; every location/sublocation write clears
// the farm's cache entry.
func ListLocations(ctx context.Context, farmId int) ([]*Location, error) {
	cached, err := utils.RetrieveRedisList[Location](farmId)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		return cached, nil
	}

	db := config.GetDB()
	var locations []*Location
	err = db.WithContext(ctx).Preload("Sublocations").
		Where("farm_id = ?", farmId).
		Order("name").
		Find(&locations).Error
	if err != nil {
		return nil, err
	}
	if err := utils.StoreRedisList[Location](locations, farmId); err != nil {
		return nil, err
	}
	return locations, nil
}

// ValidateLocationOnFarm checks the referential rule for location change
// events: the target location (and optional sublocation, which must belong
// to that location) exists on the given farm.
func ValidateLocationOnFarm(ctx context.Context, farmId int, locationId int, sublocationId *int) error {
	db := config.GetDB()

	var count int64
	err := db.WithContext(ctx).Model(&Location{}).
		Where("id = ? AND farm_id = ?", locationId, farmId).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return errors.New("location not found on this farm")
	}

	if sublocationId != nil {
		err = db.WithContext(ctx).Model(&Sublocation{}).
			Where("id = ? AND parent_location_id = ? AND farm_id = ?", *sublocationId, locationId, farmId).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count == 0 {
			return errors.New("sublocation not found under this location")
		}
	}
	return nil
}
