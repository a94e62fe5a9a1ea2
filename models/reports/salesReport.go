package reports

import (
	"context"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/herdlink/livestock_backend/models"
	"github.com/herdlink/livestock_backend/utils"
	"github.com/herdlink/livestock_backend/workflow"
	"github.com/shopspring/decimal"
)

// SaleKpiResponse is one sold animal with its exit KPIs: the growth and age
// figures frozen at the sale date.
type SaleKpiResponse struct {
	SaleId        int              `json:"sale_id"`
	AnimalId      int              `json:"animal_id"`
	EarTag        string           `json:"ear_tag"`
	Lot           string           `json:"lot"`
	SaleDate      time.Time        `json:"sale_date"`
	SalePrice     decimal.Decimal  `json:"sale_price"`
	ExitWeightKg  decimal.Decimal  `json:"exit_weight_kg"`
	DaysOnFarm    int              `json:"days_on_farm"`
	GmdAtExitKg   decimal.Decimal  `json:"gmd_at_exit_kg"`
	ExitAgeMonths decimal.Decimal  `json:"exit_age_months"`
	PurchasePrice *decimal.Decimal `json:"purchase_price"`
}

// GetSalesReport lists a farm's sales in a date range with per-animal exit
// KPIs, batched through one snapshot fetch.
func GetSalesReport(ctx context.Context, farmId int, startDate *time.Time, endDate *time.Time) ([]*SaleKpiResponse, error) {
	sales, err := models.ListSales(ctx, farmId, startDate, endDate)
	if err != nil {
		return nil, err
	}
	if len(sales) == 0 {
		return []*SaleKpiResponse{}, nil
	}

	animalIds := make([]int, 0, len(sales))
	for _, sale := range sales {
		animalIds = append(animalIds, sale.AnimalId)
	}
	animals, err := models.GetAnimalsByIds(ctx, animalIds)
	if err != nil {
		return nil, err
	}
	snapshots, err := workflow.FetchSnapshots(ctx, animals)
	if err != nil {
		return nil, err
	}
	ref, err := workflow.FetchRefData(ctx, farmId)
	if err != nil {
		return nil, err
	}

	kpisByAnimal := make(map[int]*workflow.AnimalKpis, len(snapshots))
	for _, snapshot := range snapshots {
		kpis, err := workflow.ComputeAnimalKpis(snapshot, ref, time.Now())
		if err != nil {
			return nil, err
		}
		kpisByAnimal[snapshot.Animal.ID] = kpis
	}
	animalsById := make(map[int]*models.Animal, len(animals))
	for _, animal := range animals {
		animalsById[animal.ID] = animal
	}

	rows := make([]*SaleKpiResponse, 0, len(sales))
	for _, sale := range sales {
		kpis := kpisByAnimal[sale.AnimalId]
		animal := animalsById[sale.AnimalId]
		if kpis == nil || animal == nil {
			return nil, utils.ErrorRecordNotFound
		}
		rows = append(rows, &SaleKpiResponse{
			SaleId:        sale.ID,
			AnimalId:      sale.AnimalId,
			EarTag:        kpis.EarTag,
			Lot:           kpis.Lot,
			SaleDate:      sale.Date,
			SalePrice:     sale.SalePrice,
			ExitWeightKg:  kpis.LastWeightKg,
			DaysOnFarm:    kpis.DaysOnFarm,
			GmdAtExitKg:   kpis.AverageDailyGainKg,
			ExitAgeMonths: kpis.CurrentAgeMonths,
			PurchasePrice: animal.PurchasePrice,
		})
	}
	return rows, nil
}
