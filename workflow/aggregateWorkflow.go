package workflow

import (
	"sort"
	"time"

	"github.com/herdlink/livestock_backend/models"
	"github.com/herdlink/livestock_backend/utils"
	"github.com/shopspring/decimal"
)

// animalUnitKg is the standardized livestock-weight equivalent used to
// normalize stocking density across animals of different weights.
var animalUnitKg = decimal.NewFromInt(450)

type LotSummary struct {
	Lot              string          `json:"lot"`
	AnimalCount      int             `json:"animal_count"`
	MaleCount        int             `json:"male_count"`
	FemaleCount      int             `json:"female_count"`
	AverageAgeMonths decimal.Decimal `json:"average_age_months"`
	AverageGmdKg     decimal.Decimal `json:"average_gmd_kg"`
	AverageWeightKg  decimal.Decimal `json:"average_weight_kg"`
}

type SublocationSummary struct {
	SublocationId int    `json:"sublocation_id"`
	Name          string `json:"name"`
	AnimalCount   int    `json:"animal_count"`
}

type LocationSummary struct {
	LocationId                 int                  `json:"location_id"`
	Name                       string               `json:"name"`
	AnimalCount                int                  `json:"animal_count"`
	ActualAnimalUnits          decimal.Decimal      `json:"actual_animal_units"`
	ForecastedAnimalUnits      decimal.Decimal      `json:"forecasted_animal_units"`
	CapacityRateActualUaHa     *decimal.Decimal     `json:"capacity_rate_actual_ua_ha"`
	CapacityRateForecastedUaHa *decimal.Decimal     `json:"capacity_rate_forecasted_ua_ha"`
	Sublocations               []SublocationSummary `json:"sublocations"`
}

type ActiveStockKpis struct {
	AnimalCount               int             `json:"animal_count"`
	Males                     int             `json:"males"`
	Females                   int             `json:"females"`
	AverageAgeMonths          decimal.Decimal `json:"average_age_months"`
	AverageGmdKg              decimal.Decimal `json:"average_gmd_kg"`
	AverageForecastedWeightKg decimal.Decimal `json:"average_forecasted_weight_kg"`
}

type ActiveStockSummary struct {
	Summary ActiveStockKpis `json:"summary_kpis"`
	Animals []*AnimalKpis   `json:"animals"`
}

// StatusFilterAll widens a status-filtered aggregation to every animal.
const StatusFilterAll models.AnimalStatus = "All"

// kpisByStatus computes KPI records for the animals of the batch matching
// the status filter. A conflicting terminal pair is fatal.
func kpisByStatus(snapshots []*AnimalEvents, ref *RefData, asOf time.Time, filter models.AnimalStatus) ([]*AnimalKpis, error) {
	records := make([]*AnimalKpis, 0, len(snapshots))
	for _, snapshot := range snapshots {
		status, _, err := snapshot.ResolveStatus()
		if err != nil {
			return nil, err
		}
		if filter != StatusFilterAll && status != filter {
			continue
		}
		kpis, err := ComputeAnimalKpis(snapshot, ref, asOf)
		if err != nil {
			return nil, err
		}
		records = append(records, kpis)
	}
	return records, nil
}

func activeKpis(snapshots []*AnimalEvents, ref *RefData, asOf time.Time) ([]*AnimalKpis, error) {
	return kpisByStatus(snapshots, ref, asOf, models.AnimalStatusActive)
}

// ComputeLotSummary groups the farm's active animals by lot label and
// averages their individual KPIs.
func ComputeLotSummary(snapshots []*AnimalEvents, ref *RefData, asOf time.Time) ([]LotSummary, error) {
	return ComputeLotSummaryByStatus(snapshots, ref, asOf, models.AnimalStatusActive)
}

// ComputeLotSummaryByStatus is the filtered variant behind the lot summary
// endpoint; sold and dead animals have no forecast, so their last actual
// weight feeds the weight average instead.
func ComputeLotSummaryByStatus(snapshots []*AnimalEvents, ref *RefData, asOf time.Time, filter models.AnimalStatus) ([]LotSummary, error) {
	records, err := kpisByStatus(snapshots, ref, asOf, filter)
	if err != nil {
		return nil, err
	}

	byLot := make(map[string][]*AnimalKpis)
	for _, record := range records {
		byLot[record.Lot] = append(byLot[record.Lot], record)
	}

	summaries := make([]LotSummary, 0, len(byLot))
	for lot, lotRecords := range byLot {
		summary := LotSummary{Lot: lot, AnimalCount: len(lotRecords)}
		var ageSum, gmdSum, weightSum decimal.Decimal
		for _, record := range lotRecords {
			if record.Sex == models.SexMale {
				summary.MaleCount++
			} else {
				summary.FemaleCount++
			}
			ageSum = ageSum.Add(record.CurrentAgeMonths)
			gmdSum = gmdSum.Add(record.AverageDailyGainKg)
			if record.ForecastedCurrentWeightKg != nil {
				weightSum = weightSum.Add(*record.ForecastedCurrentWeightKg)
			} else {
				weightSum = weightSum.Add(record.LastWeightKg)
			}
		}
		count := decimal.NewFromInt(int64(summary.AnimalCount))
		summary.AverageAgeMonths = utils.SafeDiv(ageSum, count).Round(2)
		summary.AverageGmdKg = utils.SafeDiv(gmdSum, count).Round(3)
		summary.AverageWeightKg = utils.SafeDiv(weightSum, count).Round(2)
		summaries = append(summaries, summary)
	}

	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Lot < summaries[j].Lot })
	return summaries, nil
}

// ComputeLocationSummary rolls active animals up by their resolved current
// location. Capacity rates are animal units per hectare, nil whenever the
// location has no usable area; sublocations report head counts only.
func ComputeLocationSummary(locations []*models.Location, snapshots []*AnimalEvents, ref *RefData, asOf time.Time) ([]LocationSummary, error) {
	records, err := activeKpis(snapshots, ref, asOf)
	if err != nil {
		return nil, err
	}

	counts := make(map[int]int)
	actualWeight := make(map[int]decimal.Decimal)
	forecastWeight := make(map[int]decimal.Decimal)
	sublocationCounts := make(map[int]int)
	for _, record := range records {
		if record.CurrentLocationId == nil {
			continue
		}
		locationId := *record.CurrentLocationId
		counts[locationId]++
		actualWeight[locationId] = actualWeight[locationId].Add(record.LastWeightKg)
		forecast := record.LastWeightKg
		if record.ForecastedCurrentWeightKg != nil {
			forecast = *record.ForecastedCurrentWeightKg
		}
		forecastWeight[locationId] = forecastWeight[locationId].Add(forecast)
		if record.CurrentSublocationId != nil {
			sublocationCounts[*record.CurrentSublocationId]++
		}
	}

	summaries := make([]LocationSummary, 0, len(locations))
	for _, location := range locations {
		summary := LocationSummary{
			LocationId:            location.ID,
			Name:                  location.Name,
			AnimalCount:           counts[location.ID],
			ActualAnimalUnits:     utils.SafeDiv(actualWeight[location.ID], animalUnitKg).Round(2),
			ForecastedAnimalUnits: utils.SafeDiv(forecastWeight[location.ID], animalUnitKg).Round(2),
			Sublocations:          make([]SublocationSummary, 0, len(location.Sublocations)),
		}
		summary.CapacityRateActualUaHa = roundNullable(
			utils.SafeDivNullable(summary.ActualAnimalUnits, location.AreaHectares))
		summary.CapacityRateForecastedUaHa = roundNullable(
			utils.SafeDivNullable(summary.ForecastedAnimalUnits, location.AreaHectares))
		for _, sublocation := range location.Sublocations {
			summary.Sublocations = append(summary.Sublocations, SublocationSummary{
				SublocationId: sublocation.ID,
				Name:          sublocation.Name,
				AnimalCount:   sublocationCounts[sublocation.ID],
			})
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func roundNullable(value *decimal.Decimal) *decimal.Decimal {
	if value == nil {
		return nil
	}
	rounded := value.Round(2)
	return &rounded
}

// ComputeActiveStockSummary produces the farm-wide dashboard: per-animal
// KPI records for the whole active herd plus their aggregates.
func ComputeActiveStockSummary(snapshots []*AnimalEvents, ref *RefData, asOf time.Time) (*ActiveStockSummary, error) {
	records, err := activeKpis(snapshots, ref, asOf)
	if err != nil {
		return nil, err
	}

	summary := ActiveStockKpis{AnimalCount: len(records)}
	var ageSum, gmdSum, forecastSum decimal.Decimal
	for _, record := range records {
		if record.Sex == models.SexMale {
			summary.Males++
		} else {
			summary.Females++
		}
		ageSum = ageSum.Add(record.CurrentAgeMonths)
		gmdSum = gmdSum.Add(record.AverageDailyGainKg)
		if record.ForecastedCurrentWeightKg != nil {
			forecastSum = forecastSum.Add(*record.ForecastedCurrentWeightKg)
		}
	}
	count := decimal.NewFromInt(int64(summary.AnimalCount))
	summary.AverageAgeMonths = utils.SafeDiv(ageSum, count).Round(2)
	summary.AverageGmdKg = utils.SafeDiv(gmdSum, count).Round(3)
	summary.AverageForecastedWeightKg = utils.SafeDiv(forecastSum, count).Round(2)

	return &ActiveStockSummary{Summary: summary, Animals: records}, nil
}
