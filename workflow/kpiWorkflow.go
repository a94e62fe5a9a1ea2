package workflow

import (
	"time"

	"github.com/herdlink/livestock_backend/models"
	"github.com/herdlink/livestock_backend/utils"
	"github.com/shopspring/decimal"
)

// AnimalKpis is the per-animal record exposed to the API layer. Nullable
// fields stay nil when the underlying state is unknown or not applicable:
// the forecast is nil for sold and dead animals, location and diet fields
// are nil when no such event was ever recorded.
type AnimalKpis struct {
	AnimalId                  int                 `json:"animal_id"`
	EarTag                    string              `json:"ear_tag"`
	Lot                       string              `json:"lot"`
	Sex                       models.Sex          `json:"sex"`
	Status                    models.AnimalStatus `json:"status"`
	AverageDailyGainKg        decimal.Decimal     `json:"average_daily_gain_kg"`
	LastWeightKg              decimal.Decimal     `json:"last_weight_kg"`
	LastWeightingDate         time.Time           `json:"last_weighting_date"`
	CurrentAgeMonths          decimal.Decimal     `json:"current_age_months"`
	ForecastedCurrentWeightKg *decimal.Decimal    `json:"forecasted_current_weight_kg"`
	DaysOnFarm                int                 `json:"days_on_farm"`
	CurrentLocationId         *int                `json:"current_location_id"`
	CurrentLocationName       *string             `json:"current_location_name"`
	CurrentSublocationId      *int                `json:"current_sublocation_id"`
	CurrentSublocationName    *string             `json:"current_sublocation_name"`
	CurrentDietType           *string             `json:"current_diet_type"`
	CurrentDietIntake         *decimal.Decimal    `json:"current_diet_intake"`
}

// ComputeAnimalKpis derives the full KPI record from one snapshot. For
// active animals the evaluation date is asOf; a terminal event freezes it
// at the terminal date.
func ComputeAnimalKpis(snapshot *AnimalEvents, ref *RefData, asOf time.Time) (*AnimalKpis, error) {
	status, terminalDate, err := snapshot.ResolveStatus()
	if err != nil {
		return nil, err
	}

	evalDate := utils.TruncateToDay(asOf)
	if terminalDate != nil {
		evalDate = *terminalDate
	}

	animal := snapshot.Animal
	series := BuildWeightSeries(animal, snapshot.Weighings)
	gmd := OverallGmd(series)
	last := series[len(series)-1]
	daysOnFarm := DaysOnFarm(animal.EntryDate, evalDate)

	kpis := &AnimalKpis{
		AnimalId:           animal.ID,
		EarTag:             animal.EarTag,
		Lot:                animal.Lot,
		Sex:                animal.Sex,
		Status:             status,
		AverageDailyGainKg: gmd.Round(3),
		LastWeightKg:       last.WeightKg.Round(2),
		LastWeightingDate:  last.Date,
		CurrentAgeMonths:   AgeMonths(animal.EntryAge, daysOnFarm).Round(2),
		DaysOnFarm:         daysOnFarm,
	}

	if status == models.AnimalStatusActive {
		forecast := ForecastWeight(series, gmd, evalDate).Round(2)
		kpis.ForecastedCurrentWeightKg = &forecast
	}

	if change, ok := LatestEventBefore(snapshot.LocationChanges, evalDate); ok {
		kpis.CurrentLocationId = utils.IntPtr(change.LocationId)
		if ref != nil {
			if name, known := ref.LocationNames[change.LocationId]; known {
				kpis.CurrentLocationName = utils.StringPtr(name)
			}
		}
		if change.SublocationId != nil {
			kpis.CurrentSublocationId = change.SublocationId
			if ref != nil {
				if name, known := ref.SublocationNames[*change.SublocationId]; known {
					kpis.CurrentSublocationName = utils.StringPtr(name)
				}
			}
		}
	}

	if diet, ok := LatestEventBefore(snapshot.DietLogs, evalDate); ok {
		kpis.CurrentDietType = utils.StringPtr(diet.DietType)
		kpis.CurrentDietIntake = diet.DailyIntakePercentage
	}

	return kpis, nil
}
