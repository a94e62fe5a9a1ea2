package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/herdlink/livestock_backend/config"
	"github.com/herdlink/livestock_backend/marketprices"
	"github.com/herdlink/livestock_backend/models"
	"github.com/herdlink/livestock_backend/utils"
	"github.com/shopspring/decimal"
)

// Seeds a demo farm: locations, a purchased herd with weighing, move and
// diet histories, and a handful of sales priced from the historical market
// price table. Intended for local development and demos only.
func main() {
	farmName := flag.String("farm", "Demo Farm", "name of the demo farm to create")
	herdSize := flag.Int("herd", 40, "number of animals to seed")
	pricesPath := flag.String("prices", "marketprices/data/prices.csv", "market price table (csv)")
	seed := flag.Int64("seed", 1, "random seed for reproducible data")
	flag.Parse()

	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized")
		os.Exit(1)
	}
	if err := models.MigrateTable(); err != nil {
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}

	prices, err := marketprices.Load(*pricesPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load price table: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	rng := rand.New(rand.NewSource(*seed))

	farm, err := models.CreateFarm(ctx, &models.NewFarm{Name: *farmName})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create farm: %v\n", err)
		os.Exit(1)
	}

	pasture, err := models.CreateLocation(ctx, farm.ID, &models.NewLocation{
		Name:         "Pasture North",
		AreaHectares: utils.DecimalPtr(decimal.NewFromInt(12)),
		GrassType:    "brachiaria",
		LocationType: "pasture",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create pasture: %v\n", err)
		os.Exit(1)
	}
	for _, name := range []string{"Paddock A", "Paddock B"} {
		if _, err := models.CreateSublocation(ctx, farm.ID, pasture.ID, &models.NewSublocation{
			Name:         name,
			AreaHectares: utils.DecimalPtr(decimal.NewFromInt(6)),
		}); err != nil {
			fmt.Fprintf(os.Stderr, "failed to create sublocation: %v\n", err)
			os.Exit(1)
		}
	}
	feedlot, err := models.CreateLocation(ctx, farm.ID, &models.NewLocation{
		Name:         "Feedlot",
		LocationType: "feedlot",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create feedlot: %v\n", err)
		os.Exit(1)
	}

	entryStart := utils.TruncateToDay(time.Now().AddDate(0, -10, 0))
	sold := 0
	for i := 0; i < *herdSize; i++ {
		entryDate := entryStart.AddDate(0, 0, rng.Intn(60))
		entryWeight := decimal.NewFromFloat(170 + rng.Float64()*60).Round(1)
		sex := models.SexMale
		if rng.Intn(2) == 0 {
			sex = models.SexFemale
		}
		purchasePrice := prices.ClosestPrice(entryDate).Mul(entryWeight).Round(2)

		animal, err := models.CreateAnimal(ctx, farm.ID, &models.NewAnimal{
			EarTag:          fmt.Sprintf("BR%04d", i+1),
			Lot:             fmt.Sprintf("L%d", i/10+1),
			EntryDate:       entryDate,
			EntryWeight:     entryWeight,
			Sex:             sex,
			EntryAge:        decimal.NewFromInt(int64(8 + rng.Intn(10))),
			PurchasePrice:   &purchasePrice,
			Breed:           "Nelore",
			LocationId:      pasture.ID,
			InitialDietType: "pasture",
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create animal: %v\n", err)
			os.Exit(1)
		}

		// monthly weighings with a plausible daily gain
		weight := entryWeight
		weighDate := entryDate
		for m := 0; m < 8; m++ {
			days := 25 + rng.Intn(10)
			weighDate = weighDate.AddDate(0, 0, days)
			if weighDate.After(time.Now()) {
				break
			}
			gain := decimal.NewFromFloat(0.4 + rng.Float64()*0.8)
			weight = weight.Add(gain.Mul(decimal.NewFromInt(int64(days)))).Round(1)
			if _, err := models.CreateWeighing(ctx, farm.ID, animal.ID, &models.NewWeighing{
				Date:     weighDate,
				WeightKg: weight,
			}); err != nil {
				fmt.Fprintf(os.Stderr, "failed to create weighing: %v\n", err)
				os.Exit(1)
			}
			if m == 3 {
				if _, err := models.CreateLocationChange(ctx, farm.ID, animal.ID, &models.NewLocationChange{
					Date:       weighDate,
					LocationId: feedlot.ID,
				}); err != nil {
					fmt.Fprintf(os.Stderr, "failed to create location change: %v\n", err)
					os.Exit(1)
				}
				if _, err := models.CreateDietLog(ctx, farm.ID, animal.ID, &models.NewDietLog{
					Date:                  weighDate,
					DietType:              "feedlot",
					DailyIntakePercentage: utils.DecimalPtr(decimal.NewFromFloat(2.2)),
				}); err != nil {
					fmt.Fprintf(os.Stderr, "failed to create diet log: %v\n", err)
					os.Exit(1)
				}
			}
		}

		// sell roughly a fifth of the herd
		if rng.Intn(5) == 0 {
			saleDate := weighDate.AddDate(0, 0, 10+rng.Intn(20))
			if saleDate.Before(time.Now()) {
				exitWeight := weight.Add(decimal.NewFromInt(8)).Round(1)
				salePrice := prices.ClosestPrice(saleDate).Mul(exitWeight).Round(2)
				if _, err := models.CreateSale(ctx, farm.ID, animal.ID, &models.NewSale{
					Date:       saleDate,
					SalePrice:  salePrice,
					ExitWeight: exitWeight,
				}); err != nil {
					fmt.Fprintf(os.Stderr, "failed to create sale: %v\n", err)
					os.Exit(1)
				}
				sold++
			}
		}
	}

	fmt.Printf("seeded farm %q (id %d): %d animals, %d sold\n", farm.Name, farm.ID, *herdSize, sold)
}
