package workflow

import (
	"context"

	"github.com/herdlink/livestock_backend/models"
)

// FetchAnimalEvents reads one animal's complete event set. The terminal
// pair is read last; CreateSale writes the final weighing and the sale in
// one transaction, so a sale visible here implies its weighing is too.
func FetchAnimalEvents(ctx context.Context, farmId int, animalId int) (*AnimalEvents, error) {
	animal, err := models.GetAnimal(ctx, farmId, animalId)
	if err != nil {
		return nil, err
	}
	weighings, err := models.ListWeighings(ctx, animalId)
	if err != nil {
		return nil, err
	}
	locationChanges, err := models.ListLocationChanges(ctx, animalId)
	if err != nil {
		return nil, err
	}
	dietLogs, err := models.ListDietLogs(ctx, animalId)
	if err != nil {
		return nil, err
	}
	sale, err := models.GetSaleForAnimal(ctx, animalId)
	if err != nil {
		return nil, err
	}
	death, err := models.GetDeathForAnimal(ctx, animalId)
	if err != nil {
		return nil, err
	}
	return &AnimalEvents{
		Animal:          animal,
		Weighings:       weighings,
		LocationChanges: locationChanges,
		DietLogs:        dietLogs,
		Sale:            sale,
		Death:           death,
	}, nil
}

// FetchSnapshots builds event snapshots for many animals with one query
// per event table instead of one round trip per animal.
func FetchSnapshots(ctx context.Context, animals []*models.Animal) ([]*AnimalEvents, error) {
	animalIds := make([]int, 0, len(animals))
	for _, animal := range animals {
		animalIds = append(animalIds, animal.ID)
	}

	weighings, err := models.ListWeighingsForAnimals(ctx, animalIds)
	if err != nil {
		return nil, err
	}
	locationChanges, err := models.ListLocationChangesForAnimals(ctx, animalIds)
	if err != nil {
		return nil, err
	}
	dietLogs, err := models.ListDietLogsForAnimals(ctx, animalIds)
	if err != nil {
		return nil, err
	}
	sales, err := models.ListSalesForAnimals(ctx, animalIds)
	if err != nil {
		return nil, err
	}
	deaths, err := models.ListDeathsForAnimals(ctx, animalIds)
	if err != nil {
		return nil, err
	}

	snapshots := make([]*AnimalEvents, 0, len(animals))
	for _, animal := range animals {
		snapshots = append(snapshots, &AnimalEvents{
			Animal:          animal,
			Weighings:       weighings[animal.ID],
			LocationChanges: locationChanges[animal.ID],
			DietLogs:        dietLogs[animal.ID],
			Sale:            sales[animal.ID],
			Death:           deaths[animal.ID],
		})
	}
	return snapshots, nil
}

// FetchRefData loads the farm's location and sublocation names once for a
// whole computation batch.
func FetchRefData(ctx context.Context, farmId int) (*RefData, error) {
	locations, err := models.ListLocations(ctx, farmId)
	if err != nil {
		return nil, err
	}
	ref := &RefData{
		LocationNames:    make(map[int]string, len(locations)),
		SublocationNames: make(map[int]string),
	}
	for _, location := range locations {
		ref.LocationNames[location.ID] = location.Name
		for _, sublocation := range location.Sublocations {
			ref.SublocationNames[sublocation.ID] = sublocation.Name
		}
	}
	return ref, nil
}
