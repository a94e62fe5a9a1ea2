package middlewares

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/herdlink/livestock_backend/models"
	"github.com/herdlink/livestock_backend/workflow"
	"gorm.io/gorm"
)

type eventReader struct {
	db *gorm.DB
}

func groupByAnimal[E interface{ OwnerAnimalId() int }](events []E, ids []int) []*dataloader.Result[[]E] {
	grouped := make(map[int][]E, len(ids))
	for _, event := range events {
		grouped[event.OwnerAnimalId()] = append(grouped[event.OwnerAnimalId()], event)
	}
	loaderResults := make([]*dataloader.Result[[]E], 0, len(ids))
	for _, id := range ids {
		loaderResults = append(loaderResults, &dataloader.Result[[]E]{Data: grouped[id]})
	}
	return loaderResults
}

func (r *eventReader) getWeighings(ctx context.Context, ids []int) []*dataloader.Result[[]models.Weighing] {
	var results []models.Weighing
	err := r.db.WithContext(ctx).Where("animal_id IN ?", ids).Order("date, id").Find(&results).Error
	if err != nil {
		return handleError[[]models.Weighing](len(ids), err)
	}
	return groupByAnimal(results, ids)
}

func (r *eventReader) getLocationChanges(ctx context.Context, ids []int) []*dataloader.Result[[]models.LocationChange] {
	var results []models.LocationChange
	err := r.db.WithContext(ctx).Where("animal_id IN ?", ids).Order("date, id").Find(&results).Error
	if err != nil {
		return handleError[[]models.LocationChange](len(ids), err)
	}
	return groupByAnimal(results, ids)
}

func (r *eventReader) getDietLogs(ctx context.Context, ids []int) []*dataloader.Result[[]models.DietLog] {
	var results []models.DietLog
	err := r.db.WithContext(ctx).Where("animal_id IN ?", ids).Order("date, id").Find(&results).Error
	if err != nil {
		return handleError[[]models.DietLog](len(ids), err)
	}
	return groupByAnimal(results, ids)
}

type terminalReader struct {
	db *gorm.DB
}

func (r *terminalReader) getSales(ctx context.Context, ids []int) []*dataloader.Result[*models.Sale] {
	var results []models.Sale
	err := r.db.WithContext(ctx).Where("animal_id IN ?", ids).Find(&results).Error
	if err != nil {
		return handleError[*models.Sale](len(ids), err)
	}
	resultMap := make(map[int]*models.Sale, len(results))
	for i := range results {
		resultMap[results[i].AnimalId] = &results[i]
	}
	loaderResults := make([]*dataloader.Result[*models.Sale], 0, len(ids))
	for _, id := range ids {
		loaderResults = append(loaderResults, &dataloader.Result[*models.Sale]{Data: resultMap[id]})
	}
	return loaderResults
}

func (r *terminalReader) getDeaths(ctx context.Context, ids []int) []*dataloader.Result[*models.Death] {
	var results []models.Death
	err := r.db.WithContext(ctx).Where("animal_id IN ?", ids).Find(&results).Error
	if err != nil {
		return handleError[*models.Death](len(ids), err)
	}
	resultMap := make(map[int]*models.Death, len(results))
	for i := range results {
		resultMap[results[i].AnimalId] = &results[i]
	}
	loaderResults := make([]*dataloader.Result[*models.Death], 0, len(ids))
	for _, id := range ids {
		loaderResults = append(loaderResults, &dataloader.Result[*models.Death]{Data: resultMap[id]})
	}
	return loaderResults
}

type locationReader struct {
	db *gorm.DB
}

func (r *locationReader) getLocations(ctx context.Context, ids []int) []*dataloader.Result[*models.Location] {
	var results []models.Location
	err := r.db.WithContext(ctx).Preload("Sublocations").Where("id IN ?", ids).Find(&results).Error
	if err != nil {
		return handleError[*models.Location](len(ids), err)
	}
	resultMap := make(map[int]*models.Location, len(results))
	for i := range results {
		resultMap[results[i].ID] = &results[i]
	}
	loaderResults := make([]*dataloader.Result[*models.Location], 0, len(ids))
	for _, id := range ids {
		loaderResults = append(loaderResults, &dataloader.Result[*models.Location]{Data: resultMap[id]})
	}
	return loaderResults
}

func GetLocation(ctx context.Context, id int) (*models.Location, error) {
	return For(ctx).locationLoader.Load(ctx, id)()
}

// LoadAnimalEvents assembles one animal's snapshot through the request's
// loaders, so sibling lookups in the same request share the batched reads.
func LoadAnimalEvents(ctx context.Context, animal *models.Animal) (*workflow.AnimalEvents, error) {
	loaders := For(ctx)
	weighings, err := loaders.weighingsLoader.Load(ctx, animal.ID)()
	if err != nil {
		return nil, err
	}
	locationChanges, err := loaders.locationChangesLoader.Load(ctx, animal.ID)()
	if err != nil {
		return nil, err
	}
	dietLogs, err := loaders.dietLogsLoader.Load(ctx, animal.ID)()
	if err != nil {
		return nil, err
	}
	sale, err := loaders.saleLoader.Load(ctx, animal.ID)()
	if err != nil {
		return nil, err
	}
	death, err := loaders.deathLoader.Load(ctx, animal.ID)()
	if err != nil {
		return nil, err
	}
	return &workflow.AnimalEvents{
		Animal:          animal,
		Weighings:       weighings,
		LocationChanges: locationChanges,
		DietLogs:        dietLogs,
		Sale:            sale,
		Death:           death,
	}, nil
}
