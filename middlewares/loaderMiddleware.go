package middlewares

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/graph-gophers/dataloader/v7"
	"github.com/herdlink/livestock_backend/config"
	"github.com/herdlink/livestock_backend/models"
	"gorm.io/gorm"
)

type ctxKey string

const (
	loadersKey = ctxKey("dataloaders")
)

// Loaders wrap the per-request data loaders injected via middleware. The
// per-animal event loaders let the KPI endpoints batch their reads when one
// request fans out over many animals.
type Loaders struct {
	weighingsLoader       *dataloader.Loader[int, []models.Weighing]
	locationChangesLoader *dataloader.Loader[int, []models.LocationChange]
	dietLogsLoader        *dataloader.Loader[int, []models.DietLog]
	saleLoader            *dataloader.Loader[int, *models.Sale]
	deathLoader           *dataloader.Loader[int, *models.Death]
	locationLoader        *dataloader.Loader[int, *models.Location]
}

func NewLoaders(conn *gorm.DB) *Loaders {
	eventReader := &eventReader{db: conn}
	terminalReader := &terminalReader{db: conn}
	locationReader := &locationReader{db: conn}
	return &Loaders{
		weighingsLoader:       dataloader.NewBatchedLoader(eventReader.getWeighings, dataloader.WithWait[int, []models.Weighing](time.Millisecond)),
		locationChangesLoader: dataloader.NewBatchedLoader(eventReader.getLocationChanges, dataloader.WithWait[int, []models.LocationChange](time.Millisecond)),
		dietLogsLoader:        dataloader.NewBatchedLoader(eventReader.getDietLogs, dataloader.WithWait[int, []models.DietLog](time.Millisecond)),
		saleLoader:            dataloader.NewBatchedLoader(terminalReader.getSales, dataloader.WithWait[int, *models.Sale](time.Millisecond)),
		deathLoader:           dataloader.NewBatchedLoader(terminalReader.getDeaths, dataloader.WithWait[int, *models.Death](time.Millisecond)),
		locationLoader:        dataloader.NewBatchedLoader(locationReader.getLocations, dataloader.WithWait[int, *models.Location](time.Millisecond)),
	}
}

func LoaderMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		loader := NewLoaders(config.GetDB())
		ctx := context.WithValue(c.Request.Context(), loadersKey, loader)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func For(ctx context.Context) *Loaders {
	return ctx.Value(loadersKey).(*Loaders)
}

func handleError[T any](itemsLength int, err error) []*dataloader.Result[T] {
	result := make([]*dataloader.Result[T], itemsLength)
	for i := 0; i < itemsLength; i++ {
		result[i] = &dataloader.Result[T]{Error: err}
	}
	return result
}
