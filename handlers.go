package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/herdlink/livestock_backend/config"
	"github.com/herdlink/livestock_backend/middlewares"
	"github.com/herdlink/livestock_backend/models"
	"github.com/herdlink/livestock_backend/models/reports"
	"github.com/herdlink/livestock_backend/utils"
	"github.com/herdlink/livestock_backend/workflow"
)

func pathInt(c *gin.Context, name string) (int, bool) {
	value, err := strconv.Atoi(c.Param(name))
	if err != nil || value <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return value, true
}

// dateRangeQuery parses optional start_date/end_date query params.
func dateRangeQuery(c *gin.Context) (*time.Time, *time.Time, bool) {
	var startDate, endDate *time.Time
	if raw := c.Query("start_date"); raw != "" {
		parsed, err := utils.ParseDate(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date"})
			return nil, nil, false
		}
		startDate = &parsed
	}
	if raw := c.Query("end_date"); raw != "" {
		parsed, err := utils.ParseDate(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date"})
			return nil, nil, false
		}
		endDate = &parsed
	}
	return startDate, endDate, true
}

// farmEventListHandler builds a farm-wide listing endpoint over one of the
// date-filtered event queries.
func farmEventListHandler[E any](list func(context.Context, int, *time.Time, *time.Time) ([]E, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		farmId, ok := pathInt(c, "farmId")
		if !ok {
			return
		}
		startDate, endDate, ok := dateRangeQuery(c)
		if !ok {
			return
		}
		events, err := list(c.Request.Context(), farmId, startDate, endDate)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, events)
	}
}

var (
	listFarmWeighingsHandler         = farmEventListHandler(models.ListFarmWeighings)
	listFarmLocationChangesHandler   = farmEventListHandler(models.ListFarmLocationChanges)
	listFarmDietLogsHandler          = farmEventListHandler(models.ListFarmDietLogs)
	listFarmSanitaryProtocolsHandler = farmEventListHandler(models.ListFarmSanitaryProtocols)
	listFarmDeathsHandler            = farmEventListHandler(models.ListDeaths)
)

func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, utils.ErrorRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, utils.ErrorConflictingTerminalEvents):
		// store contract violation, not a client mistake
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

// ---- farms ----

func listFarmsHandler(c *gin.Context) {
	farms, err := models.ListFarms(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, farms)
}

func createFarmHandler(c *gin.Context) {
	var input models.NewFarm
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	farm, err := models.CreateFarm(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, farm)
}

func getFarmHandler(c *gin.Context) {
	farmId, ok := pathInt(c, "farmId")
	if !ok {
		return
	}
	farm, err := models.GetFarmById(c.Request.Context(), farmId)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, farm)
}

func updateFarmHandler(c *gin.Context) {
	farmId, ok := pathInt(c, "farmId")
	if !ok {
		return
	}
	var input models.NewFarm
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	farm, err := models.UpdateFarm(c.Request.Context(), farmId, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, farm)
}

func deleteFarmHandler(c *gin.Context) {
	farmId, ok := pathInt(c, "farmId")
	if !ok {
		return
	}
	if err := models.DeleteFarm(c.Request.Context(), farmId); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ---- locations ----

func createLocationHandler(c *gin.Context) {
	farmId, ok := pathInt(c, "farmId")
	if !ok {
		return
	}
	var input models.NewLocation
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	location, err := models.CreateLocation(c.Request.Context(), farmId, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, location)
}

func createSublocationHandler(c *gin.Context) {
	farmId, ok := pathInt(c, "farmId")
	if !ok {
		return
	}
	locationId, ok := pathInt(c, "locationId")
	if !ok {
		return
	}
	var input models.NewSublocation
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sublocation, err := models.CreateSublocation(c.Request.Context(), farmId, locationId, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sublocation)
}

// listLocationsHandler embeds the stocking KPIs into the location list.
func listLocationsHandler(c *gin.Context) {
	farmId, ok := pathInt(c, "farmId")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	locations, err := models.ListLocations(ctx, farmId)
	if err != nil {
		respondError(c, err)
		return
	}
	animals, err := models.ListActiveAnimals(ctx, farmId)
	if err != nil {
		respondError(c, err)
		return
	}
	snapshots, err := workflow.FetchSnapshots(ctx, animals)
	if err != nil {
		respondError(c, err)
		return
	}
	ref, err := workflow.FetchRefData(ctx, farmId)
	if err != nil {
		respondError(c, err)
		return
	}
	summaries, err := workflow.ComputeLocationSummary(locations, snapshots, ref, time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summaries)
}

func getLocationSummaryHandler(c *gin.Context) {
	farmId, ok := pathInt(c, "farmId")
	if !ok {
		return
	}
	locationId, ok := pathInt(c, "locationId")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	location, err := models.GetLocation(ctx, farmId, locationId)
	if err != nil {
		respondError(c, err)
		return
	}
	animals, err := models.ListActiveAnimals(ctx, farmId)
	if err != nil {
		respondError(c, err)
		return
	}
	snapshots, err := workflow.FetchSnapshots(ctx, animals)
	if err != nil {
		respondError(c, err)
		return
	}
	ref, err := workflow.FetchRefData(ctx, farmId)
	if err != nil {
		respondError(c, err)
		return
	}
	summaries, err := workflow.ComputeLocationSummary([]*models.Location{location}, snapshots, ref, time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summaries[0])
}

// ---- animal lifecycle writes ----

func createAnimalHandler(c *gin.Context) {
	farmId, ok := pathInt(c, "farmId")
	if !ok {
		return
	}
	var input models.NewAnimal
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	animal, err := models.CreateAnimal(c.Request.Context(), farmId, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, animal)
}

func createWeighingHandler(c *gin.Context) {
	farmId, ok := pathInt(c, "farmId")
	if !ok {
		return
	}
	animalId, ok := pathInt(c, "animalId")
	if !ok {
		return
	}
	var input models.NewWeighing
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	weighing, err := models.CreateWeighing(c.Request.Context(), farmId, animalId, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, weighing)
}

func createLocationChangeHandler(c *gin.Context) {
	farmId, ok := pathInt(c, "farmId")
	if !ok {
		return
	}
	animalId, ok := pathInt(c, "animalId")
	if !ok {
		return
	}
	var input models.NewLocationChange
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	change, err := models.CreateLocationChange(c.Request.Context(), farmId, animalId, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, change)
}

func createDietLogHandler(c *gin.Context) {
	farmId, ok := pathInt(c, "farmId")
	if !ok {
		return
	}
	animalId, ok := pathInt(c, "animalId")
	if !ok {
		return
	}
	var input models.NewDietLog
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	log, err := models.CreateDietLog(c.Request.Context(), farmId, animalId, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, log)
}

func createSanitaryProtocolHandler(c *gin.Context) {
	farmId, ok := pathInt(c, "farmId")
	if !ok {
		return
	}
	animalId, ok := pathInt(c, "animalId")
	if !ok {
		return
	}
	var input models.NewSanitaryProtocol
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	protocol, err := models.CreateSanitaryProtocol(c.Request.Context(), farmId, animalId, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, protocol)
}

func createSaleHandler(c *gin.Context) {
	farmId, ok := pathInt(c, "farmId")
	if !ok {
		return
	}
	animalId, ok := pathInt(c, "animalId")
	if !ok {
		return
	}
	var input models.NewSale
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sale, err := models.CreateSale(c.Request.Context(), farmId, animalId, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sale)
}

func createDeathHandler(c *gin.Context) {
	farmId, ok := pathInt(c, "farmId")
	if !ok {
		return
	}
	animalId, ok := pathInt(c, "animalId")
	if !ok {
		return
	}
	var input models.NewDeath
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	death, err := models.CreateDeath(c.Request.Context(), farmId, animalId, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, death)
}

// ---- reads ----

func listPurchasesHandler(c *gin.Context) {
	farmId, ok := pathInt(c, "farmId")
	if !ok {
		return
	}
	startDate, endDate, ok := dateRangeQuery(c)
	if !ok {
		return
	}
	animals, err := models.ListAnimals(c.Request.Context(), farmId, startDate, endDate)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, animals)
}

func listSalesHandler(c *gin.Context) {
	farmId, ok := pathInt(c, "farmId")
	if !ok {
		return
	}
	startDate, endDate, ok := dateRangeQuery(c)
	if !ok {
		return
	}
	rows, err := reports.GetSalesReport(c.Request.Context(), farmId, startDate, endDate)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// getAnimalHandler is the master record: purchase details, terminal
// details, computed KPIs and the full event histories in one payload.
func getAnimalHandler(c *gin.Context) {
	farmId, ok := pathInt(c, "farmId")
	if !ok {
		return
	}
	animalId, ok := pathInt(c, "animalId")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	animal, err := models.GetAnimal(ctx, farmId, animalId)
	if err != nil {
		respondError(c, err)
		return
	}
	snapshot, err := middlewares.LoadAnimalEvents(ctx, animal)
	if err != nil {
		respondError(c, err)
		return
	}
	ref, err := workflow.FetchRefData(ctx, farmId)
	if err != nil {
		respondError(c, err)
		return
	}
	kpis, err := workflow.ComputeAnimalKpis(snapshot, ref, time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	protocols, err := models.ListSanitaryProtocols(ctx, animalId)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"purchase_details":   animal,
		"sale_details":       snapshot.Sale,
		"death_details":      snapshot.Death,
		"calculated_kpis":    kpis,
		"weight_history":     workflow.ComputeWeightHistory(animal, snapshot.Weighings),
		"location_log":       snapshot.LocationChanges,
		"diet_log":           snapshot.DietLogs,
		"sanitary_protocols": protocols,
	})
}

func listWeighingsHandler(c *gin.Context) {
	farmId, ok := pathInt(c, "farmId")
	if !ok {
		return
	}
	animalId, ok := pathInt(c, "animalId")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	animal, err := models.GetAnimal(ctx, farmId, animalId)
	if err != nil {
		respondError(c, err)
		return
	}
	weighings, err := models.ListWeighings(ctx, animalId)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, workflow.ComputeWeightHistory(animal, weighings))
}

func listDietLogsHandler(c *gin.Context) {
	farmId, ok := pathInt(c, "farmId")
	if !ok {
		return
	}
	animalId, ok := pathInt(c, "animalId")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if _, err := models.GetAnimal(ctx, farmId, animalId); err != nil {
		respondError(c, err)
		return
	}
	logs, err := models.ListDietLogs(ctx, animalId)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

type locationLogEntry struct {
	models.LocationChange
	LocationName    string  `json:"location_name"`
	SublocationName *string `json:"sublocation_name"`
}

func sublocationNameFrom(location *models.Location, sublocationId *int) *string {
	if location == nil || sublocationId == nil {
		return nil
	}
	for _, sub := range location.Sublocations {
		if sub.ID == *sublocationId {
			return utils.StringPtr(sub.Name)
		}
	}
	return nil
}

func listLocationChangesHandler(c *gin.Context) {
	farmId, ok := pathInt(c, "farmId")
	if !ok {
		return
	}
	animalId, ok := pathInt(c, "animalId")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if _, err := models.GetAnimal(ctx, farmId, animalId); err != nil {
		respondError(c, err)
		return
	}
	changes, err := models.ListLocationChanges(ctx, animalId)
	if err != nil {
		respondError(c, err)
		return
	}
	entries := make([]locationLogEntry, 0, len(changes))
	for _, change := range changes {
		location, err := middlewares.GetLocation(ctx, change.LocationId)
		if err != nil {
			respondError(c, err)
			return
		}
		entry := locationLogEntry{LocationChange: change}
		if location != nil {
			entry.LocationName = location.Name
			entry.SublocationName = sublocationNameFrom(location, change.SublocationId)
		}
		entries = append(entries, entry)
	}
	c.JSON(http.StatusOK, entries)
}

func listSanitaryProtocolsHandler(c *gin.Context) {
	farmId, ok := pathInt(c, "farmId")
	if !ok {
		return
	}
	animalId, ok := pathInt(c, "animalId")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if _, err := models.GetAnimal(ctx, farmId, animalId); err != nil {
		respondError(c, err)
		return
	}
	protocols, err := models.ListSanitaryProtocols(ctx, animalId)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, protocols)
}

// searchAnimalsHandler resolves active animals by ear tag with their KPIs.
func searchAnimalsHandler(c *gin.Context) {
	farmId, ok := pathInt(c, "farmId")
	if !ok {
		return
	}
	earTag := c.Query("ear_tag")
	if earTag == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ear_tag is required"})
		return
	}
	ctx := c.Request.Context()
	animals, err := models.SearchActiveAnimalsByEarTag(ctx, farmId, earTag)
	if err != nil {
		respondError(c, err)
		return
	}
	ref, err := workflow.FetchRefData(ctx, farmId)
	if err != nil {
		respondError(c, err)
		return
	}
	records := make([]*workflow.AnimalKpis, 0, len(animals))
	for _, animal := range animals {
		snapshot, err := middlewares.LoadAnimalEvents(ctx, animal)
		if err != nil {
			respondError(c, err)
			return
		}
		kpis, err := workflow.ComputeAnimalKpis(snapshot, ref, time.Now())
		if err != nil {
			respondError(c, err)
			return
		}
		records = append(records, kpis)
	}
	c.JSON(http.StatusOK, records)
}

func statusFilterQuery(c *gin.Context) (models.AnimalStatus, bool) {
	switch c.DefaultQuery("status", "active") {
	case "active":
		return models.AnimalStatusActive, true
	case "sold":
		return models.AnimalStatusSold, true
	case "dead":
		return models.AnimalStatusDead, true
	case "all":
		return workflow.StatusFilterAll, true
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be active, sold, dead or all"})
		return "", false
	}
}

func lotSummaryHandler(c *gin.Context) {
	farmId, ok := pathInt(c, "farmId")
	if !ok {
		return
	}
	filter, ok := statusFilterQuery(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	animals, err := models.ListAnimals(ctx, farmId, nil, nil)
	if err != nil {
		respondError(c, err)
		return
	}
	snapshots, err := workflow.FetchSnapshots(ctx, animals)
	if err != nil {
		respondError(c, err)
		return
	}
	ref, err := workflow.FetchRefData(ctx, farmId)
	if err != nil {
		respondError(c, err)
		return
	}
	summaries, err := workflow.ComputeLotSummaryByStatus(snapshots, ref, time.Now(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summaries)
}

// lotDetailHandler is the single-lot summary: same aggregation as the lot
// listing, scoped to one lot.
func lotDetailHandler(c *gin.Context) {
	farmId, ok := pathInt(c, "farmId")
	if !ok {
		return
	}
	lot := c.Param("lot")
	filter, ok := statusFilterQuery(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	animals, err := models.ListAnimalsByLot(ctx, farmId, lot)
	if err != nil {
		respondError(c, err)
		return
	}
	if len(animals) == 0 {
		respondError(c, utils.ErrorRecordNotFound)
		return
	}
	snapshots, err := workflow.FetchSnapshots(ctx, animals)
	if err != nil {
		respondError(c, err)
		return
	}
	ref, err := workflow.FetchRefData(ctx, farmId)
	if err != nil {
		respondError(c, err)
		return
	}
	summaries, err := workflow.ComputeLotSummaryByStatus(snapshots, ref, time.Now(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	if len(summaries) == 0 {
		// every animal in the lot fell outside the status filter
		c.JSON(http.StatusOK, gin.H{"lot": lot, "animal_count": 0})
		return
	}
	c.JSON(http.StatusOK, summaries[0])
}

func activeStockSummaryHandler(c *gin.Context) {
	farmId, ok := pathInt(c, "farmId")
	if !ok {
		return
	}
	summary, err := reports.GetActiveStockReport(c.Request.Context(), farmId)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func exportActiveStockHandler(c *gin.Context) {
	farmId, ok := pathInt(c, "farmId")
	if !ok {
		return
	}
	f, err := reports.ExportActiveStockExcel(c.Request.Context(), farmId)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=active-stock.xlsx")
	if err := f.Write(c.Writer); err != nil {
		config.LogError(config.GetLogger(), "handlers.go", "exportActiveStockHandler", "f.Write", nil, err)
	}
}

func listHerdSummariesHandler(c *gin.Context) {
	farmId, ok := pathInt(c, "farmId")
	if !ok {
		return
	}
	startDate, endDate, ok := dateRangeQuery(c)
	if !ok {
		return
	}
	start := utils.TruncateToDay(time.Now().AddDate(0, -1, 0))
	end := utils.TruncateToDay(time.Now())
	if startDate != nil {
		start = *startDate
	}
	if endDate != nil {
		end = *endDate
	}
	summaries, err := models.ListHerdDailySummaries(c.Request.Context(), farmId, start, end)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summaries)
}
