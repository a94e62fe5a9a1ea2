package models

import (
	"github.com/herdlink/livestock_backend/config"
)

func MigrateTable() error {
	db := config.GetDB()
	return db.AutoMigrate(
		&Farm{},
		&Location{},
		&Sublocation{},
		&Animal{},
		&Weighing{},
		&LocationChange{},
		&DietLog{},
		&SanitaryProtocol{},
		&Sale{},
		&Death{},
		&HerdDailySummary{},
	)
}
