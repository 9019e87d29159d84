package boot

import (
	"log"
	"os"
	"sync"
	"vms/src/common"
	"vms/src/db"
	"vms/src/models"

	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.User{},
		&models.Location{},
		&models.Appointment{},
		&models.Token{},
		&models.HostPermission{},
		&models.CheckIn{},
		&models.AccessRecord{},
		&models.RestrictedAttempt{},
		&models.VisitorRestriction{},
		&models.Notification{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	// Partial unique index backing the one-open-window-per-token invariant.
	// Valid on postgres and sqlite.
	if err := db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_check_ins_open ON check_ins (token_id) WHERE checkout_time IS NULL`,
	).Error; err != nil {
		log.Printf("Error creating open check-in index: %s\n", err.Error())
	}

	return db
}

var notifierOnce sync.Once

func InitNotifier() {
	notifierOnce.Do(func() {
		common.Subscribe(common.NotificationWriter)
		if os.Getenv("PUSHER_APP_ID") != "" {
			common.Subscribe(common.PusherFanout)
		}
		if os.Getenv("KAFKA_BROKER") != "" {
			common.Subscribe(common.KafkaFanout)
		}
	})
}
