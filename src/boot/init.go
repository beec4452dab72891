package boot

import (
	"campusgate/src/common"
	"campusgate/src/config"
	"campusgate/src/db"
	"campusgate/src/lib"
	"campusgate/src/lib/mailer"
	"campusgate/src/models"
	"campusgate/src/types"
	"campusgate/src/utils"
	"context"
	"log"
	"os"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.Department{},
		&models.User{},
		&models.BoardingDetail{},
		&models.Permission{},
		&models.Role{},
		&models.GatePass{},
		&models.GatePassTrail{},
		&models.Notification{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}
	if err := SeedRoles(db); err != nil {
		log.Printf("Error seeding roles: %s\n", err.Error())
	}

	return db
}

// SeedRoles inserts the built-in roles and their permissions. Existing rows
// are left untouched.
func SeedRoles(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for role, perms := range models.DefaultRolePermissions {
			row := models.Role{Name: string(role)}
			for _, p := range perms {
				row.Permissions = append(row.Permissions, models.Permission{Name: p})
			}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func InitScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	sched.Start()
}

func StopScheduler() {
	lib.StopScheduler()
}

// InitBroker starts the consumers that drain queued email when
// MAIL_TRANSPORT=queue. Local runs consume from Kafka, every other
// environment from SQS.
func InitBroker(ctx context.Context, sender common.Sender) {
	if os.Getenv("MAIL_TRANSPORT") != "queue" {
		return
	}
	queue := os.Getenv("EMAIL_QUEUE")
	if queue == "" {
		queue = mailer.DefaultQueue
	}
	queue = utils.WithSuffix(queue)

	if config.API_ENV == string(types.Local) {
		if _, err := lib.KafkaCreateTopics(ctx, queue); err != nil {
			log.Printf("[kafka] Error creating topic %s: %s\n", queue, err.Error())
		}
		if err := common.KafkaEmailsToSendConsumer(ctx, queue, sender); err != nil {
			log.Printf("[kafka] Error starting email consumer: %s\n", err.Error())
		}
		return
	}

	client := lib.AWSGetSQSClient()
	if client == nil {
		log.Println("[SQS] client unavailable, queued email will not be delivered")
		return
	}
	if err := common.EmailsToSendConsumer(ctx, client, queue, sender); err != nil {
		log.Printf("[SQS] Error starting email consumer: %s\n", err.Error())
	}
}
