package utils

import (
	"fmt"
	"log"
	"time"

	"github.com/muhammedRiyasck/skillbyte-sub002/config"
	"github.com/muhammedRiyasck/skillbyte-sub002/database"
	"github.com/muhammedRiyasck/skillbyte-sub002/models"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

func logSweeper(message string) {
	log.Printf("[SWEEPER] %s", message)
}

// ExpireStaleIntents marks PENDING intents older than the expiry window as
// EXPIRED so they are excluded from activation and surfaced to the user as
// "payment not completed". Returns the number of swept rows.
func ExpireStaleIntents(db *gorm.DB, olderThan time.Duration) int64 {
	cutoff := time.Now().Add(-olderThan)
	now := time.Now()

	res := db.Model(&models.PaymentIntent{}).
		Where("status = ? AND created_at < ?", models.IntentPending, cutoff).
		Updates(map[string]interface{}{"status": models.IntentExpired, "completed_at": &now})
	if res.Error != nil {
		log.Printf("Error expiring stale intents: %v", res.Error)
		return 0
	}
	return res.RowsAffected
}

// PruneWebhookLedger hard-deletes dedup rows past the retention window. The
// window outlasts provider retry schedules, so a pruned event id can no
// longer arrive as a retry.
func PruneWebhookLedger(db *gorm.DB, retain time.Duration) int64 {
	cutoff := time.Now().Add(-retain)

	res := db.Unscoped().
		Where("created_at < ?", cutoff).
		Delete(&models.WebhookEvent{})
	if res.Error != nil {
		log.Printf("Error pruning webhook ledger: %v", res.Error)
		return 0
	}
	return res.RowsAffected
}

// InitializeSweeper starts the hourly reconciliation pass
func InitializeSweeper() *cron.Cron {
	logSweeper("Initializing payment sweeper...")

	c := cron.New()

	c.AddFunc("@hourly", func() {
		db := database.Database.Db
		if db == nil {
			return
		}

		expiry := time.Duration(config.AppConfig.IntentExpiryHours) * time.Hour
		if swept := ExpireStaleIntents(db, expiry); swept > 0 {
			logSweeper(fmt.Sprintf("Expired %d stale pending intents", swept))
		}

		retain := time.Duration(config.AppConfig.WebhookRetainDays) * 24 * time.Hour
		if pruned := PruneWebhookLedger(db, retain); pruned > 0 {
			logSweeper(fmt.Sprintf("Pruned %d webhook ledger rows", pruned))
		}
	})

	c.Start()

	logSweeper("Payment sweeper started - runs hourly")
	return c
}
