package database

import (
	"fmt"
	"log"
	"os"

	"github.com/RahulEdward/pinegeniev2-sub011/internal/domain/billing"
	"github.com/RahulEdward/pinegeniev2-sub011/internal/domain/chat"
	"github.com/RahulEdward/pinegeniev2-sub011/internal/domain/plans"
	"github.com/RahulEdward/pinegeniev2-sub011/internal/domain/strategies"
	"github.com/RahulEdward/pinegeniev2-sub011/internal/domain/tokens"
	"github.com/RahulEdward/pinegeniev2-sub011/internal/domain/users"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func InitDB() {
	dsn := os.Getenv("DB_URL")
	if dsn == "" {
		log.Fatal("❌ DB_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("❌ Failed to connect to database:", err)
	}

	DB = db

	// Required for UUID generation
	if err := DB.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		log.Fatal("❌ Failed to enable pgcrypto extension:", err)
	}

	if err := DB.AutoMigrate(
		// core
		&users.User{},
		&users.VerificationToken{},
		&plans.Plan{},
		&billing.Payment{},

		// token ledger
		&tokens.TokenAllocation{},
		&tokens.TokenUsageLog{},

		// builder
		&strategies.Strategy{},
		&strategies.StrategyVersion{},

		// assistant
		&chat.Conversation{},
		&chat.Message{},
	); err != nil {
		log.Fatal("❌ AutoMigrate error:", err)
	}

	fmt.Println("✅ Connected and migrated successfully")
}
