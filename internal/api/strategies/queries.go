package strategies

import (
	"github.com/RahulEdward/pinegeniev2-sub011/internal/domain/strategies"

	"gorm.io/gorm"
)

func userStrategiesQuery(db *gorm.DB, userID uint) *gorm.DB {
	return db.Model(&strategies.Strategy{}).
		Where("owner_type = ? AND user_id = ?", strategies.OwnerUser, userID)
}

func templateStrategiesQuery(db *gorm.DB) *gorm.DB {
	return db.Model(&strategies.Strategy{}).
		Where("owner_type = ?", strategies.OwnerSystem)
}

func findUserStrategy(db *gorm.DB, userID uint, id string) (*strategies.Strategy, error) {
	var s strategies.Strategy
	err := db.Where("id = ? AND owner_type = ? AND user_id = ?",
		id, strategies.OwnerUser, userID).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}
