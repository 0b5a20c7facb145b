package core

import (
	"errors"

	"gorm.io/gorm"
)

// DefaultAdmissionRadius is the geofence radius in metres applied when a shop
// has not configured its own.
const DefaultAdmissionRadius = 50.0

type Shop struct {
	ShopId          uint   `gorm:"primaryKey;autoIncrement"`
	Name            string `gorm:"size:128"`
	Latitude        float64
	Longitude       float64
	AdmissionRadius float64 `gorm:"default:50"`
	TagEnabled      bool    `gorm:"default:true"`
	CodeEnabled     bool    `gorm:"default:true"`
	TerminalEnabled bool    `gorm:"default:true"`
	GpsEnabled      bool    `gorm:"default:true"`
	OwnerPinHash    string  `gorm:"size:72"`
	DataVersion     int     `gorm:"default:1"`
}

func FindShopByID(db *gorm.DB, id uint) (*Shop, error) {
	var shop Shop
	result := db.First(&shop, id)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &shop, nil
}

// Radius returns the configured admission radius, falling back to the
// default when unset.
func (s *Shop) Radius() float64 {
	if s.AdmissionRadius <= 0 {
		return DefaultAdmissionRadius
	}
	return s.AdmissionRadius
}

// ChannelEnabled reports whether the shop accepts clock actions from the
// given channel.
func (s *Shop) ChannelEnabled(channel string) bool {
	switch channel {
	case "tag":
		return s.TagEnabled
	case "code":
		return s.CodeEnabled
	case "terminal":
		return s.TerminalEnabled
	case "gps":
		return s.GpsEnabled
	}
	return false
}

func UpdateOwnerPinHash(db *gorm.DB, shopID uint, hash string) error {
	return db.Model(&Shop{}).
		Where("shop_id = ?", shopID).
		Update("owner_pin_hash", hash).Error
}
