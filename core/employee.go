package core

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// ConsentState is the tri-state location-tracking consent flag. The zero
// value means the employee has never answered the prompt.
type ConsentState string

const (
	ConsentUnset   ConsentState = "unset"
	ConsentGranted ConsentState = "granted"
	ConsentDenied  ConsentState = "denied"
)

type Employee struct {
	EmployeeId           uint   `gorm:"primaryKey;autoIncrement"`
	ShopId               uint   `gorm:"index:idx_shop_pin,unique"`
	Code                 string `gorm:"size:32"`
	PreferredName        string
	FirstName            string
	Surname              string
	Email                *string      `gorm:"index"`
	StaffPin             string       `gorm:"size:4;index:idx_shop_pin,unique"`
	Active               bool         `gorm:"default:true"`
	HourlyRate           float64      `gorm:"type:decimal(13,4);default:0"`
	LocationConsent      ConsentState `gorm:"size:16;default:unset"`
	ConsentAt            *time.Time
	ConsentPolicyVersion *string `gorm:"size:16"`
	StartDate            *time.Time
	EndDate              *time.Time
	DataVersion          int `gorm:"default:1"`
}

func FindEmployeeByID(db *gorm.DB, id uint) (*Employee, error) {
	var emp Employee
	result := db.First(&emp, id)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil // not found
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &emp, nil
}

// FindEmployeeByPin resolves a 4-digit staff PIN within a shop. Inactive
// employees never match.
func FindEmployeeByPin(db *gorm.DB, shopID uint, pin string) (*Employee, error) {
	var emp Employee
	result := db.Where("shop_id = ? AND staff_pin = ? AND active = ?", shopID, pin, true).First(&emp)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &emp, nil
}

// UpdateEmployeeConsent persists a consent decision with the timestamp and
// policy version it was given against. Consent is answered once per policy
// version, so the write is unconditional.
func UpdateEmployeeConsent(db *gorm.DB, employeeID uint, state ConsentState, policyVersion string, at time.Time) error {
	return db.Model(&Employee{}).
		Where("employee_id = ?", employeeID).
		Updates(map[string]interface{}{
			"location_consent":       state,
			"consent_at":             at,
			"consent_policy_version": policyVersion,
		}).Error
}
