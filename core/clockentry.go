package core

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrOpenEntryExists is returned by InsertClockEntry when the unique guard on
// open entries rejects a second clock-in for the same employee and shop.
var ErrOpenEntryExists = errors.New("open clock entry already exists")

// ErrEntryAlreadyClosed is returned by CloseClockEntry when the entry was
// closed by a concurrent writer between read and write.
var ErrEntryAlreadyClosed = errors.New("clock entry already closed")

// ClockEntry is one attendance record. An entry with ClockOutTime unset is
// "open"; the OpenGuard generated column makes MySQL enforce at most one open
// entry per (employee, shop) even when two requests race the check.
type ClockEntry struct {
	Id              string `gorm:"primaryKey;size:36"`
	EmployeeId      uint   `gorm:"index:idx_open_entry,unique"`
	ShopId          uint   `gorm:"index:idx_open_entry,unique"`
	ClockInTime     time.Time
	ClockInChannel  string `gorm:"size:16"`
	ClockInLat      *float64
	ClockInLon      *float64
	ClockInPlace    *string `gorm:"size:256"`
	ClockOutTime    *time.Time
	ClockOutChannel *string `gorm:"size:16"`
	ClockOutLat     *float64
	ClockOutLon     *float64
	HoursWorked     *float64 `gorm:"type:decimal(7,2)"`
	// OpenGuard is 'open' while the entry is open and NULL after close, so
	// idx_open_entry only bites for open rows (MySQL ignores NULLs in unique
	// indexes).
	OpenGuard *string `gorm:"->;type:varchar(36) GENERATED ALWAYS AS (IF(clock_out_time IS NULL, 'open', NULL)) STORED;index:idx_open_entry,unique"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FindOpenEntry returns the employee's current open entry for the shop, or
// nil when they are off duty.
func FindOpenEntry(db *gorm.DB, employeeID, shopID uint) (*ClockEntry, error) {
	var entry ClockEntry
	result := db.Where("employee_id = ? AND shop_id = ? AND clock_out_time IS NULL", employeeID, shopID).
		First(&entry)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &entry, nil
}

// InsertClockEntry creates a new open entry. A duplicate-key error from the
// open-entry guard index is mapped to ErrOpenEntryExists so callers can
// surface "already clocked in" instead of a storage error.
func InsertClockEntry(db *gorm.DB, entry *ClockEntry) error {
	if entry.Id == "" {
		entry.Id = uuid.NewString()
	}
	if err := db.Create(entry).Error; err != nil {
		if isDuplicateKey(err) {
			return ErrOpenEntryExists
		}
		return err
	}
	return nil
}

// CloseFields carries the clock-out half of an entry.
type CloseFields struct {
	ClockOutTime    time.Time
	ClockOutChannel string
	ClockOutLat     *float64
	ClockOutLon     *float64
	HoursWorked     float64
}

// CloseClockEntry closes an open entry. The WHERE clause doubles as an
// optimistic guard: if another writer closed the entry first, zero rows match
// and ErrEntryAlreadyClosed is returned.
func CloseClockEntry(db *gorm.DB, entryID string, fields CloseFields) error {
	result := db.Model(&ClockEntry{}).
		Where("id = ? AND clock_out_time IS NULL", entryID).
		Updates(map[string]interface{}{
			"clock_out_time":    fields.ClockOutTime,
			"clock_out_channel": fields.ClockOutChannel,
			"clock_out_lat":     fields.ClockOutLat,
			"clock_out_lon":     fields.ClockOutLon,
			"hours_worked":      fields.HoursWorked,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEntryAlreadyClosed
	}
	return nil
}

// FindClosedEntries lists an employee's completed entries in a date range,
// newest first. Feeds the staff history view and payroll aggregation.
func FindClosedEntries(db *gorm.DB, employeeID, shopID uint, from, to time.Time) ([]ClockEntry, error) {
	var entries []ClockEntry
	err := db.Where("employee_id = ? AND shop_id = ? AND clock_out_time IS NOT NULL", employeeID, shopID).
		Where("clock_in_time >= ? AND clock_in_time < ?", from, to).
		Order("clock_in_time DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// mysql driver error 1062 when the translator is not installed
	return strings.Contains(err.Error(), "Duplicate entry")
}
