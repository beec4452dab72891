package scopes

import (
	"campusgate/src/types"
	"time"

	"gorm.io/gorm"
)

func WithStatuses(statuses ...types.GatePassStatus) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if len(statuses) == 0 {
			return db
		}
		if len(statuses) == 1 {
			return db.Where("status = ?", statuses[0])
		}
		return db.Where("status IN (?)", statuses)
	}
}

func WithRequester(id *uint, rt types.RequesterType) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if id != nil {
			db = db.Where("requester_id = ?", *id)
		}
		if rt != "" {
			db = db.Where("requester_type = ?", rt)
		}
		return db
	}
}

func WithStudent(id *uint) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if id == nil {
			return db
		}
		return db.Where("student_id = ?", *id)
	}
}

func WithDepartment(id *uint) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if id == nil {
			return db
		}
		return db.Where("department_id = ?", *id)
	}
}

// StartBetween bounds start_date; either end may be nil.
func StartBetween(from, to *time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if from != nil {
			db = db.Where("start_date >= ?", *from)
		}
		if to != nil {
			db = db.Where("start_date <= ?", *to)
		}
		return db
	}
}

// ValidityOverlaps keeps records whose [start_date, end_date] intersects
// [from, to].
func ValidityOverlaps(from, to *time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if to != nil {
			db = db.Where("start_date <= ?", *to)
		}
		if from != nil {
			db = db.Where("end_date >= ?", *from)
		}
		return db
	}
}

func UpdatedSince(t *time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if t == nil {
			return db
		}
		return db.Where("updated_at >= ?", *t)
	}
}

func MostRecent(db *gorm.DB) *gorm.DB {
	return db.Order("updated_at desc")
}

func ByDepartmentThenOldest(db *gorm.DB) *gorm.DB {
	return db.Order("department_id asc").Order("updated_at asc")
}
