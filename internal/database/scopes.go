package database

import (
	"gorm.io/gorm"
)

// Paginate applies offset and limit to a GORM query. A limit of zero or less
// returns every row.
func Paginate(offset, limit int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if limit <= 0 {
			return db
		}
		return db.Offset(offset).Limit(limit)
	}
}
