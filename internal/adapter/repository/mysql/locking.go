package mysql

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// lockForUpdate adds SELECT ... FOR UPDATE on engines that support it.
// The sqlite test database serializes writers globally, so skipping the
// clause there preserves the same guarantee.
func lockForUpdate(db *gorm.DB) *gorm.DB {
	switch db.Dialector.Name() {
	case "sqlite", "sqlite3":
		return db
	}
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}
