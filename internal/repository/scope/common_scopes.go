package scope

import "gorm.io/gorm"

// OrderBySeq orders ledger rows the way they were appended.
func OrderBySeq(db *gorm.DB) *gorm.DB {
	return db.Order("seq ASC")
}

// OrderByPosition keeps stored insights in generation order within a lane.
func OrderByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("persona ASC, position ASC")
}
