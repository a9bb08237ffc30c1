package models

// ModelsToAutoMigrate lists every wikitree model for GORM's AutoMigrate.
// Startup (internal/db) builds the schema only from the SQL migrations in
// internal/migrate/migrations and does not call AutoMigrate; the
// package tests use this list to create their in-memory schema.
func ModelsToAutoMigrate() []interface{} {
	return []interface{}{
		&WikiSpace{},
		&WikiDocument{},
		&ContentBlob{},
		&WikiRevision{},
		&WikiRevisionItem{},
		&WikiChangeRequest{},
		&WikiReviewer{},
		&WikiMergeConflict{},
	}
}
