package database

import (
	"fmt"

	"gorm.io/gorm"
)

// TableStatus reports whether the table of one persistent model exists.
type TableStatus struct {
	Table  string
	Exists bool
}

// SchemaStatus lists every table in PersistentModels in creation order.
func SchemaStatus(db *gorm.DB) ([]TableStatus, error) {
	models := PersistentModels()
	out := make([]TableStatus, 0, len(models))
	for _, m := range models {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(m); err != nil {
			return nil, fmt.Errorf("parse model %T: %w", m, err)
		}
		out = append(out, TableStatus{
			Table:  stmt.Schema.Table,
			Exists: db.Migrator().HasTable(m),
		})
	}
	return out, nil
}

// Reset drops every persistent table, dependents first, and migrates again.
func Reset(db *gorm.DB) error {
	models := PersistentModels()
	for i := len(models) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(models[i]); err != nil {
			return fmt.Errorf("failed to drop %T: %w", models[i], err)
		}
	}
	return Migrate(db)
}
