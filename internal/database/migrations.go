// Package database provides database utilities including migrations
package database

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed migrations/postgres/*.sql migrations/mysql/*.sql
var migrationsFS embed.FS

// MigrationRecord tracks which migrations have been applied
type MigrationRecord struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"uniqueIndex;size:255"`
	AppliedAt time.Time `gorm:"autoCreateTime"`
}

// TableName returns the table name for migrations
func (MigrationRecord) TableName() string {
	return "_catalog_admin_migrations"
}

// Migrations returns the sorted migration file names for a dialect
func Migrations(dialect string) ([]string, error) {
	dir := path.Join("migrations", dialect)
	entries, err := fs.ReadDir(migrationsFS, dir)
	if err != nil {
		return nil, fmt.Errorf("no migrations for dialect %q: %w", dialect, err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// RunMigrations executes all pending SQL migrations and returns how many were applied
func RunMigrations(db *gorm.DB, log *zap.Logger) (int, error) {
	if log == nil {
		log = zap.NewNop()
	}
	dialect := db.Dialector.Name()

	if err := db.AutoMigrate(&MigrationRecord{}); err != nil {
		return 0, fmt.Errorf("failed to create migrations table: %w", err)
	}

	files, err := Migrations(dialect)
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, file := range files {
		var count int64
		if err := db.Model(&MigrationRecord{}).Where("name = ?", file).Count(&count).Error; err != nil {
			return applied, fmt.Errorf("failed to check migration %s: %w", file, err)
		}
		if count > 0 {
			log.Debug("migration already applied", zap.String("migration", file))
			continue
		}

		content, err := fs.ReadFile(migrationsFS, path.Join("migrations", dialect, file))
		if err != nil {
			return applied, fmt.Errorf("failed to read migration %s: %w", file, err)
		}

		log.Info("applying migration", zap.String("migration", file), zap.String("dialect", dialect))
		if err := db.Exec(string(content)).Error; err != nil {
			return applied, fmt.Errorf("failed to apply migration %s: %w", file, err)
		}

		if err := db.Create(&MigrationRecord{Name: file}).Error; err != nil {
			return applied, fmt.Errorf("failed to record migration %s: %w", file, err)
		}
		applied++
	}

	return applied, nil
}
