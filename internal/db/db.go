package db

import (
	"fmt"

	"planora/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect opens the process-wide connection pool. The returned handle is
// passed explicitly to every component that needs storage access.
func Connect(host, port, user, password, dbname string) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname,
	)
	gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}
	return gormDB, nil
}

func Migrate(gormDB *gorm.DB) error {
	tables := []interface{}{
		&model.User{},
		&model.Project{},
		&model.ProjectMember{},
		&model.TaskStatus{},
		&model.Task{},
		&model.Comment{},
		&model.Attachment{},
	}

	migrator := gormDB.Migrator()

	for _, table := range tables {
		if !migrator.HasTable(table) {
			if err := gormDB.AutoMigrate(table); err != nil {
				return err
			}
		}
	}

	return nil
}

func Close(gormDB *gorm.DB) error {
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
