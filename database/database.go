package database

import (
	"github.com/craftfolio/project-service/errs"
	"github.com/craftfolio/project-service/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Database struct {
	projectRepo       *ProjectRepo
	projectMemberRepo *ProjectMemberRepo
	projectLinkRepo   *ProjectLinkRepo
	projectTagRepo    *ProjectTagRepo
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	tagRepo := NewProjectTagRepo(db)
	return Database{
		projectRepo:       NewProjectRepo(db, tagRepo),
		projectMemberRepo: NewProjectMemberRepo(db),
		projectLinkRepo:   NewProjectLinkRepo(db),
		projectTagRepo:    tagRepo,
	}
}

// Accessor methods for each repository

func (d Database) ProjectRepo() *ProjectRepo {
	return d.projectRepo
}

func (d Database) ProjectMemberRepo() *ProjectMemberRepo {
	return d.projectMemberRepo
}

func (d Database) ProjectLinkRepo() *ProjectLinkRepo {
	return d.projectLinkRepo
}

func (d Database) ProjectTagRepo() *ProjectTagRepo {
	return d.projectTagRepo
}

// Open connects to Postgres with the given DSN.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, errs.NewDatabaseError("connect to", "database", err)
	}
	return db, nil
}

// AutoMigrate creates or updates the schema for all tracked models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Project{},
		&models.ProjectMember{},
		&models.ProjectLink{},
		&models.ProjectTag{},
	)
}
