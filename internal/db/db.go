package db

import (
	"civicpulse/internal/models"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Init 连接 Postgres 并迁移引擎自己拥有的表
func Init(dsn string) *gorm.DB {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	log.Info().Msg("database connection established")

	if err := Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}
	log.Info().Msg("database migration completed")
	return db
}

// Migrate 自动迁移所有模型。
// 协作方拥有的表（issues、elections 等）在共享库中通常已存在，AutoMigrate 只补缺失的列和索引。
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Issue{},
		&models.IssueVote{},
		&models.IssueComment{},
		&models.IssueFeedback{},
		&models.IssueResolution{},
		&models.PolicyPost{},
		&models.PolicyVote{},
		&models.PolicyComment{},
		&models.CommentVote{},
		&models.Election{},
		&models.ElectionConstituency{},
		&models.Representative{},
		&models.CitizenAlias{},
		&models.RepScore{},
		&models.AuditLog{},
		&models.ConstituencyBrief{},
	)
}
