package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/fairprice-backend/internal/data/repos"
	"github.com/yungbote/fairprice-backend/internal/platform/logger"
)

type Repos struct {
	User   repos.UserRepo
	Report repos.ReportRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:   repos.NewUserRepo(db, log),
		Report: repos.NewReportRepo(db, log),
	}
}
