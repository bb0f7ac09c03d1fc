package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/fairprice-backend/internal/data/repos/report"
	"github.com/yungbote/fairprice-backend/internal/data/repos/user"
	"github.com/yungbote/fairprice-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo
type ReportRepo = report.ReportRepo

func NewUserRepo(db *gorm.DB, log *logger.Logger) UserRepo {
	return user.NewUserRepo(db, log)
}

func NewReportRepo(db *gorm.DB, log *logger.Logger) ReportRepo {
	return report.NewReportRepo(db, log)
}
