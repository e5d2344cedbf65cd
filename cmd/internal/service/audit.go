package service

import (
	"notifyflow/cmd/internal/domain/entity"
	"notifyflow/cmd/internal/utils"

	"github.com/labstack/gommon/log"
)

// AuditLogger appends entries to the system log table. Failures are logged
// and swallowed: an audit row never fails the request that produced it.
type AuditLogger struct {
	LogRepo LogRepository
}

func NewAuditLogger(logRepo LogRepository) *AuditLogger {
	return &AuditLogger{LogRepo: logRepo}
}

func (a *AuditLogger) Info(userID int64, category, message string) {
	a.write(userID, entity.LevelInfo, category, message)
}

func (a *AuditLogger) Warn(userID int64, category, message string) {
	a.write(userID, entity.LevelWarn, category, message)
}

func (a *AuditLogger) write(userID int64, level, category, message string) {
	entry := &entity.SystemLog{
		Level:     level,
		Category:  category,
		Message:   message,
		CreatedAt: utils.NowUTC(),
	}
	if userID > 0 {
		entry.UserID = &userID
	}

	if err := a.LogRepo.Save(entry); err != nil {
		log.Errorf("failed to write %s audit log for user %d: %v", category, userID, err)
	}
}
