package logger

import (
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// GormWriter 把 gorm 的 SQL 日志转到名为 gorm 的组件 logger
type GormWriter struct {
	log *zap.SugaredLogger
}

func NewGormWriter() *GormWriter {
	return &GormWriter{log: Named("gorm").WithOptions(zap.WithCaller(false)).Sugar()}
}

// Printf 实现 gorm logger.Writer；慢查询、出错的 SQL 和 warn/error 消息记为 Warn
func (w *GormWriter) Printf(format string, args ...interface{}) {
	if strings.Contains(format, "[error]") || strings.Contains(format, "[warn]") || lo.SomeBy(args, isSQLWarning) {
		w.log.Warnf(format, args...)
		return
	}
	w.log.Infof(format, args...)
}

func isSQLWarning(arg interface{}) bool {
	switch v := arg.(type) {
	case error:
		return true
	case string:
		return strings.HasPrefix(v, "SLOW SQL")
	}
	return false
}
