package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"collabboard/internal/pkg/config"
)

// Log 根 logger；未初始化时为 Nop，测试可直接调用各组件构造函数
var (
	Log = zap.NewNop()
	log = zap.NewNop()

	mu      sync.RWMutex
	current *sinkState
)

// sinkState 所有组件 logger 共用同一编码器和输出，只按组件区分级别
type sinkState struct {
	encoder    zapcore.Encoder
	sink       zapcore.WriteSyncer
	closer     io.Closer
	level      zapcore.Level
	components map[string]zapcore.Level
}

func (s *sinkState) levelFor(name string) zapcore.Level {
	// realtime.bus 之类的子 logger 按最长前缀匹配
	for n := name; n != ""; {
		if lvl, ok := s.components[n]; ok {
			return lvl
		}
		i := strings.LastIndexByte(n, '.')
		if i < 0 {
			break
		}
		n = n[:i]
	}
	return s.level
}

func (s *sinkState) newLogger(name string) *zap.Logger {
	core := zapcore.NewCore(s.encoder, s.sink, s.levelFor(name))
	l := zap.New(core, zap.AddCaller())
	if name != "" {
		l = l.Named(name)
	}
	return l
}

func timeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("2006-01-02 15:04:05.000"))
}

func parseLevel(s string) (zapcore.Level, error) {
	if s == "" {
		return zapcore.InfoLevel, nil
	}
	return zapcore.ParseLevel(s)
}

// Init 按配置初始化根 logger，log.components 可为单个组件覆盖级别
func Init(cfg *config.LogConfig) error {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("日志级别无效: %w", err)
	}

	components := make(map[string]zapcore.Level, len(cfg.Components))
	for name, raw := range cfg.Components {
		lvl, err := parseLevel(raw)
		if err != nil {
			return fmt.Errorf("组件 %s 日志级别无效: %w", name, err)
		}
		components[strings.ToLower(name)] = lvl
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:          "time",
		LevelKey:         "level",
		NameKey:          "logger",
		CallerKey:        "caller",
		MessageKey:       "msg",
		StacktraceKey:    "stacktrace",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeTime:       timeEncoder,
		EncodeDuration:   zapcore.MillisDurationEncoder,
		EncodeCaller:     zapcore.ShortCallerEncoder,
		ConsoleSeparator: " ",
	}

	var encoder zapcore.Encoder
	if cfg.Format == "json" {
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	state := &sinkState{encoder: encoder, level: level, components: components}
	if cfg.Output == "file" && cfg.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
			return err
		}
		file, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		state.sink = zapcore.AddSync(file)
		state.closer = file
	} else {
		state.sink = zapcore.AddSync(os.Stdout)
	}

	mu.Lock()
	defer mu.Unlock()
	current = state
	Log = state.newLogger("")
	log = Log.WithOptions(zap.AddCallerSkip(1))
	return nil
}

// Named 返回组件 logger，级别取 log.components 中的覆盖值
func Named(name string) *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if current == nil {
		return zap.NewNop()
	}
	return current.newLogger(name)
}

// ConnFields 实时连接相关日志的公共字段
func ConnFields(connID string, userID int64) []zap.Field {
	return []zap.Field{zap.String("conn_id", connID), zap.Int64("user_id", userID)}
}

// Close 刷新缓冲并关闭日志文件，之后回退为 Nop
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if current == nil {
		return nil
	}
	err := Log.Sync()
	if current.closer != nil {
		if cerr := current.closer.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	current = nil
	Log = zap.NewNop()
	log = zap.NewNop()
	return err
}

func Info(msg string, fields ...zap.Field) {
	log.Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	log.Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	log.Error(msg, fields...)
}

func Fatal(msg string, fields ...zap.Field) {
	log.Fatal(msg, fields...)
}
