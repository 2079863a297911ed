package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const serviceName = "school-rating"

type Log struct {
	Base   *zap.Logger
	Level  zap.AtomicLevel
	Closer func()
}

// Init собирает zap: ENV=prod — JSON с семплированием, иначе консольный вывод.
// Неизвестный уровень молча превращается в info.
func Init(level, env string) (*Log, error) {
	lvl := zap.NewAtomicLevelAt(parseLevel(level))

	var cfg zap.Config
	if strings.EqualFold(env, "prod") {
		cfg = zap.NewProductionConfig()
		// массовая сверка пишет по строке на ученика
		cfg.Sampling = &zap.SamplingConfig{Initial: 100, Thereafter: 50}
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = lvl
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.InitialFields = map[string]interface{}{"service": serviceName, "env": strings.ToLower(env)}

	base, err := cfg.Build(zap.AddStacktrace(zap.ErrorLevel))
	if err != nil {
		return nil, err
	}
	return &Log{
		Base:   base,
		Level:  lvl,
		Closer: func() { _ = base.Sync() },
	}, nil
}

// Component — дочерний логгер подсистемы: rating, bot, http, jobs...
func (l *Log) Component(name string) *zap.Logger {
	return l.Base.Named(name).With(zap.String("component", name))
}

func parseLevel(level string) zapcore.Level {
	var z zapcore.Level
	if err := z.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(level)))); err != nil {
		return zapcore.InfoLevel
	}
	return z
}
