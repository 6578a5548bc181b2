package log

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/natefinch/lumberjack"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

const EnvDevelopment = "development"

var (
	once   sync.Once
	logger zerolog.Logger
)

func InitLogger(filepath string, env string) zerolog.Logger {
	once.Do(func() {
		logger = newLogger(filepath, env)
		logger.Info().
			Str(KeyTag, "InitLogger").
			Str(KeyProcess, "InitLogger").
			Msg("finish initiating logging")
	})
	return logger
}

func newLogger(filepath string, env string) zerolog.Logger {
	zerolog.DurationFieldUnit = time.Microsecond
	zerolog.ErrorFieldName = "error"
	zerolog.ErrorStackFieldName = "stack-trace"
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.LevelFieldName = "level"
	zerolog.MessageFieldName = "message"
	zerolog.TimestampFieldName = "timestamp"

	logLevel := zerolog.InfoLevel
	if env == EnvDevelopment {
		logLevel = zerolog.TraceLevel
	}

	var output io.Writer = os.Stderr
	if filepath != "" {
		fileWriter := &lumberjack.Logger{
			Filename:   filepath,
			MaxSize:    50,
			MaxBackups: 3,
			Compress:   true,
		}
		output = zerolog.MultiLevelWriter(os.Stderr, fileWriter)
	}

	return zerolog.New(output).
		Level(logLevel).
		Hook(TraceHook()).
		With().
		Timestamp().
		Caller().
		Stack().
		Int("pid", os.Getpid()).
		Logger()
}
