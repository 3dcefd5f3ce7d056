package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	"gopkg.in/natefinch/lumberjack.v2"

	"osrsloottracker.dev/plugin-core/internal/app/appconfig"
)

func Configure(conf *appconfig.Config) {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	// the plugin lives inside a long-running game client; rotate instead of
	// growing a single file for weeks
	fileWriter := &lumberjack.Logger{
		Filename:   "logs/plugin.log",
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
	}

	var stdoutWriter zerolog.LevelWriter
	if conf.LogJsonStdout {
		stdoutWriter = zerolog.MultiLevelWriter(os.Stdout)
	} else {
		stdoutWriter = zerolog.MultiLevelWriter(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339Nano,
		})
	}

	var level zerolog.Level
	if conf.DevMode {
		level = zerolog.TraceLevel
	} else {
		level = zerolog.DebugLevel
	}

	log.Logger = zerolog.New(zerolog.MultiLevelWriter(fileWriter, stdoutWriter)).
		With().
		Timestamp().
		Logger().
		Level(level)
}
