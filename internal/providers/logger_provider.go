package providers

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"photoaudit/internal/structures"

	"github.com/rs/zerolog"
)

type TypeEnum string

const (
	TypeApp     = "app"
	TypeScan    = "scan"
	TypeSession = "session"
	TypeReview  = "review"
	TypeExport  = "export"
	TypeFetch   = "fetch"
	TypeGet     = "get"
	TypePost    = "post"
)

const logFileName = "photoaudit.log"

type Logger interface {
	Errorf(t TypeEnum, format string, args ...interface{})
	Warnf(t TypeEnum, format string, args ...interface{})
	Debugf(t TypeEnum, format string, args ...interface{})
	Infof(t TypeEnum, format string, args ...interface{})
	Fatalf(t TypeEnum, format string, args ...interface{})
	Close()
}

type LogProvider struct {
	log  zerolog.Logger
	file *os.File
}

func GetLogTypeByRequestType(method string) TypeEnum {
	if method == "POST" {
		return TypePost
	}
	return TypeGet
}

// NewLogProvider writes JSON lines to <dir>/photoaudit.log and a console
// rendition to stderr. The directory must already exist.
func NewLogProvider(conf *structures.Config) (Logger, error) {
	lvl, err := zerolog.ParseLevel(conf.Logger.Level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	if conf.Debug {
		lvl = zerolog.DebugLevel
	}

	path := filepath.Join(conf.Logger.Dir, logFileName)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, os.FileMode(conf.Logger.Mode))
	if err != nil {
		return nil, fmt.Errorf("unable to open log file %s: %w", path, err)
	}

	var writer io.Writer = zerolog.MultiLevelWriter(
		file,
		zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"},
	)

	return &LogProvider{
		log:  zerolog.New(writer).Level(lvl).With().Timestamp().Logger(),
		file: file,
	}, nil
}

func (l *LogProvider) Errorf(t TypeEnum, format string, args ...interface{}) {
	l.log.Error().Str("type", string(t)).Msgf(format, args...)
}

func (l *LogProvider) Warnf(t TypeEnum, format string, args ...interface{}) {
	l.log.Warn().Str("type", string(t)).Msgf(format, args...)
}

func (l *LogProvider) Debugf(t TypeEnum, format string, args ...interface{}) {
	l.log.Debug().Str("type", string(t)).Msgf(format, args...)
}

func (l *LogProvider) Infof(t TypeEnum, format string, args ...interface{}) {
	l.log.Info().Str("type", string(t)).Msgf(format, args...)
}

func (l *LogProvider) Fatalf(t TypeEnum, format string, args ...interface{}) {
	l.log.Fatal().Str("type", string(t)).Msgf(format, args...)
}

func (l *LogProvider) Close() {
	if l.file != nil {
		_ = l.file.Sync()
		_ = l.file.Close()
	}
}
