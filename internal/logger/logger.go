package logger

import (
	"io"
	"log"
	"time"

	"github.com/natefinch/lumberjack"
	logrus "github.com/sirupsen/logrus"
	gormlogger "gorm.io/gorm/logger"
)

// Setup initializes Logrus on a rotating file and returns the rotator so
// the HTTP request logger can share it.
func Setup(filename, level string) io.Writer {
	// 1) Lumberjack for file rotation
	rotator := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    10, // megabytes
		MaxBackups: 7,  // keep up to 7 old files
		MaxAge:     7,  // days
		Compress:   true,
	}

	// 2) Configure Logrus to write to that file
	logrus.SetOutput(rotator)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
		logrus.WithError(err).Warn("logger: unknown LOG_LEVEL, using info")
	}
	logrus.SetLevel(lvl)
	return rotator
}

// GormLogger sends GORM's SQL and slow-query output through Logrus. Slow
// queries and SQL errors are logged at warn; every statement is traced only
// at debug level.
func GormLogger() gormlogger.Interface {
	level, writerLevel := gormlogger.Warn, logrus.WarnLevel
	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		level, writerLevel = gormlogger.Info, logrus.DebugLevel
	}
	return gormlogger.New(
		log.New(logrus.StandardLogger().WriterLevel(writerLevel), "", 0),
		gormlogger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		},
	)
}
