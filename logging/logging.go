package logging

import (
	"github.com/fernandosanchezjr/goath9k/utils"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
	"io"
	"os"
	"path"
)

const LogPath = "logs"

var logFile *lumberjack.Logger

func getLogFile() *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path.Join(utils.GetSubFolder(LogPath), "log.out"),
		MaxSize:    10,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	}
}

func exitHandler() {
	if logFile != nil {
		_ = logFile.Close()
	}
}

func SetupLogger(level string) {
	logrus.SetFormatter(&logrus.TextFormatter{ForceColors: true})
	logrus.RegisterExitHandler(exitHandler)
	SetLevel(level)
	logFile = getLogFile()
	logrus.SetOutput(io.MultiWriter(logFile, os.Stdout))
}

func SetLevel(level string) {
	if parsed, err := logrus.ParseLevel(level); err != nil {
		logrus.WithError(err).Warnln("Unknown log level, using debug")
		logrus.SetLevel(logrus.DebugLevel)
	} else if parsed != logrus.GetLevel() {
		logrus.SetLevel(parsed)
		logrus.WithField("level", parsed.String()).Infoln("Log level set")
	}
}

func Close() {
	exitHandler()
}
