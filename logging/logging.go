package logging

import (
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type SetupParams struct {
	LogFileName   string
	LogToStdout   bool
	LogLevel      string
	LogFormatJSON bool
}

// Setup configures the global logrus logger. The returned closer releases the
// rotating log file, it is a no-op when logging only to stdout.
func Setup(params SetupParams) io.Closer {
	if params.LogFormatJSON {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	log.SetLevel(GetLevel(params.LogLevel))

	if params.LogFileName == "" {
		log.SetOutput(os.Stdout)
		log.Println("writing logs only to STDOUT")
		return nopCloser{}
	}

	if !strings.HasSuffix(params.LogFileName, ".log") {
		params.LogFileName += ".log"
	}

	rotating := &lumberjack.Logger{
		Filename:   params.LogFileName,
		MaxSize:    20, // megabytes
		MaxBackups: 10,
		LocalTime:  true,
		Compress:   true,
	}

	if params.LogToStdout {
		log.SetOutput(NewCombinedWriter(os.Stdout, rotating))
		log.Println("writing logs to file and STDOUT")
	} else {
		log.SetOutput(rotating)
	}

	return rotating
}

func GetLevel(level string) log.Level {
	switch strings.ToLower(level) {
	case "trace":
		return log.TraceLevel
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
