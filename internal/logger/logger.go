package logger

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var log zerolog.Logger

func init() {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log = zerolog.New(output).With().Timestamp().Logger()
}

// Setup configures the global logger. level is one of DEBUG, INFO, WARN,
// ERROR; format is "console" or "json".
func Setup(level string, format string) {
	var logLevel zerolog.Level
	switch strings.ToUpper(level) {
	case "DEBUG":
		logLevel = zerolog.DebugLevel
	case "WARN":
		logLevel = zerolog.WarnLevel
	case "ERROR":
		logLevel = zerolog.ErrorLevel
	default:
		logLevel = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(logLevel)

	if strings.ToLower(format) == "json" {
		log = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
		log = zerolog.New(output).With().Timestamp().Logger()
	}
}

// Debug logs at Debug level with variadic key-value pairs.
func Debug(msg string, args ...any) {
	fields(log.Debug(), args...).Msg(msg)
}

// Info logs at Info level with variadic key-value pairs.
func Info(msg string, args ...any) {
	fields(log.Info(), args...).Msg(msg)
}

// Warn logs at Warn level with variadic key-value pairs.
func Warn(msg string, args ...any) {
	fields(log.Warn(), args...).Msg(msg)
}

// Error logs at Error level with variadic key-value pairs.
func Error(msg string, args ...any) {
	fields(log.Error(), args...).Msg(msg)
}

// Fatal logs at Fatal level and exits.
func Fatal(msg string, args ...any) {
	fields(log.Fatal(), args...).Msg(msg)
}

// fields attaches variadic key-value pairs to the event.
func fields(e *zerolog.Event, args ...any) *zerolog.Event {
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", args[i])
		}
		e = e.Interface(key, args[i+1])
	}
	return e
}
