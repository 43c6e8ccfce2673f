package logging

import (
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/cardforge/card-arena/internal/constants"
)

type Fields map[string]interface{}

// minLevel is resolved once from ARENA_LOG_LEVEL (debug|info|error).
var minLevel = levelRank(os.Getenv(constants.EnvLogLevel))

func levelRank(level string) int {
	switch level {
	case "debug":
		return 0
	case "error":
		return 2
	default:
		return 1
	}
}

func output(level, msg string, fields Fields) {
	if levelRank(level) < minLevel {
		return
	}
	if fields == nil {
		fields = Fields{}
	}
	fields["level"] = level
	fields["ts"] = time.Now().UTC().Format(time.RFC3339)
	fields["msg"] = msg
	b, err := json.Marshal(fields)
	if err != nil {
		// fallback to plain logging
		log.Printf("%s: %s (%v)\n", level, msg, fields)
		return
	}
	log.Println(string(b))
}

// Debug logs a verbose diagnostic message with optional fields.
func Debug(msg string, fields Fields) {
	output("debug", msg, fields)
}

// Info logs an informational message with optional fields.
func Info(msg string, fields Fields) {
	output("info", msg, fields)
}

// Error logs an error message and includes the error text in the fields.
func Error(msg string, err error, fields Fields) {
	if fields == nil {
		fields = Fields{}
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	output("error", msg, fields)
}

// Fatal logs a fatal error and exits the process.
func Fatal(msg string, err error, fields Fields) {
	if fields == nil {
		fields = Fields{}
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	output("fatal", msg, fields)
	os.Exit(1)
}
