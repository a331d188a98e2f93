package logger

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"
)

// Entry is a structured log record handed to an external Publisher.
type Entry struct {
	Timestamp time.Time
	Level     string
	Message   string
	Fields    map[string]interface{}
}

// Publisher forwards log entries to an external log system (e.g. CloudWatch Logs).
type Publisher interface {
	PublishBatch(ctx context.Context, entries []Entry) error
}

type Logger struct {
	logger *log.Logger
	level  Level

	entries chan Entry
}

type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

func New(level string) *Logger {
	l := &Logger{
		logger: log.New(os.Stdout, "", 0),
		level:  parseLevel(level),
	}
	return l
}

func parseLevel(level string) Level {
	switch level {
	case "debug":
		return DEBUG
	case "info":
		return INFO
	case "warn":
		return WARN
	case "error":
		return ERROR
	default:
		return INFO
	}
}

// SetLogPublisher attaches an external publisher. Entries are forwarded
// asynchronously; a full queue drops entries rather than blocking callers.
func (l *Logger) SetLogPublisher(p Publisher) {
	if p == nil {
		return
	}

	l.entries = make(chan Entry, 1024)

	go func() {
		for entry := range l.entries {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			_ = p.PublishBatch(ctx, []Entry{entry})
			cancel()
		}
	}()
}

func (l *Logger) Debug(msg string, args ...interface{}) {
	if l.level <= DEBUG {
		l.log("DEBUG", msg, args...)
	}
}

func (l *Logger) Info(msg string, args ...interface{}) {
	if l.level <= INFO {
		l.log("INFO", msg, args...)
	}
}

func (l *Logger) Warn(msg string, args ...interface{}) {
	if l.level <= WARN {
		l.log("WARN", msg, args...)
	}
}

func (l *Logger) Error(msg string, err error, args ...interface{}) {
	if l.level <= ERROR {
		if err != nil {
			args = append(args, "error", err.Error())
		}
		l.log("ERROR", msg, args...)
	}
}

func (l *Logger) log(level, msg string, args ...interface{}) {
	now := time.Now()
	message := fmt.Sprintf("[%s] [%s] %s", now.Format("2006-01-02 15:04:05"), level, msg)

	fields := make(map[string]interface{}, len(args)/2)
	if len(args) > 0 {
		message += " |"
		for i := 0; i < len(args); i += 2 {
			if i+1 < len(args) {
				message += fmt.Sprintf(" %v=%v", args[i], args[i+1])
				fields[fmt.Sprintf("%v", args[i])] = args[i+1]
			}
		}
	}

	l.logger.Println(message)

	if l.entries != nil {
		select {
		case l.entries <- Entry{Timestamp: now, Level: level, Message: msg, Fields: fields}:
		default:
			// Queue full, drop rather than stall the caller.
		}
	}
}
