package logging

import (
	"time"
)

// Field is a key-value pair attached to a log entry.
type Field struct {
	Key   string
	Value any
}

func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Analysis field helpers
func Component(name string) Field {
	return String("component", name)
}

func Operation(op string) Field {
	return String("operation", op)
}

func RunID(id string) Field {
	return String("run_id", id)
}

func Snapshot(name string) Field {
	return String("snapshot", name)
}

func Community[T ~string](id T) Field {
	return String("community", string(id))
}

func Node(name string) Field {
	return String("node", name)
}

func Count(n int) Field {
	return Int("count", n)
}

func Source(uri string) Field {
	return String("source", uri)
}

func Latency(d time.Duration) Field {
	return Duration("latency", d)
}
