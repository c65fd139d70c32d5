package logging

import "time"

// Common field constructors
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Uint64(key string, value uint64) Field {
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

// Domain field helpers

func Component(name string) Field {
	return String("component", name)
}

func NodeID(id string) Field {
	return String("node_id", id)
}

func RootID(id string) Field {
	return String("root_id", id)
}

// Mode names the evaluation mode: residual includes circumvent subtrees.
func Mode(includeReusable bool) Field {
	if includeReusable {
		return String("mode", "residual")
	}
	return String("mode", "initial")
}

func Score(score int) Field {
	return Int("score", score)
}

func PathCount(n int) Field {
	return Int("path_count", n)
}

func Reason(code string) Field {
	return String("reason", code)
}

func Latency(d time.Duration) Field {
	return Duration("latency", d)
}

func RequestID(id string) Field {
	return String("request_id", id)
}
