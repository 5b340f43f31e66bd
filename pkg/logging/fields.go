package logging

import (
	"time"
)

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

// Ref tags a component reference designator (R1, V2, ...)
func Ref(ref string) Field {
	return String("ref", ref)
}

// Layer tags a construction layer by name
func Layer(name string) Field {
	return String("layer", name)
}

// Phase tags a validation construction phase
func Phase(phase string) Field {
	return String("phase", phase)
}

// Version tags the design version counter
func Version(v uint64) Field {
	return Uint64("version", v)
}

func Operation(op string) Field {
	return String("operation", op)
}

func Count(n int) Field {
	return Int("count", n)
}
