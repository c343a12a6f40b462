package logger

import (
	"time"

	"github.com/rs/zerolog"
)

// Field adds one structured key/value pair to a log event.
type Field interface {
	AddTo(event *zerolog.Event)
}

type stringField struct {
	key   string
	value string
}

func (f stringField) AddTo(event *zerolog.Event) { event.Str(f.key, f.value) }

// String creates a string field.
func String(key, value string) Field { return stringField{key, value} }

type intField struct {
	key   string
	value int
}

func (f intField) AddTo(event *zerolog.Event) { event.Int(f.key, f.value) }

// Int creates an int field.
func Int(key string, value int) Field { return intField{key, value} }

type int64Field struct {
	key   string
	value int64
}

func (f int64Field) AddTo(event *zerolog.Event) { event.Int64(f.key, f.value) }

// Int64 creates an int64 field.
func Int64(key string, value int64) Field { return int64Field{key, value} }

type float64Field struct {
	key   string
	value float64
}

func (f float64Field) AddTo(event *zerolog.Event) { event.Float64(f.key, f.value) }

// Float64 creates a float64 field.
func Float64(key string, value float64) Field { return float64Field{key, value} }

type timeField struct {
	key   string
	value time.Time
}

func (f timeField) AddTo(event *zerolog.Event) { event.Time(f.key, f.value) }

// Time creates a time field.
func Time(key string, value time.Time) Field { return timeField{key, value} }

type durationField struct {
	key   string
	value time.Duration
}

func (f durationField) AddTo(event *zerolog.Event) { event.Dur(f.key, f.value) }

// Duration creates a duration field.
func Duration(key string, value time.Duration) Field { return durationField{key, value} }

type errorField struct {
	value error
}

func (f errorField) AddTo(event *zerolog.Event) { event.Err(f.value) }

// Error creates an error field.
func Error(err error) Field { return errorField{err} }

type anyField struct {
	key   string
	value interface{}
}

func (f anyField) AddTo(event *zerolog.Event) { event.Interface(f.key, f.value) }

// Any creates a field with an arbitrary value.
func Any(key string, value interface{}) Field { return anyField{key, value} }
