package intersection

import (
	"errors"
	"fmt"
)

// ErrorCode описывает класс ошибки конфигурации
type ErrorCode int

const (
	// ErrCodeNone нет ошибки
	ErrCodeNone ErrorCode = iota
	// ErrCodeNonPositive значение должно быть больше нуля
	ErrCodeNonPositive
	// ErrCodeOutOfRange значение вне допустимого диапазона
	ErrCodeOutOfRange
	// ErrCodeInconsistentGeometry размеры противоречат друг другу
	ErrCodeInconsistentGeometry
)

// ErrInvalidConfig общий признак ошибок конфигурации, для errors.Is
var ErrInvalidConfig = errors.New("invalid simulation config")

// ConfigError ошибка проверки конфигурации
type ConfigError struct {
	Code    ErrorCode
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error [%s]: %s", e.Field, e.Message)
}

// Is позволяет сравнивать с ErrInvalidConfig
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

func newNonPositiveError(field string, value float64) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeNonPositive,
		Field:   field,
		Message: fmt.Sprintf("must be positive, got %g", value),
	}
}

func newOutOfRangeError(field string, value, min, max float64) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeOutOfRange,
		Field:   field,
		Message: fmt.Sprintf("%g is outside [%g, %g]", value, min, max),
	}
}

func newGeometryError(field string, format string, args ...interface{}) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInconsistentGeometry,
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}
