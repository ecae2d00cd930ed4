package entity

import (
	"errors"
	"fmt"
)

// ErrNoImage запрос не содержит изображения
var ErrNoImage = errors.New("no image provided")

// DecodeError байты не являются поддерживаемым изображением
type DecodeError struct {
	Cause error
}

func (e *DecodeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("decode image: %v", e.Cause)
	}
	return "decode image"
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// ConfigError недопустимое значение настройки. Возникает до запуска конвейера.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config %s: %s", e.Field, e.Reason)
}

// IsDecodeError сообщает, вызвана ли ошибка некорректным изображением
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

// IsConfigError сообщает, вызвана ли ошибка некорректной настройкой
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
