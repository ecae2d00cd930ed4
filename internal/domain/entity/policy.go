package entity

import (
	"fmt"
	"strings"
)

// Policy имя стратегии отбора областей
type Policy string

const (
	// PolicyAreaSize отбор по площади и размерам, с отступом (основной API)
	PolicyAreaSize Policy = "area-size"
	// PolicyAspectRatio отбор по пропорциям и относительной площади, без отступа (ручной просмотр)
	PolicyAspectRatio Policy = "aspect-ratio"
)

// Policies возвращает все поддерживаемые политики
func Policies() []Policy {
	return []Policy{PolicyAreaSize, PolicyAspectRatio}
}

// ParsePolicy разбирает имя политики. Пустая строка даёт PolicyAreaSize.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "a", string(PolicyAreaSize):
		return PolicyAreaSize, nil
	case "b", string(PolicyAspectRatio):
		return PolicyAspectRatio, nil
	default:
		return "", &ConfigError{Field: "policy", Reason: fmt.Sprintf("unknown policy %q", s)}
	}
}

func (p Policy) String() string {
	return string(p)
}
