// internal/types/slippage.go
package types

import (
	"fmt"
	"math"
)

// SlippageType определяет тип политики проскальзывания
type SlippageType string

const (
	// SlippageFixed использует фиксированное значение minAmountOut
	SlippageFixed SlippageType = "fixed"
	// SlippagePercent использует процент от ожидаемого выхода
	SlippagePercent SlippageType = "percent"
	// SlippageNone не использует ограничение minAmountOut (minAmountOut = 0, без защиты)
	SlippageNone SlippageType = "none"
)

// SlippageConfig конфигурирует политику проскальзывания
type SlippageConfig struct {
	// Type определяет тип политики проскальзывания
	Type SlippageType `mapstructure:"type" json:"type"`
	// Value содержит значение для выбранной политики:
	// - для SlippageFixed: точное значение minAmountOut в базовых единицах
	// - для SlippagePercent: процент допустимого проскальзывания (например, 1.0 = 1%)
	// - для SlippageNone: игнорируется
	Value float64 `mapstructure:"value" json:"value"`
}

// Validate проверяет корректность политики.
func (c SlippageConfig) Validate() error {
	switch c.Type {
	case SlippageNone, "":
		return nil
	case SlippageFixed:
		if c.Value < 0 {
			return fmt.Errorf("fixed slippage must be non-negative, got %f", c.Value)
		}
	case SlippagePercent:
		if c.Value < 0 || c.Value >= 100 {
			return fmt.Errorf("slippage percent must be in [0, 100), got %f", c.Value)
		}
	default:
		return fmt.Errorf("unknown slippage type %q", c.Type)
	}
	return nil
}

// CalculateMinAmountOut вычисляет minAmountOut на основе политики проскальзывания
func CalculateMinAmountOut(expectedAmount float64, config SlippageConfig) uint64 {
	switch config.Type {
	case SlippageFixed:
		return uint64(config.Value)
	case SlippagePercent:
		// Например, если проскальзывание 1% (value = 1.0), то минимум будет 99% от ожидаемого
		multiplier := 1.0 - (config.Value / 100.0)
		if expectedAmount <= 0 {
			return 0
		}
		return uint64(math.Floor(expectedAmount * multiplier))
	default:
		// SlippageNone: минимум не ограничивается
		return 0
	}
}
