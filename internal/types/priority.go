package types

import "fmt"

// PriorityLevel задаёт пресет цены compute unit (priority fee).
type PriorityLevel string

const (
	PriorityLow     PriorityLevel = "low"
	PriorityMedium  PriorityLevel = "medium"
	PriorityHigh    PriorityLevel = "high"
	PriorityExtreme PriorityLevel = "extreme"
)

// priorityFees хранит цену compute unit в micro-lamports для каждого пресета.
var priorityFees = map[PriorityLevel]uint64{
	PriorityLow:     10_000,
	PriorityMedium:  50_000,
	PriorityHigh:    100_000,
	PriorityExtreme: 500_000,
}

// Validate проверяет уровень. Пустой уровень означает явную цену из конфигурации.
func (l PriorityLevel) Validate() error {
	if l == "" {
		return nil
	}
	if _, ok := priorityFees[l]; !ok {
		return fmt.Errorf("unknown priority level: %s", l)
	}
	return nil
}

// UnitPrice возвращает цену compute unit для уровня или custom, если уровень не задан.
func (l PriorityLevel) UnitPrice(custom uint64) uint64 {
	if fee, ok := priorityFees[l]; ok {
		return fee
	}
	return custom
}
