package allocation

import "time"

// Allocation — affectation: links a task to a budget line with a weight
// in percent of the line's planned amount.
type Allocation struct {
	ID           int64
	BudgetLineID int64
	TaskID       int64
	Percentage   float64
	CreatedAt    time.Time
}
