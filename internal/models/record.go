package models

import "time"

// RecordKind distinguishes the two transaction collections.
type RecordKind string

const (
	KindExpense RecordKind = "expense"
	KindIncome  RecordKind = "income"
)

// Record is a single income or expense transaction, always scoped to the
// user that created it.
type Record struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Kind        RecordKind `json:"kind"`
	Amount      float64    `json:"amount"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Date        time.Time  `json:"date"`
	CreatedAt   time.Time  `json:"created_at"`
}
