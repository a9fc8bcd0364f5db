// Package target defines savings targets and their deposit records.
package target

import "time"

// Target is a savings goal owned by exactly one user. CurrentAmount is
// derived solely from committed deposits and starts at zero.
type Target struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Name          string    `json:"name"`
	Description   string    `json:"des,omitempty"`
	Objective     float64   `json:"objective"`
	CurrentAmount float64   `json:"current_amount"`
	Deadline      string    `json:"deadline"`
	Fine          float64   `json:"fine"`
	Category      string    `json:"category"`
	CreatedAt     time.Time `json:"created_at"`
}

// Transaction is an immutable record of one deposit toward a target.
// Its row and the matching target balance increment are written in the
// same database transaction, both or neither.
type Transaction struct {
	ID        string    `json:"id"`
	TargetID  string    `json:"targets_id"`
	UserID    string    `json:"user_id"`
	Amount    float64   `json:"amount"`
	Reference string    `json:"trx_id"`
	Tell      string    `json:"tell"`
	CreatedAt time.Time `json:"created_at"`
}
