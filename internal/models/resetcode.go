package models

import "time"

// ResetCode is a short-lived numeric credential for password recovery,
// keyed by email. A new request overwrites the previous code.
type ResetCode struct {
	Code   string    `json:"code"`
	Expiry time.Time `json:"expiry"`
}

// Expired reports whether the code is past its expiry at the given time.
func (c *ResetCode) Expired(now time.Time) bool {
	return !now.Before(c.Expiry)
}
