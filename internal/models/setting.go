package models

import "time"

// Setting is one row of the local key/value table backing the credential and language stores.
type Setting struct {
	Key       string `gorm:"primaryKey;size:191"`
	Value     string `gorm:"type:text"`
	UpdatedAt time.Time
}
