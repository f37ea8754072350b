package models

import "time"

// SettingBootstrapConsumed marks that the one-time rank-5 bootstrap has been
// used. Once present, the bootstrap secret is dead even if it leaks.
const SettingBootstrapConsumed = "bootstrap_rank5_consumed"

// Setting is a named operational flag persisted alongside user records.
type Setting struct {
	Name      string    `json:"name" gorm:"primaryKey;type:varchar(100)" validate:"required,max=100"`
	Value     string    `json:"value" gorm:"type:varchar(255)" validate:"omitempty,max=255"`
	UpdatedAt time.Time `json:"updatedAt"`
}
