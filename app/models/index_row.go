package models

import "time"

// IndexRow is one flattened field of the derived user index, e.g.
// (user_id, "member.gameroom", "true"). Rows are rebuildable from the record
// log at any time and carry no authority of their own.
type IndexRow struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"type:varchar(36);not null;index:ux_index_rows_user_field,unique,priority:1" json:"user_id"`
	Field     string    `gorm:"type:varchar(191);not null;index:ux_index_rows_user_field,unique,priority:2;index:idx_index_rows_field_value,priority:1" json:"field"`
	Value     string    `gorm:"type:varchar(191);not null;index:idx_index_rows_field_value,priority:2" json:"value"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
