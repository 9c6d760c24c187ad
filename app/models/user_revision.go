package models

import "time"

// UserRevision is one immutable entry of the append-only record log. The
// payload is the full UserRecord document as JSON; Seq orders revisions per
// user and PrevSeq back-references the replaced value (0 on first creation).
type UserRevision struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"type:varchar(36);not null;index:idx_user_revisions_user_seq,priority:1" json:"user_id"`
	Seq       uint      `gorm:"not null;index:idx_user_revisions_user_seq,priority:2" json:"seq"`
	PrevSeq   uint      `gorm:"not null;default:0" json:"prev_seq"`
	Payload   string    `gorm:"type:longtext;not null" json:"payload"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
