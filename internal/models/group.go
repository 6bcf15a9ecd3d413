package models

// GroupMembership links a user to a neighborhood group. Memberships are
// managed outside this service.
type GroupMembership struct {
	GroupID int64  `json:"group_id" gorm:"primaryKey;autoIncrement:false"`
	UserID  string `json:"user_id" gorm:"primaryKey;size:64;index"`
}

func (GroupMembership) TableName() string { return "user_group" }
