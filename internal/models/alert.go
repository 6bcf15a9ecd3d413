package models

import (
	"time"

	"gorm.io/gorm"
)

// Alert is a safety report posted by a user. Rows are never updated.
type Alert struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Type        string    `json:"type" gorm:"size:64;not null"`
	Description *string   `json:"description" gorm:"type:text"`
	Lat         float64   `json:"lat"`
	Lng         float64   `json:"lng"`
	Image       *string   `json:"image" gorm:"size:1024"`
	UserID      string    `json:"user_id" gorm:"column:user_id;size:64;not null;index"`
	Timestamp   time.Time `json:"timestamp" gorm:"column:timestamp;not null;index"`
}

func (Alert) TableName() string { return "alerts" }

// AlertWithAuthor is one row of the alerts ⋈ users feed query.
type AlertWithAuthor struct {
	ID          int64
	Type        string
	Description *string
	Lat         float64
	Lng         float64
	Image       *string
	Timestamp   time.Time
	UserID      string
	Name        string
	HouseNumber string
	Phone       string
	UserLat     float64
	UserLng     float64
}

// InsertAlert stores a and returns its generated id. The timestamp is
// assigned here when the caller left it zero.
func InsertAlert(db *gorm.DB, a *Alert) (int64, error) {
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now().UTC().Truncate(time.Millisecond)
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(a).Error
	})
	if err != nil {
		return 0, err
	}
	return a.ID, nil
}

// ListGroupMemberUserIDs returns the members of a group, empty for an
// unknown group.
func ListGroupMemberUserIDs(db *gorm.DB, groupID int64) ([]string, error) {
	ids := []string{}
	err := db.Model(&GroupMembership{}).Where("group_id = ?", groupID).Pluck("user_id", &ids).Error
	return ids, err
}

// ListAlertsForUsers returns the alerts authored by any of userIDs, newest
// first, joined with their author. No query is issued for an empty list.
func ListAlertsForUsers(db *gorm.DB, userIDs []string) ([]AlertWithAuthor, error) {
	rows := []AlertWithAuthor{}
	if len(userIDs) == 0 {
		return rows, nil
	}
	err := db.Table("alerts AS a").
		Select("a.id, a.type, a.description, a.lat, a.lng, a.image, a.timestamp, " +
			"u.id AS user_id, u.name, u.house_number, u.phone, u.lat AS user_lat, u.lng AS user_lng").
		Joins("JOIN users u ON a.user_id = u.id").
		Where("a.user_id IN ?", userIDs).
		Order("a.timestamp DESC").
		Order("a.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
