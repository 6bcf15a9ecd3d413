package models

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// User is a resident registered with a house number and phone.
// Ids are chosen by the client (e.g. "user-12").
type User struct {
	ID          string  `json:"id" gorm:"primaryKey;size:64"`
	Name        string  `json:"name" gorm:"size:255;not null"`
	HouseNumber string  `json:"house_number" gorm:"column:house_number;size:32;not null;index:idx_users_login"`
	Phone       string  `json:"phone" gorm:"size:32;not null;index:idx_users_login"`
	Password    string  `json:"-" gorm:"size:255;not null"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
}

func (User) TableName() string { return "users" }

// first runs q limited to one row; a miss yields (nil, nil).
func first(q *gorm.DB) (*User, error) {
	var users []User
	if err := q.Limit(1).Find(&users).Error; err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, nil
	}
	return &users[0], nil
}

// FindUserByCredentials looks a user up by login key only. The password is
// checked by the caller with CheckPassword. When several rows share the key
// the first one returned by the store wins.
func FindUserByCredentials(db *gorm.DB, houseNumber, phone string) (*User, error) {
	return first(db.Where("house_number = ? AND phone = ?", houseNumber, phone))
}

func FindUserByID(db *gorm.DB, id string) (*User, error) {
	return first(db.Where("id = ?", id))
}

func ListUsers(db *gorm.DB) ([]User, error) {
	users := []User{}
	if err := db.Select("id", "name", "house_number", "phone", "lat", "lng").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// InsertUser stores u as given. Constraint violations are returned as is.
func InsertUser(db *gorm.DB, u *User) error {
	return db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(u).Error
	})
}

// CheckPassword compares a stored password with the supplied one. Stored
// values that look like bcrypt hashes are verified as such; anything else
// is a legacy plaintext value and must match exactly.
func CheckPassword(stored, supplied string) bool {
	if isBcrypt(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(supplied)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) == 1
}

func isBcrypt(s string) bool {
	return len(s) == 60 && (strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$"))
}
