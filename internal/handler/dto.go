package handlers

import (
	"time"

	"NeighborWatch/internal/models"
)

// The API has two user shapes and both are kept for existing clients:
// login, user lookup and the author of a freshly created alert use the flat
// UserDTO; the user list and group feeds use MemberDTO with a nested location.

type UserDTO struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	HouseNumber string  `json:"house_number"`
	Phone       string  `json:"phone"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
}

type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type MemberDTO struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	HouseNumber string   `json:"houseNumber"`
	Phone       string   `json:"phone"`
	Location    Location `json:"location"`
}

type AlertDTO[U any] struct {
	ID          int64     `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Type        string    `json:"type"`
	Description *string   `json:"description"`
	Location    Location  `json:"location"`
	Image       *string   `json:"image"`
	UserID      string    `json:"user_id"`
	User        U         `json:"user"`
}

func toUserDTO(u *models.User) UserDTO {
	return UserDTO{
		ID:          u.ID,
		Name:        u.Name,
		HouseNumber: u.HouseNumber,
		Phone:       u.Phone,
		Lat:         u.Lat,
		Lng:         u.Lng,
	}
}

func toMemberDTO(u *models.User) MemberDTO {
	return MemberDTO{
		ID:          u.ID,
		Name:        u.Name,
		HouseNumber: u.HouseNumber,
		Phone:       u.Phone,
		Location:    Location{Lat: u.Lat, Lng: u.Lng},
	}
}

func toFeedAlertDTO(r *models.AlertWithAuthor) AlertDTO[MemberDTO] {
	return AlertDTO[MemberDTO]{
		ID:          r.ID,
		Timestamp:   r.Timestamp.UTC(),
		Type:        r.Type,
		Description: r.Description,
		Location:    Location{Lat: r.Lat, Lng: r.Lng},
		Image:       r.Image,
		UserID:      r.UserID,
		User: MemberDTO{
			ID:          r.UserID,
			Name:        r.Name,
			HouseNumber: r.HouseNumber,
			Phone:       r.Phone,
			Location:    Location{Lat: r.UserLat, Lng: r.UserLng},
		},
	}
}
