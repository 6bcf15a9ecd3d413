package handlers

import (
	"net/http"

	"NeighborWatch/internal/models"
	"NeighborWatch/pkg/errors"
	"NeighborWatch/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type loginRequest struct {
	HouseNumber string `json:"houseNumber" binding:"required"`
	Phone       string `json:"phone" binding:"required"`
	Password    string `json:"password" binding:"required"`
}

type locationRequest struct {
	Lat *float64 `json:"lat" binding:"required"`
	Lng *float64 `json:"lng" binding:"required"`
}

type createUserRequest struct {
	ID          string           `json:"id" binding:"required"`
	Name        string           `json:"name" binding:"required"`
	HouseNumber string           `json:"houseNumber" binding:"required"`
	Phone       string           `json:"phone" binding:"required"`
	Password    string           `json:"password" binding:"required"`
	Location    *locationRequest `json:"location" binding:"required"`
}

// handleLogin answers 401 alike for an unknown user and a wrong password.
func (h *Handlers) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, errors.Validation("missing credentials"))
		return
	}

	var user *models.User
	err := h.conns.Acquire(c.Request.Context(), func(conn *gorm.DB) error {
		u, err := models.FindUserByCredentials(conn, req.HouseNumber, req.Phone)
		if err != nil {
			return errors.Store(err, http.StatusInternalServerError)
		}
		if u == nil || !models.CheckPassword(u.Password, req.Password) {
			return errors.Auth("incorrect credentials")
		}
		user = u
		return nil
	})
	if err != nil {
		if errors.GetCode(err) == http.StatusUnauthorized {
			h.event("login_failed")
		}
		h.fail(c, err)
		return
	}
	response.OK(c, toUserDTO(user))
}

func (h *Handlers) handleGetUser(c *gin.Context) {
	id := c.Param("id")

	var user *models.User
	err := h.conns.Acquire(c.Request.Context(), func(conn *gorm.DB) error {
		u, err := models.FindUserByID(conn, id)
		if err != nil {
			return errors.Store(err, http.StatusInternalServerError)
		}
		if u == nil {
			return errors.NotFound("User not found")
		}
		user = u
		return nil
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, toUserDTO(user))
}

func (h *Handlers) handleListUsers(c *gin.Context) {
	var users []models.User
	err := h.conns.Acquire(c.Request.Context(), func(conn *gorm.DB) error {
		var err error
		users, err = models.ListUsers(conn)
		if err != nil {
			return errors.Store(err, http.StatusInternalServerError)
		}
		return nil
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	out := make([]MemberDTO, 0, len(users))
	for i := range users {
		out = append(out, toMemberDTO(&users[i]))
	}
	response.OK(c, out)
}

// handleCreateUser echoes the submitted fields instead of re-reading the row.
func (h *Handlers) handleCreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Location.Lat == nil || req.Location.Lng == nil {
		h.fail(c, errors.Validation("incomplete user data"))
		return
	}

	user := models.User{
		ID:          req.ID,
		Name:        req.Name,
		HouseNumber: req.HouseNumber,
		Phone:       req.Phone,
		Password:    req.Password,
		Lat:         *req.Location.Lat,
		Lng:         *req.Location.Lng,
	}
	err := h.conns.Acquire(c.Request.Context(), func(conn *gorm.DB) error {
		if err := models.InsertUser(conn, &user); err != nil {
			return errors.Store(err, http.StatusBadRequest)
		}
		return nil
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	h.event("user_created")
	response.Created(c, toMemberDTO(&user))
}
