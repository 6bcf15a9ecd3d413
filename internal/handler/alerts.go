package handlers

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"

	"NeighborWatch/internal/models"
	"NeighborWatch/pkg/errors"
	"NeighborWatch/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// handleCreateAlert takes a multipart form: type, user_id and location (a
// JSON encoded {"lat","lng"} object) are required, description and an image
// file are optional.
func (h *Handlers) handleCreateAlert(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.MaxUploadSize+1<<20)
	if err := c.Request.ParseMultipartForm(h.cfg.MaxUploadSize); err != nil && !stderrors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			h.fail(c, errors.WithCode(http.StatusRequestEntityTooLarge, "upload too large"))
			return
		}
		h.fail(c, errors.Validation("invalid form data"))
		return
	}

	alertType := c.PostForm("type")
	userID := c.PostForm("user_id")
	rawLocation := c.PostForm("location")
	if alertType == "" || userID == "" || rawLocation == "" {
		h.fail(c, errors.Validation("missing data to create the alert"))
		return
	}

	var loc locationRequest
	if err := json.Unmarshal([]byte(rawLocation), &loc); err != nil || loc.Lat == nil || loc.Lng == nil {
		h.fail(c, errors.Validation("invalid location data"))
		return
	}

	var description *string
	if d, ok := c.GetPostForm("description"); ok {
		description = &d
	}

	image, err := c.FormFile("image")
	if err != nil && !stderrors.Is(err, http.ErrMissingFile) && !stderrors.Is(err, http.ErrNotMultipart) {
		h.fail(c, errors.Validation("invalid image upload"))
		return
	}

	alert := models.Alert{
		Type:        alertType,
		Description: description,
		Lat:         *loc.Lat,
		Lng:         *loc.Lng,
		UserID:      userID,
	}
	var author *models.User
	err = h.conns.Acquire(c.Request.Context(), func(conn *gorm.DB) error {
		var key string
		if image != nil && image.Filename != "" {
			k, err := h.saveImage(c.Request.Context(), image)
			if err != nil {
				return err
			}
			key = k
			url := h.imageURL(key)
			alert.Image = &url
		}

		if _, err := models.InsertAlert(conn, &alert); err != nil {
			if key != "" {
				h.discardImage(c.Request.Context(), key)
			}
			return errors.Store(err, http.StatusBadRequest)
		}

		// the alert stays committed even when its author cannot be read back
		u, err := models.FindUserByID(conn, userID)
		if err != nil {
			return errors.Store(err, http.StatusInternalServerError)
		}
		if u == nil {
			return errors.NotFound("User not found")
		}
		author = u
		return nil
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	h.event("alert_created")
	h.log.Info("alert created", zap.Int64("id", alert.ID), zap.String("user_id", userID), zap.String("type", alertType))
	response.Created(c, AlertDTO[UserDTO]{
		ID:          alert.ID,
		Timestamp:   alert.Timestamp.UTC(),
		Type:        alert.Type,
		Description: alert.Description,
		Location:    Location{Lat: alert.Lat, Lng: alert.Lng},
		Image:       alert.Image,
		UserID:      alert.UserID,
		User:        toUserDTO(author),
	})
}

// handleGroupAlerts lists the alerts of every member of a group, newest
// first. Unknown groups and quiet groups both yield an empty list.
func (h *Handlers) handleGroupAlerts(c *gin.Context) {
	groupID, err := strconv.ParseInt(c.Param("groupId"), 10, 64)
	if err != nil || groupID < 0 {
		response.Fail(c, http.StatusNotFound, "Not Found")
		return
	}

	var rows []models.AlertWithAuthor
	err = h.conns.Acquire(c.Request.Context(), func(conn *gorm.DB) error {
		ids, err := models.ListGroupMemberUserIDs(conn, groupID)
		if err != nil {
			return errors.Store(err, http.StatusInternalServerError)
		}
		if len(ids) == 0 {
			return nil
		}
		rows, err = models.ListAlertsForUsers(conn, ids)
		if err != nil {
			return errors.Store(err, http.StatusInternalServerError)
		}
		return nil
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	out := make([]AlertDTO[MemberDTO], 0, len(rows))
	for i := range rows {
		out = append(out, toFeedAlertDTO(&rows[i]))
	}
	response.OK(c, out)
}
