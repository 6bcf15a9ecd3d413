package handlers

import (
	"context"
	stderrors "errors"
	"mime/multipart"
	"net/http"
	"path"
	"strings"

	"NeighborWatch/pkg/errors"
	"NeighborWatch/pkg/response"
	stores "NeighborWatch/pkg/storage"
	"NeighborWatch/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const uploadsPrefix = "/uploads/"

// handleUpload streams a stored image back. Keys that are not flat,
// sanitized names are answered like missing files.
func (h *Handlers) handleUpload(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("filename"), "/")
	if !stores.ValidKey(key) {
		response.Fail(c, http.StatusNotFound, "File not found")
		return
	}

	obj, err := h.store.Read(c.Request.Context(), key)
	if err != nil {
		if stderrors.Is(err, stores.ErrNotFound) || stderrors.Is(err, stores.ErrInvalidKey) {
			response.Fail(c, http.StatusNotFound, "File not found")
			return
		}
		h.fail(c, errors.Unexpected(err))
		return
	}
	defer obj.Body.Close()

	c.Header("Cache-Control", "public, max-age=86400")
	c.Header("X-Content-Type-Options", "nosniff")
	c.DataFromReader(http.StatusOK, obj.Size, obj.ContentType, obj.Body, nil)
}

const maxNameAttempts = 5

// saveImage persists an uploaded file under its sanitized name and returns
// the key. A name already taken gets a short random suffix; the store
// refuses to replace an existing object, so concurrent uploads of the same
// name each end up with their own key.
func (h *Handlers) saveImage(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	name := util.SecureFilename(fh.Filename)
	if name == "" {
		name = "upload-" + uuid.NewString()
	}

	key := name
	if exists, err := h.store.Exists(ctx, key); err != nil {
		return "", errors.Unexpected(err)
	} else if exists {
		key = suffixed(name)
	}

	for attempt := 1; ; attempt++ {
		err := h.writeUpload(ctx, key, fh)
		if err == nil {
			h.event("image_stored")
			return key, nil
		}
		if !stderrors.Is(err, stores.ErrExists) {
			return "", err
		}
		if attempt == maxNameAttempts {
			return "", errors.Unexpected(err)
		}
		key = suffixed(name)
	}
}

func (h *Handlers) writeUpload(ctx context.Context, key string, fh *multipart.FileHeader) error {
	f, err := fh.Open()
	if err != nil {
		return errors.Validation("invalid image upload")
	}
	defer f.Close()

	if err := h.store.Write(ctx, key, f); err != nil {
		if stderrors.Is(err, stores.ErrExists) {
			return err
		}
		return errors.Unexpected(err)
	}
	return nil
}

func suffixed(name string) string {
	ext := path.Ext(name)
	return strings.TrimSuffix(name, ext) + "-" + uuid.NewString()[:8] + ext
}

func (h *Handlers) discardImage(ctx context.Context, key string) {
	if err := h.store.Delete(ctx, key); err != nil {
		h.log.Warn("failed to remove orphaned upload", zap.String("key", key), zap.Error(err))
	}
}

// imageURL is the path clients use to fetch key, prefixed with the public
// base URL when one is configured.
func (h *Handlers) imageURL(key string) string {
	return strings.TrimRight(h.cfg.PublicBaseURL, "/") + uploadsPrefix + key
}
