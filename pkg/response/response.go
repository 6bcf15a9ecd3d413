package response

import (
	"net/http"

	"NeighborWatch/pkg/errors"

	"github.com/gin-gonic/gin"
)

// Detail is the body of every failed request.
type Detail struct {
	Detail string `json:"detail"`
}

// Fail aborts the request with {"detail": msg}.
func Fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, Detail{Detail: msg})
}

// Error aborts with the status carried by err, 500 when it has none.
func Error(c *gin.Context, err error) {
	status := errors.GetCode(err)
	if status == 0 {
		status = http.StatusInternalServerError
	}
	_ = c.Error(err)
	Fail(c, status, errors.GetMessage(err))
}

func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}
