package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ocordel/chantier-api/internal/domain/faults"
)

// fail maps the domain error taxonomy onto HTTP: validation 400,
// not-found 404, invalid transition 409 (with the observed source
// status), anything else 500.
func (h *Handler) fail(c *gin.Context, err error) {
	var it *faults.InvalidTransitionError
	if errors.As(err, &it) {
		c.JSON(http.StatusConflict, gin.H{
			"message":   it.Error(),
			"from":      it.From,
			"attempted": it.Attempted,
		})
		return
	}
	if faults.IsValidation(err) {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if faults.IsNotFound(err) {
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
		return
	}
	h.log.Error("request failed", "path", c.FullPath(), "err", err)
	c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid " + name})
		return 0, false
	}
	return id, true
}
