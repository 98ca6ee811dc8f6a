package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"drivebox/services"
)

// respondError 把领域错误映射为稳定的 HTTP 状态码
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
