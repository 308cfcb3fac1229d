package helpers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

func StringToInt(s string) (int, error) {
	return strconv.Atoi(s)
}

// Pagination parses page/limit query params. Limit is clamped to 5..50
// so a client cannot request unbounded pages.
func Pagination(c *gin.Context) (page, limit int) {
	page, err := StringToInt(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err = StringToInt(c.DefaultQuery("limit", "10"))
	if err != nil {
		limit = 10
	}
	if limit < 5 {
		limit = 5
	}
	if limit > 50 {
		limit = 50
	}
	return page, limit
}

// FileURL builds the public URL for a stored upload path, or "" when no
// file was stored.
func FileURL(c *gin.Context, storedPath string) string {
	if storedPath == "" {
		return ""
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	rel := strings.TrimPrefix(strings.ReplaceAll(storedPath, "\\", "/"), "./")
	return scheme + "://" + c.Request.Host + "/" + rel
}
