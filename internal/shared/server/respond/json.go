package respond

import (
	"github.com/gin-gonic/gin"
)

// Page is the envelope for offset-paged listings.
type Page[T any] struct {
	Items  []T `json:"items"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// JSON writes a JSON response with the given status. Match payloads are
// per-subject, so responses are never cacheable by intermediaries.
func JSON(c *gin.Context, status int, payload any) {
	c.Header("Cache-Control", "no-store")
	c.JSON(status, payload)
}

// Paged writes items as a Page. A nil slice is written as [].
func Paged[T any](c *gin.Context, status int, items []T, limit, offset int) {
	if items == nil {
		items = []T{}
	}
	JSON(c, status, Page[T]{Items: items, Limit: limit, Offset: offset})
}
