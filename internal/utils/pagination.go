package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const defaultPageSize = 10

// Pagination reads ?page= and ?size= with sane fallbacks.
func Pagination(ctx *gin.Context) (page, size int) {
	page, err := strconv.Atoi(ctx.Query("page"))
	if err != nil || page < 1 {
		page = 1
	}

	size, err = strconv.Atoi(ctx.Query("size"))
	if err != nil || size < 1 || size > 100 {
		size = defaultPageSize
	}

	return page, size
}
