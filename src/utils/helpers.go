package utils

import (
	"vms/src/types"

	"github.com/gin-gonic/gin"
)

// ParsePagination binds page/limit query params with sane defaults.
func ParsePagination(ctx *gin.Context) (types.PaginationQuery, error) {
	var query types.PaginationQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		return query, err
	}
	if query.Page < 1 {
		query.Page = 1
	}
	if query.Limit < 1 {
		query.Limit = 20
	}
	return query, nil
}
