package utils

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskquest-api/internal/constants"
)

// PaginationParams holds the pagination parameters
type PaginationParams struct {
	Page   int
	Limit  int
	Offset int
}

// PaginationResponse represents the pagination metadata in API responses
type PaginationResponse struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// NewPaginationResponse builds the metadata block for a page of results
func NewPaginationResponse(page, limit int, total int64) PaginationResponse {
	totalPages := 0
	if limit > 0 {
		totalPages = int(total) / limit
		if int(total)%limit > 0 {
			totalPages++
		}
	}
	return PaginationResponse{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}

// GetPaginationParams extracts pagination parameters from the query string.
// Missing or non-numeric values fall back to the defaults instead of failing.
func GetPaginationParams(c *gin.Context) PaginationParams {
	return ParsePagination(c.Query("page"), c.Query("limit"))
}

// ParsePagination normalizes raw page and limit values
func ParsePagination(rawPage, rawLimit string) PaginationParams {
	page, err := strconv.Atoi(rawPage)
	if err != nil {
		page = constants.DefaultPage
	}
	limit, err := strconv.Atoi(rawLimit)
	if err != nil {
		limit = constants.DefaultPageSize
	}

	return NewPaginationParams(page, limit)
}

// NewPaginationParams clamps page and limit and computes the offset
func NewPaginationParams(page, limit int) PaginationParams {
	if page < constants.DefaultPage {
		page = constants.DefaultPage
	}
	if limit < constants.MinPageSize || limit > constants.MaxPageSize {
		limit = constants.DefaultPageSize
	}
	// Keep the offset within 32 bits so it cannot overflow on any platform.
	if maxPage := math.MaxInt32 / limit; page > maxPage {
		page = maxPage
	}

	return PaginationParams{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}
