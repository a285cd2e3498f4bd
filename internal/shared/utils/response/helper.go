package response

import (
	"math"

	"github.com/gin-gonic/gin"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errors,
	})
}

// Success writes a success envelope
func Success(c *gin.Context, code int, message string, data interface{}) {
	RespondJSON(c, StatusSuccess, code, message, data, nil)
}

// Error writes an error envelope and aborts the chain
func Error(c *gin.Context, code int, message string, details interface{}) {
	RespondJSON(c, StatusError, code, message, nil, details)
	c.Abort()
}

// NewPagination computes total pages for a page/limit pair
func NewPagination(page, limit int, totalCount int64) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = int(math.Ceil(float64(totalCount) / float64(limit)))
	}
	return Pagination{
		Page:       page,
		Limit:      limit,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}
}
