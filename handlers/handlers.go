package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"ecom-backend/config"
	"ecom-backend/models"
)

// Handler bundles the database handle and configuration shared by every
// entity module.
type Handler struct {
	DB  *gorm.DB
	Cfg *config.Config
}

// AuthMiddleware gates protected routes behind the shared-secret header.
// Missing and invalid tokens are reported identically.
func AuthMiddleware(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("API-Authorization") != token {
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.Error("Invalid or expired token"))
			return
		}
		c.Next()
	}
}

// apiError is a client-attributable failure raised inside an operation and
// mapped to its HTTP status at the boundary. Anything else that reaches
// respondError is treated as a database/system error.
type apiError struct {
	status  int
	message string
}

func (e *apiError) Error() string { return e.message }

func badRequest(message string) *apiError {
	return &apiError{status: http.StatusBadRequest, message: message}
}

func notFound(message string) *apiError {
	return &apiError{status: http.StatusNotFound, message: message}
}

func unauthorized(message string) *apiError {
	return &apiError{status: http.StatusUnauthorized, message: message}
}

func respondError(c *gin.Context, err error) {
	var ae *apiError
	if errors.As(err, &ae) {
		c.JSON(ae.status, models.Error(ae.message))
		return
	}
	// Constraint violations that race past a pre-check are still the
	// client's doing, not a server fault.
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, gorm.ErrForeignKeyViolated) {
		c.JSON(http.StatusBadRequest, models.Error("Data integrity error: "+err.Error()))
		return
	}
	c.JSON(http.StatusInternalServerError, models.Error("Database error: "+err.Error()))
}

// pageParams parses page/limit query values. Absent values take the
// defaults; supplied values must satisfy page >= 1 and 1 <= limit <= 100.
func pageParams(c *gin.Context) (page, limit int, err error) {
	page = 1
	if raw := c.Query("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 1 {
			return 0, 0, badRequest("Invalid page")
		}
	}
	limit = 10
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > 100 {
			return 0, 0, badRequest("Invalid limit")
		}
	}
	return page, limit, nil
}

// searchLimit parses the limit for search endpoints, bounded to 1..50.
func searchLimit(c *gin.Context) (int, error) {
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		var err error
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > 50 {
			return 0, badRequest("Invalid limit")
		}
	}
	return limit, nil
}

func paramID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, badRequest("Invalid " + name)
	}
	return uint(id), nil
}

func queryUint(c *gin.Context, name string) (*uint, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil, badRequest("Invalid " + name)
	}
	u := uint(v)
	return &u, nil
}
