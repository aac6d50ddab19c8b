package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Helper functions for parsing query parameters

// getIntParam safely parses an integer query parameter with a default value
func getIntParam(c *gin.Context, param string, defaultValue int) int {
	value := c.Query(param)
	if value == "" {
		return defaultValue
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return parsed
}

// getBoolParam safely parses a boolean query parameter, nil when absent
func getBoolParam(c *gin.Context, param string) *bool {
	value := c.Query(param)
	if value == "" {
		return nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return nil
	}
	return &parsed
}

// getUUIDParam parses an optional UUID query parameter
func getUUIDParam(c *gin.Context, param string) *uuid.UUID {
	value := c.Query(param)
	if value == "" {
		return nil
	}
	parsed, err := uuid.Parse(value)
	if err != nil {
		return nil
	}
	return &parsed
}

// getTimeParam parses an optional RFC 3339 query parameter
func getTimeParam(c *gin.Context, param string) *time.Time {
	value := c.Query(param)
	if value == "" {
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil
	}
	return &parsed
}

// getStageParam parses an optional integer query parameter, nil when absent
func getStageParam(c *gin.Context, param string) *int {
	value := c.Query(param)
	if value == "" {
		return nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return nil
	}
	return &parsed
}
