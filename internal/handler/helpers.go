package handler

import (
	"strconv"
	"time"

	"cafe-pos/internal/repository"

	"github.com/gofiber/fiber/v2"
)

// User info from JWT context (set by auth middleware)
func getUserID(c *fiber.Ctx) string {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return "system"
	}
	return userID
}

func getUserName(c *fiber.Ctx) string {
	userName, ok := c.Locals("user_name").(string)
	if !ok || userName == "" {
		return "Unknown"
	}
	return userName
}

func parseUintParam(c *fiber.Ctx, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func pageFromQuery(c *fiber.Ctx) repository.Page {
	return repository.Page{
		Page:    c.QueryInt("page", 1),
		PerPage: c.QueryInt("per_page", 20),
	}.Normalize()
}

const dateLayout = "2006-01-02"

// dateRange reads from/to (YYYY-MM-DD, inclusive) and defaults to the last
// `days` days ending now.
func dateRange(c *fiber.Ctx, days int) (time.Time, time.Time, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -days)

	if v := c.Query("from"); v != "" {
		parsed, err := time.ParseInLocation(dateLayout, v, time.Local)
		if err != nil {
			return start, end, err
		}
		start = parsed
	}
	if v := c.Query("to"); v != "" {
		parsed, err := time.ParseInLocation(dateLayout, v, time.Local)
		if err != nil {
			return start, end, err
		}
		end = parsed.Add(24*time.Hour - time.Nanosecond)
	}
	return start, end, nil
}
