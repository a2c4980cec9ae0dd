package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Comment mutation windows, measured from created_at. A request at
// exactly the boundary instant is still allowed.
const (
	CommentUpdateWindow = 2 * time.Minute
	CommentDeleteWindow = 1 * time.Minute
)

// WeekdayGate rejects mutating requests outside Monday-Friday. Reads
// pass on any day.
func WeekdayGate() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
			if !isWorkingDay(Now()) {
				c.JSON(http.StatusForbidden, gin.H{"error": "API is only available Monday through Friday"})
				c.Abort()
				return
			}
		}
		c.Next()
	}
}

func isWorkingDay(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// withinWindow reports whether a comment created at createdAt may still
// be mutated at instant now.
func withinWindow(createdAt, now time.Time, window time.Duration) bool {
	return now.Sub(createdAt) <= window
}

// isCommentOwner reports whether userID may mutate a comment owned by
// ownerID. Anonymous comments (nil owner) have nobody to authorize.
func isCommentOwner(ownerID *uuid.UUID, userID *uuid.UUID) bool {
	if ownerID == nil || userID == nil {
		return false
	}
	return *ownerID == *userID
}
