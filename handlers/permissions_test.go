package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// 2024-03-04 is a Monday.
func day(offset int) time.Time {
	return time.Date(2024, 3, 4+offset, 10, 0, 0, 0, time.UTC)
}

func gateRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	group := router.Group("/", WeekdayGate())
	ok := func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) }
	group.GET("/things/", ok)
	group.POST("/things/", ok)
	group.PUT("/things/:id/", ok)
	group.DELETE("/things/:id/", ok)
	return router
}

func TestWeekdayGateMutations(t *testing.T) {
	router := gateRouter()
	defer func() { Now = time.Now }()

	tests := []struct {
		name       string
		dayOffset  int
		method     string
		path       string
		wantStatus int
	}{
		{"monday post", 0, http.MethodPost, "/things/", http.StatusOK},
		{"tuesday put", 1, http.MethodPut, "/things/1/", http.StatusOK},
		{"wednesday delete", 2, http.MethodDelete, "/things/1/", http.StatusOK},
		{"thursday post", 3, http.MethodPost, "/things/", http.StatusOK},
		{"friday post", 4, http.MethodPost, "/things/", http.StatusOK},
		{"saturday post", 5, http.MethodPost, "/things/", http.StatusForbidden},
		{"saturday delete", 5, http.MethodDelete, "/things/1/", http.StatusForbidden},
		{"sunday put", 6, http.MethodPut, "/things/1/", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fixed := day(tt.dayOffset)
			Now = func() time.Time { return fixed }

			w := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, tt.path, nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusForbidden {
				assert.Contains(t, w.Body.String(), "Monday through Friday")
			}
		})
	}
}

func TestWeekdayGateAllowsWeekendReads(t *testing.T) {
	router := gateRouter()
	defer func() { Now = time.Now }()

	saturday := day(5)
	Now = func() time.Time { return saturday }

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/things/", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWithinWindow(t *testing.T) {
	created := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		elapsed time.Duration
		window  time.Duration
		want    bool
	}{
		{"delete at 30s", 30 * time.Second, CommentDeleteWindow, true},
		{"delete at the 1 minute boundary", time.Minute, CommentDeleteWindow, true},
		{"delete at 90s", 90 * time.Second, CommentDeleteWindow, false},
		{"update at 1 minute", time.Minute, CommentUpdateWindow, true},
		{"update at the 2 minute boundary", 2 * time.Minute, CommentUpdateWindow, true},
		{"update at 3 minutes", 3 * time.Minute, CommentUpdateWindow, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := withinWindow(created, created.Add(tt.elapsed), tt.window)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsWorkingDay(t *testing.T) {
	for offset := 0; offset < 5; offset++ {
		assert.True(t, isWorkingDay(day(offset)))
	}
	assert.False(t, isWorkingDay(day(5)))
	assert.False(t, isWorkingDay(day(6)))
}
