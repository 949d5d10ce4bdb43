package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tg_meal_planner_bot/internal/logging"
)

const mongoPingTimeout = 2 * time.Second

type healthResponse struct {
	Status string       `json:"status"`
	Mongo  string       `json:"mongo,omitempty"`
	Stats  *healthStats `json:"stats,omitempty"`
}

type healthStats struct {
	Users  int64 `json:"users"`
	Dishes int64 `json:"dishes"`
}

// handleHealth answers container probes with storage connectivity and basic
// collection counts. Counts are best-effort and omitted on failure.
func (s *Server) handleHealth(c *gin.Context) {
	resp := healthResponse{Status: "ok"}

	ctx := c.Request.Context()

	if s.deps.Pinger == nil {
		resp.Status = "degraded"
		resp.Mongo = "error"
		s.deps.Logger.WithField("event", "health_mongo_missing").Warn("mongo checker is not configured for health endpoint")
	} else {
		pingCtx, cancel := context.WithTimeout(ctx, mongoPingTimeout)
		err := s.deps.Pinger.Ping(pingCtx)
		cancel()

		if err != nil {
			resp.Status = "degraded"
			resp.Mongo = "error"
			s.deps.Logger.WithFields(logging.Fields{
				"event": "health_mongo_error",
			}).WithError(err).Warn("mongo ping failed during health check")
		}
	}

	if resp.Status == "ok" && s.deps.Stats != nil {
		users, usersErr := s.deps.Stats.CountUsers(ctx)
		dishes, dishesErr := s.deps.Stats.CountDishes(ctx)
		if usersErr == nil && dishesErr == nil {
			resp.Stats = &healthStats{Users: users, Dishes: dishes}
		}
	}

	c.JSON(http.StatusOK, resp)
}
