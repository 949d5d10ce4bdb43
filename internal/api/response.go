package api

import "github.com/gin-gonic/gin"

func errorBody(message string) gin.H {
	return gin.H{"error": message}
}

func (s *Server) logHandlerError(event string, err error) {
	s.deps.Logger.WithField("event", event).WithError(err).Error("request failed")
}
