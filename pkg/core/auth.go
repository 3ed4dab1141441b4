package core

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/aqibshahzad4485/vless/pkg/webapi"
)

// Authenticate validates the X-API-Key header against the key file. The
// file may hold several keys, one per line. A missing key file is a
// server misconfiguration, not a client error.
func (server *Server) Authenticate(c *gin.Context) {
	data, err := os.ReadFile(server.Conf.APIKeyFile)
	if err != nil {
		log.WithField("path", server.Conf.APIKeyFile).Error(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, webapi.ErrorResponse{
			Error: "Server not configured correctly (missing api key file)",
		})
		return
	}
	key := c.GetHeader("X-API-Key")
	if key != "" {
		for _, valid := range strings.Split(string(data), "\n") {
			if valid = strings.TrimSpace(valid); valid != "" && valid == key {
				c.Next()
				return
			}
		}
	}
	c.AbortWithStatusJSON(http.StatusForbidden, webapi.ErrorResponse{Error: "Invalid API Key"})
}
