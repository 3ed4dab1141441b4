package core

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/aqibshahzad4485/vless/pkg/manager"
	"github.com/aqibshahzad4485/vless/pkg/webapi"
)

func (server *Server) PostUser(c *gin.Context) {
	request := &webapi.PostUserRequest{}
	if err := c.BindJSON(request); err != nil {
		log.Error(err)
		return
	}
	result, err := server.Manager.CreateUser(request.Username, request.Persistent)
	if errors.Is(err, manager.ErrCollision) {
		c.JSON(http.StatusOK, webapi.CollisionResponse{
			Error:    manager.ErrCollision.Error(),
			Username: request.Username,
		})
		return
	}
	if err != nil {
		log.Error(err)
		c.JSON(http.StatusInternalServerError, webapi.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// DeleteUser returns 200 with an error payload when the user does not
// exist; callers inspect the body, not the status code.
func (server *Server) DeleteUser(c *gin.Context) {
	username := c.Param("username")
	result, err := server.Manager.DeleteUser(username)
	if errors.Is(err, manager.ErrUserNotFound) {
		c.JSON(http.StatusOK, webapi.ErrorResponse{Error: manager.ErrUserNotFound.Error()})
		return
	}
	if err != nil {
		log.Error(err)
		c.JSON(http.StatusInternalServerError, webapi.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (server *Server) GetUsers(c *gin.Context) {
	users, err := server.Manager.ListUsers()
	if err != nil {
		log.Error(err)
		c.JSON(http.StatusInternalServerError, webapi.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, webapi.GetUsers(users))
}

func (server *Server) DeleteAllUsers(c *gin.Context) {
	force, _ := strconv.ParseBool(c.DefaultQuery("force", "false"))
	result, err := server.Manager.BulkDelete(force)
	if err != nil {
		log.Error(err)
		c.JSON(http.StatusInternalServerError, webapi.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (server *Server) GetStats(c *gin.Context) {
	stats, err := server.Manager.Stats()
	if err != nil {
		log.Error(err)
		c.JSON(http.StatusInternalServerError, webapi.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, webapi.GetStats(stats.TotalUsers, stats.ActiveLastHour, stats.History))
}

// PostToken rotates the shared secret: the given token, or a fresh
// random one when the body leaves it empty. Subsequent requests must
// present the new key.
func (server *Server) PostToken(c *gin.Context) {
	request := &webapi.PostTokenRequest{}
	if err := c.BindJSON(request); err != nil {
		log.Error(err)
		return
	}
	token := request.Token
	if token == "" {
		buf := make([]byte, 16)
		if _, err := rand.Read(buf); err != nil {
			log.Error(err)
			c.JSON(http.StatusInternalServerError, webapi.ErrorResponse{Error: err.Error()})
			return
		}
		token = hex.EncodeToString(buf)
	}
	if err := os.WriteFile(server.Conf.APIKeyFile, []byte(token), 0600); err != nil {
		log.Error(err)
		c.JSON(http.StatusInternalServerError, webapi.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, webapi.PostTokenResponse{Status: "updated", NewToken: token})
}
