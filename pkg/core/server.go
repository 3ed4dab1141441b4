package core

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"go.uber.org/fx"

	"github.com/aqibshahzad4485/vless/pkg/config"
	"github.com/aqibshahzad4485/vless/pkg/manager"
)

// Server is the admin HTTP API in front of the lifecycle manager.
type Server struct {
	fx.Lifecycle
	Conf    *config.Config
	Manager *manager.Manager
	engine  *gin.Engine
	http    *http.Server
}

// NewServer builds the gin engine with all routes behind the API key
// middleware. lc may be nil outside an fx app (tests).
func NewServer(lc fx.Lifecycle, conf *config.Config, mgr *manager.Manager) *Server {
	server := &Server{
		Lifecycle: lc,
		Conf:      conf,
		Manager:   mgr,
	}
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(server.Authenticate)
	engine.POST("/user", server.PostUser)
	engine.DELETE("/user/:username", server.DeleteUser)
	engine.GET("/users", server.GetUsers)
	engine.DELETE("/users/delete_all", server.DeleteAllUsers)
	engine.GET("/stats", server.GetStats)
	engine.POST("/token/update", server.PostToken)
	server.engine = engine
	server.http = &http.Server{Addr: conf.ListenAddr, Handler: engine}

	if lc != nil {
		server.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				log.WithField("addr", conf.ListenAddr).Info("api server start")
				return nil
			},
			OnStop: func(ctx context.Context) error {
				log.Info("api server shutdown")
				return server.http.Shutdown(ctx)
			},
		})
	}
	return server
}

// Engine exposes the router for in-process serving.
func (server *Server) Engine() http.Handler {
	return server.engine
}

func (server *Server) Run() error {
	err := server.http.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Error(err)
		return err
	}
	return nil
}
