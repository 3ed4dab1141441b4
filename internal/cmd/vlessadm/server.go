package vlessadm

import (
	"context"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/aqibshahzad4485/vless/pkg/config"
	"github.com/aqibshahzad4485/vless/pkg/core"
	"github.com/aqibshahzad4485/vless/pkg/deploy"
	"github.com/aqibshahzad4485/vless/pkg/manager"
	"github.com/aqibshahzad4485/vless/pkg/store"
	"github.com/aqibshahzad4485/vless/pkg/xray"
)

var ServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the admin HTTP API",
	Run:   serverExec,
}

func newConfig() (*config.Config, error) {
	conf, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	conf.InitLog()
	return conf, nil
}

func newStore(conf *config.Config) (*store.Store, error) {
	return store.Open(conf.DBPath)
}

func newManager(conf *config.Config, st *store.Store) *manager.Manager {
	return &manager.Manager{
		Store:         st,
		Deploy:        deploy.New(conf.DeployDir),
		Restarter:     xray.SystemdRestarter{},
		ConfigPath:    conf.XrayConfigPath,
		WhitelistPath: conf.WhitelistPath,
		Protocol:      conf.Protocol,
	}
}

func serverExec(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var server *core.Server
	app := fx.New(
		fx.Provide(
			newConfig,
			newStore,
			newManager,
			core.NewServer,
		),
		fx.Logger(log.StandardLogger()),
		fx.Populate(&server),
	)
	defer app.Stop(ctx)
	if err := app.Start(ctx); err != nil {
		log.Error(err)
		return
	}
	if err := server.Run(); err != nil {
		log.Error(err)
	}
}
