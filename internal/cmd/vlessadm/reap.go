package vlessadm

import (
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/aqibshahzad4485/vless/pkg/xray"
)

var reapEvery time.Duration

var ReapCmd = &cobra.Command{
	Use:   "reap",
	Short: "Delete idle non-persistent users",
	Long: "Reconciles traffic counters from xray, then deletes every non-persistent\n" +
		"user with no activity inside the idle window. Intended to run from cron;\n" +
		"use --every to loop in-process instead.",
	Run: reapExec,
}

func init() {
	ReapCmd.Flags().DurationVar(&reapEvery, "every", 0, "run periodically at this interval instead of once")
}

func reapExec(cmd *cobra.Command, args []string) {
	conf, err := newConfig()
	if err != nil {
		log.Fatal(err)
	}
	st, err := newStore(conf)
	if err != nil {
		log.Fatal(err)
	}
	mgr := newManager(conf, st)
	stats := xray.CLIStats{Binary: conf.XrayBinary, Server: conf.XrayStatsServer}

	mgr.Reap(stats, conf.IdleTimeout())
	if reapEvery <= 0 {
		return
	}
	for range time.Tick(reapEvery) {
		mgr.Reap(stats, conf.IdleTimeout())
	}
}
