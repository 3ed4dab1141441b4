package vlessadm

import (
	"github.com/spf13/cobra"
)

var cfgFile string

var RootCmd = &cobra.Command{
	Use:   "vlessadm",
	Short: "Administrative control plane for a VLESS proxy server",
	Long: "vlessadm provisions proxy credentials, keeps the xray config in sync\n" +
		"with its user database, and evicts idle users.",
}

func init() {
	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to vlessadm.toml")
	RootCmd.AddCommand(ServerCmd)
	RootCmd.AddCommand(ReapCmd)
	RootCmd.AddCommand(TokenCmd)
}
