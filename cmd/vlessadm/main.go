package main

import (
	log "github.com/sirupsen/logrus"

	vlessadm "github.com/aqibshahzad4485/vless/internal/cmd/vlessadm"
)

func main() {
	if err := vlessadm.RootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
