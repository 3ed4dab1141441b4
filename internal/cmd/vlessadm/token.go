package vlessadm

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var TokenCmd = &cobra.Command{
	Use:   "token [value]",
	Short: "Rotate the API key file",
	Long: "Writes the given token, or a fresh random one, to the api key file.\n" +
		"This is the recovery path when the current key is lost.",
	Args: cobra.MaximumNArgs(1),
	Run:  tokenExec,
}

func tokenExec(cmd *cobra.Command, args []string) {
	conf, err := newConfig()
	if err != nil {
		log.Fatal(err)
	}
	var token string
	if len(args) > 0 {
		token = args[0]
	} else {
		buf := make([]byte, 16)
		if _, err := rand.Read(buf); err != nil {
			log.Fatal(err)
		}
		token = hex.EncodeToString(buf)
	}
	if err := os.WriteFile(conf.APIKeyFile, []byte(token), 0600); err != nil {
		log.Fatal(err)
	}
	fmt.Println(token)
}
