package deploy

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// PlaceholderAddress is handed out when neither the address file nor the
// external lookup yields anything. Link generation never fails outright;
// the operator sees the placeholder and fixes the deployment.
const PlaceholderAddress = "YOUR_IP"

const (
	ModeTLS     = "tls"
	ModeREALITY = "reality"
)

// Metadata reads the deployment files produced by the setup tooling.
// Every accessor degrades to a default; none of them return errors.
type Metadata struct {
	Dir       string
	LookupURL string // external IP discovery endpoint
}

func New(dir string) *Metadata {
	return &Metadata{Dir: dir, LookupURL: "https://api.ipify.org"}
}

func (m *Metadata) read(name string) string {
	data, err := os.ReadFile(filepath.Join(m.Dir, name))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// ServerAddress resolves the address clients dial: the deployment file,
// else the external lookup, else the placeholder.
func (m *Metadata) ServerAddress() string {
	if addr := m.read("server_ip.txt"); addr != "" && addr != PlaceholderAddress {
		return addr
	}
	if addr := m.discover(); addr != "" {
		return addr
	}
	return PlaceholderAddress
}

func (m *Metadata) discover() string {
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(m.LookupURL)
	if err != nil {
		log.Warn(err)
		return ""
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Warn(err)
		return ""
	}
	return strings.TrimSpace(string(body))
}

// Mode returns the connection mode, "reality" unless the mode file says
// otherwise.
func (m *Metadata) Mode() string {
	if mode := m.read("connection_mode.txt"); mode != "" {
		return mode
	}
	return ModeREALITY
}

// SNIDomain is the TLS-mode SNI. When no domain file exists and the
// server address itself looks like a domain name, the address is used.
func (m *Metadata) SNIDomain(serverAddress string) string {
	if domain := m.read("server_domain.txt"); domain != "" {
		return domain
	}
	if serverAddress != "" && serverAddress != PlaceholderAddress && !isDigit(serverAddress[0]) {
		return serverAddress
	}
	return ""
}

func (m *Metadata) RealityPublicKey() string {
	return m.read("reality_pub.txt")
}

func (m *Metadata) RealityShortID() string {
	return m.read("reality_shortid.txt")
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
