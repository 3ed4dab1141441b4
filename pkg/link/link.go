// Package link formats shareable vless:// connection URIs.
package link

import (
	"fmt"
)

// DefaultCamouflageSNI matches the server-side REALITY dest configured
// by the deployment tooling.
const DefaultCamouflageSNI = "www.google.com"

// Mode selects how the URI encodes transport camouflage.
type Mode interface {
	query() string
}

// TLS is plain TLS with an optional SNI.
type TLS struct {
	SNI string
}

func (t TLS) query() string {
	q := "security=tls&type=tcp&headerType=none"
	if t.SNI != "" {
		q += "&sni=" + t.SNI
	}
	return q
}

// REALITY carries the key material clients need for the REALITY
// handshake. CamouflageSNI must match the domain the server borrows.
type REALITY struct {
	PublicKey     string
	ShortID       string
	CamouflageSNI string
}

func (r REALITY) query() string {
	sni := r.CamouflageSNI
	if sni == "" {
		sni = DefaultCamouflageSNI
	}
	return fmt.Sprintf("security=reality&sni=%s&fp=chrome&type=tcp&pbk=%s&sid=%s",
		sni, r.PublicKey, r.ShortID)
}

// Build formats the connection URI. It never fails: whatever the inputs,
// a string comes back.
func Build(username, credentialID, addr string, port int, mode Mode) string {
	return fmt.Sprintf("vless://%s@%s:%d?encryption=none&%s#%s",
		credentialID, addr, port, mode.query(), username)
}
