package xray

import (
	"encoding/json"
	"os"

	log "github.com/sirupsen/logrus"
)

// Config is the daemon's configuration document. Everything except the
// clients array of matching inbounds is opaque and preserved as-is, so
// the adapter survives config schema changes outside its control.
type Config map[string]interface{}

func emptyConfig() Config {
	return Config{"inbounds": []interface{}{}, "outbounds": []interface{}{}}
}

// LoadConfig reads the daemon config, returning an empty skeleton when
// the file does not exist yet.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return emptyConfig(), nil
	}
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveConfig writes the config and asks the restarter to bounce the
// daemon so the change takes effect. The restart is fire-and-forget: a
// failure is logged, never returned, because the write itself is the
// operation's success criterion.
func SaveConfig(path string, cfg Config, r Restarter) error {
	data, err := json.MarshalIndent(cfg, "", "    ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}
	if r != nil {
		go func() {
			if err := r.Restart(); err != nil {
				log.Error(err)
			}
		}()
	}
	return nil
}

func (c Config) inbounds() []interface{} {
	in, _ := c["inbounds"].([]interface{})
	return in
}

func inboundWithProtocol(in interface{}, protocol string) (map[string]interface{}, bool) {
	m, ok := in.(map[string]interface{})
	if !ok {
		return nil, false
	}
	p, _ := m["protocol"].(string)
	return m, p == protocol
}

func clientsOf(inbound map[string]interface{}) ([]interface{}, map[string]interface{}) {
	settings, ok := inbound["settings"].(map[string]interface{})
	if !ok {
		settings = map[string]interface{}{}
		inbound["settings"] = settings
	}
	clients, _ := settings["clients"].([]interface{})
	return clients, settings
}

// AddOrUpdateClient inserts {id, email} into the first inbound of the
// given protocol, or rewrites the id of an existing entry with the same
// email. Returns false when no inbound of that protocol exists and the
// config is left unchanged.
func (c Config) AddOrUpdateClient(protocol, username, credentialID string) bool {
	for _, in := range c.inbounds() {
		inbound, ok := inboundWithProtocol(in, protocol)
		if !ok {
			continue
		}
		clients, settings := clientsOf(inbound)
		for _, cl := range clients {
			entry, ok := cl.(map[string]interface{})
			if !ok {
				continue
			}
			if email, _ := entry["email"].(string); email == username {
				if id, _ := entry["id"].(string); id != credentialID {
					entry["id"] = credentialID
				}
				return true
			}
		}
		settings["clients"] = append(clients, map[string]interface{}{
			"id":    credentialID,
			"email": username,
		})
		return true
	}
	return false
}

// RemoveClient drops every client entry with the given email from all
// inbounds of the protocol. Reports whether anything changed.
func (c Config) RemoveClient(protocol, username string) bool {
	changed := false
	for _, in := range c.inbounds() {
		inbound, ok := inboundWithProtocol(in, protocol)
		if !ok {
			continue
		}
		clients, settings := clientsOf(inbound)
		kept := make([]interface{}, 0, len(clients))
		for _, cl := range clients {
			if entry, ok := cl.(map[string]interface{}); ok {
				if email, _ := entry["email"].(string); email == username {
					continue
				}
			}
			kept = append(kept, cl)
		}
		if len(kept) != len(clients) {
			settings["clients"] = kept
			changed = true
		}
	}
	return changed
}

// InboundPort returns the listening port of the first inbound with the
// given protocol, or fallback when absent. JSON numbers arrive as
// float64.
func (c Config) InboundPort(protocol string, fallback int) int {
	for _, in := range c.inbounds() {
		inbound, ok := inboundWithProtocol(in, protocol)
		if !ok {
			continue
		}
		if port, ok := inbound["port"].(float64); ok {
			return int(port)
		}
	}
	return fallback
}
