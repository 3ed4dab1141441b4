// Package manager keeps the user store, the daemon config and the
// whitelist mirror consistent across user lifecycle operations.
package manager

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/aqibshahzad4485/vless/pkg/deploy"
	"github.com/aqibshahzad4485/vless/pkg/link"
	"github.com/aqibshahzad4485/vless/pkg/model"
	"github.com/aqibshahzad4485/vless/pkg/store"
	"github.com/aqibshahzad4485/vless/pkg/xray"
)

var (
	// ErrUserNotFound reports a delete of a username with no stored row.
	ErrUserNotFound = errors.New("User not found")
	// ErrCollision reports a duplicate username whose existing credential
	// could not be resolved either.
	ErrCollision = errors.New("User collision error")
)

const (
	StatusDeleted = "deleted"
	// StatusDeletedDBOnly marks a delete that found no matching client
	// entry in the daemon config. The store row is gone either way.
	StatusDeletedDBOnly = "deleted_from_db_only"
)

type Manager struct {
	Store         *store.Store
	Deploy        *deploy.Metadata
	Restarter     xray.Restarter
	ConfigPath    string
	WhitelistPath string
	Protocol      string // inbound protocol tag, normally "vless"
	DefaultPort   int
}

type CreateResult struct {
	Username     string `json:"username"`
	CredentialID string `json:"uuid"`
	Link         string `json:"link"`
}

type DeleteResult struct {
	Status   string `json:"status"`
	Username string `json:"username"`
}

type BulkDeleteResult struct {
	DeletedCount int      `json:"deleted_count"`
	Users        []string `json:"users"`
}

type StatsResult struct {
	TotalUsers     int64
	ActiveLastHour int64
	History        []model.Event
}

func (m *Manager) protocol() string {
	if m.Protocol == "" {
		return "vless"
	}
	return m.Protocol
}

func (m *Manager) defaultPort() int {
	if m.DefaultPort == 0 {
		return 443
	}
	return m.DefaultPort
}

// generateUsername produces user_<8 hex chars>, retrying on the unlikely
// collision with an existing row.
func (m *Manager) generateUsername() string {
	for {
		name := "user_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
		if _, err := m.Store.GetUser(name); errors.Is(err, store.ErrNotFound) {
			return name
		}
	}
}

// CreateUser provisions a user in the store and mirrors it into the
// daemon config. Calling it again with the same username is idempotent:
// the stored credential is reused, and the config entry is re-applied
// unconditionally so a drifted config converges.
func (m *Manager) CreateUser(username string, persistent bool) (*CreateResult, error) {
	if username == "" {
		username = m.generateUsername()
	}
	user, created, err := m.Store.CreateUser(username, uuid.NewString(), persistent)
	if err != nil {
		log.WithField("username", username).Error(err)
		return nil, fmt.Errorf("%w: %s", ErrCollision, username)
	}
	if created {
		total, _ := m.Store.CountUsers()
		m.Store.RecordEvent(model.ActionCreate,
			fmt.Sprintf("User created: %s. Total: %d", username, total))
	}

	if persistent {
		m.syncWhitelist()
	}

	cfg, err := xray.LoadConfig(m.ConfigPath)
	if err != nil {
		return nil, err
	}
	if !cfg.AddOrUpdateClient(m.protocol(), username, user.CredentialID) {
		log.WithField("protocol", m.protocol()).Warn("no matching inbound in daemon config")
	}
	if err := xray.SaveConfig(m.ConfigPath, cfg, m.Restarter); err != nil {
		return nil, err
	}

	return &CreateResult{
		Username:     username,
		CredentialID: user.CredentialID,
		Link:         m.buildLink(username, user.CredentialID, cfg),
	}, nil
}

// DeleteUser removes the user from the store and from the daemon config.
// The whitelist mirror is rebuilt either way. The config is only touched
// after a found store row, and only saved when an entry was removed.
func (m *Manager) DeleteUser(username string) (*DeleteResult, error) {
	found, err := m.Store.DeleteUser(username)
	if err != nil {
		return nil, err
	}
	total, _ := m.Store.CountUsers()
	m.Store.RecordEvent(model.ActionDelete,
		fmt.Sprintf("User deleted: %s. Total: %d", username, total))
	m.syncWhitelist()
	if !found {
		return nil, ErrUserNotFound
	}

	cfg, err := xray.LoadConfig(m.ConfigPath)
	if err != nil {
		return nil, err
	}
	if !cfg.RemoveClient(m.protocol(), username) {
		log.WithField("username", username).Warn("user absent from daemon config")
		return &DeleteResult{Status: StatusDeletedDBOnly, Username: username}, nil
	}
	if err := xray.SaveConfig(m.ConfigPath, cfg, m.Restarter); err != nil {
		return nil, err
	}
	return &DeleteResult{Status: StatusDeleted, Username: username}, nil
}

// BulkDelete removes transient users, or every user when force is set.
// Individual failures are skipped; the result lists what actually went.
func (m *Manager) BulkDelete(force bool) (*BulkDeleteResult, error) {
	names, err := m.Store.Usernames(force)
	if err != nil {
		return nil, err
	}
	result := &BulkDeleteResult{Users: []string{}}
	for _, name := range names {
		if _, err := m.DeleteUser(name); err != nil {
			log.WithField("username", name).Warn(err)
			continue
		}
		result.DeletedCount++
		result.Users = append(result.Users, name)
	}
	return result, nil
}

func (m *Manager) ListUsers() ([]model.User, error) {
	return m.Store.ListUsers()
}

func (m *Manager) Stats() (*StatsResult, error) {
	total, err := m.Store.CountUsers()
	if err != nil {
		return nil, err
	}
	active, err := m.Store.CountActiveSince(time.Now().Add(-time.Hour))
	if err != nil {
		return nil, err
	}
	history, err := m.Store.RecentEvents(50)
	if err != nil {
		return nil, err
	}
	return &StatsResult{TotalUsers: total, ActiveLastHour: active, History: history}, nil
}

func (m *Manager) buildLink(username, credentialID string, cfg xray.Config) string {
	addr := m.Deploy.ServerAddress()
	port := cfg.InboundPort(m.protocol(), m.defaultPort())
	var mode link.Mode
	if m.Deploy.Mode() == deploy.ModeTLS {
		mode = link.TLS{SNI: m.Deploy.SNIDomain(addr)}
	} else {
		mode = link.REALITY{
			PublicKey: m.Deploy.RealityPublicKey(),
			ShortID:   m.Deploy.RealityShortID(),
		}
	}
	return link.Build(username, credentialID, addr, port, mode)
}

// syncWhitelist rewrites the mirror file with the current persistent
// usernames. The file is a regenerable cache; failures are logged only.
func (m *Manager) syncWhitelist() {
	if m.WhitelistPath == "" {
		return
	}
	names, err := m.Store.PersistentUsernames()
	if err != nil {
		log.Error(err)
		return
	}
	if err := os.WriteFile(m.WhitelistPath, []byte(strings.Join(names, "\n")), 0644); err != nil {
		log.WithField("path", m.WhitelistPath).Warn(err)
	}
}
