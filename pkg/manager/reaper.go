package manager

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/aqibshahzad4485/vless/pkg/xray"
)

// DefaultIdleThreshold is used when no threshold is configured.
const DefaultIdleThreshold = 3 * time.Hour

// Reap reconciles traffic first, then deletes every transient user whose
// last activity predates the threshold. A zero last_active means the
// timestamp was never set or never parsed; such users survive the pass.
// Returns the number of users deleted.
func (m *Manager) Reap(src xray.StatsSource, threshold time.Duration) int {
	if src != nil {
		m.Reconcile(src)
	}
	if threshold <= 0 {
		threshold = DefaultIdleThreshold
	}
	cutoff := time.Now().Add(-threshold)

	users, err := m.Store.ListUsers()
	if err != nil {
		log.Error(err)
		return 0
	}
	deleted := 0
	for _, u := range users {
		if u.IsPersistent {
			continue
		}
		lastActive := u.LastActive
		if lastActive.IsZero() {
			lastActive = time.Now()
		}
		if lastActive.Before(cutoff) {
			log.WithFields(log.Fields{
				"username":    u.Username,
				"last_active": u.LastActive,
			}).Info("deleting idle user")
			if _, err := m.DeleteUser(u.Username); err != nil {
				log.WithField("username", u.Username).Warn(err)
				continue
			}
			deleted++
		}
	}
	if deleted > 0 {
		log.WithField("count", deleted).Info("cleaned up idle users")
	}
	return deleted
}
