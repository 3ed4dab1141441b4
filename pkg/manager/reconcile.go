package manager

import (
	log "github.com/sirupsen/logrus"

	"github.com/aqibshahzad4485/vless/pkg/xray"
)

// Reconcile pulls the daemon's cumulative counters and folds them into
// the store. last_active moves only when a counter grew; a counter that
// fell (the daemon resets them on restart) is persisted without marking
// activity. A failed fetch leaves every row untouched.
//
// A restart right after heavy traffic is indistinguishable from idleness
// here; the daemon exposes no restart epoch to tell them apart.
func (m *Manager) Reconcile(src xray.StatsSource) {
	counters, err := src.FetchCounters()
	if err != nil {
		log.Error(err)
		return
	}
	users, err := m.Store.ListUsers()
	if err != nil {
		log.Error(err)
		return
	}
	for _, u := range users {
		newUp, newDown := u.TrafficUp, u.TrafficDown
		if usage, ok := counters[u.Username]; ok {
			newUp, newDown = usage.Up, usage.Down
		}
		touch := newUp > u.TrafficUp || newDown > u.TrafficDown
		if err := m.Store.UpdateTraffic(u.Username, newUp, newDown, touch); err != nil {
			log.WithField("username", u.Username).Error(err)
		}
	}
}
