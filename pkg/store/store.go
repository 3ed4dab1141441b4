package store

import (
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/aqibshahzad4485/vless/pkg/model"
)

// ErrNotFound reports a lookup of a username with no stored row.
var ErrNotFound = errors.New("user not found")

// Store is the sqlite-backed user and event store.
type Store struct {
	DB *gorm.DB
}

// Open opens the database at path, creating it if needed, and runs the
// schema migration. Safe to call on every startup.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.WithField("path", path).Error(err)
		return nil, err
	}
	if err := db.AutoMigrate(&model.User{}, &model.Event{}); err != nil {
		log.Error(err)
		return nil, err
	}
	return &Store{DB: db}, nil
}

// CreateUser inserts a new user row. When the username is already taken
// the stored row is returned with created=false, so re-provisioning the
// same name hands back the same credential.
func (s *Store) CreateUser(username, credentialID string, persistent bool) (*model.User, bool, error) {
	user := &model.User{
		Username:     username,
		CredentialID: credentialID,
		LastActive:   time.Now(),
		IsPersistent: persistent,
	}
	err := s.DB.Create(user).Error
	if err == nil {
		return user, true, nil
	}
	existing := &model.User{}
	if ferr := s.DB.Where("username = ?", username).First(existing).Error; ferr == nil {
		return existing, false, nil
	}
	log.WithField("username", username).Error(err)
	return nil, false, err
}

func (s *Store) GetUser(username string) (*model.User, error) {
	user := &model.User{}
	err := s.DB.Where("username = ?", username).First(user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes the row and reports whether it existed.
func (s *Store) DeleteUser(username string) (bool, error) {
	res := s.DB.Where("username = ?", username).Delete(&model.User{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *Store) ListUsers() ([]model.User, error) {
	var users []model.User
	err := s.DB.Order("id").Find(&users).Error
	return users, err
}

// UpdateTraffic persists the byte counters; touch additionally bumps
// last_active to now.
func (s *Store) UpdateTraffic(username string, up, down int64, touch bool) error {
	updates := map[string]interface{}{
		"traffic_up":   up,
		"traffic_down": down,
	}
	if touch {
		updates["last_active"] = time.Now()
	}
	return s.DB.Model(&model.User{}).Where("username = ?", username).Updates(updates).Error
}

// RecordEvent appends an audit row. A failed insert is logged and
// dropped; auditing never fails the operation being audited.
func (s *Store) RecordEvent(action, details string) {
	err := s.DB.Create(&model.Event{
		Timestamp: time.Now(),
		Action:    action,
		Details:   details,
	}).Error
	if err != nil {
		log.WithField("action", action).Error(err)
	}
}

func (s *Store) CountUsers() (int64, error) {
	var n int64
	err := s.DB.Model(&model.User{}).Count(&n).Error
	return n, err
}

func (s *Store) CountActiveSince(t time.Time) (int64, error) {
	var n int64
	err := s.DB.Model(&model.User{}).Where("last_active > ?", t).Count(&n).Error
	return n, err
}

// RecentEvents returns up to limit audit rows, newest first.
func (s *Store) RecentEvents(limit int) ([]model.Event, error) {
	var events []model.Event
	err := s.DB.Order("timestamp DESC, id DESC").Limit(limit).Find(&events).Error
	return events, err
}

// Usernames returns candidate names for bulk deletion. Persistent users
// are included only when persistentToo is set.
func (s *Store) Usernames(persistentToo bool) ([]string, error) {
	q := s.DB.Model(&model.User{})
	if !persistentToo {
		q = q.Where("is_persistent = ?", false)
	}
	var names []string
	err := q.Pluck("username", &names).Error
	return names, err
}

func (s *Store) PersistentUsernames() ([]string, error) {
	var names []string
	err := s.DB.Model(&model.User{}).Where("is_persistent = ?", true).Pluck("username", &names).Error
	return names, err
}
