package storage

import (
	"encoding/json"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/vedasos/support-bot/internal/domain"
)

const (
	groupsBlob = "groups.json"
	usersBlob  = "user_settings.json"
)

// BlobStore loads and saves whole named blobs of settings data.
type BlobStore interface {
	Load(name string) ([]byte, error)
	Save(name string, data []byte) error
}

// SettingsStore owns the known-groups and user-language collections. Every
// mutation rewrites the backing blob before returning, so an observed success
// implies durability. All methods are safe for concurrent use.
type SettingsStore struct {
	mu          sync.Mutex
	blobs       BlobStore
	defaultLang string
	logger      domain.Logger
	groups      map[string]domain.GroupRecord
	users       map[string]domain.UserPreference
}

// NewSettingsStore loads both collections from the blob store. A missing,
// unreadable or malformed blob yields an empty collection, not a startup
// failure.
func NewSettingsStore(blobs BlobStore, defaultLang string, log domain.Logger) *SettingsStore {
	s := &SettingsStore{
		blobs:       blobs,
		defaultLang: strings.ToUpper(defaultLang),
		logger:      log,
		groups:      make(map[string]domain.GroupRecord),
		users:       make(map[string]domain.UserPreference),
	}

	if err := s.loadCollection(groupsBlob, &s.groups); err != nil {
		s.groups = make(map[string]domain.GroupRecord)
	}
	if err := s.loadCollection(usersBlob, &s.users); err != nil {
		s.users = make(map[string]domain.UserPreference)
	}

	return s
}

// loadCollection fills into from the named blob. A non-nil return means the
// blob was present but malformed, so the caller should reset the collection.
func (s *SettingsStore) loadCollection(name string, into interface{}) error {
	data, err := s.blobs.Load(name)
	if err != nil {
		s.logger.Warn("starting with empty collection", "blob", name, "error", err)
		return nil
	}
	if err := json.Unmarshal(data, into); err != nil {
		s.logger.Error("malformed collection, starting empty", "blob", name, "error", err)
		return err
	}
	return nil
}

// RecordGroupSeen inserts a new group record or refreshes the title and
// last-activity timestamp of a known one, then persists the collection.
func (s *SettingsStore) RecordGroupSeen(chatID int64, title string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strconv.FormatInt(chatID, 10)
	rec, ok := s.groups[key]
	if !ok {
		rec = domain.GroupRecord{
			ID:           chatID,
			Title:        title,
			AddedAt:      now,
			LastActivity: now,
		}
		s.logger.Info("new group recorded", "chat_id", chatID, "title", title)
	} else {
		rec.Title = title
		rec.LastActivity = now
	}
	s.groups[key] = rec

	return s.saveLocked(groupsBlob, s.groups)
}

// Group returns the record for a chat, if the bot has seen it.
func (s *SettingsStore) Group(chatID int64) (domain.GroupRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.groups[strconv.FormatInt(chatID, 10)]
	return rec, ok
}

// GetUserLanguage returns the user's stored language preference, or the
// default language if the user has never chosen one.
func (s *SettingsStore) GetUserLanguage(userID int64) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	pref, ok := s.users[strconv.FormatInt(userID, 10)]
	if !ok || pref.Language == "" {
		return s.defaultLang
	}
	return pref.Language
}

// SetUserLanguage upserts the user's language preference and persists the
// collection.
func (s *SettingsStore) SetUserLanguage(userID int64, language string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strconv.FormatInt(userID, 10)
	pref := s.users[key]
	pref.Language = strings.ToUpper(language)
	s.users[key] = pref

	s.logger.Info("user language changed", "user_id", userID, "language", pref.Language)
	return s.saveLocked(usersBlob, s.users)
}

// saveLocked writes a whole collection through the blob store. Callers must
// hold s.mu so the save never observes a half-updated collection.
func (s *SettingsStore) saveLocked(name string, collection interface{}) error {
	data, err := json.MarshalIndent(collection, "", "  ")
	if err != nil {
		s.logger.Error("failed to encode collection", "blob", name, "error", err)
		return err
	}
	if err := s.blobs.Save(name, data); err != nil {
		s.logger.Error("failed to save collection", "blob", name, "error", err)
		return err
	}
	return nil
}
