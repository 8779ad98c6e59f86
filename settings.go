package relay

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/muhammadmuzzammil1998/jsonc"
	"github.com/oklahomer/go-kasumi/logger"
)

// DefaultCooldownDuration is applied when no cooldown has been configured yet.
const DefaultCooldownDuration = time.Hour

// Settings is the deployment-wide relay configuration.
type Settings struct {
	// ChannelID is the channel that receives relayed messages.
	// An empty value means no administrator has picked one yet.
	ChannelID string

	// CooldownDuration is the minimum gap between two successful relays of the same user.
	CooldownDuration time.Duration
}

// NewSettings returns Settings with no channel and the default cooldown.
func NewSettings() *Settings {
	return &Settings{
		ChannelID:        "",
		CooldownDuration: DefaultCooldownDuration,
	}
}

// Configured reports whether a target channel is set.
func (s Settings) Configured() bool {
	return s.ChannelID != ""
}

// settingsDocument is the on-disk representation.
// Channel IDs are stored as numbers and the cooldown in whole seconds.
type settingsDocument struct {
	ChannelID        *uint64 `json:"channel_id"`
	CooldownDuration *int64  `json:"cooldown_duration"`
}

// MarshalJSON encodes Settings as {"channel_id": <int|null>, "cooldown_duration": <seconds>}.
func (s Settings) MarshalJSON() ([]byte, error) {
	doc := settingsDocument{}

	if s.ChannelID != "" {
		id, err := strconv.ParseUint(s.ChannelID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("channel id %q is not a snowflake: %w", s.ChannelID, err)
		}
		doc.ChannelID = &id
	}

	seconds := int64(s.CooldownDuration / time.Second)
	doc.CooldownDuration = &seconds

	return json.Marshal(doc)
}

// UnmarshalJSON decodes the on-disk representation.
// A missing cooldown falls back to DefaultCooldownDuration.
func (s *Settings) UnmarshalJSON(data []byte) error {
	doc := settingsDocument{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	settings := NewSettings()
	if doc.ChannelID != nil && *doc.ChannelID != 0 {
		settings.ChannelID = strconv.FormatUint(*doc.ChannelID, 10)
	}

	if doc.CooldownDuration != nil {
		if *doc.CooldownDuration < 0 {
			return ErrNegativeCooldown
		}
		settings.CooldownDuration = time.Duration(*doc.CooldownDuration) * time.Second
	}

	*s = *settings
	return nil
}

// SettingsStore loads and persists Settings.
type SettingsStore interface {
	Load() (*Settings, error)
	Save(settings *Settings) error
}

// FileStore is a SettingsStore backed by a single JSON file.
type FileStore struct {
	path string
}

var _ SettingsStore = (*FileStore)(nil)

// NewFileStore creates a new FileStore that reads and writes the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the settings file.
// When the file does not exist yet, the defaults are written and returned.
// A file that exists but cannot be parsed is reported as an error.
// Comments are tolerated so that the file can be edited by hand.
func (f *FileStore) Load() (*Settings, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		settings := NewSettings()
		if err := f.Save(settings); err != nil {
			return nil, fmt.Errorf("failed to create default settings: %w", err)
		}

		logger.Infof("Created default settings at %s", f.path)
		return settings, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings from %s: %w", f.path, err)
	}

	settings := &Settings{}
	if err := jsonc.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings in %s: %w", f.path, err)
	}

	return settings, nil
}

// Save overwrites the settings file.
// The content is written to a temporary file in the same directory first and then renamed over the original.
func (f *FileStore) Save(settings *Settings) error {
	data, err := json.MarshalIndent(settings, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), "."+filepath.Base(f.path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary settings file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}

	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", f.path, err)
	}

	return nil
}

// SettingsManager keeps the in-memory Settings in sync with a SettingsStore.
// It is safe for concurrent use.
type SettingsManager struct {
	mutex    sync.RWMutex
	store    SettingsStore
	settings Settings
}

// NewSettingsManager loads the current Settings from the given store.
func NewSettingsManager(store SettingsStore) (*SettingsManager, error) {
	settings, err := store.Load()
	if err != nil {
		return nil, err
	}

	return &SettingsManager{
		store:    store,
		settings: *settings,
	}, nil
}

// Current returns a snapshot of the current Settings.
func (m *SettingsManager) Current() Settings {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return m.settings
}

// SetChannel persists the given channel as the relay target.
func (m *SettingsManager) SetChannel(channelID string) error {
	return m.update(func(s *Settings) error {
		s.ChannelID = channelID
		return nil
	})
}

// SetCooldown persists the given cooldown duration.
func (m *SettingsManager) SetCooldown(d time.Duration) error {
	return m.update(func(s *Settings) error {
		if d < 0 {
			return ErrNegativeCooldown
		}
		s.CooldownDuration = d
		return nil
	})
}

// update applies fnc to a copy, saves it and only then swaps it in.
func (m *SettingsManager) update(fnc func(*Settings) error) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	next := m.settings
	if err := fnc(&next); err != nil {
		return err
	}

	if err := m.store.Save(&next); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	m.settings = next
	return nil
}
