package settings

import (
	"fmt"
	"os"
)

const configFilename = "settings.bin"

// FileSystem is the minimal filesystem surface the store needs — narrow
// enough that both a host os.* implementation and a target LittleFS
// wrapper can satisfy it.
type FileSystem interface {
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte) error
	Remove(name string) error
	Exists(name string) bool
}

// Store is the persistence contract the rest of the firmware depends on.
type Store interface {
	LoadConfig() (GlobalConfig, error)
	SaveConfig(c *GlobalConfig) error
	LoadPreset(slot int) (GlobalConfig, error)
	SavePreset(slot int, c *GlobalConfig) error
	ResetPreset(slot int, c *GlobalConfig) error
	FactoryReset() (GlobalConfig, error)
}

// FileStore is the file-backed Store implementation.
type FileStore struct {
	fs FileSystem
}

func NewFileStore(fs FileSystem) *FileStore {
	return &FileStore{fs: fs}
}

func presetPath(slot int) string {
	return fmt.Sprintf("preset_%d.bin", slot)
}

// LoadConfig reads settings.bin, migrating or defaulting as needed
// depending on the schema version found in the header.
func (s *FileStore) LoadConfig() (GlobalConfig, error) {
	if !s.fs.Exists(configFilename) {
		return Defaults(), nil
	}
	data, err := s.fs.ReadFile(configFilename)
	if err != nil {
		return Defaults(), nil
	}
	version, err := PeekSchemaVersion(data)
	if err != nil {
		return Defaults(), nil
	}

	switch {
	case version < SchemaVersion:
		if c, ok := Migrate(version, data); ok {
			_ = s.SaveConfig(&c)
			return c, nil
		}
		return Defaults(), nil
	case version > SchemaVersion:
		return Defaults(), nil
	default:
		c, err := Decode(data)
		if err != nil {
			return Defaults(), nil
		}
		Validate(&c)
		return c, nil
	}
}

func (s *FileStore) SaveConfig(c *GlobalConfig) error {
	return s.fs.WriteFile(configFilename, Encode(c))
}

func (s *FileStore) LoadPreset(slot int) (GlobalConfig, error) {
	if slot < 0 || slot >= MaxPresetSlots {
		return GlobalConfig{}, fmt.Errorf("settings: preset slot %d out of range", slot)
	}
	data, err := s.fs.ReadFile(presetPath(slot))
	if err != nil {
		return GlobalConfig{}, err
	}
	c, err := Decode(data)
	if err != nil {
		return GlobalConfig{}, err
	}
	return c, nil
}

func (s *FileStore) SavePreset(slot int, c *GlobalConfig) error {
	if slot < 0 || slot >= MaxPresetSlots {
		return fmt.Errorf("settings: preset slot %d out of range", slot)
	}
	return s.fs.WriteFile(presetPath(slot), Encode(c))
}

// ResetPreset removes the slot's saved file and restores its name in c.
// It changes only the name in the live config, then saves c.
func (s *FileStore) ResetPreset(slot int, c *GlobalConfig) error {
	if slot < 0 || slot >= MaxPresetSlots {
		return fmt.Errorf("settings: preset slot %d out of range", slot)
	}
	if s.fs.Exists(presetPath(slot)) {
		if err := s.fs.Remove(presetPath(slot)); err != nil {
			return err
		}
	}
	c.PresetNames[slot] = presetDefaultName(slot)
	return s.SaveConfig(c)
}

// FactoryReset wipes every preset slot and the main config, returning
// fresh defaults. Each known file is removed individually rather than
// reformatting the whole filesystem, since the store doesn't own the
// whole volume.
func (s *FileStore) FactoryReset() (GlobalConfig, error) {
	_ = s.fs.Remove(configFilename)
	for slot := 0; slot < MaxPresetSlots; slot++ {
		_ = s.fs.Remove(presetPath(slot))
	}
	c := Defaults()
	return c, s.SaveConfig(&c)
}

// OSFileSystem implements FileSystem over a host/TinyGo-compatible
// directory using the standard library, for the bench CLI and for tests.
type OSFileSystem struct {
	Dir string
}

func (o OSFileSystem) path(name string) string {
	if o.Dir == "" {
		return name
	}
	return o.Dir + "/" + name
}

func (o OSFileSystem) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(o.path(name))
}

func (o OSFileSystem) WriteFile(name string, data []byte) error {
	return os.WriteFile(o.path(name), data, 0644)
}

func (o OSFileSystem) Remove(name string) error {
	err := os.Remove(o.path(name))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (o OSFileSystem) Exists(name string) bool {
	_, err := os.Stat(o.path(name))
	return err == nil
}
