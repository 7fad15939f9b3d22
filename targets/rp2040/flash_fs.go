//go:build rp2040

package main

import (
	"io"
	"os"

	"tinygo.org/x/tinyfs"
	"tinygo.org/x/tinyfs/littlefs"
)

// flashSettingsOffset/Size reserve the last 64KB of the 2MB flash image
// for the LittleFS volume settings.bin and the preset files live on,
// onboard flash rather than an external EEPROM or SD card.
const (
	flashSettingsOffset = 2*1024*1024 - 64*1024
	flashSettingsSize   = 64 * 1024
)

// FlashFileSystem implements settings.FileSystem over a LittleFS volume
// on the RP2040's onboard flash, using tinyfs's littlefs binding for the
// mount/format dance.
type FlashFileSystem struct {
	fs *littlefs.LFS
}

func NewFlashFileSystem() *FlashFileSystem {
	bd := tinyfs.NewFlashBlockDevice(flashSettingsOffset, flashSettingsSize, 4096)
	fs := littlefs.New(bd)
	fs.Configure(&littlefs.Config{
		CacheSize:     256,
		LookaheadSize: 256,
		BlockCycles:   100,
	})

	if err := fs.Mount(); err != nil {
		if err := fs.Format(); err != nil {
			panic("settings flash format: " + err.Error())
		}
		if err := fs.Mount(); err != nil {
			panic("settings flash mount: " + err.Error())
		}
	}

	return &FlashFileSystem{fs: fs}
}

func (f *FlashFileSystem) ReadFile(name string) ([]byte, error) {
	file, err := f.fs.OpenFile(name, os.O_RDONLY)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

func (f *FlashFileSystem) WriteFile(name string, data []byte) error {
	file, err := f.fs.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
	if err != nil {
		return err
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func (f *FlashFileSystem) Remove(name string) error {
	err := f.fs.Remove(name)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (f *FlashFileSystem) Exists(name string) bool {
	_, err := f.fs.Stat(name)
	return err == nil
}
