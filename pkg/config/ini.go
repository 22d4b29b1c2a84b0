package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/ini.v1"
)

// INI section and keys used by the settings file
const (
	iniSection = "main"

	keyDownloadFolder             = "downloadFolder"
	keySkipProjectsByHistory      = "skipProjectsByHistory"
	keyDownloadModulesAsGalleries = "downloadModulesAsGalleries"
	keyShowBrowser                = "showBrowser"
	keyUseSystemInstalledChrome   = "useSystemInstalledChrome"
	keyTurboMode                  = "turboMode"
	keyTurboTimeout               = "timeoutBetweenPagesInTurboMode"
	keyLocalStorageToken          = "localStorageToken"
)

// loadINI applies the [main] section of an INI settings file. Unknown keys
// and values of the wrong type are skipped with a warning.
func (c *Config) loadINI(path string) error {
	file, err := ini.Load(path)
	if err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	sec := file.Section(iniSection)

	if sec.HasKey(keyDownloadFolder) {
		if v := sec.Key(keyDownloadFolder).String(); v != "" {
			c.Download.Folder = v
		}
	}
	if sec.HasKey(keyLocalStorageToken) {
		c.Behance.LocalStorageToken = sec.Key(keyLocalStorageToken).String()
	}

	bools := map[string]*bool{
		keySkipProjectsByHistory:      &c.Download.SkipProjectsByHistory,
		keyDownloadModulesAsGalleries: &c.Download.ModulesAsGalleries,
		keyShowBrowser:                &c.Browser.ShowBrowser,
		keyUseSystemInstalledChrome:   &c.Browser.UseSystemInstalledChrome,
		keyTurboMode:                  &c.Download.TurboMode,
	}
	for name, target := range bools {
		if !sec.HasKey(name) {
			continue
		}
		v, err := sec.Key(name).Bool()
		if err != nil {
			c.Warnings = append(c.Warnings, fmt.Sprintf("ignoring %s: not a boolean", name))
			continue
		}
		*target = v
	}

	if sec.HasKey(keyTurboTimeout) {
		ms, err := sec.Key(keyTurboTimeout).Int()
		if err != nil || ms <= 0 {
			c.Warnings = append(c.Warnings, fmt.Sprintf("ignoring %s: not a positive number", keyTurboTimeout))
		} else {
			c.Download.TimeoutBetweenPagesInTurboMode = time.Duration(ms) * time.Millisecond
		}
	}

	for _, key := range sec.KeyStrings() {
		if _, known := bools[key]; known {
			continue
		}
		switch key {
		case keyDownloadFolder, keyLocalStorageToken, keyTurboTimeout:
		default:
			c.Warnings = append(c.Warnings, fmt.Sprintf("ignoring unknown key %s", key))
		}
	}

	return nil
}

// SaveINI writes the user-facing settings as an INI [main] section
func (c *Config) SaveINI(path string) error {
	file := ini.Empty()
	sec, err := file.NewSection(iniSection)
	if err != nil {
		return fmt.Errorf("failed to create section: %w", err)
	}

	values := []struct {
		key   string
		value string
	}{
		{keyDownloadFolder, c.Download.Folder},
		{keySkipProjectsByHistory, fmt.Sprint(c.Download.SkipProjectsByHistory)},
		{keyDownloadModulesAsGalleries, fmt.Sprint(c.Download.ModulesAsGalleries)},
		{keyShowBrowser, fmt.Sprint(c.Browser.ShowBrowser)},
		{keyUseSystemInstalledChrome, fmt.Sprint(c.Browser.UseSystemInstalledChrome)},
		{keyTurboMode, fmt.Sprint(c.Download.TurboMode)},
		{keyTurboTimeout, fmt.Sprint(c.Download.TimeoutBetweenPagesInTurboMode.Milliseconds())},
		{keyLocalStorageToken, c.Behance.LocalStorageToken},
	}
	for _, kv := range values {
		if _, err := sec.NewKey(kv.key, kv.value); err != nil {
			return fmt.Errorf("failed to write key %s: %w", kv.key, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := file.SaveTo(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
