package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const (
	configFile    = "config.json"
	nvrDir        = "nvr"
	screenshotDir = "screenshots"
)

var (
	appName string
	vmPath  string
)

// Init sets the application data directory name. Must be called before
// any storage operations.
func Init(dataDirName string) {
	appName = dataDirName
}

// SetVMPath makes dir the base directory instead of the per-user data
// directory, so one machine's config, NVR, and screenshots live together.
// An empty dir restores the default.
func SetVMPath(dir string) {
	vmPath = dir
}

// GetBaseDir returns the base directory for application data: the VM path
// when one is set, otherwise <user data dir>/<appName>.
func GetBaseDir() (string, error) {
	if vmPath != "" {
		return filepath.Abs(vmPath)
	}
	dataDir, err := userDataDir(runtime.GOOS)
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, appName), nil
}

// userDataDir resolves the per-user data root for goos.
//   - darwin:  ~/Library/Application Support
//   - windows: %APPDATA%
//   - others:  $XDG_DATA_HOME, or ~/.local/share
func userDataDir(goos string) (string, error) {
	switch goos {
	case "windows":
		if dir := os.Getenv("APPDATA"); dir != "" {
			return dir, nil
		}
		return "", fmt.Errorf("APPDATA environment variable not set")
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, "Library", "Application Support"), nil
	}

	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share"), nil
}

func inBaseDir(name string) (string, error) {
	baseDir, err := GetBaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(baseDir, name), nil
}

// EnsureDirectories creates the base directory and its nvr and screenshots
// subdirectories.
func EnsureDirectories() error {
	baseDir, err := GetBaseDir()
	if err != nil {
		return err
	}

	for _, dir := range []string{
		baseDir,
		filepath.Join(baseDir, nvrDir),
		filepath.Join(baseDir, screenshotDir),
	} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// GetConfigPath returns the full path to config.json
func GetConfigPath() (string, error) {
	return inBaseDir(configFile)
}

// GetNVRDir returns the directory holding durable machine state (CMOS, NVRAM).
func GetNVRDir() (string, error) {
	return inBaseDir(nvrDir)
}

// GetScreenshotDir returns the full path to the screenshots directory
func GetScreenshotDir() (string, error) {
	return inBaseDir(screenshotDir)
}

// AtomicWriteJSON marshals data as indented JSON and writes it with
// AtomicWriteFile, creating the parent directory if needed.
func AtomicWriteJSON(path string, data interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	return AtomicWriteFile(path, jsonData)
}

// AtomicWriteFile writes data to a temporary file in the target directory,
// syncs it, then renames it over path. Readers see the old or the new
// contents, never a partial file.
func AtomicWriteFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	_, err = tmp.Write(data)
	if err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Chmod(tmpName, 0644)
	}
	if err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// ReadJSON reads and unmarshals a JSON file. A missing file returns an error
// satisfying errors.Is(err, fs.ErrNotExist).
func ReadJSON(path string, data interface{}) error {
	jsonData, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(jsonData, data); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	return nil
}
