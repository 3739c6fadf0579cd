// Package paths resolves jellyname's per-user files.
//
// Under sudo the files of the invoking user (SUDO_USER) are used rather than
// root's. JELLYNAME_HOME replaces the whole directory.
package paths

import (
	"os"
	"os/user"
	"path/filepath"
)

// HomeEnv overrides AppDir when set.
const HomeEnv = "JELLYNAME_HOME"

// UserHomeDir returns the home directory of the actual user.
func UserHomeDir() (string, error) {
	if sudoUser := os.Getenv("SUDO_USER"); sudoUser != "" && sudoUser != "root" {
		if u, err := user.Lookup(sudoUser); err == nil {
			return u.HomeDir, nil
		}
	}
	return os.UserHomeDir()
}

// AppDir returns ~/.config/jellyname for the actual user.
func AppDir() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir, nil
	}
	home, err := UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "jellyname"), nil
}

func inAppDir(name string) (string, error) {
	dir, err := AppDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// ConfigPath returns the config file location.
func ConfigPath() (string, error) { return inAppDir("config.toml") }

// DatabasePath returns the audit database location.
func DatabasePath() (string, error) { return inAppDir("audit.db") }

// LockPath returns the lock file held by long-running commands.
func LockPath() (string, error) { return inAppDir("jellyname.lock") }

// ActualUser returns the actual username (not root when using sudo).
func ActualUser() string {
	if sudoUser := os.Getenv("SUDO_USER"); sudoUser != "" && sudoUser != "root" {
		return sudoUser
	}
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return "unknown"
}
