package services

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// Opener hands a URL to the user's browser.
type Opener interface {
	Open(url string) error
}

// Saver stores a generated document where the user can open it.
type Saver interface {
	Save(name, mime string, content []byte) (string, error)
}

// Copier puts text on the clipboard without telling the user.
type Copier interface {
	Copy(text string) error
}

// BrowserOpener launches the platform URL handler.
type BrowserOpener struct{}

func (BrowserOpener) Open(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open %s: %w", url, err)
	}
	// Reap the helper without blocking the caller.
	go cmd.Wait()
	return nil
}

// DirSaver writes documents into a directory, creating it when needed.
type DirSaver struct {
	Dir string
}

func (s DirSaver) Save(name, mime string, content []byte) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create download directory: %w", err)
	}
	path := filepath.Join(s.Dir, filepath.Base(name))
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("write %s (%s): %w", name, mime, err)
	}
	return path, nil
}

// DefaultDownloadDir is ~/Downloads, or the working directory when the
// home directory cannot be determined.
func DefaultDownloadDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "Downloads")
}
