package tts

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// CleanOldAudio keeps the keep most recently modified .wav files in dir and
// removes the rest. A missing dir is not an error.
func CleanOldAudio(dir string, keep int) (int, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to list audio dir: %w", err)
	}

	type audioFile struct {
		path    string
		modTime time.Time
	}
	var files []audioFile
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".wav") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// removed concurrently
			continue
		}
		files = append(files, audioFile{path: filepath.Join(dir, entry.Name()), modTime: info.ModTime()})
	}
	if keep < 0 {
		keep = 0
	}
	if len(files) <= keep {
		return 0, nil
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].modTime.Before(files[j].modTime)
	})

	removed := 0
	for _, f := range files[:len(files)-keep] {
		if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
			return removed, fmt.Errorf("failed to remove %s: %w", f.path, err)
		}
		removed++
	}
	return removed, nil
}
