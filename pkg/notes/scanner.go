// Package notes scans a daily-notes tree and parses the links referenced in
// each note. It produces the raw link records the pipeline consumes; scanning
// is pure and restartable, re-deriving the same sequence from the same files.
package notes

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"sort"
	"time"
)

var dailyNotePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}\.md$`)

// NoteFile is one daily note discovered by Scan.
type NoteFile struct {
	Path string
	Date time.Time
}

// Scan walks the daily notes tree for YYYY-MM-DD.md files, optionally
// bounded by an inclusive date range. Zero time bounds are open ends.
// Results are sorted newest first.
func Scan(root string, from, to time.Time) ([]NoteFile, error) {
	var files []NoteFile

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !dailyNotePattern.MatchString(d.Name()) {
			return nil
		}

		date, err := dateFromName(d.Name())
		if err != nil {
			return nil
		}
		if !from.IsZero() && date.Before(from) {
			return nil
		}
		if !to.IsZero() && date.After(to) {
			return nil
		}

		files = append(files, NoteFile{Path: path, Date: date})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning notes dir %s: %w", root, err)
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Date.After(files[j].Date)
	})

	return files, nil
}

func dateFromName(name string) (time.Time, error) {
	stem := name[:len(name)-len(filepath.Ext(name))]
	return time.Parse("2006-01-02", stem)
}
