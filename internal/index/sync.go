package index

import (
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/veleth/dagaz/internal/checksum"
	"github.com/veleth/dagaz/internal/entryfile"
	"github.com/veleth/dagaz/internal/models"
	"github.com/veleth/dagaz/internal/storage"
)

// Sync walks the journal and brings the index up to date:
//   - new/changed entry files are parsed and upserted
//   - entries removed from disk are deleted from the index
func Sync(db *DB, store storage.Provider, logger *slog.Logger) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := indexFile(db, m.Path, data); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteEntry(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// indexFile parses entry file data and upserts it into the DB.
func indexFile(db *DB, path string, data []byte) error {
	res, err := entryfile.Parse(data)
	if err != nil {
		return err
	}
	cs := checksum.Sum(data)

	row := EntryRow{
		Path:       path,
		ID:         res.Meta.ID,
		DayKey:     entryDayKey(res.Meta.CreatedAt, path),
		Title:      res.Meta.Title,
		Mood:       res.Meta.Mood,
		Checksum:   cs,
		TokenTypes: res.TokenTypes(),
		Details:    res.Meta.Details,
		CreatedAt:  res.Meta.CreatedAt,
		UpdatedAt:  time.Now(),
	}
	return db.UpsertEntry(row, res.Body, res.DetailRefs())
}

// entryDayKey derives the calendar key from the entry timestamp, falling
// back to the YYYY/MM/DD path convention for files whose frontmatter was
// lost or hand-edited away.
func entryDayKey(createdAt time.Time, path string) int {
	if !createdAt.IsZero() {
		return models.DayKey(createdAt)
	}
	parts := strings.Split(filepath.ToSlash(path), "/")
	if len(parts) >= 4 {
		y, errY := strconv.Atoi(parts[0])
		m, errM := strconv.Atoi(parts[1])
		d, errD := strconv.Atoi(parts[2])
		if errY == nil && errM == nil && errD == nil {
			return y*10000 + m*100 + d
		}
	}
	return 0
}
