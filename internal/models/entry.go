// Package models defines the domain types for Dagaz.
package models

import "time"

// Entry represents one journal entry. Text is the raw body string with
// inline tokens; it is the only persisted representation of the body.
type Entry struct {
	ID        string            `json:"id"`
	Path      string            `json:"path"`
	Title     string            `json:"title"`
	Mood      string            `json:"mood,omitempty"`
	Text      string            `json:"text"`
	Details   []DetailSelection `json:"details,omitempty"`
	Checksum  string            `json:"checksum"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// EntryMetadata is a lightweight representation returned by list operations.
type EntryMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DayKey encodes a calendar date as year*10000 + month*100 + day, the
// canonical indexed key for day/month/year aggregation queries.
func DayKey(t time.Time) int {
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}

// DayKeyDate inverts DayKey into a midnight UTC time.
func DayKeyDate(key int) time.Time {
	return time.Date(key/10000, time.Month(key/100%100), key%100, 0, 0, 0, 0, time.UTC)
}

// DayKeyRange returns the inclusive key range covering a whole month, or,
// when month is zero, a whole year.
func DayKeyRange(year int, month time.Month) (int, int) {
	if month == 0 {
		return year*10000 + 101, year*10000 + 1231
	}
	base := year*10000 + int(month)*100
	return base + 1, base + 31
}
