package alert

import (
	"sort"
	"strings"
	"time"

	"github.com/tawkr/tawkr-backend/internal/domain"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

func ParseLevel(s string) (Level, error) {
	switch l := Level(strings.ToLower(strings.TrimSpace(s))); l {
	case LevelInfo, LevelWarning, LevelError:
		return l, nil
	}
	return "", domain.NewInvalidArgumentError("unknown alert level %q", s)
}

// Alert is a notification about a territory. TerritoryName is a display
// copy; the territory is not owned by the alert.
type Alert struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	TerritoryID   uint      `gorm:"index;not null" json:"territory_id"`
	TerritoryName string    `json:"territory_name"`
	Message       string    `gorm:"not null" json:"message"`
	Level         Level     `gorm:"size:16;not null;index" json:"level"`
	IsRead        bool      `gorm:"not null;default:false;index" json:"is_read"`
	CreatedAt     time.Time `json:"created_at"`
}

func (Alert) TableName() string {
	return "tawkr.alerts"
}

// SetRead sets the read flag and reports whether it changed. Nothing else on
// the alert is touched, so marking an already-read alert read is a no-op.
func (a *Alert) SetRead(read bool) bool {
	if a.IsRead == read {
		return false
	}
	a.IsRead = read
	return true
}

// UnreadCount counts alerts not yet read.
func UnreadCount(as []Alert) int {
	n := 0
	for _, a := range as {
		if !a.IsRead {
			n++
		}
	}
	return n
}

// CountByLevel counts alerts per level; every level is present.
func CountByLevel(as []Alert) map[Level]int {
	counts := map[Level]int{LevelInfo: 0, LevelWarning: 0, LevelError: 0}
	for _, a := range as {
		counts[a.Level]++
	}
	return counts
}

// Partition splits alerts into unread and read, keeping order.
func Partition(as []Alert) (unread, read []Alert) {
	unread, read = []Alert{}, []Alert{}
	for _, a := range as {
		if a.IsRead {
			read = append(read, a)
		} else {
			unread = append(unread, a)
		}
	}
	return unread, read
}

// SortNewestFirst orders alerts by creation time, newest first, ties by id.
func SortNewestFirst(as []Alert) {
	sort.SliceStable(as, func(i, j int) bool {
		if !as[i].CreatedAt.Equal(as[j].CreatedAt) {
			return as[i].CreatedAt.After(as[j].CreatedAt)
		}
		return as[i].ID > as[j].ID
	})
}
