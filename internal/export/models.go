package export

import (
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/tawkr/tawkr-backend/internal/domain"
)

type Format string

const (
	FormatCSV   Format = "csv"
	FormatExcel Format = "excel"
)

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "excel", "xlsx":
		return FormatExcel, nil
	}
	return "", domain.NewInvalidArgumentError("unknown export format %q", s)
}

type Dataset string

const (
	DatasetTerritories Dataset = "territories"
	DatasetCampaigns   Dataset = "campaigns"
	DatasetFranchises  Dataset = "franchises"
	DatasetAlerts      Dataset = "alerts"
)

// Datasets lists every exportable dataset in display order.
var Datasets = []Dataset{DatasetTerritories, DatasetCampaigns, DatasetFranchises, DatasetAlerts}

func ParseDataset(s string) (Dataset, error) {
	d := Dataset(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Datasets {
		if d == known {
			return d, nil
		}
	}
	return "", domain.NewInvalidArgumentError("unknown dataset %q", s)
}

// Record is one generated export, listed under "recent exports".
type Record struct {
	ID        string         `gorm:"primaryKey;type:uuid" json:"id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	Format    Format         `gorm:"size:8;not null" json:"format"`
	Datasets  pq.StringArray `gorm:"type:text[];not null" json:"datasets"`
	RowCount  int            `gorm:"not null" json:"row_count"`
	Filename  string         `gorm:"not null" json:"filename"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
}

func (Record) TableName() string { return "tawkr.exports" }
