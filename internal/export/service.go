package export

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/tawkr/tawkr-backend/internal/alert"
	"github.com/tawkr/tawkr-backend/internal/campaign"
	"github.com/tawkr/tawkr-backend/internal/domain"
	"github.com/tawkr/tawkr-backend/internal/franchise"
	"github.com/tawkr/tawkr-backend/internal/metrics"
	"github.com/tawkr/tawkr-backend/internal/territory"
	"github.com/tawkr/tawkr-backend/internal/utils"
)

// RecentLimit is how many exports GET /exports returns.
const RecentLimit = 10

type Repository interface {
	CreateExport(ctx context.Context, r *Record) error
	ListExports(ctx context.Context, userID uint, limit int) ([]Record, error)
}

type TerritoryLister interface {
	ListTerritories(ctx context.Context) ([]territory.Territory, error)
}

type CampaignLister interface {
	ListCampaigns(ctx context.Context) ([]campaign.Campaign, error)
}

type FranchiseLister interface {
	ListFranchises(ctx context.Context) ([]franchise.Franchise, error)
}

type Service struct {
	Repo        Repository
	Territories TerritoryLister
	Campaigns   CampaignLister
	Franchises  FranchiseLister
	Alerts      alert.Repository
	Metrics     *metrics.Metrics
	Now         func() time.Time
}

type Request struct {
	Datasets []string `json:"datasets" validate:"required,min=1,dive,oneof=territories campaigns franchises alerts"`
	Format   string   `json:"format" validate:"required,oneof=csv excel xlsx"`
}

// File is a generated export.
type File struct {
	Record      Record
	Filename    string
	ContentType string
	Body        []byte
}

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeZip  = "application/zip"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Generate builds the requested datasets, restricted to what actor may see,
// and records the export.
func (s *Service) Generate(ctx context.Context, actor utils.SessionData, req Request) (File, error) {
	format, err := ParseFormat(req.Format)
	if err != nil {
		return File{}, err
	}
	datasets, err := parseDatasets(req.Datasets)
	if err != nil {
		return File{}, err
	}

	tables, err := s.tables(ctx, actor, datasets)
	if err != nil {
		return File{}, err
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	stamp := now().UTC().Format("20060102-150405")

	var (
		buf  bytes.Buffer
		file File
	)
	switch {
	case format == FormatExcel:
		err = writeExcel(&buf, tables)
		file.Filename = fmt.Sprintf("Export_tawkr_%s.xlsx", stamp)
		file.ContentType = contentTypeXLSX
	case len(tables) == 1:
		err = writeCSV(&buf, tables[0])
		file.Filename = fmt.Sprintf("%s_%s.csv", tables[0].Title, stamp)
		file.ContentType = contentTypeCSV
	default:
		err = writeZip(&buf, tables, stamp)
		file.Filename = fmt.Sprintf("Export_tawkr_%s.zip", stamp)
		file.ContentType = contentTypeZip
	}
	if err != nil {
		return File{}, domain.NewInternalError(err)
	}
	file.Body = buf.Bytes()

	rows := 0
	names := make([]string, 0, len(tables))
	for _, t := range tables {
		rows += len(t.Rows)
		names = append(names, string(t.Dataset))
	}
	file.Record = Record{
		ID:        utils.GenerateUUID(),
		UserID:    actor.UserID,
		Format:    format,
		Datasets:  names,
		RowCount:  rows,
		Filename:  file.Filename,
		CreatedAt: now().UTC(),
	}
	if err := s.Repo.CreateExport(ctx, &file.Record); err != nil {
		return File{}, err
	}

	if s.Metrics != nil {
		s.Metrics.Exports.WithLabelValues(string(format)).Inc()
	}
	return file, nil
}

// Recent lists actor's latest exports.
func (s *Service) Recent(ctx context.Context, actor utils.SessionData) ([]Record, error) {
	return s.Repo.ListExports(ctx, actor.UserID, RecentLimit)
}

// parseDatasets validates names and drops duplicates, keeping request order.
func parseDatasets(names []string) ([]Dataset, error) {
	if len(names) == 0 {
		return nil, domain.NewInvalidArgumentError("at least one dataset is required")
	}
	seen := make(map[Dataset]bool, len(names))
	out := make([]Dataset, 0, len(names))
	for _, n := range names {
		d, err := ParseDataset(n)
		if err != nil {
			return nil, err
		}
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *Service) tables(ctx context.Context, actor utils.SessionData, datasets []Dataset) ([]Table, error) {
	all, err := s.Territories.ListTerritories(ctx)
	if err != nil {
		return nil, err
	}
	visible := territory.FilterVisible(all, actor)

	tables := make([]Table, 0, len(datasets))
	for _, d := range datasets {
		switch d {
		case DatasetTerritories:
			tables = append(tables, territoriesTable(visible))

		case DatasetCampaigns:
			cs, err := s.Campaigns.ListCampaigns(ctx)
			if err != nil {
				return nil, err
			}
			campaign.SortByPriority(cs)
			tables = append(tables, campaignsTable(cs))

		case DatasetFranchises:
			fs, err := s.Franchises.ListFranchises(ctx)
			if err != nil {
				return nil, err
			}
			if !actor.IsAdmin() {
				own := fs[:0:0]
				for _, f := range fs {
					if actor.FranchiseID != nil && f.ID == *actor.FranchiseID {
						own = append(own, f)
					}
				}
				fs = own
			}
			tables = append(tables, franchisesTable(fs, visible))

		case DatasetAlerts:
			as, err := alert.VisibleAlerts(ctx, s.Alerts, s.Territories, actor)
			if err != nil {
				return nil, err
			}
			tables = append(tables, alertsTable(as))
		}
	}
	return tables, nil
}
