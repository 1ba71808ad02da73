package export

import (
	"fmt"
	"strconv"

	"github.com/tawkr/tawkr-backend/internal/alert"
	"github.com/tawkr/tawkr-backend/internal/campaign"
	"github.com/tawkr/tawkr-backend/internal/franchise"
	"github.com/tawkr/tawkr-backend/internal/territory"
)

// Table is one dataset ready to be written, header first.
type Table struct {
	Dataset Dataset
	Title   string
	Header  []string
	Rows    [][]any
}

var titles = map[Dataset]string{
	DatasetTerritories: "Territoires",
	DatasetCampaigns:   "Campagnes",
	DatasetFranchises:  "Franchises",
	DatasetAlerts:      "Alertes",
}

func territoriesTable(ts []territory.Territory) Table {
	t := Table{
		Dataset: DatasetTerritories,
		Title:   titles[DatasetTerritories],
		Header:  []string{"Code INSEE", "Nom", "Département", "Région", "Logements", "Mondays", "Statut", "Distance"},
	}
	for _, tr := range ts {
		t.Rows = append(t.Rows, []any{
			tr.CodeINSEE, tr.Name, tr.Departement, tr.Region,
			tr.Logements, tr.MondaysAvailable, string(tr.Status), tr.DistanceKm,
		})
	}
	return t
}

func campaignsTable(cs []campaign.Campaign) Table {
	t := Table{
		Dataset: DatasetCampaigns,
		Title:   titles[DatasetCampaigns],
		Header:  []string{"PIN", "Nom", "Mois", "Ville", "Quota Mondays", "Priorité", "Jachère (mois)"},
	}
	for _, c := range cs {
		priority := "Standard"
		if c.Priority != nil {
			priority = strconv.Itoa(*c.Priority)
		}
		t.Rows = append(t.Rows, []any{
			c.PIN, c.Name, c.Month, c.City, c.QuotaMondays, priority, c.JacherePeriodMonths,
		})
	}
	return t
}

// franchisesTable counts assignments over ts, which is already narrowed to
// what the actor may see.
func franchisesTable(fs []franchise.Franchise, ts []territory.Territory) Table {
	t := Table{
		Dataset: DatasetFranchises,
		Title:   titles[DatasetFranchises],
		Header:  []string{"Nom", "Contact", "Région", "Territoires assignés", "Mondays gérés"},
	}
	for _, f := range fs {
		t.Rows = append(t.Rows, []any{
			f.Name, f.Contact, f.Region,
			territory.Count(ts, territory.AssignedTo(f.ID)),
			territory.TotalMondays(ts, territory.AssignedTo(f.ID)),
		})
	}
	return t
}

func alertsTable(as []alert.Alert) Table {
	t := Table{
		Dataset: DatasetAlerts,
		Title:   titles[DatasetAlerts],
		Header:  []string{"Territoire", "Message", "Niveau", "Date création", "Statut"},
	}
	for _, a := range as {
		status := "Non lu"
		if a.IsRead {
			status = "Lu"
		}
		t.Rows = append(t.Rows, []any{
			a.TerritoryName, a.Message, string(a.Level), a.CreatedAt.Format("2006-01-02 15:04"), status,
		})
	}
	return t
}

// cell renders a value for CSV output.
func cell(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	default:
		return fmt.Sprint(x)
	}
}
