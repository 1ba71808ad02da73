package territoryimport

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tawkr/tawkr-backend/internal/territory"
)

var inseeRe = regexp.MustCompile(`^(?:\d{5}|2[AB]\d{3})$`)

var required = []string{"code_insee", "name", "departement", "region", "logements", "pct_resid_princ"}

// Parse reads territories from CSV. The header names the columns; the
// housing columns are required, the rest optional. Capacities are computed
// on the way in.
func Parse(in io.Reader) ([]territory.Territory, error) {
	r := csv.NewReader(bufio.NewReader(in))
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, errors.New("csv has no data rows")
	}

	header := records[0]
	// Handle BOM on first header cell
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	col := map[string]int{}
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, k := range required {
		if _, ok := col[k]; !ok {
			return nil, fmt.Errorf("missing required column: %s", k)
		}
	}

	seen := map[string]bool{}
	var out []territory.Territory

	for rowIdx := 1; rowIdx < len(records); rowIdx++ {
		rec := records[rowIdx]
		line := rowIdx + 1
		get := func(name string) string {
			i, ok := col[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		opt := func(name string) *string {
			if v := get(name); v != "" {
				return &v
			}
			return nil
		}

		code := strings.ToUpper(get("code_insee"))
		if !inseeRe.MatchString(code) {
			return nil, fmt.Errorf("row %d: code_insee must be 5 characters (got %q)", line, code)
		}
		if seen[code] {
			return nil, fmt.Errorf("row %d: duplicate code_insee %q", line, code)
		}
		seen[code] = true

		logements, err := strconv.Atoi(strings.ReplaceAll(get("logements"), " ", ""))
		if err != nil {
			return nil, fmt.Errorf("row %d: logements: %w", line, err)
		}
		pct, err := strconv.ParseFloat(strings.ReplaceAll(get("pct_resid_princ"), ",", "."), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: pct_resid_princ: %w", line, err)
		}

		t := territory.Territory{
			CodeINSEE:      code,
			Name:           get("name"),
			Departement:    get("departement"),
			Region:         strings.ToUpper(get("region")),
			Logements:      logements,
			PctResidPrinc:  pct,
			DistanceKm:     get("distance_km"),
			TempsTrajet:    get("temps_trajet"),
			LastSalesCRF:   opt("last_sales_crf"),
			LastSalesACF:   opt("last_sales_acf"),
			LastSalesMDM:   opt("last_sales_mdm"),
			LastSalesOther: opt("last_sales_other"),
			DispoCRF:       opt("dispo_crf"),
			DispoACF:       opt("dispo_acf"),
			DispoMDM:       opt("dispo_mdm"),
			DispoAutres:    opt("dispo_autres"),
			Comments:       opt("comments"),
			Status:         territory.StatusEligible,
		}
		if t.Name == "" {
			return nil, fmt.Errorf("row %d: name is required", line)
		}
		for _, name := range []string{"last_sales_crf", "last_sales_acf", "last_sales_mdm", "last_sales_other"} {
			d := get(name)
			if d == "" {
				continue
			}
			if _, err := time.Parse("2006-01-02", d); err != nil {
				return nil, fmt.Errorf("row %d: %s must be YYYY-MM-DD (got %q)", line, name, d)
			}
		}
		if err := t.Recompute(); err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}

		out = append(out, t)
	}

	return out, nil
}
