package territoryimport

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tawkr/tawkr-backend/internal/territory"
	"go.uber.org/zap"
)

const sample = "\ufeffcode_insee,name,departement,region,logements,pct_resid_princ,distance_km,last_sales_crf,comments\n" +
	"33063,BORDEAUX,33,nouvelle-aquitaine,12000,90,0-50 km,2025-07-25,\"Blacklist : 22 rue Pierre Curie, Nansouty\"\n" +
	"2a004,AJACCIO,2A,CORSE,1 500,\"82,5\",,,\n"

func TestParse(t *testing.T) {
	ts, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, ts, 2)

	bdx := ts[0]
	assert.Equal(t, "33063", bdx.CodeINSEE)
	assert.Equal(t, "NOUVELLE-AQUITAINE", bdx.Region)
	assert.Equal(t, 10800, bdx.MondaysAvailable)
	assert.Equal(t, territory.StatusEligible, bdx.Status)
	assert.Equal(t, "0-50 km", bdx.DistanceKm)
	require.NotNil(t, bdx.LastSalesCRF)
	assert.Equal(t, "2025-07-25", *bdx.LastSalesCRF)
	assert.Nil(t, bdx.LastSalesMDM)
	require.NotNil(t, bdx.Comments)
	assert.Equal(t, "Blacklist : 22 rue Pierre Curie, Nansouty", *bdx.Comments)

	aja := ts[1]
	assert.Equal(t, "2A004", aja.CodeINSEE)
	assert.Equal(t, 1500, aja.Logements)
	assert.Equal(t, 82.5, aja.PctResidPrinc)
	assert.Equal(t, 1238, aja.MondaysAvailable, "1237.5 rounds half up")
	assert.Nil(t, aja.LastSalesCRF)
	assert.Nil(t, aja.Comments)
}

func TestParse_Rejections(t *testing.T) {
	header := "code_insee,name,departement,region,logements,pct_resid_princ,last_sales_mdm\n"
	cases := map[string]string{
		"no rows":         header,
		"missing column":  "code_insee,name,departement,region,logements\n33063,BORDEAUX,33,NA,12000\n",
		"bad insee":       header + "3306,BORDEAUX,33,NA,12000,90,\n",
		"duplicate insee": header + "33063,BORDEAUX,33,NA,12000,90,\n33063,BORDEAUX,33,NA,12000,90,\n",
		"bad logements":   header + "33063,BORDEAUX,33,NA,douze,90,\n",
		"pct over 100":    header + "33063,BORDEAUX,33,NA,12000,190,\n",
		"missing name":    header + "33063,,33,NA,12000,90,\n",
		"bad date":        header + "33063,BORDEAUX,33,NA,12000,90,01/06/2024\n",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(in))
			assert.Error(t, err)
		})
	}
}

func TestParse_ReportsLine(t *testing.T) {
	in := "code_insee,name,departement,region,logements,pct_resid_princ\n" +
		"33063,BORDEAUX,33,NA,12000,90\n" +
		"33281,MÉRIGNAC,33,NA,-5,94\n"
	_, err := Parse(strings.NewReader(in))
	assert.ErrorContains(t, err, "row 3")
}

func TestRun_DryRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "territories.csv")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	err := Run(context.Background(), Config{CSVPath: path, DryRun: true}, zap.NewNop())
	assert.NoError(t, err, "a dry run never touches the database")

	err = Run(context.Background(), Config{CSVPath: filepath.Join(t.TempDir(), "missing.csv"), DryRun: true}, zap.NewNop())
	assert.Error(t, err)
}
