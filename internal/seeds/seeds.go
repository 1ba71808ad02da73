// Package seeds loads the embedded reference dataset.
package seeds

import (
	_ "embed"
	"fmt"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/tawkr/tawkr-backend/internal/alert"
	"github.com/tawkr/tawkr-backend/internal/auth"
	"github.com/tawkr/tawkr-backend/internal/campaign"
	"github.com/tawkr/tawkr-backend/internal/franchise"
	"github.com/tawkr/tawkr-backend/internal/territory"
	"github.com/tawkr/tawkr-backend/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

//go:embed data/seed.yaml
var seedYAML []byte

type Dataset struct {
	Territories []territory.Territory
	Campaigns   []campaign.Campaign
	Franchises  []franchise.Franchise
	Alerts      []alert.Alert
	Users       []auth.User
}

// seedUser carries the plaintext password, hashed at load time.
type seedUser struct {
	ID            uint      `yaml:"id"`
	Email         string    `yaml:"email"`
	Password      string    `yaml:"password"`
	Role          string    `yaml:"role"`
	FranchiseID   *uint     `yaml:"franchise_id"`
	FranchiseName *string   `yaml:"franchise_name"`
	CreatedAt     time.Time `yaml:"created_at"`
}

type file struct {
	Territories []territory.Territory `yaml:"territories"`
	Campaigns   []campaign.Campaign   `yaml:"campaigns"`
	Franchises  []franchise.Franchise `yaml:"franchises"`
	Alerts      []alert.Alert         `yaml:"alerts"`
	Users       []seedUser            `yaml:"users"`
}

// Load parses the embedded dataset.
func Load() (Dataset, error) {
	return Parse(seedYAML, bcrypt.DefaultCost)
}

// Parse decodes a dataset, hashes user passwords with the given bcrypt cost
// and checks cross references.
func Parse(data []byte, cost int) (Dataset, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Dataset{}, fmt.Errorf("parse seed dataset: %w", err)
	}

	ds := Dataset{
		Territories: f.Territories,
		Campaigns:   f.Campaigns,
		Franchises:  f.Franchises,
		Alerts:      f.Alerts,
	}
	for _, su := range f.Users {
		hashed, err := bcrypt.GenerateFromPassword([]byte(su.Password), cost)
		if err != nil {
			return Dataset{}, fmt.Errorf("hash password for %s: %w", su.Email, err)
		}
		ds.Users = append(ds.Users, auth.User{
			ID:             su.ID,
			Email:          su.Email,
			HashedPassword: string(hashed),
			Role:           su.Role,
			FranchiseID:    su.FranchiseID,
			FranchiseName:  su.FranchiseName,
			CreatedAt:      su.CreatedAt,
		})
	}

	for i := range ds.Territories {
		t := &ds.Territories[i]
		status, err := territory.ParseStatus(string(t.Status))
		if err != nil {
			return Dataset{}, fmt.Errorf("territory %s: %w", t.CodeINSEE, err)
		}
		t.Status = status
		if err := t.Recompute(); err != nil {
			return Dataset{}, fmt.Errorf("territory %s: %w", t.CodeINSEE, err)
		}
	}

	if err := ds.Validate(); err != nil {
		return Dataset{}, err
	}
	return ds, nil
}

// Validate checks that every territory pairs its status with its franchise
// and that every reference in the dataset resolves: territory franchises,
// alert territories and franchise users, whose franchise name must match the
// franchise they point at.
func (ds Dataset) Validate() error {
	franchises := make(map[uint]string, len(ds.Franchises))
	for _, f := range ds.Franchises {
		franchises[f.ID] = f.Name
	}
	territories := make(map[uint]bool, len(ds.Territories))
	for _, t := range ds.Territories {
		territories[t.ID] = true
		if err := t.CheckAssignment(); err != nil {
			return fmt.Errorf("territory %s: %w", t.CodeINSEE, err)
		}
		if t.AssignedFranchiseID != nil {
			if _, ok := franchises[*t.AssignedFranchiseID]; !ok {
				return fmt.Errorf("territory %s: unknown franchise %d", t.CodeINSEE, *t.AssignedFranchiseID)
			}
		}
	}

	for _, a := range ds.Alerts {
		if !territories[a.TerritoryID] {
			return fmt.Errorf("alert %d: unknown territory %d", a.ID, a.TerritoryID)
		}
	}

	emails := make(map[string]bool, len(ds.Users))
	for _, u := range ds.Users {
		if emails[u.Email] {
			return fmt.Errorf("user %s: duplicate email", u.Email)
		}
		emails[u.Email] = true

		switch u.Role {
		case utils.RoleAdmin:
		case utils.RoleFranchise:
			if u.FranchiseID == nil {
				return fmt.Errorf("user %s: franchise user without franchise_id", u.Email)
			}
			name, ok := franchises[*u.FranchiseID]
			if !ok {
				return fmt.Errorf("user %s: unknown franchise %d", u.Email, *u.FranchiseID)
			}
			if u.FranchiseName != nil && *u.FranchiseName != name {
				return fmt.Errorf("user %s: franchise_name %q does not match franchise %d (%q)",
					u.Email, *u.FranchiseName, *u.FranchiseID, name)
			}
		default:
			return fmt.Errorf("user %s: unknown role %q", u.Email, u.Role)
		}
	}
	return nil
}
