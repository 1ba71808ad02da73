package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Prints the selections and alerts recorded for one territory.
// Usage: check-territory <code_insee>
func main() {
	godotenv.Load(".env.local")

	if len(os.Args) != 2 {
		log.Fatal("usage: check-territory <code_insee>")
	}
	code := os.Args[1]

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dbURL), &gorm.Config{})
	if err != nil {
		log.Fatalf("DB connection error: %v", err)
	}

	type Territory struct {
		ID                  uint
		Name                string
		Status              string
		MondaysAvailable    int
		AssignedFranchiseID *uint
	}
	var t Territory
	if err := db.Raw(`SELECT id, name, status, mondays_available, assigned_franchise_id
		FROM tawkr.territories WHERE code_insee = ?`, code).Scan(&t).Error; err != nil {
		log.Fatalf("Query error: %v", err)
	}
	if t.ID == 0 {
		log.Fatalf("No territory with code %s", code)
	}

	fmt.Printf("%s (%s) %s, %d Mondays", t.Name, code, t.Status, t.MondaysAvailable)
	if t.AssignedFranchiseID != nil {
		fmt.Printf(", franchise %d", *t.AssignedFranchiseID)
	}
	fmt.Print("\n\n")

	type Selection struct {
		ID              uint
		Campaign        string
		Franchise       string
		MondaysSelected int
		Status          string
	}
	var selections []Selection
	query := `
		SELECT
			s.id,
			c.name AS campaign,
			f.name AS franchise,
			s.mondays_selected,
			s.status
		FROM tawkr.territory_selections s
		JOIN tawkr.campaigns c ON s.campaign_id = c.id
		JOIN tawkr.franchises f ON s.franchise_id = f.id
		WHERE s.territory_id = ?
		ORDER BY s.selection_date DESC
	`
	if err := db.Raw(query, t.ID).Scan(&selections).Error; err != nil {
		log.Fatalf("Query error: %v", err)
	}

	byStatus := make(map[string][]Selection)
	for _, s := range selections {
		byStatus[s.Status] = append(byStatus[s.Status], s)
	}
	for status, ss := range byStatus {
		fmt.Printf("=== %s (%d) ===\n", status, len(ss))
		for _, s := range ss {
			fmt.Printf("  - #%d %s | %s | %d Mondays\n", s.ID, s.Campaign, s.Franchise, s.MondaysSelected)
		}
		fmt.Println()
	}

	type Alert struct {
		Level   string
		Message string
		IsRead  bool
	}
	var alerts []Alert
	if err := db.Raw(`SELECT level, message, is_read FROM tawkr.alerts
		WHERE territory_id = ? ORDER BY created_at DESC`, t.ID).Scan(&alerts).Error; err != nil {
		log.Fatalf("Query error: %v", err)
	}
	fmt.Printf("=== alerts (%d) ===\n", len(alerts))
	for _, a := range alerts {
		read := " "
		if a.IsRead {
			read = "x"
		}
		fmt.Printf("  [%s] %s: %s\n", read, a.Level, a.Message)
	}
}
