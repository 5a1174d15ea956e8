package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/cybershield/intel/internal/config"
	"github.com/cybershield/intel/internal/database"
	"github.com/cybershield/intel/internal/feeds"
	"github.com/cybershield/intel/internal/models"
	"github.com/cybershield/intel/internal/services"
)

func daysAgo(n int) *time.Time {
	t := time.Now().AddDate(0, 0, -n)
	return &t
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	db, err := database.Connect(cfg.DatabasePath)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	fmt.Println("✓ Database migrated successfully")

	actors := []models.ThreatActor{
		{Name: "APT29", Aliases: "Cozy Bear, The Dukes", OriginCountry: "Russia", ActivityStatus: models.ActivityActive, FirstSeen: daysAgo(4000), LastActivity: daysAgo(2)},
		{Name: "Lazarus Group", Aliases: "Hidden Cobra", OriginCountry: "North Korea", ActivityStatus: models.ActivityActive, FirstSeen: daysAgo(5000), LastActivity: daysAgo(5)},
		{Name: "FIN7", Aliases: "Carbanak", OriginCountry: "Unknown", ActivityStatus: models.ActivityMonitoring, FirstSeen: daysAgo(3500), LastActivity: daysAgo(20)},
		{Name: "APT41", Aliases: "Double Dragon", OriginCountry: "China", ActivityStatus: models.ActivityMonitoring, FirstSeen: daysAgo(4200), LastActivity: daysAgo(35)},
		{Name: "Sandworm", Aliases: "Voodoo Bear", OriginCountry: "Russia", ActivityStatus: models.ActivityDormant, FirstSeen: daysAgo(3900), LastActivity: daysAgo(120)},
	}
	for _, a := range actors {
		seed(db, &a, "name = ?", a.Name, "threat actor "+a.Name)
	}

	metrics := []models.SecurityMetric{
		{MetricName: "Security Score", MetricValue: 8.7, Unit: "score", RecordedAt: daysAgo(0), CreatedBy: "seed"},
		{MetricName: "Mean Time To Respond", MetricValue: 2.4, Unit: "hours", RecordedAt: daysAgo(0), CreatedBy: "seed"},
		{MetricName: "Patch Coverage", MetricValue: 92, Unit: "percent", RecordedAt: daysAgo(1), CreatedBy: "seed"},
	}
	for _, m := range metrics {
		seed(db, &m, "metric_name = ?", m.MetricName, "metric "+m.MetricName)
	}

	circl := models.IntelFeed{FeedName: "circl", FeedURL: cfg.CIRCLURL, IsActive: true}
	if circl.FeedURL == "" {
		circl.FeedURL = feeds.DefaultCIRCLURL
	}
	seed(db, &circl, "feed_name = ?", circl.FeedName, "intel feed "+circl.FeedName)

	threats := []models.Threat{
		{
			Title:            "Log4j Remote Code Execution",
			Description:      "JNDI lookup in log messages allows unauthenticated remote code execution on vulnerable Log4j 2 deployments.",
			Severity:         models.SeverityCritical,
			Category:         models.CategoryVulnerability,
			Source:           "NVD",
			CVEID:            "CVE-2021-44228",
			AffectedSystems:  12000,
			MitigationStatus: models.StatusInProgress,
			ThreatActor:      "Unknown",
			Mitigation:       "Upgrade to Log4j 2.17.1 or later and disable JNDI lookups.",
		},
		{
			Title:            "FIN7 spear-phishing campaign",
			Description:      "Weaponized documents targeting hospitality finance teams deliver a JavaScript backdoor.",
			Severity:         models.SeverityHigh,
			Category:         models.CategoryPhishing,
			Source:           "ISAC",
			AffectedSystems:  340,
			MitigationStatus: models.StatusUnmitigated,
			ThreatActor:      "FIN7",
			Mitigation:       "Block macro execution from internet-sourced documents and reset exposed credentials.",
		},
		{
			Title:            "LockBit ransomware affiliate activity",
			Description:      "Affiliates exploit exposed RDP and encrypt file servers after exfiltrating data.",
			Severity:         models.SeverityCritical,
			Category:         models.CategoryRansomware,
			Source:           "CISA",
			AffectedSystems:  58,
			MitigationStatus: models.StatusMitigated,
			ThreatActor:      "LockBit",
			Mitigation:       "Restrict RDP exposure, enforce MFA, and keep offline backups.",
		},
	}

	svc := services.NewThreatService(db, nil)
	ctx := context.Background()
	for _, t := range threats {
		var existing models.Threat
		if err := db.Where("title = ?", t.Title).First(&existing).Error; err == nil {
			fmt.Printf("  Threat already exists: %s\n", t.Title)
			continue
		}
		if err := svc.Create(ctx, &t); err != nil {
			log.Printf("Failed to seed threat %s: %v", t.Title, err)
			continue
		}
		fmt.Printf("✓ Created threat: %s (priority %d)\n", t.Title, t.PriorityScore)
	}

	fmt.Println("\n✓ Database seeding completed successfully!")
	fmt.Println("  You can now start the application and see sample data.")
}

// seed creates row unless a record matching query already exists.
func seed(db *gorm.DB, row interface{}, query string, arg interface{}, label string) {
	result := db.Where(query, arg).FirstOrCreate(row)
	if result.Error != nil {
		log.Printf("Failed to seed %s: %v", label, result.Error)
		return
	}
	if result.RowsAffected > 0 {
		fmt.Printf("✓ Created %s\n", label)
	} else {
		fmt.Printf("  %s already exists\n", label)
	}
}
