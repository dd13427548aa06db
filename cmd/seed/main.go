package main

import (
	"os"

	"legal-annotation-be/internal/config"
	"legal-annotation-be/internal/model"
	"legal-annotation-be/pkg/database"

	"github.com/fatih/color"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func main() {
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		color.Red("DB_CONNECTION_STRING is not set")
		os.Exit(1)
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, cfg.Database.Debug)
	if err != nil {
		color.Red("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	color.Cyan("Seeding subscription plans...")

	plans := []model.SubscriptionPlan{
		{
			Name: "Free", Slug: "free", Tagline: "Annotate your first contracts",
			Price: 0, BillingPeriod: "monthly",
			MaxAnnotationsPerDocument: 50, MaxCollaboratorsPerShare: 2,
			DocumentUploadMonthlyLimit: 5, AiQueryDailyLimit: 0,
			IsActive: true, SortOrder: 1,
			Features: datatypes.JSONSlice[string]{"Highlights, notes and stamps", "Share with 2 collaborators"},
		},
		{
			Name: "Pro", Slug: "pro", Tagline: "For practising lawyers",
			Price: 19, BillingPeriod: "monthly",
			MaxAnnotationsPerDocument: 1000, MaxCollaboratorsPerShare: 10,
			DocumentUploadMonthlyLimit: 100, AiQueryDailyLimit: 50,
			IsMostPopular: true, IsActive: true, SortOrder: 2,
			Features: datatypes.JSONSlice[string]{"Semantic search across annotations", "Share with 10 collaborators", "100 uploads per month"},
		},
		{
			Name: "Firm", Slug: "firm", Tagline: "Unlimited review for the whole team",
			Price: 79, BillingPeriod: "monthly",
			MaxAnnotationsPerDocument: -1, MaxCollaboratorsPerShare: -1,
			DocumentUploadMonthlyLimit: -1, AiQueryDailyLimit: -1,
			IsActive: true, SortOrder: 3,
			Features: datatypes.JSONSlice[string]{"Unlimited annotations", "Unlimited collaborators", "Unlimited semantic search"},
		},
	}

	for i := range plans {
		if err := upsertPlan(db, &plans[i]); err != nil {
			color.Red("  ✗ %s: %v", plans[i].Slug, err)
			continue
		}
		color.Green("  ✓ %s", plans[i].Slug)
	}

	color.Cyan("Plan seeding completed!")
}

// upsertPlan keeps ids stable so existing subscriptions stay attached.
func upsertPlan(db *gorm.DB, plan *model.SubscriptionPlan) error {
	var existing model.SubscriptionPlan
	err := db.Where("slug = ?", plan.Slug).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return db.Create(plan).Error
	}
	if err != nil {
		return err
	}
	plan.Id = existing.Id
	return db.Save(plan).Error
}
