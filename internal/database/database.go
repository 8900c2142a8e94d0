package database

import (
	"fmt"
	"log"

	"github.com/artsmartiaux/association-go/internal/config"
	"github.com/artsmartiaux/association-go/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Run migrations
	if err := models.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Println("Database connected and migrated successfully")
	return db, nil
}

func SeedData(db *gorm.DB) error {
	// Check if data already exists
	var count int64
	db.Model(&models.Club{}).Count(&count)
	if count > 0 {
		log.Println("Data already seeded, skipping...")
		return nil
	}

	clubs := []models.Club{
		{Slug: "paris-centre", Name: "Arts Martiaux Paris Centre", City: "Paris", Address: "12 rue des Archives, 75004 Paris", Email: "paris-centre@artsmartiaux.fr", Active: true},
		{Slug: "lyon-croix-rousse", Name: "Dojo de la Croix-Rousse", City: "Lyon", Address: "8 place des Tapis, 69004 Lyon", Email: "lyon@artsmartiaux.fr", Active: true},
		{Slug: "marseille-vieux-port", Name: "Dojo du Vieux-Port", City: "Marseille", Address: "3 quai de Rive Neuve, 13007 Marseille", Email: "marseille@artsmartiaux.fr", Active: true},
	}

	for _, club := range clubs {
		if err := db.Create(&club).Error; err != nil {
			return fmt.Errorf("failed to create club: %w", err)
		}
	}

	faqs := []models.FAQItem{
		{Question: "À partir de quel âge peut-on s'inscrire ?", Answer: "Les cours enfants sont ouverts à partir de 6 ans.", Category: "inscription", DisplayOrder: 0, Published: true},
		{Question: "Faut-il un certificat médical ?", Answer: "Oui, un certificat médical de moins de 3 mois est demandé à l'inscription.", Category: "inscription", DisplayOrder: 1, Published: true},
		{Question: "Proposez-vous des cours d'essai ?", Answer: "Deux cours d'essai gratuits sont offerts dans chacun de nos clubs.", Category: "cours", DisplayOrder: 2, Published: true},
	}

	for _, faq := range faqs {
		if err := db.Create(&faq).Error; err != nil {
			return fmt.Errorf("failed to create faq item: %w", err)
		}
	}

	settings := []models.SiteSetting{
		{Key: "site_title", Value: "Association Arts Martiaux", Public: true},
		{Key: "contact_email", Value: "contact@artsmartiaux.fr", Public: true},
		{Key: "facebook_page_url", Value: "https://www.facebook.com/artsmartiaux", Public: true},
		{Key: "sync_notification_email", Value: "webmaster@artsmartiaux.fr", Public: false},
	}

	for _, setting := range settings {
		if err := db.Create(&setting).Error; err != nil {
			return fmt.Errorf("failed to create setting: %w", err)
		}
	}

	log.Println("Sample data seeded successfully")
	return nil
}
