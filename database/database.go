package database

import (
	"fmt"

	"github.com/fairuzullah/edu_lms/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect opens the Postgres pool. The returned handle is passed explicitly
// to handlers and the authorization resolver; nothing holds it globally.
func Connect(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	fmt.Println("✅ Database connected successfully")
	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.Enrollment{},
		&models.Material{},
		&models.Assessment{},
		&models.Submission{},
		&models.VirtualClass{},
	)
	if err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	fmt.Println("✅ Database migration successful")
	return nil
}

type seedUser struct {
	Email    string
	Password string
	FullName string
	Role     string
}

// Seed creates the bootstrap accounts if they do not exist yet.
func Seed(db *gorm.DB) error {
	seedUsers := []seedUser{
		{"educator@edufairuzullah.com", "Educator@123", "Dr. Abdullah Fairuzullah", models.RoleEducator},
		{"learner@edufairuzullah.com", "Learner@123", "Ahmad Bin Ismail", models.RoleLearner},
		{"john@example.com", "Learner@123", "John Doe", models.RoleLearner},
	}

	for _, su := range seedUsers {
		var count int64
		if err := db.Model(&models.User{}).Where("email = ?", su.Email).Count(&count).Error; err != nil {
			return fmt.Errorf("check seed user %s: %w", su.Email, err)
		}
		if count > 0 {
			continue
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(su.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash seed password: %w", err)
		}

		user := models.User{
			Email:        su.Email,
			PasswordHash: string(hashed),
			FullName:     su.FullName,
			Role:         su.Role,
		}
		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("seed user %s: %w", su.Email, err)
		}
	}

	fmt.Println("✅ Database initialized with sample data")
	return nil
}
