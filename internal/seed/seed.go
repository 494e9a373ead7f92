package seed

import (
	"fmt"
	"log"

	"skymarket/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Seeder orchestrates demo data creation.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

// NewSeeder creates a Seeder bound to the given database.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{
		db:      db,
		factory: NewFactory(db, opts),
	}
}

// ClearAll removes all seeded data. Deletes run child-first so foreign keys
// hold throughout.
func (s *Seeder) ClearAll() error {
	for _, model := range []interface{}{
		&models.Comment{},
		&models.Ad{},
		&models.User{},
	} {
		if err := s.db.Unscoped().Where("1 = 1").Delete(model).Error; err != nil {
			return fmt.Errorf("clearing %T: %w", model, err)
		}
	}
	return nil
}

// Result summarizes what a seeding run created.
type Result struct {
	Users    int
	Ads      int
	Comments int
}

// Run populates the database with numUsers accounts and numAds listings, plus
// a known admin account (admin@skymarket.local) for manual testing. Each ad
// gets a handful of comments from random users.
func (s *Seeder) Run(numUsers, numAds int) (*Result, error) {
	if numUsers < 1 {
		numUsers = 1
	}

	if _, err := s.factory.CreateAdmin(func(u *models.User) {
		u.Email = "admin@skymarket.local"
		u.FirstName = "Site"
		u.LastName = "Admin"
	}); err != nil {
		return nil, fmt.Errorf("seeding admin: %w", err)
	}

	users := make([]*models.User, 0, numUsers)
	for i := 0; i < numUsers; i++ {
		user, err := s.factory.CreateUser()
		if err != nil {
			return nil, fmt.Errorf("seeding user %d: %w", i, err)
		}
		users = append(users, user)
	}

	result := &Result{Users: numUsers + 1}
	for i := 0; i < numAds; i++ {
		author := users[gofakeit.Number(0, len(users)-1)]
		ad, err := s.factory.CreateAd(author)
		if err != nil {
			return nil, fmt.Errorf("seeding ad %d: %w", i, err)
		}
		result.Ads++

		for c := gofakeit.Number(0, 4); c > 0; c-- {
			commenter := users[gofakeit.Number(0, len(users)-1)]
			if _, err := s.factory.CreateComment(commenter, ad); err != nil {
				return nil, fmt.Errorf("seeding comment on ad %d: %w", ad.ID, err)
			}
			result.Comments++
		}
	}

	log.Printf("seeded %d users, %d ads, %d comments", result.Users, result.Ads, result.Comments)
	return result, nil
}
