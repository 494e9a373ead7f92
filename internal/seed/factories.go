// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"skymarket/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password every seeded account gets.
const DefaultPassword = "Passw0rdForDemo"

// Options tunes factory behavior.
type Options struct {
	// SkipBcrypt stores the plaintext password instead of a hash. Login will
	// not work for such accounts; use only when seeding large volumes for
	// query benchmarks.
	SkipBcrypt bool
	// MaxDays bounds the synthetic created_at spread. Defaults to 90.
	MaxDays int
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db   *gorm.DB
	opts Options
	rnd  *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:   db,
		opts: opts,
		rnd:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// createdAt produces a timestamp spread over the recent past so listings
// look organic.
func (f *Factory) createdAt() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	daysBack := f.rnd.Intn(maxDays)
	hoursBack := f.rnd.Intn(24)
	minsBack := f.rnd.Intn(60)
	return time.Now().Add(-time.Duration(daysBack)*24*time.Hour -
		time.Duration(hoursBack)*time.Hour - time.Duration(minsBack)*time.Minute)
}

func (f *Factory) password() string {
	if f.opts.SkipBcrypt {
		return DefaultPassword
	}
	hashed, _ := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
	return string(hashed)
}

// CreateUser constructs and persists a sample active account.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Email:     gofakeit.Email(),
		Password:  f.password(),
		Role:      models.RoleUser,
		FirstName: gofakeit.FirstName(),
		LastName:  gofakeit.LastName(),
		Phone:     fmt.Sprintf("+7916%07d", f.rnd.Intn(10000000)),
		IsActive:  true,
		Image:     fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateAdmin persists a sample administrator account.
func (f *Factory) CreateAdmin(overrides ...func(*models.User)) (*models.User, error) {
	return f.CreateUser(append([]func(*models.User){func(u *models.User) {
		u.Role = models.RoleAdmin
	}}, overrides...)...)
}

// CreateAd constructs and persists a sample ad owned by the given user.
func (f *Factory) CreateAd(author *models.User, overrides ...func(*models.Ad)) (*models.Ad, error) {
	ad := &models.Ad{
		Title:       gofakeit.ProductName(),
		Description: gofakeit.Paragraph(1, 3, 8, "\n"),
		Price:       gofakeit.Number(100, 100000),
		AuthorID:    author.ID,
		CreatedAt:   f.createdAt(),
	}

	for _, override := range overrides {
		override(ad)
	}

	if err := f.db.Create(ad).Error; err != nil {
		return nil, err
	}
	return ad, nil
}

// CreateComment persists a sample comment under the given ad.
func (f *Factory) CreateComment(author *models.User, ad *models.Ad, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		Text:      gofakeit.Sentence(f.rnd.Intn(12) + 3),
		AuthorID:  author.ID,
		AdID:      ad.ID,
		CreatedAt: f.createdAt(),
	}

	for _, override := range overrides {
		override(comment)
	}

	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}
