package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"lager-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Tabellen des Postgres-Backends. Buchungen bekommen eine laufende ID, damit
// die Einfügereihenfolge beim Laden erhalten bleibt.
type articleRow struct {
	ID             string `gorm:"primaryKey;size:16"`
	ArtNr          string `gorm:"size:100"`
	Name           string `gorm:"size:200;not null;index"`
	Bestand        int    `gorm:"not null"`
	MindestBestand int    `gorm:"not null"`
}

func (articleRow) TableName() string { return "articles" }

type bookingRow struct {
	ID         uint      `gorm:"primaryKey"`
	Timestamp  time.Time `gorm:"index;not null"`
	ArticleID  string    `gorm:"size:16;index;not null"` // keine FK: Historie bleibt nach dem Löschen bestehen
	Change     int       `gorm:"not null"`
	NewBestand int       `gorm:"not null"`
	Type       string    `gorm:"size:20;not null"`
	Username   string    `gorm:"size:100"`
}

func (bookingRow) TableName() string { return "bookings" }

type userRow struct {
	Username           string             `gorm:"primaryKey;size:100"`
	Password           string             `gorm:"size:255;not null"`
	Role               string             `gorm:"size:20"`
	MustChangePassword bool               `gorm:"not null;default:false"`
	Permissions        models.Permissions `gorm:"embedded;embeddedPrefix:perm_"`
}

func (userRow) TableName() string { return "users" }

// OpenPostgres: Tabellen per AutoMigrate, leere Datenbank wird aus dem Seed
// befüllt. Commits schreiben nur die Differenz zum vorherigen Stand.
func OpenPostgres(dsn string, seed []byte) (*DocStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("postgres verbinden: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&articleRow{}, &bookingRow{}, &userRow{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("AutoMigrate: %w", err)
	}

	doc, err := loadPostgres(db)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	if len(doc.Users) == 0 && len(doc.Articles) == 0 && len(doc.Bookings) == 0 {
		seeded, err := ParseDocument(seed)
		if err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
		if err := persistPostgres(context.Background(), db, doc, seeded); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
		doc = seeded
		log.Println("Postgres-Datenbank aus Seed befüllt")
	}

	persist := func(ctx context.Context, prev, next *models.Document) error {
		return persistPostgres(ctx, db, prev, next)
	}
	return newDocStore(doc, persist, sqlDB.Close), nil
}

func loadPostgres(db *gorm.DB) (*models.Document, error) {
	var articles []articleRow
	if err := db.Order("id asc").Find(&articles).Error; err != nil {
		return nil, fmt.Errorf("artikel laden: %w", err)
	}
	var bookings []bookingRow
	if err := db.Order("id asc").Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("buchungen laden: %w", err)
	}
	var users []userRow
	if err := db.Order("username asc").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("user laden: %w", err)
	}

	doc := &models.Document{
		Users:    make([]models.User, 0, len(users)),
		Articles: make([]models.Article, 0, len(articles)),
		Bookings: make([]models.Booking, 0, len(bookings)),
	}
	for _, a := range articles {
		doc.Articles = append(doc.Articles, models.Article{
			ID:              a.ID,
			ArticleNumber:   a.ArtNr,
			Name:            a.Name,
			Quantity:        a.Bestand,
			MinimumQuantity: a.MindestBestand,
		})
	}
	for _, b := range bookings {
		doc.Bookings = append(doc.Bookings, models.Booking{
			Timestamp:         b.Timestamp.UTC(),
			ArticleID:         b.ArticleID,
			Change:            b.Change,
			ResultingQuantity: b.NewBestand,
			Type:              models.BookingType(b.Type),
			User:              b.Username,
		})
	}
	for _, u := range users {
		doc.Users = append(doc.Users, models.User{
			Username:           u.Username,
			Password:           u.Password,
			Role:               models.UserRole(u.Role),
			MustChangePassword: u.MustChangePassword,
			Permissions:        u.Permissions,
		})
	}
	return doc, nil
}

func persistPostgres(ctx context.Context, db *gorm.DB, prev, next *models.Document) error {
	if len(next.Bookings) < len(prev.Bookings) {
		return fmt.Errorf("buchungen dürfen nicht entfernt werden (%d -> %d)", len(prev.Bookings), len(next.Bookings))
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Artikel
		prevArticles := make(map[string]models.Article, len(prev.Articles))
		for _, a := range prev.Articles {
			prevArticles[a.ID] = a
		}
		var upserts []articleRow
		for _, a := range next.Articles {
			old, ok := prevArticles[a.ID]
			delete(prevArticles, a.ID)
			if ok && old == a {
				continue
			}
			upserts = append(upserts, articleRow{
				ID:             a.ID,
				ArtNr:          a.ArticleNumber,
				Name:           a.Name,
				Bestand:        a.Quantity,
				MindestBestand: a.MinimumQuantity,
			})
		}
		if len(prevArticles) > 0 {
			ids := make([]string, 0, len(prevArticles))
			for id := range prevArticles {
				ids = append(ids, id)
			}
			if err := tx.Where("id IN ?", ids).Delete(&articleRow{}).Error; err != nil {
				return fmt.Errorf("artikel löschen: %w", err)
			}
		}
		if len(upserts) > 0 {
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&upserts).Error; err != nil {
				return fmt.Errorf("artikel speichern: %w", err)
			}
		}

		// Buchungen: nur anhängen
		if added := next.Bookings[len(prev.Bookings):]; len(added) > 0 {
			rows := make([]bookingRow, 0, len(added))
			for _, b := range added {
				rows = append(rows, bookingRow{
					Timestamp:  b.Timestamp,
					ArticleID:  b.ArticleID,
					Change:     b.Change,
					NewBestand: b.ResultingQuantity,
					Type:       string(b.Type),
					Username:   b.User,
				})
			}
			if err := tx.Create(&rows).Error; err != nil {
				return fmt.Errorf("buchungen speichern: %w", err)
			}
		}

		// User
		prevUsers := make(map[string]models.User, len(prev.Users))
		for _, u := range prev.Users {
			prevUsers[u.Username] = u
		}
		var userUpserts []userRow
		for _, u := range next.Users {
			old, ok := prevUsers[u.Username]
			delete(prevUsers, u.Username)
			if ok && old == u {
				continue
			}
			userUpserts = append(userUpserts, userRow{
				Username:           u.Username,
				Password:           u.Password,
				Role:               string(u.Role),
				MustChangePassword: u.MustChangePassword,
				Permissions:        u.Permissions,
			})
		}
		if len(prevUsers) > 0 {
			names := make([]string, 0, len(prevUsers))
			for name := range prevUsers {
				names = append(names, name)
			}
			if err := tx.Where("username IN ?", names).Delete(&userRow{}).Error; err != nil {
				return fmt.Errorf("user löschen: %w", err)
			}
		}
		if len(userUpserts) > 0 {
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&userUpserts).Error; err != nil {
				return fmt.Errorf("user speichern: %w", err)
			}
		}
		return nil
	})
}
