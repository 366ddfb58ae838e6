package inventory

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"lager-backend/internal/access"
	"lager-backend/internal/apperr"
	"lager-backend/internal/clock"
	"lager-backend/internal/database"
	"lager-backend/internal/ledger"
	"lager-backend/internal/models"
)

// Recorder wird nach jedem Commit einer Buchung aufgerufen (Metriken).
type Recorder interface {
	BookingCommitted(b models.Booking)
}

// Service: Artikelkatalog, Buchungsmaschine und abgeleitete Sichten.
// Jede Operation prüft die Berechtigung innerhalb derselben Store-Transaktion
// bzw. desselben Snapshots, auf dem sie arbeitet.
type Service struct {
	store    database.Store
	clock    clock.Clock
	recorder Recorder
}

type Option func(*Service)

func WithClock(c clock.Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		s.recorder = r
	}
}

func NewService(store database.Store, opts ...Option) *Service {
	s := &Service{store: store, clock: clock.NewSystem()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) ListArticles(ctx context.Context, actor string) ([]models.Article, error) {
	var out []models.Article
	err := s.store.View(ctx, func(doc *models.Document) error {
		if err := access.AuthorizeIn(doc, actor, models.CapViewArticles); err != nil {
			return err
		}
		out = slices.Clone(doc.Articles)
		return nil
	})
	return out, err
}

func (s *Service) GetArticle(ctx context.Context, actor, key string) (models.Article, error) {
	var out models.Article
	err := s.store.View(ctx, func(doc *models.Document) error {
		if err := access.AuthorizeIn(doc, actor, models.CapViewArticles); err != nil {
			return err
		}
		i := doc.FindArticle(key)
		if i < 0 {
			return apperr.NotFound("Artikel %q", key)
		}
		out = doc.Articles[i]
		return nil
	})
	return out, err
}

func (s *Service) AddArticle(ctx context.Context, actor string, in NewArticle) (models.Article, error) {
	var out models.Article
	err := s.store.Update(ctx, func(doc *models.Document) error {
		if err := access.AuthorizeIn(doc, actor, models.CapAddArticle); err != nil {
			return err
		}
		a, err := addArticle(doc, in)
		out = a
		return err
	})
	return out, err
}

// ArticleChange: Stand vor und nach einer Katalogänderung
type ArticleChange struct {
	Before models.Article
	After  models.Article
}

// QuantityChanged: Bestand wurde direkt überschrieben, ohne Buchung
func (c ArticleChange) QuantityChanged() bool {
	return c.Before.Quantity != c.After.Quantity
}

// UpdateArticle ist die direkte Katalogbearbeitung. Eine Bestandsänderung
// hier erzeugt keine Buchung; der Aufrufer protokolliert sie über Before/After.
func (s *Service) UpdateArticle(ctx context.Context, actor, id string, p ArticlePatch) (ArticleChange, error) {
	var out ArticleChange
	err := s.store.Update(ctx, func(doc *models.Document) error {
		if err := access.AuthorizeIn(doc, actor, models.CapAddArticle); err != nil {
			return err
		}
		if i := slices.IndexFunc(doc.Articles, func(a models.Article) bool { return a.ID == id }); i >= 0 {
			out.Before = doc.Articles[i]
		}
		a, err := updateArticle(doc, id, p)
		out.After = a
		return err
	})
	if err != nil {
		return ArticleChange{}, err
	}
	return out, nil
}

func (s *Service) RemoveArticle(ctx context.Context, actor, key string) (models.Article, error) {
	var out models.Article
	err := s.store.Update(ctx, func(doc *models.Document) error {
		if err := access.AuthorizeIn(doc, actor, models.CapRemoveArticle); err != nil {
			return err
		}
		a, err := removeArticle(doc, key)
		out = a
		return err
	})
	return out, err
}

// Book bucht Verbrauch oder Einkauf. Bestand und Buchung werden in einer
// Transaktion geschrieben; der Bestand wird nicht nach unten begrenzt.
func (s *Service) Book(ctx context.Context, actor, key string, typ models.BookingType, magnitude int) (models.Booking, error) {
	change, err := typ.SignedChange(magnitude)
	if err != nil {
		return models.Booking{}, apperr.InvalidArgument("%v", err)
	}
	capability, err := typ.Capability()
	if err != nil {
		return models.Booking{}, apperr.InvalidArgument("%v", err)
	}

	var out models.Booking
	err = s.store.Update(ctx, func(doc *models.Document) error {
		if err := access.AuthorizeIn(doc, actor, capability); err != nil {
			return err
		}
		if magnitude <= 0 {
			return apperr.InvalidArgument("Menge muss größer als 0 sein")
		}
		i := doc.FindArticle(key)
		if i < 0 {
			return apperr.NotFound("Artikel %q", key)
		}
		doc.Articles[i].Quantity += change
		out = ledger.Append(doc, doc.Articles[i], change, typ, actor, s.clock.Now())
		return nil
	})
	if err != nil {
		return models.Booking{}, err
	}

	if s.recorder != nil {
		s.recorder.BookingCommitted(out)
	}
	return out, nil
}

type BookingFilter struct {
	ArticleKey string    // ID oder Name, auch für gelöschte Artikel per ID
	Since      time.Time // Null-Wert: alle
}

// Bookings: Buchungsjournal, älteste zuerst
func (s *Service) Bookings(ctx context.Context, actor string, f BookingFilter) ([]models.Booking, error) {
	var out []models.Booking
	err := s.store.View(ctx, func(doc *models.Document) error {
		if err := access.AuthorizeIn(doc, actor, models.CapViewArticles); err != nil {
			return err
		}
		seq := ledger.ListSince(doc.Bookings, f.Since)
		articleID := ""
		if f.ArticleKey != "" {
			articleID = f.ArticleKey
			if i := doc.FindArticle(f.ArticleKey); i >= 0 {
				articleID = doc.Articles[i].ID
			}
		}
		out = []models.Booking{}
		for b := range seq {
			if articleID != "" && b.ArticleID != articleID {
				continue
			}
			out = append(out, b)
		}
		return nil
	})
	return out, err
}

func (s *Service) Warnlist(ctx context.Context, actor string) ([]models.Article, error) {
	var out []models.Article
	err := s.store.View(ctx, func(doc *models.Document) error {
		if err := access.AuthorizeIn(doc, actor, models.CapViewWarnlist); err != nil {
			return err
		}
		out = Warnlist(doc.Articles)
		return nil
	})
	return out, err
}

// ActivityBadges braucht nur eine gültige Session, keine Capability.
func (s *Service) ActivityBadges(ctx context.Context) (ledger.Counts, error) {
	counts, _, err := s.ActivityBadgesAt(ctx)
	return counts, err
}

// ActivityBadgesAt liefert zusätzlich den verwendeten Zeitpunkt.
func (s *Service) ActivityBadgesAt(ctx context.Context) (ledger.Counts, time.Time, error) {
	var out ledger.Counts
	now := s.clock.Now()
	err := s.store.View(ctx, func(doc *models.Document) error {
		out = ActivityBadges(doc.Bookings, now)
		return nil
	})
	return out, now, err
}

type ImportResult struct {
	Created []models.Article `json:"created"`
	Skipped []string         `json:"skipped"`
}

// ImportArticles legt alle Zeilen in einer Transaktion an. Zeilen mit
// vorhandenem oder leerem Namen werden übersprungen und gemeldet, nicht
// abgelehnt. Zeilen ohne Name erscheinen als "zeile N".
func (s *Service) ImportArticles(ctx context.Context, actor string, rows []ImportRow) (ImportResult, error) {
	var out ImportResult
	err := s.store.Update(ctx, func(doc *models.Document) error {
		if err := access.AuthorizeIn(doc, actor, models.CapAddArticle); err != nil {
			return err
		}
		res := ImportResult{Created: []models.Article{}, Skipped: []string{}}
		for _, row := range rows {
			a, err := addArticle(doc, row.Article)
			switch {
			case err == nil:
				res.Created = append(res.Created, a)
			case errors.Is(err, apperr.ErrConflict), errors.Is(err, apperr.ErrInvalidArgument):
				res.Skipped = append(res.Skipped, skippedLabel(row))
			default:
				return err
			}
		}
		out = res
		return nil
	})
	return out, err
}

func skippedLabel(row ImportRow) string {
	if name := strings.TrimSpace(row.Article.Name); name != "" {
		return name
	}
	return fmt.Sprintf("zeile %d", row.Line)
}
