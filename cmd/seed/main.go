package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"clubtrips/internal/bookings"
	"clubtrips/internal/events"
	"clubtrips/internal/shared/config"
	"clubtrips/internal/shared/constants"
	"clubtrips/internal/shared/database"
	"clubtrips/internal/users"
	"clubtrips/pkg/cache"
	"clubtrips/pkg/logger"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Seeder struct {
	db  *database.DB
	cfg *config.Config
	log *logger.Logger
}

func main() {
	fmt.Println("Starting clubtrips database seeder...")

	cfg := config.Load()
	appLogger := logger.NewWithWriter(os.Stdout, cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := database.InitDB(ctx, cfg, appLogger)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db, cfg: cfg, log: appLogger}

	fmt.Println("\nCleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}

	fmt.Println("\nSeeding database...")
	if err := seeder.SeedAll(ctx); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	fmt.Println("\nSeeding completed. Database is ready for testing.")
}

// CleanDatabase truncates the booking tables, bookings first
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		bookings.Booking{}.TableName(),
		events.Event{}.TableName(),
	}

	return s.db.PostgreSQL.Transaction(func(tx *gorm.DB) error {
		for _, table := range tables {
			fmt.Printf("  Truncating table: %s\n", table)
			if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
				return fmt.Errorf("failed to truncate table %s: %w", table, err)
			}
		}
		return nil
	})
}

// SeedAll seeds events, one sample booking and prints development tokens
func (s *Seeder) SeedAll(ctx context.Context) error {
	eventIDs, err := s.SeedEvents(ctx)
	if err != nil {
		return fmt.Errorf("failed to seed events: %w", err)
	}

	member := users.Actor{UserID: "user-1", Name: "Ada Lovelace", Email: "ada@example.com", Role: users.RoleUser}
	admin := users.Actor{UserID: "admin-1", Name: "Club Admin", Email: "admin@example.com", Role: users.RoleAdmin}

	if err := s.SeedBooking(ctx, member, eventIDs["book-club"]); err != nil {
		return fmt.Errorf("failed to seed booking: %w", err)
	}

	// Drop cached catalog entries left over from a previous run
	if s.db.Redis != nil {
		cacheService := cache.NewService(s.db.Redis, s.log)
		if err := cacheService.DeletePattern(ctx, constants.PATTERN_INVALIDATE_EVENT_ALL); err != nil {
			log.Printf("Warning: Failed to clear event cache: %v", err)
		}
	}

	fmt.Println("\n  Development tokens (valid 24h):")
	for _, actor := range []users.Actor{member, admin} {
		token, err := s.devToken(actor)
		if err != nil {
			return fmt.Errorf("failed to sign token for %s: %w", actor.UserID, err)
		}
		fmt.Printf("    %s (%s): %s\n", actor.Email, actor.Role, token)
	}

	return nil
}

// SeedEvents creates one event of each availability shape
func (s *Seeder) SeedEvents(ctx context.Context) (map[string]string, error) {
	fmt.Println("  Seeding events...")

	repo := events.NewRepository(s.db.PostgreSQL)
	today := time.Now().UTC().Truncate(24 * time.Hour)
	at := func(days int) *time.Time {
		t := today.AddDate(0, 0, days)
		return &t
	}
	limit := func(n int) *int { return &n }

	eventsData := []struct {
		key   string
		event events.Event
	}{
		{"coastal-walk", events.Event{
			Title:       "Coastal Path Weekend",
			Description: "Three days walking the northern coastal path with overnight stays.",
			Location:    "North Coast",
			StartDate:   at(30),
			EndDate:     at(32),
			Price:       decimal.RequireFromString("185.00"),
			Capacity:    limit(20),
			Status:      events.EventStatusUpcoming,
			IsActive:    true,
		}},
		{"wine-tasting", events.Event{
			Title:     "Evening Wine Tasting",
			Location:  "Old Town Cellars",
			StartDate: at(14),
			Price:     decimal.RequireFromString("45.50"),
			MaxPeople: limit(8),
			Status:    events.EventStatusUpcoming,
			IsActive:  true,
		}},
		{"book-club", events.Event{
			Title:       "Open Book Club",
			Description: "Monthly meetup; pick any session that suits you.",
			Location:    "Library Annex",
			Price:       decimal.Zero,
			Status:      events.EventStatusOngoing,
			IsActive:    true,
		}},
		{"spring-hike", events.Event{
			Title:     "Spring Ridge Hike",
			Location:  "Ridge Trailhead",
			StartDate: at(-20),
			EndDate:   at(-20),
			Price:     decimal.RequireFromString("20.00"),
			Status:    events.EventStatusCompleted,
			IsActive:  true,
		}},
	}

	eventIDs := make(map[string]string, len(eventsData))
	for _, data := range eventsData {
		event := data.event
		event.ID = uuid.NewString()
		if err := repo.Create(ctx, &event); err != nil {
			return nil, fmt.Errorf("failed to create event %s: %w", event.Title, err)
		}
		eventIDs[data.key] = event.ID
		fmt.Printf("    Created event: %s (%s)\n", event.Title, event.ID)
	}

	return eventIDs, nil
}

// SeedBooking books a date-less event through the ledger so the sample row
// carries a real reference
func (s *Seeder) SeedBooking(ctx context.Context, actor users.Actor, eventID string) error {
	fmt.Println("  Seeding sample booking...")

	catalog := events.NewService(events.NewRepository(s.db.PostgreSQL), nil)
	ledger := bookings.NewLedger(bookings.NewRepository(s.db.PostgreSQL), s.cfg.Booking, s.log)
	service := bookings.NewService(catalog, ledger, nil, bookings.PolicyFromConfig(s.cfg.Booking), s.log)

	booking, err := service.Book(ctx, actor, bookings.BookRequest{EventID: eventID, Attendees: 2})
	if err != nil {
		return err
	}
	fmt.Printf("    Created booking: %s for %s\n", booking.BookingReference, actor.Email)
	return nil
}

func (s *Seeder) devToken(actor users.Actor) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": actor.UserID,
		"email":   actor.Email,
		"name":    actor.Name,
		"role":    string(actor.Role),
		"type":    "access",
		"iat":     time.Now().Unix(),
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
	})
	return token.SignedString([]byte(s.cfg.JWT.Secret))
}
