package main

import (
	"log"
	"os"
	"time"

	"realtime-chat-be/internal/model"
	"realtime-chat-be/pkg/database"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type seedUser struct {
	Name  string
	Email string
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		color.Red("Error: DB_CONNECTION_STRING is not set")
		os.Exit(1)
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		color.Red("Error: Failed to connect to database: %v", err)
		os.Exit(1)
	}

	color.Cyan("Seeding demo users and chats...")

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		color.Red("Error: Failed to hash seed password: %v", err)
		os.Exit(1)
	}

	seeds := []seedUser{
		{Name: "Alice", Email: "alice@example.com"},
		{Name: "Bob", Email: "bob@example.com"},
		{Name: "Carol", Email: "carol@example.com"},
	}

	now := time.Now()
	users := make([]model.User, 0, len(seeds))
	for _, s := range seeds {
		users = append(users, model.User{
			Id:           uuid.New(),
			Email:        s.Email,
			Name:         s.Name,
			PasswordHash: string(hash),
			Verified:     true,
			VerifiedAt:   &now,
		})
	}

	// Idempotent on email: rerunning the seeder leaves existing rows alone.
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoNothing: true,
	}).Create(&users).Error; err != nil {
		color.Red("Error: Failed to seed users: %v", err)
		os.Exit(1)
	}

	// Reload by email so chats reference persisted ids, not ids skipped by
	// the conflict clause.
	var persisted []model.User
	emails := make([]string, 0, len(seeds))
	for _, s := range seeds {
		emails = append(emails, s.Email)
	}
	if err := db.Where("email IN ?", emails).Find(&persisted).Error; err != nil || len(persisted) < 3 {
		color.Red("Error: Failed to reload seeded users: %v", err)
		os.Exit(1)
	}

	alice, bob, carol := persisted[0], persisted[1], persisted[2]

	if err := seedPairChat(db, alice.Id, bob.Id); err != nil {
		color.Red("Error: Failed to seed direct chat: %v", err)
		os.Exit(1)
	}
	if err := seedGroupChat(db, alice.Id, bob.Id, carol.Id); err != nil {
		color.Red("Error: Failed to seed group chat: %v", err)
		os.Exit(1)
	}

	color.Green("✅ Success: Seed data in place. All users log in with 'password123'.")
}

func seedPairChat(db *gorm.DB, a, b uuid.UUID) error {
	var count int64
	if err := db.Model(&model.Chat{}).Where("is_group_chat = false").Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	chat := model.Chat{Id: uuid.New()}
	if err := db.Create(&chat).Error; err != nil {
		return err
	}
	participants := []model.ChatParticipant{
		{ChatId: chat.Id, UserId: a},
		{ChatId: chat.Id, UserId: b},
	}
	return db.Create(&participants).Error
}

func seedGroupChat(db *gorm.DB, admin uuid.UUID, members ...uuid.UUID) error {
	var count int64
	if err := db.Model(&model.Chat{}).Where("is_group_chat = true").Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	name := "Demo Group"
	chat := model.Chat{Id: uuid.New(), IsGroupChat: true, GroupName: &name}
	if err := db.Create(&chat).Error; err != nil {
		return err
	}

	participants := []model.ChatParticipant{
		{ChatId: chat.Id, UserId: admin, IsAdmin: true},
	}
	for _, m := range members {
		participants = append(participants, model.ChatParticipant{ChatId: chat.Id, UserId: m})
	}
	return db.Create(&participants).Error
}
