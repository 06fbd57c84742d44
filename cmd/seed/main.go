package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-course-platform/config"
	"github.com/oksasatya/go-course-platform/internal/domain/entity"
	repo "github.com/oksasatya/go-course-platform/internal/domain/repository"
	pginfra "github.com/oksasatya/go-course-platform/internal/infrastructure/postgres"
	"github.com/oksasatya/go-course-platform/pkg/helpers"
)

const demoPassword = "Passw0rd!"

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer pool.Close()

	policy := helpers.DefaultPasswordPolicy()
	policy.MinLength = cfg.PasswordMinLength
	store := pginfra.NewCredentialStore(pool, policy, cfg.BcryptCost)

	if err := store.EnsureRoles(ctx, entity.RoleAdmin, entity.RoleStudent, entity.RoleCompany); err != nil {
		log.Fatalf("failed to seed roles: %v", err)
	}

	student := &entity.RegularUser{
		Account:   entity.Account{Email: "student@example.com", UserName: "demoStudent"},
		FirstName: "Demo",
		LastName:  "Student",
	}
	company := &entity.CompanyUser{
		Account:     entity.Account{Email: "company@example.com", UserName: "demoCompany"},
		CompanyName: "Demo Academy",
		Industry:    "Education",
	}
	for _, u := range []entity.Identity{student, company} {
		seedUser(ctx, store, u)
	}

	owner, err := store.FindByEmail(ctx, company.Email)
	if err != nil {
		log.Fatalf("failed to load company: %v", err)
	}
	seedCatalog(ctx, pginfra.NewCatalog(pool), owner.Base().ID)
}

func seedUser(ctx context.Context, store *pginfra.CredentialStore, u entity.Identity) {
	res, err := store.CreateIdentity(ctx, u, demoPassword)
	if err != nil {
		log.Fatalf("failed to seed user %s: %v", u.Base().Email, err)
	}
	if !res.Succeeded() {
		fmt.Printf("skipped %s user %s: %v\n", u.Kind(), u.Base().Email, res.Errors)
		return
	}
	fmt.Printf("seeded %s user: email=%s password=%s\n", u.Kind(), u.Base().Email, demoPassword)
}

func seedCatalog(ctx context.Context, cat repo.Catalog, ownerID string) {
	now := time.Now().UTC()
	course := entity.Course{
		ID:              "demo-go-fundamentals",
		Title:           "Go Fundamentals",
		Description:     "Types, interfaces, goroutines and the standard library.",
		DurationInHours: 8,
		DifficultyLevel: entity.DifficultyBeginner,
		OwnerID:         ownerID,
		CreatedAt:       now,
	}
	_ = cat.Courses().Add(ctx, course)
	for i, name := range []string{"Go", "Concurrency", "Testing"} {
		_ = cat.Skills().Add(ctx, entity.Skill{ID: fmt.Sprintf("%s-skill-%d", course.ID, i+1), CourseID: course.ID, Name: name})
	}
	_ = cat.Exams().Add(ctx, entity.Exam{ID: "demo-go-final", CourseID: course.ID, Title: "Go Fundamentals Final", PassingScore: 70, CreatedAt: now})

	err := cat.Commit(ctx)
	switch {
	case errors.Is(err, repo.ErrConflict):
		fmt.Println("demo course already present")
	case err != nil:
		log.Fatalf("failed to seed catalogue: %v", err)
	default:
		fmt.Printf("seeded course %s with exam demo-go-final\n", course.ID)
	}
}
