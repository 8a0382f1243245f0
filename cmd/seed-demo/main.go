package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/daleel/daleel-backend/internal/config"
	"github.com/daleel/daleel-backend/internal/database"
	"github.com/daleel/daleel-backend/internal/logger"
	"github.com/daleel/daleel-backend/internal/model"
	"github.com/daleel/daleel-backend/internal/repository"
	"github.com/daleel/daleel-backend/internal/service"
	"github.com/daleel/daleel-backend/internal/token"
)

const (
	demoEmail    = "demo.student@uoh.edu.sa"
	demoPassword = "Demo@2025"
)

type demoCourse struct {
	code    string
	name    string
	credits int
	grade   string
	dept    model.Department
}

var demoCourses = []demoCourse{
	{"CS101", "Introduction to Programming", 3, "A+", model.DepartmentComputerScience},
	{"CS201", "Data Structures", 3, "B+", model.DepartmentComputerScience},
	{"CS210", "Discrete Structures", 3, "A", model.DepartmentComputerScience},
	{"M101", "Calculus I", 4, "B", model.DepartmentMathematics},
	{"M102", "Calculus II", 4, "C+", model.DepartmentMathematics},
	{"PH101", "General Physics I", 4, "B+", model.DepartmentPhysics},
	{"CS301", "Operating Systems", 3, "", model.DepartmentComputerScience},
	{"CS340", "Database Systems", 3, "", model.DepartmentComputerScience},
}

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	authority, err := token.New(cfg.TokenConfig())
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid token configuration")
	}

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	userRepo := repository.NewUserRepository(pool)
	authService := service.NewAuthService(authority, userRepo, cfg.BcryptCost, log)
	courseService := service.NewCourseService(repository.NewCourseRepository(pool), log)

	fmt.Println("=== Seeding demo student ===")

	_, err = authService.Register(ctx, model.RegisterRequest{
		Name:       "Demo Student",
		Email:      demoEmail,
		Password:   demoPassword,
		StudentID:  "202500001",
		Department: "Computer Science",
	})
	switch {
	case errors.Is(err, service.ErrEmailAlreadyExists):
		fmt.Printf("Student %s already exists, reusing it\n", demoEmail)
	case err != nil:
		log.Fatal().Err(err).Msg("Failed to register demo student")
	default:
		fmt.Printf("Registered %s (password: %s)\n", demoEmail, demoPassword)
	}

	student, err := userRepo.GetByEmail(ctx, demoEmail)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load demo student")
	}

	created := 0
	for _, dc := range demoCourses {
		req := model.CreateCourseRequest{
			CourseCode:  dc.code,
			CourseName:  dc.name,
			CreditHours: dc.credits,
			Department:  dc.dept,
		}
		if dc.grade != "" {
			g := dc.grade
			req.Grade = &g
		}

		if _, err := courseService.Create(ctx, student, req); err != nil {
			fmt.Printf("Skipping %s: %v\n", dc.code, err)
			continue
		}
		created++
	}

	courses, summary, err := courseService.Transcript(ctx, student)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build transcript")
	}

	fmt.Printf("\nSeed completed! Added %d/%d courses.\n", created, len(demoCourses))
	fmt.Printf("Transcript: %d courses, GPA %.2f (%s)\n", len(courses), summary.GPA, summary.Letter)
}
