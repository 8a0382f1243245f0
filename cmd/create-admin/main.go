package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/daleel/daleel-backend/internal/config"
	"github.com/daleel/daleel-backend/internal/database"
	"github.com/daleel/daleel-backend/internal/logger"
	"github.com/daleel/daleel-backend/internal/model"
	"github.com/daleel/daleel-backend/internal/repository"
	"github.com/daleel/daleel-backend/internal/service"
	"golang.org/x/term"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Initialize Service ────────────────────────────────────────────
	userService := service.NewUserService(repository.NewUserRepository(pool), cfg.BcryptCost, log)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create New Admin User ===")

	fmt.Print("Enter Name: ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)
	if name == "" {
		fmt.Println("Error: Name is required")
		return
	}

	fmt.Print("Enter Email (@uoh.edu.sa): ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)
	if email == "" {
		fmt.Println("Error: Email is required")
		return
	}

	password, ok := readPassword("Enter Password: ")
	if !ok {
		return
	}
	confirm, ok := readPassword("Confirm Password: ")
	if !ok {
		return
	}
	if password != confirm {
		fmt.Println("Error: Passwords do not match")
		return
	}

	// ─── Logic ─────────────────────────────────────────────────────────
	admin, err := userService.CreateAdmin(ctx, model.CreateAdminParams{
		Name:     name,
		Email:    email,
		Password: password,
	})
	switch {
	case errors.Is(err, service.ErrEmailAlreadyExists):
		fmt.Println("Error: An account with this email already exists")
		return
	case errors.Is(err, service.ErrInvalidInput):
		fmt.Printf("Error: %v\n", err)
		return
	case err != nil:
		log.Fatal().Err(err).Msg("Failed to create admin")
	}

	fmt.Printf("\nSuccess! Admin '%s' (%s) created with ID: %d\n", admin.Name, admin.Email, admin.ID)
}

func readPassword(prompt string) (string, bool) {
	fmt.Print(prompt)
	b, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		fmt.Println("Error reading password")
		return "", false
	}
	return string(b), true
}
