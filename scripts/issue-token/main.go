// Command issue-token registers a user and prints an access token for it.
// It stands in for the identity provider in local environments.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/mo-amir99/coursetrack-server-go/internal/features/user"
	"github.com/mo-amir99/coursetrack-server-go/internal/utils/jwt"
	"github.com/mo-amir99/coursetrack-server-go/pkg/config"
	"github.com/mo-amir99/coursetrack-server-go/pkg/database"
	"github.com/mo-amir99/coursetrack-server-go/pkg/logger"
)

func main() {
	username := flag.String("username", "", "username to embed in the token (required)")
	rawID := flag.String("id", "", "user id; a new one is generated when empty")
	expiry := flag.Duration("expiry", 24*time.Hour, "token lifetime")
	flag.Parse()

	if *username == "" {
		fmt.Fprintln(os.Stderr, "❌ Error: -username is required")
		flag.Usage()
		os.Exit(2)
	}

	id := uuid.New()
	if *rawID != "" {
		parsed, err := uuid.Parse(*rawID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "❌ Error: invalid -id: %v\n", err)
			os.Exit(2)
		}
		id = parsed
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.New(cfg.LogLevel, cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	ctx := context.Background()
	db, err := database.Connect(ctx, cfg.Database, appLogger)
	if err != nil {
		appLogger.Error("Failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.Close(db, appLogger)

	u, err := user.Sync(ctx, db, id, *username)
	if err != nil {
		appLogger.Error("Failed to register user", slog.String("error", err.Error()))
		os.Exit(1)
	}

	token, err := jwt.GenerateAccessToken(u.ID, u.Username, cfg.JWTSecret, *expiry)
	if err != nil {
		appLogger.Error("Failed to sign token", slog.String("error", err.Error()))
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "✅ User %s (%s)\n", u.Username, u.ID)
	fmt.Println(token)
}
