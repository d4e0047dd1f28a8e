package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/mo-amir99/coursetrack-server-go/internal/bootstrap"
	"github.com/mo-amir99/coursetrack-server-go/pkg/config"
	"github.com/mo-amir99/coursetrack-server-go/pkg/database"
	"github.com/mo-amir99/coursetrack-server-go/pkg/logger"
)

const confirmPhrase = "DROP ALL TABLES"

func main() {
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

	fmt.Println("\n⚠️  WARNING: This will DROP ALL TABLES in the database!")
	fmt.Println("   This action CANNOT be undone.")
	fmt.Printf("\nType '%s' to confirm: ", confirmPhrase)

	reader := bufio.NewReader(os.Stdin)
	confirmation, _ := reader.ReadString('\n')
	if strings.TrimSpace(confirmation) != confirmPhrase {
		fmt.Println("\n❌ Operation cancelled. Database unchanged.")
		return
	}

	dropped, err := bootstrap.DropTables(ctx, db, appLogger)
	if err != nil {
		appLogger.Error("Failed to drop tables", slog.Int("dropped", dropped), slog.String("error", err.Error()))
		os.Exit(1)
	}

	fmt.Printf("\n✅ Successfully dropped %d tables!\n", dropped)
	fmt.Println("   You can now run the migrate script to recreate them.")
}
