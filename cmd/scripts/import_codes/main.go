// Command import_codes replenishes a digital raffle's secret-code pool from a CSV file.
//
//	import_codes -raffle <id> [-dry-run] codes.csv
//
// Connection settings come from MONGODB_URI and MONGODB_DATABASE (a .env file is honoured).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ArowuTest/winwai-raffle-backend/internal/config"
	"github.com/ArowuTest/winwai-raffle-backend/internal/currency"
	mongorepo "github.com/ArowuTest/winwai-raffle-backend/internal/repositories/mongodb"
	"github.com/ArowuTest/winwai-raffle-backend/internal/services"
	"github.com/ArowuTest/winwai-raffle-backend/internal/utils"
	"github.com/ArowuTest/winwai-raffle-backend/pkg/mongodb"
	"github.com/joho/godotenv"
	"golang.org/x/exp/slog"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file loaded, using environment variables")
	}

	raffleID := flag.String("raffle", "", "id of the digital raffle to replenish")
	dryRun := flag.Bool("dry-run", config.GetEnvAsBool("IMPORT_DRY_RUN", false), "parse the file and report without writing")
	flag.Parse()

	if *raffleID == "" || flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: import_codes -raffle <id> [-dry-run] <codes.csv>")
		os.Exit(2)
	}

	codes, err := utils.ReadSecretCodesFile(flag.Arg(0))
	if err != nil {
		slog.Error("Failed to read codes file", "error", err, "file", flag.Arg(0))
		os.Exit(1)
	}
	slog.Info("Parsed codes file", "file", flag.Arg(0), "codes", len(codes))
	if len(codes) == 0 {
		slog.Warn("No codes found, nothing to import")
		return
	}

	mongoURI := config.GetEnv("MONGODB_URI", "")
	if mongoURI == "" {
		slog.Error("MONGODB_URI environment variable is required")
		os.Exit(1)
	}
	dbName := config.GetEnv("MONGODB_DATABASE", "winwai")

	ctx, cancel := context.WithTimeout(context.Background(), config.GetEnvAsDuration("IMPORT_TIMEOUT", 2*time.Minute))
	defer cancel()

	client, err := mongodb.NewClient(ctx, mongoURI)
	if err != nil {
		slog.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer client.Disconnect(context.Background())

	db := client.Database(dbName)
	raffleRepo := mongorepo.NewRaffleRepository(db)

	raffle, err := raffleRepo.FindByID(ctx, *raffleID)
	if err != nil {
		slog.Error("Failed to load raffle", "error", err, "raffleId", *raffleID)
		os.Exit(1)
	}
	pool := raffle.CodePool()
	fresh := 0
	for _, c := range codes {
		if !pool.Contains(c) {
			fresh++
		}
	}
	slog.Info("Import plan",
		"raffleId", raffle.ID,
		"title", raffle.Title,
		"available", len(pool.Available()),
		"new", fresh,
		"alreadyPresent", len(codes)-fresh,
	)
	if *dryRun {
		slog.Info("Dry run, no changes written")
		return
	}

	raffleService := services.NewRaffleService(
		raffleRepo, mongorepo.NewEntryRepository(db), mongorepo.NewPartnerRepository(db),
		currency.NewNormalizer(nil, ""), 0,
	)
	updated, err := raffleService.AddSecretCodes(ctx, raffle.ID, codes)
	if err != nil {
		slog.Error("Failed to add secret codes", "error", err, "raffleId", raffle.ID)
		os.Exit(1)
	}
	slog.Info("Secret codes imported", "raffleId", updated.ID, "available", len(updated.CodePool().Available()))
}
