package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/Psychoriddler/Emergilink-prototype/config"
	"github.com/Psychoriddler/Emergilink-prototype/internal/app"
	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/types"
	"github.com/Psychoriddler/Emergilink-prototype/internal/service/auth"
	"github.com/Psychoriddler/Emergilink-prototype/pkg/logger"
)

var (
	helpFlag   = flag.Bool("help", false, "Show help message")
	configPath = flag.String("config-path", "config.yaml", "Path to the config yaml file")
	issueToken = flag.String("issue-token", "", "Print a bearer token for the given user id and exit")
	tokenRole  = flag.String("role", string(types.RoleDispatcher), "Role embedded by -issue-token")
)

func main() {
	flag.Parse()
	if *helpFlag {
		config.PrintHelp()
		return
	}

	ctx := context.Background()
	log := logger.InitLogger("emergilink", logger.LevelDebug)

	if *issueToken != "" {
		if err := printToken(ctx, *issueToken, types.UserRole(*tokenRole)); err != nil {
			log.Error(ctx, "failed to issue token", err)
			os.Exit(1)
		}
		return
	}

	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		log.Error(ctx, "failed to configure application", err)
		config.PrintHelp()
		os.Exit(1)
	}

	// Printing configuration
	config.PrintConfig(cfg)

	log = logger.InitLogger(cfg.Mode.String(), cfg.LogLevel)

	// Creating application
	application, err := app.NewApplication(ctx, *cfg, log)
	if err != nil {
		log.Error(ctx, "failed to init application", err)
		os.Exit(1)
	}

	// Running the apllication
	if err = application.Run(ctx); err != nil {
		log.Error(ctx, "failed to run application", err)
		os.Exit(1)
	}
}

func printToken(ctx context.Context, userID string, role types.UserRole) error {
	authCfg, err := config.LoadAuth(*configPath)
	if err != nil {
		return err
	}

	token, err := auth.NewTokenService(authCfg.JWTSecret, authCfg.AccessTokenTTL).Issue(ctx, userID, role)
	if err != nil {
		return err
	}

	fmt.Println(token)
	return nil
}
