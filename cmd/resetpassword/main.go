// Command resetpassword sets a new password for an account without the
// current one. It is meant for operators with direct database access.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/techtimeoff/leave-service/internal/bootstrap"
	"github.com/techtimeoff/leave-service/internal/config"
	"github.com/techtimeoff/leave-service/internal/observability"
	"github.com/techtimeoff/leave-service/internal/service"
)

func main() {
	email := flag.String("email", "", "email of the account to reset")
	password := flag.String("password", "", "new password (at least 6 characters)")
	flag.Parse()
	if *email == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "usage: resetpassword -email user@example.com -password newpass")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()
	stores, err := bootstrap.OpenStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open storage", zap.Error(err))
	}
	defer stores.Close()

	identity := service.NewIdentityService(*cfg, service.IdentityDependencies{UserRepo: stores.Users, Logger: logger})
	user, err := identity.ResetPassword(ctx, *email, *password)
	if err != nil {
		logger.Error("password reset failed", zap.String("email", *email), zap.Error(err))
		stores.Close()
		os.Exit(1)
	}
	fmt.Printf("password updated for %s (%s)\n", user.Email, user.Role)
}
