package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	"github.com/techtimeoff/leave-service/internal/bootstrap"
	"github.com/techtimeoff/leave-service/internal/config"
	"github.com/techtimeoff/leave-service/internal/domain"
	"github.com/techtimeoff/leave-service/internal/observability"
	"github.com/techtimeoff/leave-service/internal/service"
	apperrors "github.com/techtimeoff/leave-service/pkg/util"
)

// seedFile is the layout of the YAML seed document.
type seedFile struct {
	Users []seedUser `yaml:"users"`
}

type seedUser struct {
	Name        string  `yaml:"name"`
	Email       string  `yaml:"email"`
	Password    string  `yaml:"password"`
	Role        string  `yaml:"role"`
	Department  *string `yaml:"department"`
	EmployeeID  *string `yaml:"employeeId"`
	PhoneNumber *string `yaml:"phoneNumber"`
}

func loadSeed(path string) (*seedFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc seedFile
	if err := yaml.UnmarshalStrict(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(doc.Users) == 0 {
		return nil, fmt.Errorf("%s lists no users", path)
	}
	return &doc, nil
}

// seedResult counts what a run did.
type seedResult struct {
	Created int
	Skipped int
}

// seedUsers registers every user that is not present yet. Existing emails are
// left untouched so the command can be rerun safely.
func seedUsers(ctx context.Context, identity *service.IdentityService, users []seedUser, logger *zap.Logger) (seedResult, error) {
	var res seedResult
	for _, u := range users {
		_, err := identity.Register(ctx, service.RegisterInput{
			Name:        u.Name,
			Email:       u.Email,
			Password:    u.Password,
			Role:        domain.Role(u.Role),
			Department:  u.Department,
			EmployeeID:  u.EmployeeID,
			PhoneNumber: u.PhoneNumber,
		})
		switch {
		case err == nil:
			res.Created++
			logger.Info("seeded user", zap.String("email", u.Email), zap.String("role", u.Role))
		case errors.Is(err, apperrors.NewDuplicateEmail()):
			res.Skipped++
			logger.Info("user already present", zap.String("email", u.Email))
		default:
			return res, fmt.Errorf("seed %s: %w", u.Email, err)
		}
	}
	return res, nil
}

func main() {
	path := flag.String("file", "seed/users.yaml", "YAML file listing the users to create")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	doc, err := loadSeed(*path)
	if err != nil {
		logger.Fatal("failed to read seed file", zap.Error(err))
	}

	ctx := context.Background()
	stores, err := bootstrap.OpenStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open storage", zap.Error(err))
	}
	defer stores.Close()

	identity := service.NewIdentityService(*cfg, service.IdentityDependencies{UserRepo: stores.Users, Logger: logger})
	res, err := seedUsers(ctx, identity, doc.Users, logger)
	if err != nil {
		logger.Error("seeding stopped", zap.Error(err))
		stores.Close()
		os.Exit(1)
	}
	logger.Info("seed complete", zap.Int("created", res.Created), zap.Int("skipped", res.Skipped))
}
