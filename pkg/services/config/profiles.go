package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/ini.v1"

	"github.com/de-tools/db-custodian/pkg/models/domain"
)

// ErrProfileNotFound is returned when the profiles file has no such section.
var ErrProfileNotFound = errors.New("profile not found")

// Registry reads server profiles from an INI file. Each section describes one
// server:
//
//	[prod]
//	engine = sqlserver
//	host = prod.database.windows.net
//	user = custodian
//	password = secret
//	table = dbo.audit_log
type Registry interface {
	GetProfiles(ctx context.Context) ([]domain.Profile, error)
	GetProfile(ctx context.Context, name string) (domain.Profile, error)
}

type profileRegistry struct {
	cfg *ini.File
}

func NewRegistry(path string) (Registry, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("unable to load profiles file %s: %w", path, err)
	}
	return &profileRegistry{cfg: cfg}, nil
}

func (pr *profileRegistry) GetProfiles(_ context.Context) ([]domain.Profile, error) {
	var profiles []domain.Profile
	for _, section := range pr.cfg.Sections() {
		if len(section.Keys()) == 0 {
			continue
		}
		profile, err := parseProfile(section)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}

func (pr *profileRegistry) GetProfile(_ context.Context, name string) (domain.Profile, error) {
	section, err := pr.cfg.GetSection(name)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	return parseProfile(section)
}

func parseProfile(section *ini.Section) (domain.Profile, error) {
	engine := domain.EngineKind(section.Key("engine").String())
	switch engine {
	case domain.EngineSQLServer, domain.EnginePostgres, domain.EngineMySQL,
		domain.EngineSnowflake, domain.EngineVertica:
	case "":
		return domain.Profile{}, fmt.Errorf("profile %s: engine is required", section.Name())
	default:
		return domain.Profile{}, fmt.Errorf("profile %s: unsupported engine %q", section.Name(), engine)
	}

	auth := domain.AuthMode(section.Key("auth").MustString(string(domain.AuthSQL)))
	if auth != domain.AuthSQL && auth != domain.AuthAzureAD {
		return domain.Profile{}, fmt.Errorf("profile %s: unsupported auth mode %q", section.Name(), auth)
	}

	return domain.Profile{
		Name:        section.Name(),
		Engine:      engine,
		Host:        section.Key("host").String(),
		Port:        section.Key("port").MustInt(0),
		User:        section.Key("user").String(),
		Password:    section.Key("password").String(),
		Database:    section.Key("database").String(),
		Auth:        auth,
		Table:       section.Key("table").String(),
		MaxSizeMB:   section.Key("max_size_mb").MustInt64(0),
		RDSInstance: section.Key("rds_instance").String(),
		RDSProfile:  section.Key("rds_profile").String(),
		Account:     section.Key("account").String(),
		Warehouse:   section.Key("warehouse").String(),
	}, nil
}

// DefaultProfilesPath returns the conventional profiles location under the
// user's home directory.
func DefaultProfilesPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("unable to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".dbcustodian", "profiles"), nil
}
