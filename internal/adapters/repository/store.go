package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/talenti/fitscore/pkg/logger"
	"github.com/talenti/fitscore/pkg/metrics"
)

// Store is a SQLite-backed organisation directory. Reads are concurrent;
// writes are serialised.
type Store struct {
	gorm         *gorm.DB
	mu           sync.Mutex
	logger       logger.Logger
	queryLogging bool
}

// Open opens (creating if needed) the database at path and migrates it.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{logger: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}

	cfg := &gorm.Config{}
	if !s.queryLogging {
		cfg.Logger = gormlogger.Default.LogMode(gormlogger.Silent)
	}
	db, err := gorm.Open(sqlite.Open(path), cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	if err := db.AutoMigrate(&Organisation{}, &JobRole{}, &Application{}); err != nil {
		return nil, fmt.Errorf("%w: auto migrate: %w", ErrOpen, err)
	}
	ctx := context.Background()
	if err := db.Exec("PRAGMA journal_mode=WAL").Error; err != nil {
		s.logger.Warn(ctx, "enable WAL mode", logger.Error(err))
	}
	if err := db.Exec("PRAGMA synchronous=NORMAL").Error; err != nil {
		s.logger.Warn(ctx, "set synchronous pragma", logger.Error(err))
	}
	s.gorm = db
	s.logger.Info(ctx, "store opened", logger.String("path", path))
	return s, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	if s == nil || s.gorm == nil {
		return nil
	}
	sqlDB, err := s.gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// NewID returns a fresh primary key.
func NewID() string {
	return uuid.NewString()
}

// OrganisationForRole returns the organisation owning roleID, or "" when the
// role is unknown.
func (s *Store) OrganisationForRole(ctx context.Context, roleID string) (string, error) {
	defer observe("role_organisation", time.Now())

	var role JobRole
	err := s.gorm.WithContext(ctx).Select("organisation_id").Where("id = ?", roleID).Take(&role).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("role %s: %w", roleID, err)
	}
	return role.OrganisationID, nil
}

// OrganisationForApplication follows application → job role → organisation.
// It returns "" when any link is missing.
func (s *Store) OrganisationForApplication(ctx context.Context, applicationID string) (string, error) {
	defer observe("application_organisation", time.Now())

	var orgIDs []string
	err := s.gorm.WithContext(ctx).
		Table("applications AS a").
		Joins("JOIN job_roles r ON r.id = a.job_role_id").
		Where("a.id = ?", applicationID).
		Limit(1).
		Pluck("r.organisation_id", &orgIDs).Error
	if err != nil {
		return "", fmt.Errorf("application %s: %w", applicationID, err)
	}
	if len(orgIDs) == 0 {
		return "", nil
	}
	return orgIDs[0], nil
}

// ValuesFramework returns the raw values framework text of orgID, or "" when
// the organisation is unknown or has none.
func (s *Store) ValuesFramework(ctx context.Context, orgID string) (string, error) {
	defer observe("values_framework", time.Now())

	var org Organisation
	err := s.gorm.WithContext(ctx).Select("values_framework").Where("id = ?", orgID).Take(&org).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("organisation %s: %w", orgID, err)
	}
	if org.ValuesFramework == nil {
		return "", nil
	}
	return *org.ValuesFramework, nil
}

// Organisation loads one organisation.
func (s *Store) Organisation(ctx context.Context, id string) (*Organisation, error) {
	defer observe("organisation", time.Now())

	var org Organisation
	err := s.gorm.WithContext(ctx).Where("id = ?", id).Take(&org).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("organisation %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// SaveOrganisation inserts or updates org. An empty ID is assigned.
func (s *Store) SaveOrganisation(ctx context.Context, org *Organisation) error {
	if org == nil {
		return fmt.Errorf("%w: organisation is nil", ErrInvalidRecord)
	}
	if blank(org.ID) {
		org.ID = NewID()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gorm.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "values_framework", "updated_at"}),
	}).Create(org).Error
}

// SaveJobRole inserts or updates role. The role must name an organisation.
func (s *Store) SaveJobRole(ctx context.Context, role *JobRole) error {
	if role == nil || blank(role.OrganisationID) {
		return fmt.Errorf("%w: job role needs an organisation", ErrInvalidRecord)
	}
	if blank(role.ID) {
		role.ID = NewID()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gorm.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"organisation_id", "title", "updated_at"}),
	}).Create(role).Error
}

// SaveApplication inserts or updates app. The application must name a role.
func (s *Store) SaveApplication(ctx context.Context, app *Application) error {
	if app == nil || blank(app.JobRoleID) {
		return fmt.Errorf("%w: application needs a job role", ErrInvalidRecord)
	}
	if blank(app.ID) {
		app.ID = NewID()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gorm.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"job_role_id", "candidate_id", "updated_at"}),
	}).Create(app).Error
}

// Dataset is a batch of records imported together.
type Dataset struct {
	Organisations []Organisation
	JobRoles      []JobRole
	Applications  []Application
}

// Import upserts every record of ds in one transaction, parents first.
func (s *Store) Import(ctx context.Context, ds Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.gorm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range ds.Organisations {
			if blank(ds.Organisations[i].ID) {
				ds.Organisations[i].ID = NewID()
			}
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&ds.Organisations[i]).Error; err != nil {
				return fmt.Errorf("organisation %s: %w", ds.Organisations[i].ID, err)
			}
		}
		for i := range ds.JobRoles {
			if blank(ds.JobRoles[i].OrganisationID) {
				return fmt.Errorf("%w: job role %s needs an organisation", ErrInvalidRecord, ds.JobRoles[i].ID)
			}
			if blank(ds.JobRoles[i].ID) {
				ds.JobRoles[i].ID = NewID()
			}
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&ds.JobRoles[i]).Error; err != nil {
				return fmt.Errorf("job role %s: %w", ds.JobRoles[i].ID, err)
			}
		}
		for i := range ds.Applications {
			if blank(ds.Applications[i].JobRoleID) {
				return fmt.Errorf("%w: application %s needs a job role", ErrInvalidRecord, ds.Applications[i].ID)
			}
			if blank(ds.Applications[i].ID) {
				ds.Applications[i].ID = NewID()
			}
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&ds.Applications[i]).Error; err != nil {
				return fmt.Errorf("application %s: %w", ds.Applications[i].ID, err)
			}
		}
		return nil
	})
}

func observe(query string, start time.Time) {
	metrics.RecordStoreQueryLatency(query, float64(time.Since(start).Microseconds())/1000)
}
