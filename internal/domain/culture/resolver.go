package culture

import (
	"context"
	"strings"

	"github.com/talenti/fitscore/internal/domain/model"
	"github.com/talenti/fitscore/pkg/kind"
	"github.com/talenti/fitscore/pkg/logger"
	"github.com/talenti/fitscore/pkg/metrics"
)

// Origins reported on a resolved Context.
const (
	OriginExplicit     = "explicit"
	OriginOrganisation = "organisation"
)

// Directory looks up organisation records. Lookups return "" with a nil
// error when the record does not exist.
type Directory interface {
	OrganisationForRole(ctx context.Context, roleID string) (string, error)
	OrganisationForApplication(ctx context.Context, applicationID string) (string, error)
	ValuesFramework(ctx context.Context, orgID string) (string, error)
}

// Context is a resolved (operating environment, taxonomy) pair.
type Context struct {
	Environment model.OperatingEnvironment
	Taxonomy    model.Taxonomy
	Origin      string
	OrgID       string
}

// Resolver produces the scoring context for a request.
type Resolver struct {
	dir    Directory
	logger logger.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the resolver logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewResolver builds a Resolver over dir. A nil dir supports explicit
// context only.
func NewResolver(dir Directory, opts ...Option) *Resolver {
	r := &Resolver{dir: dir, logger: logger.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the request's explicit context when both parts are present,
// otherwise the context stored on the request's organisation.
func (r *Resolver) Resolve(ctx context.Context, req *model.ScoringRequest) (*Context, error) {
	const op = "culture.resolve"

	switch {
	case req.HasExplicitContext():
		if err := checkExplicit(req); err != nil {
			metrics.RecordContextResolution(OriginExplicit, "error")
			return nil, kind.Wrap(op, ErrContext, err)
		}
		metrics.RecordContextResolution(OriginExplicit, "ok")
		return &Context{
			Environment: req.OperatingEnvironment,
			Taxonomy:    req.Taxonomy,
			Origin:      OriginExplicit,
			OrgID:       req.OrgID,
		}, nil
	case req.HasPartialContext():
		metrics.RecordContextResolution(OriginExplicit, "error")
		return nil, kind.Wrap(op, ErrContext, ErrPartialContext)
	}

	orgID, err := r.organisationID(ctx, req)
	if err != nil {
		metrics.RecordContextResolution(OriginOrganisation, "error")
		return nil, err
	}
	c, err := r.Load(ctx, orgID)
	if err != nil {
		metrics.RecordContextResolution(OriginOrganisation, "error")
		return nil, err
	}
	metrics.RecordContextResolution(OriginOrganisation, "ok")
	return c, nil
}

// checkExplicit validates caller-supplied context without altering it.
func checkExplicit(req *model.ScoringRequest) error {
	if len(req.OperatingEnvironment) == 0 || len(req.Taxonomy) == 0 {
		return ErrEmptyContext
	}
	if CheckTaxonomy(req.Taxonomy) != nil {
		return ErrBadTaxonomy
	}
	return nil
}

// organisationID walks org_id, then role, then application.
func (r *Resolver) organisationID(ctx context.Context, req *model.ScoringRequest) (string, error) {
	const op = "culture.organisation_id"

	if id := strings.TrimSpace(req.OrgID); id != "" {
		return id, nil
	}
	if r.dir == nil {
		return "", kind.Wrap(op, ErrContext, ErrNoOrganisation)
	}
	if id := strings.TrimSpace(req.RoleID); id != "" {
		orgID, err := r.dir.OrganisationForRole(ctx, id)
		if err != nil {
			return "", kind.Wrap(op, ErrLookup, err)
		}
		if orgID != "" {
			return orgID, nil
		}
	}
	if id := strings.TrimSpace(req.ApplicationID); id != "" {
		orgID, err := r.dir.OrganisationForApplication(ctx, id)
		if err != nil {
			return "", kind.Wrap(op, ErrLookup, err)
		}
		if orgID != "" {
			return orgID, nil
		}
	}
	return "", kind.Wrap(op, ErrContext, ErrNoOrganisation)
}

// Load reads and validates the context stored on an organisation.
func (r *Resolver) Load(ctx context.Context, orgID string) (*Context, error) {
	const op = "culture.load"

	if r.dir == nil {
		return nil, kind.Wrap(op, ErrContext, ErrNoOrganisation)
	}
	raw, err := r.dir.ValuesFramework(ctx, orgID)
	if err != nil {
		return nil, kind.Wrap(op, ErrLookup, err)
	}
	values, ok := ParseValuesFramework(raw)
	if !ok {
		return nil, kind.Wrap(op, ErrContext, ErrValuesFramework)
	}
	env, ok := ExtractOperatingEnvironment(values)
	if !ok {
		return nil, kind.Wrap(op, ErrContext, ErrNoEnvironment)
	}
	tax, err := ExtractTaxonomy(values)
	if err != nil {
		return nil, kind.Wrap(op, ErrContext, err)
	}

	signals, _ := tax.Signals()
	if missing := env.MissingFields(); len(missing) > 0 {
		r.logger.Warn(ctx, "operating environment is missing categorical fields",
			logger.String("org_id", orgID),
			logger.Any("missing", missing),
		)
	}
	r.logger.Debug(ctx, "resolved organisation context",
		logger.String("org_id", orgID),
		logger.String("taxonomy_id", tax.ID()),
		logger.Int("signals", len(signals)),
	)
	return &Context{Environment: env, Taxonomy: tax, Origin: OriginOrganisation, OrgID: orgID}, nil
}
