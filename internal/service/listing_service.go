package service

import (
	"context"
	"time"

	"capsort/internal/cache"
	"capsort/internal/featureflags"
	"capsort/internal/middleware"
	"capsort/internal/models"
	"capsort/internal/observability"
	"capsort/internal/repository"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
)

// Cache labels for ListingRequests.
const (
	cacheHit    = "hit"
	cacheMiss   = "miss"
	cacheBypass = "bypass"
)

type ListingService struct {
	projectRepo repository.ProjectRepository
	savedRepo   repository.SavedProjectRepository
	redis       *redis.Client
	flags       *featureflags.Manager
	cacheTTL    time.Duration
}

func NewListingService(
	projectRepo repository.ProjectRepository,
	savedRepo repository.SavedProjectRepository,
	redisClient *redis.Client,
	flags *featureflags.Manager,
	cacheTTL time.Duration,
) *ListingService {
	return &ListingService{
		projectRepo: projectRepo,
		savedRepo:   savedRepo,
		redis:       redisClient,
		flags:       flags,
		cacheTTL:    cacheTTL,
	}
}

// ListProjects returns one page of active projects as seen by rc.
func (s *ListingService) ListProjects(ctx context.Context, rc models.RequestContext, filter models.ProjectFilter) (page *models.ProjectPage, err error) {
	filter = filter.Normalized()
	ctx, span := observability.StartServiceSpan(ctx, "ListingService", "ListProjects", filterAttrs(rc, filter)...)
	defer func() { observability.EndSpan(span, err) }()

	if rc.Authenticated() {
		observability.ListingRequests.WithLabelValues(string(rc.Role), cacheBypass).Inc()
		return s.listActive(ctx, rc, filter)
	}

	if !s.guestCacheEnabled() {
		observability.ListingRequests.WithLabelValues(string(models.RoleGuest), cacheBypass).Inc()
		return s.listActive(ctx, rc, filter)
	}

	version, verr := cache.ListingVersion(ctx, s.redis)
	if verr != nil {
		middleware.Logger.WarnContext(ctx, "listing cache unavailable", "error", verr)
		observability.ListingRequests.WithLabelValues(string(models.RoleGuest), cacheBypass).Inc()
		return s.listActive(ctx, rc, filter)
	}

	var cached models.ProjectPage
	hit, err := cache.Aside(ctx, s.redis, cache.ListingKey(version, filter), &cached, s.cacheTTL, func() error {
		p, err := s.listActive(ctx, rc, filter)
		if err != nil {
			return err
		}
		cached = *p
		return nil
	})
	if err != nil {
		return nil, err
	}

	label := cacheMiss
	if hit {
		label = cacheHit
	}
	observability.ListingRequests.WithLabelValues(string(models.RoleGuest), label).Inc()
	return &cached, nil
}

// ListSaved returns one page of the caller's saved active projects.
func (s *ListingService) ListSaved(ctx context.Context, rc models.RequestContext, filter models.ProjectFilter) (page *models.ProjectPage, err error) {
	filter = filter.Normalized()
	ctx, span := observability.StartServiceSpan(ctx, "ListingService", "ListSaved", filterAttrs(rc, filter)...)
	defer func() { observability.EndSpan(span, err) }()

	if err := requireUser(rc); err != nil {
		return nil, err
	}
	observability.ListingRequests.WithLabelValues("saved", cacheBypass).Inc()

	projects, total, err := s.savedRepo.ListSaved(ctx, rc.UserID, filter)
	if err != nil {
		return nil, storeError(err)
	}

	views := make([]models.ProjectView, len(projects))
	for i := range projects {
		views[i] = models.ProjectView{Project: projects[i], IsSaved: true, CanEdit: rc.IsAdmin()}
	}
	return newPage(views, filter, total), nil
}

// GetProject returns an active project with the caller's flags.
func (s *ListingService) GetProject(ctx context.Context, rc models.RequestContext, id uint) (*models.ProjectView, error) {
	project, err := s.projectRepo.GetActiveByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, models.NewNotFoundError("Project", id)
		}
		return nil, storeError(err)
	}

	views, err := s.decorate(ctx, rc, []models.Project{*project})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *ListingService) listActive(ctx context.Context, rc models.RequestContext, filter models.ProjectFilter) (*models.ProjectPage, error) {
	projects, total, err := s.projectRepo.List(ctx, filter, models.ProjectStatusActive)
	if err != nil {
		return nil, storeError(err)
	}
	views, err := s.decorate(ctx, rc, projects)
	if err != nil {
		return nil, err
	}
	return newPage(views, filter, total), nil
}

// decorate computes isSaved with one extra query for signed-in callers and
// canEdit from the caller's role.
func (s *ListingService) decorate(ctx context.Context, rc models.RequestContext, projects []models.Project) ([]models.ProjectView, error) {
	views := make([]models.ProjectView, len(projects))
	for i := range projects {
		views[i] = models.ProjectView{Project: projects[i], CanEdit: rc.IsAdmin()}
	}
	if !rc.Authenticated() || len(projects) == 0 {
		return views, nil
	}

	ids := make([]uint, len(projects))
	for i := range projects {
		ids[i] = projects[i].ID
	}
	savedIDs, err := s.savedRepo.SavedProjectIDs(ctx, rc.UserID, ids)
	if err != nil {
		return nil, storeError(err)
	}
	saved := make(map[uint]struct{}, len(savedIDs))
	for _, id := range savedIDs {
		saved[id] = struct{}{}
	}
	for i := range views {
		_, views[i].IsSaved = saved[views[i].ID]
	}
	return views, nil
}

func (s *ListingService) guestCacheEnabled() bool {
	return s.redis != nil && s.cacheTTL > 0 && s.flags.Enabled(featureflags.ListingCache, 0)
}

func newPage(items []models.ProjectView, filter models.ProjectFilter, total int64) *models.ProjectPage {
	if items == nil {
		items = []models.ProjectView{}
	}
	return &models.ProjectPage{
		Items:      items,
		Page:       filter.Page,
		Limit:      filter.Limit,
		Total:      total,
		TotalPages: models.TotalPages(total, filter.Limit),
	}
}

func filterAttrs(rc models.RequestContext, f models.ProjectFilter) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("request.role", string(rc.Role)),
		attribute.Int("listing.page", f.Page),
		attribute.Int("listing.limit", f.Limit),
	}
	if f.Field != "" {
		attrs = append(attrs, attribute.String("listing.field", f.Field))
	}
	if f.Search != "" {
		attrs = append(attrs, attribute.Bool("listing.search", true))
	}
	return attrs
}
