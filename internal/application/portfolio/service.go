package portfolio

import (
	"context"
	"sync"

	domain "github.com/ben-daghir/hercap/internal/domain/portfolio"
	"github.com/ben-daghir/hercap/internal/domain/globe"
	"github.com/ben-daghir/hercap/internal/domain/sector"
	"github.com/ben-daghir/hercap/internal/infrastructure/monitoring/logging"
)

// Service provides the read-side portfolio queries used by HTTP handlers,
// the CLI and the interactive sessions.
type Service interface {
	Portfolio(ctx context.Context) Snapshot
	ListCompanies(ctx context.Context, input *ListInput) (*domain.Page, error)
	NameView(ctx context.Context, pages int) (*domain.Page, error)
	GetCompany(ctx context.Context, id int) (*domain.Company, error)
	Stages(ctx context.Context) ([]domain.StageCount, error)
	Sectors(ctx context.Context) ([]sector.CategoryScore, error)
	Clusters(ctx context.Context) ([]globe.LocationCluster, error)
	Layout(ctx context.Context) (sector.Layout, error)
	Locations() *domain.LocationTable
}

// ListInput contains input for listing companies.  Zero values mean no
// filter; Limit 0 returns every match.
type ListInput struct {
	Stage      domain.Stage
	Category   string
	Name       string
	Offset     int
	Limit      int
	SortByName bool
}

type serviceImpl struct {
	store     *Store
	locations *domain.LocationTable
	logger    logging.Logger

	derivedOnce sync.Once
	clusters    []globe.LocationCluster
	layout      sector.Layout
}

// NewService returns a Service over store.  Clusters and the sector layout
// are derived once from the settled company set, which never changes for a
// store's lifetime.
func NewService(store *Store, locations *domain.LocationTable, log logging.Logger) Service {
	if locations == nil {
		locations = domain.DefaultLocationTable()
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &serviceImpl{store: store, locations: locations, logger: log.Named("portfolio.service")}
}

func (s *serviceImpl) Portfolio(ctx context.Context) Snapshot {
	return s.store.Snapshot()
}

func (s *serviceImpl) ListCompanies(ctx context.Context, input *ListInput) (*domain.Page, error) {
	companies, err := s.store.Companies(ctx)
	if err != nil {
		return nil, err
	}
	if input == nil {
		input = &ListInput{}
	}
	opts := []domain.QueryOption{
		domain.WithStage(input.Stage),
		domain.WithCategory(input.Category),
		domain.WithNameFilter(input.Name),
	}
	if input.SortByName {
		opts = append(opts, domain.WithNameSort())
	}
	if input.Limit > 0 || input.Offset > 0 {
		opts = append(opts, domain.WithPagination(input.Offset, input.Limit))
	}
	page := domain.Query(companies, opts...)
	return &page, nil
}

func (s *serviceImpl) NameView(ctx context.Context, pages int) (*domain.Page, error) {
	companies, err := s.store.Companies(ctx)
	if err != nil {
		return nil, err
	}
	page := domain.NameView(companies, pages)
	return &page, nil
}

func (s *serviceImpl) GetCompany(ctx context.Context, id int) (*domain.Company, error) {
	companies, err := s.store.Companies(ctx)
	if err != nil {
		return nil, err
	}
	return domain.FindByID(companies, id)
}

func (s *serviceImpl) Stages(ctx context.Context) ([]domain.StageCount, error) {
	companies, err := s.store.Companies(ctx)
	if err != nil {
		return nil, err
	}
	return domain.CountByStage(companies), nil
}

func (s *serviceImpl) Sectors(ctx context.Context) ([]sector.CategoryScore, error) {
	companies, err := s.store.Companies(ctx)
	if err != nil {
		return nil, err
	}
	return sector.Ranked(sector.Scores(companies)), nil
}

func (s *serviceImpl) Clusters(ctx context.Context) ([]globe.LocationCluster, error) {
	if err := s.derive(ctx); err != nil {
		return nil, err
	}
	return s.clusters, nil
}

func (s *serviceImpl) Layout(ctx context.Context) (sector.Layout, error) {
	if err := s.derive(ctx); err != nil {
		return sector.Layout{}, err
	}
	return s.layout, nil
}

func (s *serviceImpl) Locations() *domain.LocationTable { return s.locations }

func (s *serviceImpl) derive(ctx context.Context) error {
	companies, err := s.store.Companies(ctx)
	if err != nil {
		return err
	}
	s.derivedOnce.Do(func() {
		s.clusters = globe.Clusters(companies, s.locations)
		s.layout = sector.Compute(companies)
		s.logger.Debug("derived views computed",
			logging.Int("clusters", len(s.clusters)),
			logging.Int("categories", len(s.layout.Categories)))
	})
	return nil
}

//Personal.AI order the ending
