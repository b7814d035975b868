package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/neexbeast/flysen-catalog/internal/catalog"
	"github.com/neexbeast/flysen-catalog/internal/repository"
	"github.com/neexbeast/flysen-catalog/internal/storage"
)

type AirportServices struct {
	repo     *repository.AirportServices
	products *repository.Products
}

func NewAirportServices(repo *repository.AirportServices, products *repository.Products) *AirportServices {
	return &AirportServices{repo: repo, products: products}
}

// Create stores svc, starting rating, review count and score at zero unless
// given. Products without an id get a fresh one.
func (s *AirportServices) Create(ctx context.Context, svc *catalog.AirportService) (*catalog.AirportService, error) {
	if svc.Rating == nil {
		svc.Rating = lo.ToPtr(0.0)
	}
	if svc.ReviewsCount == nil {
		svc.ReviewsCount = lo.ToPtr(0)
	}
	if svc.Score == nil {
		svc.Score = lo.ToPtr(0.0)
	}
	assignProductIDs(svc.Products)
	if _, err := s.repo.Create(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

func (s *AirportServices) Get(ctx context.Context, id string) (*catalog.AirportService, error) {
	svc, ok := s.repo.GetByID(ctx, id)
	if !ok {
		return nil, notFound("airport service", id)
	}
	return svc, nil
}

func (s *AirportServices) List(ctx context.Context, limit int, cursor string) []*catalog.AirportService {
	return s.repo.List(ctx, limit, cursor)
}

func (s *AirportServices) Page(ctx context.Context, req repository.PageRequest) repository.PageResult[*catalog.AirportService] {
	return s.repo.Page(ctx, req)
}

func (s *AirportServices) ByAirport(ctx context.Context, airportID string) []*catalog.AirportService {
	return s.repo.ListByField(ctx, "airportId", airportID)
}

func (s *AirportServices) ByAirportCode(ctx context.Context, code string) []*catalog.AirportService {
	return s.repo.ListByField(ctx, "airportCode", code)
}

// ByCategory returns the airport's services of one category, best score
// first.
func (s *AirportServices) ByCategory(ctx context.Context, airportID string, category catalog.ServiceCategory) []*catalog.AirportService {
	return s.repo.ListByCategoryScored(ctx, "airportId", airportID, "category", category, score)
}

// TopRated returns the airport's services by rating, highest first.
func (s *AirportServices) TopRated(ctx context.Context, airportID string, limit int) []*catalog.AirportService {
	return s.repo.ListTopRated(ctx, "airportId", airportID, limit, rating)
}

func (s *AirportServices) ByTerminal(ctx context.Context, airportID, terminal string) []*catalog.AirportService {
	return s.repo.ListWhere(ctx, storage.Eq("airportId", airportID), storage.Eq("terminal", terminal))
}

func (s *AirportServices) Search(ctx context.Context, airportID, term string) []*catalog.AirportService {
	return s.repo.Search(ctx, "airportId", airportID, term)
}

// Update merges svc into the stored service. A products list given here
// replaces the stored one; its products without an id get a fresh one.
func (s *AirportServices) Update(ctx context.Context, id string, svc *catalog.AirportService) (*catalog.AirportService, error) {
	assignProductIDs(svc.Products)
	if err := s.repo.Update(ctx, id, svc); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *AirportServices) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// AddProduct appends p to the service's products and returns the service.
func (s *AirportServices) AddProduct(ctx context.Context, serviceID string, p catalog.Product) (*catalog.AirportService, error) {
	return s.editProducts(serviceID)(s.products.Add(ctx, serviceID, p))
}

// UpdateProduct replaces the product with productID. An unknown product
// leaves the service unchanged.
func (s *AirportServices) UpdateProduct(ctx context.Context, serviceID, productID string, p catalog.Product) (*catalog.AirportService, error) {
	return s.editProducts(serviceID)(s.products.Update(ctx, serviceID, productID, p))
}

func (s *AirportServices) RemoveProduct(ctx context.Context, serviceID, productID string) (*catalog.AirportService, error) {
	return s.editProducts(serviceID)(s.products.Remove(ctx, serviceID, productID))
}

func (s *AirportServices) editProducts(serviceID string) func(*catalog.AirportService, error) (*catalog.AirportService, error) {
	return func(svc *catalog.AirportService, err error) (*catalog.AirportService, error) {
		if err != nil {
			return nil, err
		}
		if svc == nil {
			return nil, notFound("airport service", serviceID)
		}
		return svc, nil
	}
}

func assignProductIDs(products []catalog.Product) {
	for i := range products {
		if products[i].ID == "" {
			products[i].ID = uuid.NewString()
		}
	}
}

func score(s *catalog.AirportService) *float64  { return s.Score }
func rating(s *catalog.AirportService) *float64 { return s.Rating }
