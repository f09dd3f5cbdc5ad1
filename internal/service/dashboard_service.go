package service

import (
	"context"
	"sort"

	"github.com/infinirdc/Opulence/internal/repositories"
	"github.com/infinirdc/Opulence/models"
	"github.com/infinirdc/Opulence/pkg/logger"
)

// Dashboard is the aggregated admin view assembled from the three ledgers.
// Sections are independent: a failing source leaves its section empty rather
// than failing the whole view.
type Dashboard struct {
	Ingredients   []*models.Ingredient `json:"ingredients"`
	LowStock      []*models.Ingredient `json:"low_stock"`
	Dishes        []*models.Dish       `json:"dishes"`
	Orders        []*models.Order      `json:"orders"`
	PopularDishes []PopularDish        `json:"popular_dishes"`
	TotalRevenue  float64              `json:"total_revenue"`
	OrderCount    int                  `json:"order_count"`
}

// PopularDish ranks a dish by how often it has been ordered.
type PopularDish struct {
	DishID     string  `json:"dish_id"`
	DishName   string  `json:"dish_name"`
	OrderCount int     `json:"order_count"`
	Revenue    float64 `json:"revenue"`
}

type DashboardServiceInterface interface {
	GetDashboard(ctx context.Context) (*Dashboard, error)
}

type DashboardService struct {
	inventoryRepo repositories.InventoryRepositoryInterface
	menuRepo      repositories.MenuRepositoryInterface
	orderRepo     repositories.OrderRepositoryInterface
	logger        *logger.Logger
}

func NewDashboardService(
	inventoryRepo repositories.InventoryRepositoryInterface,
	menuRepo repositories.MenuRepositoryInterface,
	orderRepo repositories.OrderRepositoryInterface,
	log *logger.Logger,
) *DashboardService {
	return &DashboardService{
		inventoryRepo: inventoryRepo,
		menuRepo:      menuRepo,
		orderRepo:     orderRepo,
		logger:        log.WithComponent("dashboard_service"),
	}
}

// GetDashboard assembles the admin dashboard. Each section is fetched
// independently and degrades to empty on failure, so a broken ledger never
// blanks the whole page.
func (s *DashboardService) GetDashboard(ctx context.Context) (*Dashboard, error) {
	s.logger.Info("Assembling dashboard")

	dashboard := &Dashboard{
		Ingredients:   []*models.Ingredient{},
		LowStock:      []*models.Ingredient{},
		Dishes:        []*models.Dish{},
		Orders:        []*models.Order{},
		PopularDishes: []PopularDish{},
	}

	if ingredients, err := s.inventoryRepo.GetAll(ctx); err != nil {
		s.logger.Warn("Dashboard: ingredients section unavailable", "error", err)
	} else {
		dashboard.Ingredients = ingredients
		for _, item := range ingredients {
			if item.LowStock() {
				dashboard.LowStock = append(dashboard.LowStock, item)
			}
		}
	}

	if dishes, err := s.menuRepo.GetAll(ctx); err != nil {
		s.logger.Warn("Dashboard: dishes section unavailable", "error", err)
	} else {
		dashboard.Dishes = dishes
	}

	if orders, err := s.orderRepo.GetAll(ctx); err != nil {
		s.logger.Warn("Dashboard: orders section unavailable", "error", err)
	} else {
		dashboard.Orders = orders
		dashboard.OrderCount = len(orders)
		dashboard.TotalRevenue = totalRevenue(orders)
		dashboard.PopularDishes = popularDishes(orders)
	}

	return dashboard, nil
}

// totalRevenue sums the totals of all orders that were not cancelled.
func totalRevenue(orders []*models.Order) float64 {
	var total float64
	for _, order := range orders {
		if order.Status == models.StatusCancelled {
			continue
		}
		total += order.Total
	}
	return total
}

// popularDishes ranks dishes by times ordered, then by revenue. Cancelled
// orders do not count.
func popularDishes(orders []*models.Order) []PopularDish {
	index := make(map[string]*PopularDish)
	for _, order := range orders {
		if order.Status == models.StatusCancelled {
			continue
		}
		for _, item := range order.Items {
			entry, ok := index[item.DishID]
			if !ok {
				entry = &PopularDish{DishID: item.DishID, DishName: item.DishName}
				index[item.DishID] = entry
			}
			entry.OrderCount += item.Quantity
			entry.Revenue += item.PriceAtTime * float64(item.Quantity)
		}
	}

	ranked := make([]PopularDish, 0, len(index))
	for _, entry := range index {
		ranked = append(ranked, *entry)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].OrderCount != ranked[j].OrderCount {
			return ranked[i].OrderCount > ranked[j].OrderCount
		}
		if ranked[i].Revenue != ranked[j].Revenue {
			return ranked[i].Revenue > ranked[j].Revenue
		}
		return ranked[i].DishName < ranked[j].DishName
	})

	return ranked
}
