package handler

import (
	"regionx/internal/orders/models"
	"regionx/pkg/domain"
)

type CreateOrderResponse struct {
	OrderID domain.OrderID `json:"order_id"`
}

type OrderListResponse struct {
	Orders []domain.OrderID `json:"orders"`
}

type OrderResponse struct {
	ID domain.OrderID `json:"id"`
	models.Order
	TotalContributions domain.Balance `json:"total_contributions"`
}

type ContributionsResponse struct {
	OrderID       domain.OrderID        `json:"order_id"`
	Contributions []models.Contribution `json:"contributions"`
}
