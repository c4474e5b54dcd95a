package handler

import (
	"time"

	"github.com/MMMDolphin/ImunofanWebsite/internal/domain/order"
	"github.com/MMMDolphin/ImunofanWebsite/internal/domain/product"
	"github.com/MMMDolphin/ImunofanWebsite/internal/domain/seo"
)

type productView struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Type        string   `json:"type"`
	Image       string   `json:"image"`
	Features    []string `json:"features"`
	InStock     bool     `json:"inStock"`
}

func toProductView(p product.Product) productView {
	return productView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.InexactFloat64(),
		Type:        string(p.Type),
		Image:       p.Image,
		Features:    p.Features,
		InStock:     p.InStock,
	}
}

type orderView struct {
	ID              int64     `json:"id"`
	CustomerName    string    `json:"customerName"`
	CustomerEmail   string    `json:"customerEmail"`
	CustomerPhone   string    `json:"customerPhone"`
	Address         string    `json:"address"`
	City            string    `json:"city"`
	PostalCode      string    `json:"postalCode"`
	Total           float64   `json:"total"`
	Status          string    `json:"status"`
	PaymentMethod   string    `json:"paymentMethod"`
	PaymentIntentID string    `json:"paymentIntentId,omitempty"`
	PaymentStatus   string    `json:"paymentStatus,omitempty"`
	DeliveryType    string    `json:"deliveryType,omitempty"`
	DeliveryPrice   float64   `json:"deliveryPrice"`
	PickupPointID   string    `json:"pickupPointId,omitempty"`
	PickupPointName string    `json:"pickupPointName,omitempty"`
	TrackingNumber  string    `json:"trackingNumber,omitempty"`
	DeliveryStatus  string    `json:"deliveryStatus"`
	CreatedAt       time.Time `json:"createdAt"`
}

type itemView struct {
	ID        int64   `json:"id"`
	OrderID   int64   `json:"orderId"`
	ProductID int64   `json:"productId"`
	Quantity  int32   `json:"quantity"`
	Price     float64 `json:"price"`
}

type orderResult struct {
	Order orderView  `json:"order"`
	Items []itemView `json:"items"`
}

func toOrderResult(res *order.Result) orderResult {
	o := res.Order
	out := orderResult{
		Order: orderView{
			ID:              o.ID,
			CustomerName:    o.CustomerName,
			CustomerEmail:   o.CustomerEmail,
			CustomerPhone:   o.CustomerPhone,
			Address:         o.Address,
			City:            o.City,
			PostalCode:      o.PostalCode,
			Total:           o.Total.InexactFloat64(),
			Status:          string(o.Status),
			PaymentMethod:   string(o.PaymentMethod),
			PaymentIntentID: o.PaymentIntentID,
			PaymentStatus:   o.PaymentStatus,
			DeliveryType:    string(o.DeliveryType),
			DeliveryPrice:   o.DeliveryPrice.InexactFloat64(),
			PickupPointID:   o.PickupPointID,
			PickupPointName: o.PickupPointName,
			TrackingNumber:  o.TrackingNumber,
			DeliveryStatus:  string(o.DeliveryStatus),
			CreatedAt:       o.CreatedAt,
		},
		Items: make([]itemView, len(res.Items)),
	}
	for i, it := range res.Items {
		out.Items[i] = itemView{
			ID:        it.ID,
			OrderID:   it.OrderID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price.InexactFloat64(),
		}
	}
	return out
}

type pageView struct {
	ID              int64     `json:"id"`
	KeywordID       int64     `json:"keywordId"`
	Title           string    `json:"title"`
	MetaDescription string    `json:"metaDescription"`
	Content         string    `json:"content"`
	Image1URL       string    `json:"image1Url,omitempty"`
	Image2URL       string    `json:"image2Url,omitempty"`
	Published       bool      `json:"published"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func toPageView(p *seo.Page) pageView {
	return pageView{
		ID:              p.ID,
		KeywordID:       p.KeywordID,
		Title:           p.Title,
		MetaDescription: p.MetaDescription,
		Content:         p.Content,
		Image1URL:       p.Image1URL,
		Image2URL:       p.Image2URL,
		Published:       p.Published,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}
