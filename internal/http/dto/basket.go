package dto

import "github.com/LefterisXris/brew-bean-app/internal/coffee"

type Basket struct {
	Items     []coffee.BasketItem `json:"items"`
	Total     float64             `json:"total"`
	ItemCount int                 `json:"itemCount"`
}

func NewBasket(items []coffee.BasketItem) Basket {
	if items == nil {
		items = []coffee.BasketItem{}
	}
	return Basket{Items: items, Total: coffee.Total(items), ItemCount: coffee.Count(items)}
}

// AddBasketItemRequest adds one coffee from the menu. Quantity defaults to 1.
type AddBasketItemRequest struct {
	CoffeeID int  `json:"coffeeId" validate:"required,gt=0"`
	Quantity *int `json:"quantity,omitempty" validate:"omitempty,gte=1,lte=99"`
}

func (r AddBasketItemRequest) Validate() error { return validate.Struct(r) }

func (r AddBasketItemRequest) Qty() int {
	if r.Quantity == nil {
		return 1
	}
	return *r.Quantity
}

// UpdateQuantityRequest sets a line's quantity; zero or less removes it.
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,lte=99"`
}

func (r UpdateQuantityRequest) Validate() error { return validate.Struct(r) }
