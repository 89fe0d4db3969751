package domain

import "fmt"

// OrderItem is one line of an order. Two items with the same product id are
// considered the same line, which is why an Order rejects duplicates.
type OrderItem struct {
	ProductID ProductID
	Quantity  int
}

func NewOrderItem(productID ProductID, quantity int) (OrderItem, error) {
	if productID == "" {
		return OrderItem{}, fmt.Errorf("%w: missing product id", ErrInvalidItem)
	}
	if quantity <= 0 {
		return OrderItem{}, fmt.Errorf("%w: quantity must be positive, got %d", ErrInvalidItem, quantity)
	}
	return OrderItem{ProductID: productID, Quantity: quantity}, nil
}

// Order is an immutable, constructor-validated aggregate. The item slice is
// copied in and out so callers can never mutate a constructed order.
type Order struct {
	id          OrderID
	customerID  CustomerID
	items       []OrderItem
	totalAmount Money
}

func NewOrder(id OrderID, customerID CustomerID, items []OrderItem, totalAmount Money) (Order, error) {
	if id == "" {
		return Order{}, fmt.Errorf("%w: missing order id", ErrInvalidOrder)
	}
	if customerID == "" {
		return Order{}, fmt.Errorf("%w: missing customer id", ErrInvalidOrder)
	}
	if len(items) == 0 {
		return Order{}, fmt.Errorf("%w: order must have at least one item", ErrInvalidOrder)
	}
	seen := make(map[ProductID]struct{}, len(items))
	for _, item := range items {
		if _, dup := seen[item.ProductID]; dup {
			return Order{}, fmt.Errorf("%w: duplicate product %s", ErrInvalidOrder, item.ProductID)
		}
		seen[item.ProductID] = struct{}{}
	}
	if totalAmount.IsNonPositive() {
		return Order{}, fmt.Errorf("%w: total amount must be positive, got %s", ErrInvalidOrder, totalAmount)
	}

	copied := make([]OrderItem, len(items))
	copy(copied, items)

	return Order{
		id:          id,
		customerID:  customerID,
		items:       copied,
		totalAmount: totalAmount,
	}, nil
}

func (o Order) ID() OrderID            { return o.id }
func (o Order) CustomerID() CustomerID { return o.customerID }
func (o Order) TotalAmount() Money     { return o.totalAmount }

func (o Order) Items() []OrderItem {
	copied := make([]OrderItem, len(o.items))
	copy(copied, o.items)
	return copied
}
