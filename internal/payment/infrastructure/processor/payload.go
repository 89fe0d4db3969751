package processor

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/PaulPerea/paymentorder/internal/payment/domain"
)

// orderPayload is the queue wire contract. Field names are fixed; unknown
// fields are ignored. total_amount is a pointer so a missing amount is
// distinguishable from zero.
type orderPayload struct {
	OrderID     string        `json:"order_id"`
	CustomerID  string        `json:"customer_id"`
	Items       []itemPayload `json:"items"`
	TotalAmount *float64      `json:"total_amount"`
}

type itemPayload struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// DecodeOrder parses a queue message body into a validated Order. Domain
// validation failures come back wrapped in the domain sentinel errors;
// anything else means the payload itself is unreadable.
func DecodeOrder(body []byte) (domain.Order, error) {
	var payload orderPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return domain.Order{}, fmt.Errorf("unmarshal order payload: %w", err)
	}

	orderID, err := domain.NewOrderID(payload.OrderID)
	if err != nil {
		return domain.Order{}, err
	}
	customerID, err := domain.NewCustomerID(payload.CustomerID)
	if err != nil {
		return domain.Order{}, err
	}
	if payload.TotalAmount == nil {
		return domain.Order{}, fmt.Errorf("%w: total_amount is missing", domain.ErrInvalidAmount)
	}
	total := domain.NewMoney(decimal.NewFromFloat(*payload.TotalAmount))

	items := make([]domain.OrderItem, 0, len(payload.Items))
	for _, it := range payload.Items {
		productID, err := domain.NewProductID(it.ProductID)
		if err != nil {
			return domain.Order{}, err
		}
		item, err := domain.NewOrderItem(productID, it.Quantity)
		if err != nil {
			return domain.Order{}, err
		}
		items = append(items, item)
	}

	return domain.NewOrder(orderID, customerID, items, total)
}
