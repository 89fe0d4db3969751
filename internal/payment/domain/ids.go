package domain

import (
	"fmt"
	"strings"
)

// Identifier value objects. All of them are comparable wrapped strings so
// they can be used directly as map keys; constructors reject blank values.

type OrderID string

func NewOrderID(value string) (OrderID, error) {
	if strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("%w: order id is blank", ErrInvalidIdentifier)
	}
	return OrderID(value), nil
}

func (id OrderID) String() string { return string(id) }

type CustomerID string

func NewCustomerID(value string) (CustomerID, error) {
	if strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("%w: customer id is blank", ErrInvalidIdentifier)
	}
	return CustomerID(value), nil
}

func (id CustomerID) String() string { return string(id) }

type ProductID string

func NewProductID(value string) (ProductID, error) {
	if strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("%w: product id is blank", ErrInvalidIdentifier)
	}
	return ProductID(value), nil
}

func (id ProductID) String() string { return string(id) }

type TransactionID string

func NewTransactionID(value string) (TransactionID, error) {
	if strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("%w: transaction id is blank", ErrInvalidIdentifier)
	}
	return TransactionID(value), nil
}

func (id TransactionID) String() string { return string(id) }
