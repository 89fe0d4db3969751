package domain

import "fmt"

// Service holds the pure payment business rules: no I/O, no side effects.
type Service struct{}

func NewService() *Service { return &Service{} }

func (s *Service) ValidateForPayment(order Order) error {
	if order.ID() == "" {
		return fmt.Errorf("%w: order is missing", ErrInvalidOrder)
	}
	if order.TotalAmount().IsNonPositive() {
		return fmt.Errorf("%w: total amount must be positive", ErrInvalidOrder)
	}
	if len(order.Items()) == 0 {
		return fmt.Errorf("%w: order has no items", ErrInvalidOrder)
	}
	return nil
}

// TransactionFromOrder validates the order and derives its transaction.
func (s *Service) TransactionFromOrder(order Order) (Transaction, error) {
	if err := s.ValidateForPayment(order); err != nil {
		return Transaction{}, err
	}
	return NewTransactionFromOrder(order), nil
}
