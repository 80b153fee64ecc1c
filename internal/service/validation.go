package service

import (
	"fmt"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

// maxAmount is the first value that no longer fits NUMERIC(10,2).
var maxAmount = decimal.New(1, 8)

// ValidateOrder checks a submission before anything is written. The total
// has to match Σ quantity × price, rounded to the currency scale, within
// tolerance.
func ValidateOrder(order domain.Order, cur domain.Currency, tolerance decimal.Decimal) error {
	if len(order.Items) == 0 {
		return &domain.ValidationError{
			Field:   "items",
			Message: domain.ErrEmptyOrder.Error(),
			Err:     domain.ErrEmptyOrder,
		}
	}

	for i, item := range order.Items {
		if err := validateOrderItem(item, i, cur); err != nil {
			return err
		}
	}

	if err := validateAmount("total", order.Total, cur); err != nil {
		return err
	}

	itemsTotal := cur.Round(order.ItemsTotal())
	if itemsTotal.GreaterThanOrEqual(maxAmount) {
		return domain.NewValidationError("items", "order total exceeds the maximum amount")
	}

	if itemsTotal.Sub(order.Total).Abs().GreaterThan(tolerance) {
		return &domain.ValidationError{
			Field:   "total",
			Message: fmt.Sprintf("total %s does not match items total %s", cur.Format(order.Total), cur.Format(itemsTotal)),
			Err:     domain.ErrTotalMismatch,
		}
	}

	return nil
}

func validateOrderItem(item domain.OrderItem, index int, cur domain.Currency) error {
	field := fmt.Sprintf("items[%d]", index)

	if item.ProductID <= 0 {
		return domain.NewValidationError(field+".product_id", "product ID must be positive")
	}

	if item.Quantity <= 0 {
		return domain.NewValidationError(field+".quantity", "quantity must be positive")
	}

	return validateAmount(field+".price", item.Price, cur)
}

func validateAmount(field string, amount decimal.Decimal, cur domain.Currency) error {
	if amount.IsNegative() {
		return domain.NewValidationError(field, "must not be negative")
	}

	if !domain.AmountInBounds(amount) {
		return domain.NewValidationError(field, "is out of range")
	}

	if !cur.Exact(amount) {
		return domain.NewValidationError(field, fmt.Sprintf("must have at most %d decimal places", cur.Scale))
	}

	if amount.GreaterThanOrEqual(maxAmount) {
		return domain.NewValidationError(field, "exceeds the maximum amount")
	}

	return nil
}
