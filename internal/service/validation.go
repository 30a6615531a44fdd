package service

import (
	"fmt"
	"math"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/shestoi/paymanager/internal/repository"
)

// PurchaseRules правила проверки запроса на покупку. Значение неизменяемое и
// передаётся в ProcessPurchase явно, поэтому разные точки входа могут иметь свои правила
type PurchaseRules struct {
	MinItems         int
	// MaxQuantity верхняя граница количества одной позиции; не больше math.MaxInt32 (INTEGER в БД)
	MaxQuantity      int
	MinNameLength    int
	CardNumberLength int
	MinCVVLength     int
	MaxCVVLength     int
}

// DefaultPurchaseRules правила по умолчанию
func DefaultPurchaseRules() PurchaseRules {
	return PurchaseRules{
		MinItems:         1,
		MaxQuantity:      math.MaxInt32,
		MinNameLength:    3,
		CardNumberLength: 16,
		MinCVVLength:     3,
		MaxCVVLength:     4,
	}
}

// Check проверяет запрос; возвращает *ValidationError со всеми нарушениями
func (r PurchaseRules) Check(in PurchaseInput) error {
	var errs fieldErrors

	if len(in.Items) < r.MinItems {
		errs.add("items", fmt.Sprintf("must contain at least %d item(s)", r.MinItems))
	}
	for i, it := range in.Items {
		if it.ProductID <= 0 {
			errs.add(fmt.Sprintf("items[%d].productId", i), "must be a positive number")
		}
		if it.Quantity <= 0 {
			errs.add(fmt.Sprintf("items[%d].quantity", i), "must be greater than zero")
		} else if it.Quantity > r.maxQuantity() {
			errs.add(fmt.Sprintf("items[%d].quantity", i), fmt.Sprintf("must not exceed %d", r.maxQuantity()))
		}
	}

	p := in.Payment
	if utf8.RuneCountInString(strings.TrimSpace(p.Name)) < r.MinNameLength {
		errs.add("payment.name", fmt.Sprintf("must have at least %d characters", r.MinNameLength))
	}
	if !validEmail(p.Email) {
		errs.add("payment.email", "must be a valid email")
	}
	card := strings.TrimSpace(p.CardNumber)
	if len(card) != r.CardNumberLength || !digitsOnly(card) {
		errs.add("payment.cardNumber", fmt.Sprintf("must have exactly %d digits", r.CardNumberLength))
	}
	cvv := strings.TrimSpace(p.CVV)
	if len(cvv) < r.MinCVVLength || len(cvv) > r.MaxCVVLength || !digitsOnly(cvv) {
		errs.add("payment.cvv", fmt.Sprintf("must have %d to %d digits", r.MinCVVLength, r.MaxCVVLength))
	}

	return errs.err()
}

func (r PurchaseRules) maxQuantity() int {
	if r.MaxQuantity <= 0 || r.MaxQuantity > math.MaxInt32 {
		return math.MaxInt32
	}
	return r.MaxQuantity
}

func validEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

func digitsOnly(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func checkProduct(name string, amount int64, errs *fieldErrors) {
	if utf8.RuneCountInString(strings.TrimSpace(name)) < 3 {
		errs.add("name", "must have at least 3 characters")
	}
	if amount <= 0 {
		errs.add("amount", "must be positive")
	}
}

func checkRole(role repository.Role, errs *fieldErrors) {
	if !role.Valid() {
		errs.add("role", "must be one of ADMIN, MANAGER, FINANCE, USER")
	}
}
