package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound запись не найдена (CRUD операции)
	ErrNotFound = errors.New("not found")
	// ErrEmailTaken email пользователя уже занят
	ErrEmailTaken = errors.New("email already in use")
	// ErrInvalidCredentials неверный email или пароль
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrSessionNotFoundOrExpired сессия не найдена или истекла
	ErrSessionNotFoundOrExpired = errors.New("session not found or expired")
	// ErrTransactionNotFound транзакция для возврата не найдена; оборачивается вместе с id
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrAlreadyRefunded повторный возврат отклоняется
	ErrAlreadyRefunded = errors.New("transaction already refunded")
)

// MsgAllGatewaysFailed сообщение, когда ни один шлюз не провёл операцию
const MsgAllGatewaysFailed = "all gateways failed"

// Attempt неудачная попытка на одном шлюзе
type Attempt struct {
	GatewayID int64
	Gateway   string
	Reason    string
}

// MissingProductsError в запросе есть несуществующие товары
type MissingProductsError struct {
	IDs []int64
}

func (e *MissingProductsError) Error() string {
	ids := make([]string, len(e.IDs))
	for i, id := range e.IDs {
		ids[i] = fmt.Sprint(id)
	}
	return "products not found: " + strings.Join(ids, ", ")
}

// PaymentFailedError ни один шлюз не принял платёж
type PaymentFailedError struct {
	Reason   string
	Attempts []Attempt
}

func (e *PaymentFailedError) Error() string {
	return "payment failed: " + e.Reason
}

// RefundFailedError ни один шлюз не провёл возврат
type RefundFailedError struct {
	Reason   string
	Attempts []Attempt
}

func (e *RefundFailedError) Error() string {
	return "refund failed: " + e.Reason
}

// PersistenceError деньги списаны (или возвращены), но результат не записан.
// Несёт всё, что нужно для ручной сверки со шлюзом
type PersistenceError struct {
	Op            string
	TransactionID int64
	GatewayID     int64
	ExternalID    string
	Err           error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: gateway %d external id %q: %v", e.Op, e.GatewayID, e.ExternalID, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// FieldError нарушение правила для одного поля
type FieldError struct {
	Field   string
	Message string
}

// ValidationError входные данные не прошли проверку
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// fieldErrors накапливает ошибки полей; err() возвращает nil, если ошибок нет
type fieldErrors []FieldError

func (f *fieldErrors) add(field, message string) {
	*f = append(*f, FieldError{Field: field, Message: message})
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}
