package repository

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound запись не найдена
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists нарушено ограничение уникальности (email клиента или пользователя)
	ErrAlreadyExists = errors.New("already exists")
	// ErrStatusConflict условное обновление статуса не затронуло строку
	ErrStatusConflict = errors.New("status conflict")
)

// Client покупатель; email уникален
type Client struct {
	ID        int64
	Name      string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Product товар; Amount цена за единицу в минимальных единицах валюты
type Product struct {
	ID        int64
	Name      string
	Amount    int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Gateway запись о платёжном шлюзе. Name совпадает с именем адаптера
type Gateway struct {
	ID        int64
	Name      string
	IsActive  bool
	Priority  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TransactionStatus статус транзакции: paid -> refunded
type TransactionStatus string

const (
	StatusPaid     TransactionStatus = "paid"
	StatusRefunded TransactionStatus = "refunded"
)

// Transaction успешная оплата покупки
type Transaction struct {
	ID              int64
	ClientID        int64
	GatewayID       int64
	ExternalID      string
	Status          TransactionStatus
	Amount          int64
	CardLastNumbers string
	Items           []TransactionProduct
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TransactionProduct позиция покупки
type TransactionProduct struct {
	ID            int64
	TransactionID int64
	ProductID     int64
	Quantity      int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Role роль пользователя панели
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleFinance Role = "FINANCE"
	RoleUser    Role = "USER"
)

// Valid проверяет, что роль из известного набора
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleFinance, RoleUser:
		return true
	}
	return false
}

// User пользователь панели управления
type User struct {
	ID           int64
	FullName     string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// OutboxStatus статус события в outbox
type OutboxStatus string

const (
	OutboxPending OutboxStatus = "pending"
	OutboxSent    OutboxStatus = "sent"
	OutboxFailed  OutboxStatus = "failed"
)

// OutboxEvent событие, записанное в одной транзакции с изменением данных
type OutboxEvent struct {
	EventID     string
	Topic       string
	AggregateID string
	EventType   string
	Payload     []byte
	Status      OutboxStatus
	Attempts    int
	LastError   string
	CreatedAt   time.Time
	SentAt      *time.Time
}

// Page параметры пагинации, Number с 1
type Page struct {
	Number int
	Limit  int
}

// Offset смещение первой записи страницы
func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

// PageResult страница результатов и общее количество
type PageResult[T any] struct {
	Items []T
	Total int
	Page  Page
}

// ProductFilter фильтры списка товаров: Name подстрока, Amount точное значение
type ProductFilter struct {
	Name   string
	Amount *int64
}

// ClientFilter фильтры списка клиентов (подстроки)
type ClientFilter struct {
	Name  string
	Email string
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=ProductRepository --dir=. --output=./mocks --outpkg=mocks

// ProductRepository хранилище товаров
type ProductRepository interface {
	Create(ctx context.Context, product Product) (Product, error)
	GetByID(ctx context.Context, id int64) (Product, error)
	// GetByIDs один запрос на все id; отсутствующие id просто не попадают в результат
	GetByIDs(ctx context.Context, ids []int64) ([]Product, error)
	List(ctx context.Context, filter ProductFilter, page Page) (PageResult[Product], error)
	Update(ctx context.Context, product Product) (Product, error)
	Delete(ctx context.Context, id int64) error
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=ClientRepository --dir=. --output=./mocks --outpkg=mocks

// ClientRepository хранилище клиентов
type ClientRepository interface {
	// Create возвращает ErrAlreadyExists, если email уже занят
	Create(ctx context.Context, client Client) (Client, error)
	GetByID(ctx context.Context, id int64) (Client, error)
	GetByEmail(ctx context.Context, email string) (Client, error)
	List(ctx context.Context, filter ClientFilter, page Page) (PageResult[Client], error)
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=GatewayRepository --dir=. --output=./mocks --outpkg=mocks

// GatewayRepository хранилище настроек шлюзов
type GatewayRepository interface {
	List(ctx context.Context) ([]Gateway, error)
	// ListActive активные шлюзы по возрастанию priority, затем id
	ListActive(ctx context.Context) ([]Gateway, error)
	GetByID(ctx context.Context, id int64) (Gateway, error)
	Update(ctx context.Context, gateway Gateway) (Gateway, error)
}

// EventFactory строит outbox событие по уже сохранённой транзакции (id известен только после вставки).
// Вызывается внутри транзакции хранилища; nil событие означает, что писать в outbox нечего
type EventFactory func(txn Transaction) (*OutboxEvent, error)

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=TransactionRepository --dir=. --output=./mocks --outpkg=mocks

// TransactionRepository хранилище транзакций и их позиций
type TransactionRepository interface {
	// Create атомарно сохраняет транзакцию, все её позиции и (если newEvent != nil) outbox событие
	Create(ctx context.Context, txn Transaction, newEvent EventFactory) (Transaction, error)
	// GetByID возвращает транзакцию вместе с позициями
	GetByID(ctx context.Context, id int64) (Transaction, error)
	// List и ListByClient тоже заполняют Items
	List(ctx context.Context) ([]Transaction, error)
	ListByClient(ctx context.Context, clientID int64) ([]Transaction, error)
	// MarkRefunded переводит paid -> refunded. ErrNotFound если записи нет,
	// ErrStatusConflict если статус уже не paid
	MarkRefunded(ctx context.Context, id int64, event *OutboxEvent) error
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=UserRepository --dir=. --output=./mocks --outpkg=mocks

// UserRepository хранилище пользователей
type UserRepository interface {
	Create(ctx context.Context, user User) (User, error)
	GetByID(ctx context.Context, id int64) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	List(ctx context.Context) ([]User, error)
	Update(ctx context.Context, user User) (User, error)
	Delete(ctx context.Context, id int64) error
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=OutboxRepository --dir=. --output=./mocks --outpkg=mocks

// OutboxRepository чтение и обновление outbox для dispatcher
type OutboxRepository interface {
	GetPendingOutboxEvents(ctx context.Context, limit int) ([]OutboxEvent, error)
	MarkOutboxEventSent(ctx context.Context, eventID string) error
	MarkOutboxEventFailed(ctx context.Context, eventID string, lastError string) error
	ResetOutboxEventPending(ctx context.Context, eventID string) error
}
