package memory

import (
	"context"
	"sync"

	"github.com/shestoi/paymanager/internal/repository"
)

// ProductRepository товары в памяти
type ProductRepository struct {
	mu       sync.RWMutex
	nextID   int64
	products map[int64]repository.Product
}

// NewProductRepository создаёт хранилище, опционально с начальными товарами
func NewProductRepository(seed ...repository.Product) *ProductRepository {
	r := &ProductRepository{products: make(map[int64]repository.Product)}
	for _, p := range seed {
		if p.ID == 0 {
			p.ID = r.nextID + 1
		}
		if p.ID > r.nextID {
			r.nextID = p.ID
		}
		r.products[p.ID] = p
	}
	return r
}

func (r *ProductRepository) Create(ctx context.Context, product repository.Product) (repository.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	product.ID = r.nextID
	product.CreatedAt = now()
	product.UpdatedAt = product.CreatedAt
	r.products[product.ID] = product
	return product, nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id int64) (repository.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return repository.Product{}, repository.ErrNotFound
	}
	return p, nil
}

func (r *ProductRepository) GetByIDs(ctx context.Context, ids []int64) ([]repository.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[int64]struct{}, len(ids))
	out := make([]repository.Product, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if p, ok := r.products[id]; ok {
			out = append(out, p)
		}
	}
	sortByID(out, func(p repository.Product) int64 { return p.ID })
	return out, nil
}

func (r *ProductRepository) List(ctx context.Context, filter repository.ProductFilter, page repository.Page) (repository.PageResult[repository.Product], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]repository.Product, 0, len(r.products))
	for _, p := range r.products {
		if filter.Name != "" && !containsFold(p.Name, filter.Name) {
			continue
		}
		if filter.Amount != nil && p.Amount != *filter.Amount {
			continue
		}
		all = append(all, p)
	}
	sortByID(all, func(p repository.Product) int64 { return p.ID })
	return paginate(all, page), nil
}

func (r *ProductRepository) Update(ctx context.Context, product repository.Product) (repository.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.products[product.ID]
	if !ok {
		return repository.Product{}, repository.ErrNotFound
	}
	existing.Name = product.Name
	existing.Amount = product.Amount
	existing.UpdatedAt = now()
	r.products[product.ID] = existing
	return existing, nil
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.products, id)
	return nil
}
