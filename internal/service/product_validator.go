package service

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/shestoi/paymanager/internal/repository"
)

// PricedItem позиция покупки с ценой на момент проверки
type PricedItem struct {
	ProductID  int64
	Quantity   int
	UnitAmount int64
	LineTotal  int64
}

// ProductValidator проверяет, что все товары существуют, до любых побочных эффектов
type ProductValidator struct {
	repo repository.ProductRepository
}

func NewProductValidator(repo repository.ProductRepository) *ProductValidator {
	return &ProductValidator{repo: repo}
}

// Validate делает один запрос на все различные id. Если чего-то нет, возвращает
// *MissingProductsError с отсутствующими id по возрастанию
func (v *ProductValidator) Validate(ctx context.Context, items []PurchaseItem) ([]PricedItem, error) {
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		if !slices.Contains(ids, it.ProductID) {
			ids = append(ids, it.ProductID)
		}
	}

	products, err := v.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	byID := make(map[int64]repository.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	var missing []int64
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return nil, &MissingProductsError{IDs: missing}
	}

	var errs fieldErrors
	priced := make([]PricedItem, 0, len(items))
	for i, it := range items {
		unit := byID[it.ProductID].Amount
		line, ok := mulAmount(unit, int64(it.Quantity))
		if !ok {
			errs.add(fmt.Sprintf("items[%d].quantity", i), "line total exceeds the maximum amount")
			continue
		}
		priced = append(priced, PricedItem{
			ProductID:  it.ProductID,
			Quantity:   it.Quantity,
			UnitAmount: unit,
			LineTotal:  line,
		})
	}
	if err := errs.err(); err != nil {
		return nil, err
	}
	return priced, nil
}

// PurchaseTotal сумма всех позиций; переполнение int64 это ошибка валидации, а не отрицательное списание
func PurchaseTotal(priced []PricedItem) (int64, error) {
	var total int64
	for _, p := range priced {
		if p.LineTotal < 0 || total > math.MaxInt64-p.LineTotal {
			var errs fieldErrors
			errs.add("items", "total amount exceeds the maximum amount")
			return 0, errs.err()
		}
		total += p.LineTotal
	}
	return total, nil
}

// mulAmount цена * количество с проверкой переполнения; обе величины неотрицательные
func mulAmount(unit, qty int64) (int64, bool) {
	if unit < 0 || qty < 0 {
		return 0, false
	}
	if unit != 0 && qty > math.MaxInt64/unit {
		return 0, false
	}
	return unit * qty, true
}
