// Package memory реализует репозитории в памяти процесса.
// Используется при STORAGE_DRIVER=memory и в тестах сервисного слоя.
package memory

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shestoi/paymanager/internal/repository"
)

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// paginate режет отсортированный по id срез на страницу
func paginate[T any](all []T, page repository.Page) repository.PageResult[T] {
	res := repository.PageResult[T]{Total: len(all), Page: page, Items: []T{}}

	start := page.Offset()
	if start >= len(all) || start < 0 {
		return res
	}
	end := start + page.Limit
	if end > len(all) {
		end = len(all)
	}
	res.Items = append(res.Items, all[start:end]...)
	return res
}

func sortByID[T any](items []T, id func(T) int64) {
	sort.Slice(items, func(i, j int) bool { return id(items[i]) < id(items[j]) })
}

func now() time.Time {
	return time.Now().UTC()
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
