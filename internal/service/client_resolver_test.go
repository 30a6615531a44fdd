package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shestoi/paymanager/internal/repository"
	"github.com/shestoi/paymanager/internal/repository/memory"
	"github.com/shestoi/paymanager/internal/repository/mocks"
)

func TestClientResolver_GetOrCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("lost create race re-reads the winner", func(t *testing.T) {
		repo := mocks.NewClientRepository(t)
		repo.On("GetByEmail", mock.Anything, "a@x.com").Return(repository.Client{}, repository.ErrNotFound).Once()
		repo.On("Create", mock.Anything, repository.Client{Name: "Ana", Email: "a@x.com"}).
			Return(repository.Client{}, repository.ErrAlreadyExists).Once()
		repo.On("GetByEmail", mock.Anything, "a@x.com").Return(repository.Client{ID: 7, Name: "Ana", Email: "a@x.com"}, nil).Once()

		client, err := NewClientResolver(zap.NewNop(), repo).GetOrCreate(ctx, ClientInput{Name: " Ana ", Email: " A@X.com"})
		require.NoError(t, err)
		assert.Equal(t, int64(7), client.ID)
	})

	t.Run("re-read failure after conflict", func(t *testing.T) {
		repo := mocks.NewClientRepository(t)
		repo.On("GetByEmail", mock.Anything, "a@x.com").Return(repository.Client{}, repository.ErrNotFound).Once()
		repo.On("Create", mock.Anything, mock.Anything).Return(repository.Client{}, repository.ErrAlreadyExists).Once()
		repo.On("GetByEmail", mock.Anything, "a@x.com").Return(repository.Client{}, errors.New("connection reset")).Once()

		_, err := NewClientResolver(zap.NewNop(), repo).GetOrCreate(ctx, ClientInput{Name: "Ana", Email: "a@x.com"})
		assert.ErrorContains(t, err, "connection reset")
	})

	t.Run("storage error on create is not swallowed", func(t *testing.T) {
		repo := mocks.NewClientRepository(t)
		repo.On("GetByEmail", mock.Anything, "a@x.com").Return(repository.Client{}, repository.ErrNotFound).Once()
		repo.On("Create", mock.Anything, mock.Anything).Return(repository.Client{}, errors.New("disk full")).Once()

		_, err := NewClientResolver(zap.NewNop(), repo).GetOrCreate(ctx, ClientInput{Name: "Ana", Email: "a@x.com"})
		assert.ErrorContains(t, err, "disk full")
	})

	t.Run("concurrent calls for one email create one client", func(t *testing.T) {
		repo := memory.NewClientRepository()
		resolver := NewClientResolver(zap.NewNop(), repo)

		const callers = 50
		ids := make([]int64, callers)
		errs := make([]error, callers)
		var wg sync.WaitGroup
		for i := range callers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				client, err := resolver.GetOrCreate(ctx, ClientInput{Name: "Ana", Email: "a@x.com"})
				ids[i], errs[i] = client.ID, err
			}()
		}
		wg.Wait()

		for i := range callers {
			require.NoError(t, errs[i])
			assert.Equal(t, ids[0], ids[i])
		}
		page, err := repo.List(ctx, repository.ClientFilter{}, repository.Page{Number: 1, Limit: 100})
		require.NoError(t, err)
		assert.Equal(t, 1, page.Total)
	})
}
