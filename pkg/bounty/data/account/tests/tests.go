package tests

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/bounty-server/pkg/bounty/data/account"
)

func RunTests(t *testing.T, s account.Store, teardown func()) {
	for _, tf := range []func(t *testing.T, s account.Store){
		testRoundTrip,
		testUpdate,
		testDelete,
		testGetAllByOwner,
		testGetAllByOwnerWithDataPrefix,
	} {
		tf(t, s)
		teardown()
	}
}

func testRoundTrip(t *testing.T, s account.Store) {
	t.Run("testRoundTrip", func(t *testing.T) {
		ctx := context.Background()

		actual, err := s.Get(ctx, "address")
		assert.Equal(t, account.ErrAccountNotFound, err)
		assert.Nil(t, actual)

		expected := &account.Record{
			Address:   "address",
			Owner:     "program",
			Lamports:  8_491_200,
			Data:      []byte{1, 2, 3, 4},
			CreatedAt: time.Now(),
		}
		cloned := expected.Clone()
		require.NoError(t, s.Create(ctx, expected))
		assert.True(t, expected.Id > 0)

		assert.Equal(t, account.ErrAccountExists, s.Create(ctx, expected))

		actual, err = s.Get(ctx, "address")
		require.NoError(t, err)
		assertEquivalentRecords(t, &cloned, actual)
		assert.Equal(t, expected.Id, actual.Id)

		// Mutating the returned record doesn't affect the stored one.
		actual.Data[0] = 42
		actual, err = s.Get(ctx, "address")
		require.NoError(t, err)
		assert.EqualValues(t, 1, actual.Data[0])

		assert.Error(t, s.Create(ctx, &account.Record{Owner: "program"}))
		assert.Error(t, s.Create(ctx, &account.Record{Address: "other"}))
	})
}

func testUpdate(t *testing.T, s account.Store) {
	t.Run("testUpdate", func(t *testing.T) {
		ctx := context.Background()

		record := &account.Record{
			Address:  "address",
			Owner:    "program",
			Lamports: 10,
			Data:     []byte{1},
		}
		assert.Equal(t, account.ErrAccountNotFound, s.Update(ctx, record))

		require.NoError(t, s.Create(ctx, record))
		createdAt := record.CreatedAt

		record.Lamports = 0
		record.Data = []byte{2, 2}
		require.NoError(t, s.Update(ctx, record))

		actual, err := s.Get(ctx, "address")
		require.NoError(t, err)
		assert.EqualValues(t, 0, actual.Lamports)
		assert.Equal(t, []byte{2, 2}, actual.Data)
		assert.Equal(t, "program", actual.Owner)
		assert.Equal(t, createdAt.Unix(), actual.CreatedAt.Unix())
		assert.False(t, actual.LastUpdatedAt.Before(actual.CreatedAt))
	})
}

func testDelete(t *testing.T, s account.Store) {
	t.Run("testDelete", func(t *testing.T) {
		ctx := context.Background()

		assert.Equal(t, account.ErrAccountNotFound, s.Delete(ctx, "address"))

		record := &account.Record{
			Address:  "address",
			Owner:    "program",
			Lamports: 10,
		}
		require.NoError(t, s.Create(ctx, record))
		require.NoError(t, s.Delete(ctx, "address"))

		_, err := s.Get(ctx, "address")
		assert.Equal(t, account.ErrAccountNotFound, err)
		assert.Equal(t, account.ErrAccountNotFound, s.Delete(ctx, "address"))

		// The address can be allocated again once freed.
		record = &account.Record{
			Address:  "address",
			Owner:    "other_program",
			Lamports: 20,
		}
		require.NoError(t, s.Create(ctx, record))

		actual, err := s.Get(ctx, "address")
		require.NoError(t, err)
		assert.Equal(t, "other_program", actual.Owner)
		assert.EqualValues(t, 20, actual.Lamports)
	})
}

func testGetAllByOwner(t *testing.T, s account.Store) {
	t.Run("testGetAllByOwner", func(t *testing.T) {
		ctx := context.Background()

		_, err := s.GetAllByOwner(ctx, "program", nil)
		assert.Equal(t, account.ErrAccountNotFound, err)

		for i := 0; i < 5; i++ {
			owner := "program"
			if i%2 == 1 {
				owner = "other_program"
			}

			require.NoError(t, s.Create(ctx, &account.Record{
				Address:  fmt.Sprintf("address%d", i),
				Owner:    owner,
				Lamports: uint64(i),
				Data:     []byte{byte(i)},
			}))
		}

		actual, err := s.GetAllByOwner(ctx, "program", nil)
		require.NoError(t, err)
		require.Len(t, actual, 3)
		for i, record := range actual {
			assert.Equal(t, fmt.Sprintf("address%d", 2*i), record.Address)
			assert.Equal(t, []byte{byte(2 * i)}, record.Data)
		}

		actual, err = s.GetAllByOwner(ctx, "other_program", nil)
		require.NoError(t, err)
		require.Len(t, actual, 2)
		assert.Equal(t, "address1", actual[0].Address)
		assert.Equal(t, "address3", actual[1].Address)
	})
}

func testGetAllByOwnerWithDataPrefix(t *testing.T, s account.Store) {
	t.Run("testGetAllByOwnerWithDataPrefix", func(t *testing.T) {
		ctx := context.Background()

		for i, data := range [][]byte{
			{1, 2, 3, 4},
			{1, 2, 9},
			{1},
			{7, 2, 3},
			nil,
		} {
			require.NoError(t, s.Create(ctx, &account.Record{
				Address: fmt.Sprintf("prefixed%d", i),
				Owner:   "program",
				Data:    data,
			}))
		}
		require.NoError(t, s.Create(ctx, &account.Record{
			Address: "other",
			Owner:   "other_program",
			Data:    []byte{1, 2, 3},
		}))

		actual, err := s.GetAllByOwner(ctx, "program", []byte{1, 2})
		require.NoError(t, err)
		require.Len(t, actual, 2)
		assert.Equal(t, "prefixed0", actual[0].Address)
		assert.Equal(t, "prefixed1", actual[1].Address)

		actual, err = s.GetAllByOwner(ctx, "program", []byte{1, 2, 3})
		require.NoError(t, err)
		require.Len(t, actual, 1)
		assert.Equal(t, "prefixed0", actual[0].Address)

		actual, err = s.GetAllByOwner(ctx, "program", []byte{})
		require.NoError(t, err)
		assert.Len(t, actual, 5)

		_, err = s.GetAllByOwner(ctx, "program", []byte{1, 2, 3, 4, 5})
		assert.Equal(t, account.ErrAccountNotFound, err)

		_, err = s.GetAllByOwner(ctx, "other_program", []byte{7})
		assert.Equal(t, account.ErrAccountNotFound, err)
	})
}

func assertEquivalentRecords(t *testing.T, obj1, obj2 *account.Record) {
	assert.Equal(t, obj1.Address, obj2.Address)
	assert.Equal(t, obj1.Owner, obj2.Owner)
	assert.Equal(t, obj1.Lamports, obj2.Lamports)
	assert.Equal(t, obj1.Data, obj2.Data)
	assert.Equal(t, obj1.CreatedAt.Unix(), obj2.CreatedAt.Unix())
}
