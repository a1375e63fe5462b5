package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
	"github.com/rocketscienceinc/tictactoe-timetravel/testing/suite"
)

func playedSession(id string) entity.Session {
	session := entity.NewSession(id)
	session.History = append(session.History, entity.Snapshot{
		Board:  entity.Board{4: entity.CellX},
		Coords: entity.CoordsOf(4),
	})
	session.StepNumber = 1
	session.ReverseSort = true

	return session
}

// repositories returns every implementation, the Redis one only when docker is available.
func repositories(t *testing.T) map[string]func(t *testing.T) (context.Context, SessionRepository) {
	t.Helper()

	return map[string]func(t *testing.T) (context.Context, SessionRepository){
		"memory": func(_ *testing.T) (context.Context, SessionRepository) {
			return context.Background(), NewMemorySessionRepository()
		},
		"redis": func(t *testing.T) (context.Context, SessionRepository) {
			ctx, st := suite.New(t)
			return ctx, NewSessionRepository(st.Storage, time.Minute)
		},
	}
}

func TestSessionRepository_CreateOrUpdate(t *testing.T) {
	for name, newRepo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx, sessionRepo := newRepo(t)

			// Given: a session with one move
			session := playedSession("123")

			// When: CreateOrUpdate is called
			err := sessionRepo.CreateOrUpdate(ctx, session)

			// Then: no error should be returned, and the session is stored as is
			require.NoError(t, err)

			stored, err := sessionRepo.GetByID(ctx, session.ID)
			require.NoError(t, err)
			assert.Equal(t, session, stored)
		})
	}
}

func TestSessionRepository_GetByID(t *testing.T) {
	for name, newRepo := range repositories(t) {
		t.Run(name+"/NotFound", func(t *testing.T) {
			ctx, sessionRepo := newRepo(t)

			// When: GetByID is called with a non-existent ID
			retrieved, err := sessionRepo.GetByID(ctx, "9999999")

			// Then: ErrSessionNotFound should be returned
			require.ErrorIs(t, err, apperror.ErrSessionNotFound)
			assert.Empty(t, retrieved.ID)
		})

		t.Run(name+"/Overwrite", func(t *testing.T) {
			ctx, sessionRepo := newRepo(t)

			// Given: a stored session
			session := playedSession("123")
			require.NoError(t, sessionRepo.CreateOrUpdate(ctx, session))

			// When: the session is saved again after a jump back
			session.StepNumber = 0
			require.NoError(t, sessionRepo.CreateOrUpdate(ctx, session))

			// Then: the latest version is returned
			stored, err := sessionRepo.GetByID(ctx, session.ID)
			require.NoError(t, err)
			assert.Equal(t, 0, stored.StepNumber)
			assert.Len(t, stored.History, 2)
		})
	}
}

func TestSessionRepository_DeleteByID(t *testing.T) {
	for name, newRepo := range repositories(t) {
		t.Run(name+"/Success", func(t *testing.T) {
			ctx, sessionRepo := newRepo(t)

			// Given: a stored session
			session := playedSession("123")
			require.NoError(t, sessionRepo.CreateOrUpdate(ctx, session))

			// When: DeleteByID is called
			err := sessionRepo.DeleteByID(ctx, session.ID)

			// Then: the session is gone
			require.NoError(t, err)

			_, err = sessionRepo.GetByID(ctx, session.ID)
			require.ErrorIs(t, err, apperror.ErrSessionNotFound)
		})

		t.Run(name+"/NotFound", func(t *testing.T) {
			ctx, sessionRepo := newRepo(t)

			// When: DeleteByID is called with a non-existent ID
			err := sessionRepo.DeleteByID(ctx, "9999999")

			// Then: ErrSessionNotFound should be returned
			require.ErrorIs(t, err, apperror.ErrSessionNotFound)
		})
	}
}

func TestSessionRepository_TTL(t *testing.T) {
	ctx, st := suite.New(t)

	sessionRepo := NewSessionRepository(st.Storage, time.Minute)

	// Given: a stored session
	require.NoError(t, sessionRepo.CreateOrUpdate(ctx, playedSession("123")))

	// When: reading the key's ttl
	ttl, err := st.Storage.TTL(ctx, sessionKeyPrefix+"123").Result()

	// Then: the key expires with the session lifetime
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)
}

func TestMemorySessionRepository_Isolation(t *testing.T) {
	ctx := context.Background()
	sessionRepo := NewMemorySessionRepository()

	// Given: a stored session
	session := playedSession("123")
	require.NoError(t, sessionRepo.CreateOrUpdate(ctx, session))

	// When: the caller mutates its copy
	session.History[1].Board[0] = entity.CellO

	// Then: the stored session is unaffected
	stored, err := sessionRepo.GetByID(ctx, "123")
	require.NoError(t, err)
	assert.Equal(t, entity.CellEmpty, stored.History[1].Board[0])
}
