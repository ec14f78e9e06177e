package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawplates/engine/internal/api/handlers"
	"github.com/pawplates/engine/internal/api/middleware"
	"github.com/pawplates/engine/internal/embeddings"
	"github.com/pawplates/engine/internal/models"
	"github.com/pawplates/engine/internal/repository"
	"github.com/pawplates/engine/internal/service"
)

func testUserID(t *testing.T) string {
	return "it-" + t.Name() + "-" + uuid.NewString()[:8]
}

func TestIntegration_EmbeddingRoundTripAndPrecedence(t *testing.T) {
	db := requireDatabase(t)
	repo := repository.NewEmbeddingsRepository(db)

	userID := testUserID(t)
	t.Cleanup(func() { cleanupUser(t, db, userID) })

	ctx := context.Background()

	first := axisVector(0)
	second := axisVector(1)

	seq1, err := repo.Append(ctx, userID, first)
	require.NoError(t, err)

	seq2, err := repo.Append(ctx, userID, second)
	require.NoError(t, err)
	assert.Greater(t, seq2, seq1, "sequence must be monotonically increasing")

	got, err := repo.GetLatest(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, second, got, "highest sequence wins")
}

func TestIntegration_ListAllLatestSnapshot(t *testing.T) {
	db := requireDatabase(t)
	repo := repository.NewEmbeddingsRepository(db)

	userA := testUserID(t) + "-a"
	userB := testUserID(t) + "-b"
	t.Cleanup(func() {
		cleanupUser(t, db, userA)
		cleanupUser(t, db, userB)
	})

	ctx := context.Background()

	_, err := repo.Append(ctx, userA, axisVector(0))
	require.NoError(t, err)
	_, err = repo.Append(ctx, userA, axisVector(1))
	require.NoError(t, err)
	_, err = repo.Append(ctx, userB, axisVector(2))
	require.NoError(t, err)

	snapshot, err := repo.ListAllLatest(ctx)
	require.NoError(t, err)

	byUser := make(map[string][]float32)
	for _, entry := range snapshot {
		byUser[entry.UserID] = entry.Vector
	}

	assert.Equal(t, axisVector(1), byUser[userA], "snapshot holds one latest vector per user")
	assert.Equal(t, axisVector(2), byUser[userB])
}

func TestIntegration_MealHistoryLimitSemantics(t *testing.T) {
	db := requireDatabase(t)
	repo := repository.NewMealHistoryRepository(db)

	userID := testUserID(t)
	t.Cleanup(func() { cleanupUser(t, db, userID) })

	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Add(ctx, userID, fmt.Sprintf("recipe-%d", i), base.AddDate(0, 0, i)))
	}

	limited, err := repo.ListRecent(ctx, userID, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "recipe-2", limited[0].RecipeID, "most recent first")

	all, err := repo.ListRecent(ctx, userID, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3, "non-positive limit must mean no limit, not zero rows")
}

func TestIntegration_RefreshIncorporatesMealHistory(t *testing.T) {
	db := requireDatabase(t)

	embeddingsRepo := repository.NewEmbeddingsRepository(db)
	mealHistoryRepo := repository.NewMealHistoryRepository(db)
	preferencesRepo := repository.NewPreferencesRepository(db)

	newService := func() *service.EmbeddingService {
		return service.NewEmbeddingService(service.EmbeddingServiceParams{
			Repo:         embeddingsRepo,
			Prefs:        preferencesRepo,
			History:      mealHistoryRepo,
			Embedder:     embeddings.NewMockClient(testDimensions),
			Dimensions:   testDimensions,
			HistoryLimit: 5,
			CallTimeout:  5 * time.Second,
		})
	}

	ctx := context.Background()

	bareUser := testUserID(t) + "-bare"
	fedUser := testUserID(t) + "-fed"
	t.Cleanup(func() {
		cleanupUser(t, db, bareUser)
		cleanupUser(t, db, fedUser)
	})

	prefs := models.Preferences{CookingStyle: "cooked", MealsPerDay: 2}
	require.NoError(t, preferencesRepo.Put(ctx, bareUser, prefs))
	require.NoError(t, preferencesRepo.Put(ctx, fedUser, prefs))
	require.NoError(t, mealHistoryRepo.Add(ctx, fedUser, "beef-bowl", time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)))

	svc := newService()
	require.NoError(t, svc.Refresh(ctx, bareUser))
	require.NoError(t, svc.Refresh(ctx, fedUser))

	bareVec, err := embeddingsRepo.GetLatest(ctx, bareUser)
	require.NoError(t, err)
	fedVec, err := embeddingsRepo.GetLatest(ctx, fedUser)
	require.NoError(t, err)

	assert.NotEqual(t, bareVec, fedVec, "meal history must change the refreshed embedding")
}

func TestIntegration_FavoritesRankOrder(t *testing.T) {
	db := requireDatabase(t)
	repo := repository.NewFavoritesRepository(db)

	userA := testUserID(t) + "-a"
	userB := testUserID(t) + "-b"
	t.Cleanup(func() {
		cleanupUser(t, db, userA)
		cleanupUser(t, db, userB)
	})

	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, userB, "r-late"))
	require.NoError(t, repo.Save(ctx, userA, "r-early"))

	// userA listed first: its favorites must come first regardless of
	// insertion order.
	favorites, err := repo.GetForUsers(ctx, []string{userA, userB})
	require.NoError(t, err)
	require.Len(t, favorites, 2)
	assert.Equal(t, userA, favorites[0].UserID)
	assert.Equal(t, userB, favorites[1].UserID)
}

func TestIntegration_PreferencesRoundTrip(t *testing.T) {
	db := requireDatabase(t)
	repo := repository.NewPreferencesRepository(db)

	userID := testUserID(t)
	t.Cleanup(func() { cleanupUser(t, db, userID) })

	ctx := context.Background()

	prefs := models.Preferences{
		PreferredProteins: []string{"chicken", "salmon"},
		CookingStyle:      "raw",
		MealsPerDay:       3,
	}
	require.NoError(t, repo.Put(ctx, userID, prefs))

	got, err := repo.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, prefs, got)

	// Upsert replaces.
	prefs.MealsPerDay = 2
	require.NoError(t, repo.Put(ctx, userID, prefs))

	got, err = repo.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.MealsPerDay)
}

func TestIntegration_EmbeddingEndpoints(t *testing.T) {
	db := requireDatabase(t)

	embeddingsRepo := repository.NewEmbeddingsRepository(db)
	embeddingService := service.NewEmbeddingService(service.EmbeddingServiceParams{
		Repo:        embeddingsRepo,
		Dimensions:  testDimensions,
		CallTimeout: 5 * time.Second,
	})
	embeddingHandler := handlers.NewEmbeddingHandler(embeddingService, nil)

	mux := http.NewServeMux()
	mux.HandleFunc("PUT /v1/users/{id}/embedding", embeddingHandler.Update)
	mux.HandleFunc("GET /v1/users/{id}/embedding", embeddingHandler.Get)

	server := httptest.NewServer(middleware.Auth(testAPIKey)(mux))
	t.Cleanup(server.Close)

	userID := testUserID(t)
	t.Cleanup(func() { cleanupUser(t, db, userID) })

	body, err := json.Marshal(handlers.UpdateEmbeddingRequest{Vector: axisVector(3)})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPut, server.URL+"/v1/users/"+userID+"/embedding", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+testAPIKey)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	req, err = http.NewRequest(http.MethodGet, server.URL+"/v1/users/"+userID+"/embedding", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+testAPIKey)

	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got handlers.EmbeddingResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, axisVector(3), got.Vector)
}
