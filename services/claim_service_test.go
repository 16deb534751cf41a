package services

import (
	"sync"
	"testing"

	"account-rewards-bot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaimAccount_UserNotFound(t *testing.T) {
	db := newTestDB(t)
	createTestPlatform(t, db, "Netflix", "acc1")
	claims := NewClaimService(db)

	result, err := claims.ClaimAccount("999", "Netflix")
	require.NoError(t, err)
	assert.Equal(t, ClaimUserNotFound, result.Status)
}

func TestClaimAccount_InsufficientPoints(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "1", 1)
	createTestPlatform(t, db, "Netflix", "acc1")
	claims := NewClaimService(db)

	result, err := claims.ClaimAccount("1", "Netflix")
	require.NoError(t, err)
	assert.Equal(t, ClaimInsufficientPoints, result.Status)

	// Balance untouched, stock untouched
	assert.Equal(t, 1, userPoints(t, db, "1"))
	count, err := NewPlatformService(db).StockCount("Netflix")
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestClaimAccount_OutOfStock(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "1", 10)
	createTestPlatform(t, db, "Netflix")
	claims := NewClaimService(db)

	result, err := claims.ClaimAccount("1", "Netflix")
	require.NoError(t, err)
	assert.Equal(t, ClaimOutOfStock, result.Status)
	assert.Equal(t, 10, userPoints(t, db, "1"))
}

func TestClaimAccount_Success(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "1", 10)
	createTestPlatform(t, db, "Netflix", "a", "b")
	claims := NewClaimService(db)

	result, err := claims.ClaimAccount("1", "Netflix")
	require.NoError(t, err)
	require.Equal(t, ClaimSuccess, result.Status)
	assert.Contains(t, []string{"a", "b"}, result.Account)
	assert.Equal(t, 8, result.RemainingPoints)
	assert.Equal(t, 8, userPoints(t, db, "1"))

	count, err := NewPlatformService(db).StockCount("Netflix")
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestClaimAccount_ConcurrentClaimsConserveStock(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "1", 100)
	stock := []string{"a", "b", "c", "d", "e"}
	createTestPlatform(t, db, "Netflix", stock...)
	claims := NewClaimService(db)

	const attempts = 12
	results := make([]ClaimResult, attempts)
	errs := make([]error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = claims.ClaimAccount("1", "Netflix")
		}(i)
	}
	wg.Wait()

	successes := 0
	seen := make(map[string]bool)
	for i := 0; i < attempts; i++ {
		require.NoError(t, errs[i])
		switch results[i].Status {
		case ClaimSuccess:
			successes++
			assert.False(t, seen[results[i].Account], "item %q dispensed twice", results[i].Account)
			seen[results[i].Account] = true
		case ClaimOutOfStock:
			// expected once the pool drains
		default:
			t.Fatalf("unexpected status %s", results[i].Status)
		}
	}

	assert.Equal(t, len(stock), successes)

	var remaining int64
	require.NoError(t, db.Model(&models.StockItem{}).Where("platform_name = ?", "Netflix").Count(&remaining).Error)
	assert.EqualValues(t, 0, remaining)

	assert.Equal(t, 100-len(stock)*AccountCost, userPoints(t, db, "1"))
}

func TestClaimAccount_PointsNeverGoNegative(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "1", 3)
	createTestPlatform(t, db, "Netflix", "a", "b", "c", "d", "e", "f")
	claims := NewClaimService(db)

	const attempts = 6
	results := make([]ClaimResult, attempts)
	errs := make([]error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = claims.ClaimAccount("1", "Netflix")
		}(i)
	}
	wg.Wait()

	successes := 0
	for i := 0; i < attempts; i++ {
		require.NoError(t, errs[i])
		if results[i].Status == ClaimSuccess {
			successes++
		} else {
			assert.Equal(t, ClaimInsufficientPoints, results[i].Status)
		}
	}

	// 3 points only cover one 2-point claim
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, userPoints(t, db, "1"))
}

func TestClaimAccount_CrossPlatformIndependence(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "1", 20)
	createTestPlatform(t, db, "Netflix", "n1")
	createTestPlatform(t, db, "Spotify", "s1")
	claims := NewClaimService(db)

	first, err := claims.ClaimAccount("1", "Netflix")
	require.NoError(t, err)
	require.Equal(t, ClaimSuccess, first.Status)
	assert.Equal(t, "n1", first.Account)

	second, err := claims.ClaimAccount("1", "Spotify")
	require.NoError(t, err)
	require.Equal(t, ClaimSuccess, second.Status)
	assert.Equal(t, "s1", second.Account)

	assert.Equal(t, 16, userPoints(t, db, "1"))
}
