package services

import (
	"regexp"
	"sync"
	"testing"

	"account-rewards-bot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedeemKey_NotFound(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "1", 5)
	keys := NewKeyService(db)

	result, err := keys.RedeemKey("NKEY-DOESNOTEXIST", "1")
	require.NoError(t, err)
	assert.Equal(t, RedeemNotFound, result.Status)
	assert.Equal(t, 5, userPoints(t, db, "1"))
}

func TestRedeemKey_SuccessThenAlreadyClaimed(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "U", 5)
	createTestUser(t, db, "V", 5)
	createTestKey(t, db, "NKEY-ABC1234567", models.KeyTypeNormal, NormalKeyPoints)
	keys := NewKeyService(db)

	first, err := keys.RedeemKey("NKEY-ABC1234567", "U")
	require.NoError(t, err)
	require.Equal(t, RedeemSuccess, first.Status)
	assert.Equal(t, NormalKeyPoints, first.PointsAwarded)
	assert.Equal(t, 5+NormalKeyPoints, userPoints(t, db, "U"))

	second, err := keys.RedeemKey("NKEY-ABC1234567", "V")
	require.NoError(t, err)
	assert.Equal(t, RedeemAlreadyClaimed, second.Status)
	assert.Equal(t, 5, userPoints(t, db, "V"))

	// Claimer reference is permanent
	var key models.Key
	require.NoError(t, db.First(&key, "code = ?", "NKEY-ABC1234567").Error)
	assert.True(t, key.Claimed)
	require.NotNil(t, key.ClaimedBy)
	assert.Equal(t, "U", *key.ClaimedBy)
}

func TestRedeemKey_ConcurrentSingleWinner(t *testing.T) {
	db := newTestDB(t)
	const contenders = 8
	for i := 0; i < contenders; i++ {
		createTestUser(t, db, string(rune('A'+i)), 5)
	}
	createTestKey(t, db, "PKEY-RACE000001", models.KeyTypePremium, PremiumKeyPoints)
	keys := NewKeyService(db)

	results := make([]RedeemResult, contenders)
	errs := make([]error, contenders)

	var wg sync.WaitGroup
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = keys.RedeemKey("PKEY-RACE000001", string(rune('A'+i)))
		}(i)
	}
	wg.Wait()

	winners := 0
	for i := 0; i < contenders; i++ {
		require.NoError(t, errs[i])
		switch results[i].Status {
		case RedeemSuccess:
			winners++
			assert.Equal(t, PremiumKeyPoints, results[i].PointsAwarded)
		case RedeemAlreadyClaimed:
		default:
			t.Fatalf("unexpected status %s", results[i].Status)
		}
	}
	assert.Equal(t, 1, winners)

	// Exactly one balance was credited
	var total int64
	require.NoError(t, db.Model(&models.User{}).Select("COALESCE(SUM(points), 0)").Scan(&total).Error)
	assert.EqualValues(t, contenders*5+PremiumKeyPoints, total)
}

func TestGenerateKeys(t *testing.T) {
	db := newTestDB(t)
	keys := NewKeyService(db)

	normal, err := keys.GenerateKeys(models.KeyTypeNormal, 3)
	require.NoError(t, err)
	require.Len(t, normal, 3)

	premium, err := keys.GenerateKeys(models.KeyTypePremium, 2)
	require.NoError(t, err)
	require.Len(t, premium, 2)

	codePattern := regexp.MustCompile(`^[NP]KEY-[A-Z0-9]{10}$`)
	for _, key := range normal {
		assert.Regexp(t, codePattern, key.Code)
		assert.True(t, len(key.Code) == 15)
		assert.Equal(t, models.KeyTypeNormal, key.Type)
		assert.Equal(t, NormalKeyPoints, key.Points)
		assert.False(t, key.Claimed)
	}
	for _, key := range premium {
		assert.Regexp(t, codePattern, key.Code)
		assert.Equal(t, models.KeyTypePremium, key.Type)
		assert.Equal(t, PremiumKeyPoints, key.Points)
		assert.False(t, key.Claimed)
	}

	listed, err := keys.ListKeys()
	require.NoError(t, err)
	assert.Len(t, listed, 5)
}
