package handlers

import (
	"testing"
	"time"

	"account-rewards-bot/models"
	"account-rewards-bot/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaimNoticeText(t *testing.T) {
	assert.Equal(t, "User not found.",
		claimNoticeText(services.ClaimResult{Status: services.ClaimUserNotFound}))
	assert.Contains(t,
		claimNoticeText(services.ClaimResult{Status: services.ClaimInsufficientPoints}),
		"Insufficient points")
	assert.Equal(t, "😞 No accounts available.",
		claimNoticeText(services.ClaimResult{Status: services.ClaimOutOfStock}))
	assert.Equal(t, "🎉 Account claimed!",
		claimNoticeText(services.ClaimResult{Status: services.ClaimSuccess}))
}

func TestClaimSuccessText(t *testing.T) {
	text := claimSuccessText("Netflix", services.ClaimResult{
		Status:          services.ClaimSuccess,
		Account:         "user:pass",
		RemainingPoints: 8,
	})
	assert.Contains(t, text, "Netflix")
	assert.Contains(t, text, "<code>user:pass</code>")
	assert.Contains(t, text, "Remaining points: 8")
}

func TestRedeemResultText(t *testing.T) {
	assert.Equal(t, "Key not found.",
		redeemResultText(services.RedeemResult{Status: services.RedeemNotFound}))
	assert.Equal(t, "Key already claimed.",
		redeemResultText(services.RedeemResult{Status: services.RedeemAlreadyClaimed}))
	assert.Contains(t,
		redeemResultText(services.RedeemResult{Status: services.RedeemSuccess, PointsAwarded: 15}),
		"awarded 15 points")
}

func TestAccountInfoText(t *testing.T) {
	user := models.User{
		TelegramID:    "42",
		Username:      "alice",
		JoinDate:      time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Points:        18,
		ReferralCount: 2,
	}
	text := accountInfoText(user)
	assert.Contains(t, text, "alice")
	assert.Contains(t, text, "42")
	assert.Contains(t, text, "2025-03-01")
	assert.Contains(t, text, "18 points")
	assert.Contains(t, text, "Total Referrals:</b> 2")
}

func TestReferralInfoText(t *testing.T) {
	user := models.User{TelegramID: "42", ReferralCount: 3}
	text := referralInfoText("rewards_bot", user)
	assert.Contains(t, text, "https://t.me/rewards_bot?start=ref_42")
	assert.Contains(t, text, "3")
}

func TestMainMenuMarkup(t *testing.T) {
	plain := mainMenuMarkup(nil)
	require.Len(t, plain.InlineKeyboard, 2)
	assert.Equal(t, "menu_rewards", plain.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "menu_account", plain.InlineKeyboard[0][1].CallbackData)
	assert.Equal(t, "menu_referral", plain.InlineKeyboard[1][0].CallbackData)
	assert.Equal(t, "menu_review", plain.InlineKeyboard[1][1].CallbackData)

	withChannels := mainMenuMarkup([]models.Channel{
		{ID: 1, Link: "https://t.me/rewards_news"},
		{ID: 2, Link: "https://t.me/rewards_drops"},
	})
	// One link row per channel, after the menu rows
	require.Len(t, withChannels.InlineKeyboard, 4)
	assert.Equal(t, "https://t.me/rewards_news", withChannels.InlineKeyboard[2][0].URL)
	assert.Equal(t, "https://t.me/rewards_drops", withChannels.InlineKeyboard[3][0].URL)
}

func TestRewardsMenuMarkup(t *testing.T) {
	markup := rewardsMenuMarkup([]services.PlatformSummary{
		{Name: "Netflix", Slug: "netflix", StockCount: 2},
		{Name: "Disney Plus", Slug: "disney-plus"},
	})
	// One row per platform plus the back row
	assert.Len(t, markup.InlineKeyboard, 3)
	assert.Equal(t, "reward_netflix", markup.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "reward_disney-plus", markup.InlineKeyboard[1][0].CallbackData)
	assert.Equal(t, "back_main", markup.InlineKeyboard[2][0].CallbackData)
}

func TestPlatformPageMarkup(t *testing.T) {
	withStock := platformPageMarkup("netflix", 3)
	assert.Equal(t, "claim_netflix", withStock.InlineKeyboard[0][0].CallbackData)

	empty := platformPageMarkup("netflix", 0)
	// No claim button on an empty pool
	assert.Len(t, empty.InlineKeyboard, 1)
	assert.Equal(t, "menu_rewards", empty.InlineKeyboard[0][0].CallbackData)
}
