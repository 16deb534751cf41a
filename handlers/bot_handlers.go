// handlers/bot_handlers.go
package handlers

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"account-rewards-bot/models"
	"account-rewards-bot/services"
)

// BotHandler routes inbound chat updates to the engines and renders their
// outcomes back through the transport. It holds no per-user state; every
// update is an independent unit of work.
type BotHandler struct {
	Bot         *services.TelegramClient
	Users       *services.UserService
	Referrals   *services.ReferralService
	Keys        *services.KeyService
	Claims      *services.ClaimService
	Platforms   *services.PlatformService
	Reviews     *services.ReviewService
	Channels    *services.ChannelService
	BotUsername string
}

func NewBotHandler(bot *services.TelegramClient, users *services.UserService, referrals *services.ReferralService, keys *services.KeyService, claims *services.ClaimService, platforms *services.PlatformService, reviews *services.ReviewService, channels *services.ChannelService, botUsername string) *BotHandler {
	return &BotHandler{
		Bot:         bot,
		Users:       users,
		Referrals:   referrals,
		Keys:        keys,
		Claims:      claims,
		Platforms:   platforms,
		Reviews:     reviews,
		Channels:    channels,
		BotUsername: botUsername,
	}
}

func (h *BotHandler) HandleUpdate(update services.TgUpdate) {
	switch {
	case update.Message != nil:
		h.handleMessage(update.Message)
	case update.CallbackQuery != nil:
		h.handleCallback(update.CallbackQuery)
	}
}

// --- Messages ---

func (h *BotHandler) handleMessage(msg *services.TgMessage) {
	if msg.From == nil {
		return
	}
	telegramID := strconv.FormatInt(msg.From.ID, 10)
	username := msg.From.Username
	if username == "" {
		username = msg.From.FirstName
	}

	fields := strings.Fields(msg.Text)
	command := ""
	if len(fields) > 0 {
		command = fields[0]
	}

	var pendingReferrer *string
	if command == "/start" && len(fields) > 1 {
		if ref, ok := strings.CutPrefix(fields[1], "ref_"); ok && ref != "" && ref != telegramID {
			pendingReferrer = &ref
		}
	}

	user, err := h.Users.EnsureUser(telegramID, username, pendingReferrer)
	if err != nil {
		log.Printf("Failed to ensure user %s: %v", telegramID, err)
		h.sendOrLog(msg.Chat.ID, "Something went wrong, please try again.", nil)
		return
	}
	if user.Banned {
		h.sendOrLog(msg.Chat.ID, "🚫 You are banned from using this bot.", nil)
		return
	}

	// Any interaction after registration counts as verified; /start itself
	// only stores the pending referrer.
	if command != "/start" {
		h.finalizePendingReferral(user)
	}

	switch command {
	case "/start", "/menu":
		h.sendOrLog(msg.Chat.ID, mainMenuText(), h.mainMenu())
	case "/redeem":
		if len(fields) < 2 {
			h.sendOrLog(msg.Chat.ID, "Usage: <code>/redeem KEY-CODE</code>", nil)
			return
		}
		h.handleRedeem(msg.Chat.ID, telegramID, fields[1])
	case "/review":
		if len(fields) < 2 {
			h.sendOrLog(msg.Chat.ID, "Usage: <code>/review your feedback</code>", nil)
			return
		}
		h.handleReview(msg.Chat.ID, telegramID, strings.Join(fields[1:], " "))
	default:
		h.sendOrLog(msg.Chat.ID, mainMenuText(), h.mainMenu())
	}
}

func (h *BotHandler) handleReview(chatID int64, telegramID, text string) {
	if err := h.Reviews.Add(telegramID, text); err != nil {
		log.Printf("Failed to store review from %s: %v", telegramID, err)
		h.sendOrLog(chatID, "Something went wrong, please try again.", nil)
		return
	}
	h.sendOrLog(chatID, "💬 Thanks for your review!", nil)
}

// mainMenu renders the main menu keyboard, appending a link row for every
// configured announcement channel. A channel lookup failure degrades to the
// plain menu.
func (h *BotHandler) mainMenu() *services.InlineKeyboardMarkup {
	channels, err := h.Channels.ListChannels()
	if err != nil {
		log.Printf("Failed to list channels: %v", err)
		channels = nil
	}
	return mainMenuMarkup(channels)
}

func (h *BotHandler) handleRedeem(chatID int64, telegramID, code string) {
	result, err := h.Keys.RedeemKey(code, telegramID)
	if err != nil {
		log.Printf("Key redemption failed for %s: %v", telegramID, err)
		h.sendOrLog(chatID, "Something went wrong, please try again.", nil)
		return
	}
	h.sendOrLog(chatID, redeemResultText(result), nil)
}

// --- Callbacks ---

func (h *BotHandler) handleCallback(cb *services.TgCallbackQuery) {
	if cb.From == nil || cb.Message == nil {
		return
	}
	telegramID := strconv.FormatInt(cb.From.ID, 10)
	chatID := cb.Message.Chat.ID

	user, ok, err := h.Users.GetUser(telegramID)
	if err != nil {
		log.Printf("Failed to load user %s: %v", telegramID, err)
		h.answerOrLog(cb.ID, "Something went wrong.")
		return
	}
	if !ok {
		username := cb.From.Username
		if username == "" {
			username = cb.From.FirstName
		}
		if user, err = h.Users.EnsureUser(telegramID, username, nil); err != nil {
			log.Printf("Failed to ensure user %s: %v", telegramID, err)
			h.answerOrLog(cb.ID, "Something went wrong.")
			return
		}
	}
	if user.Banned {
		h.answerOrLog(cb.ID, "Access prohibited.")
		return
	}

	// A button press is the user's first verified interaction; convert any
	// pending referrer into a real referral before serving the action.
	h.finalizePendingReferral(user)

	data := cb.Data
	switch {
	case data == "menu_rewards":
		h.showRewardsMenu(cb)
	case strings.HasPrefix(data, "reward_"):
		h.showPlatformPage(cb, strings.TrimPrefix(data, "reward_"))
	case strings.HasPrefix(data, "claim_"):
		h.handleClaim(cb, telegramID, strings.TrimPrefix(data, "claim_"))
	case data == "menu_account":
		h.answerOrLog(cb.ID, "")
		h.sendOrLog(chatID, accountInfoText(user), nil)
	case data == "menu_referral":
		h.answerOrLog(cb.ID, "")
		h.sendOrLog(chatID, referralInfoText(h.BotUsername, user), nil)
	case data == "menu_review":
		h.answerOrLog(cb.ID, "")
		h.sendOrLog(chatID, "💬 Send your feedback as <code>/review your feedback</code>", nil)
	case data == "back_main":
		h.answerOrLog(cb.ID, "")
		h.editOrLog(chatID, cb.Message.MessageID, mainMenuText(), h.mainMenu())
	default:
		h.answerOrLog(cb.ID, "❓ Unknown action.")
	}
}

func (h *BotHandler) showRewardsMenu(cb *services.TgCallbackQuery) {
	platforms, err := h.Platforms.ListPlatforms()
	if err != nil {
		log.Printf("Failed to list platforms: %v", err)
		h.answerOrLog(cb.ID, "Something went wrong.")
		return
	}
	h.answerOrLog(cb.ID, "")
	if len(platforms) == 0 {
		h.editOrLog(cb.Message.Chat.ID, cb.Message.MessageID,
			"😢 <b>No platforms available at the moment.</b>", backToMainMarkup())
		return
	}
	h.editOrLog(cb.Message.Chat.ID, cb.Message.MessageID,
		"<b>🎯 Available Platforms 🎯</b>", rewardsMenuMarkup(platforms))
}

func (h *BotHandler) showPlatformPage(cb *services.TgCallbackQuery, slug string) {
	platform, ok, err := h.Platforms.GetPlatformBySlug(slug)
	if err != nil {
		log.Printf("Failed to resolve platform %s: %v", slug, err)
		h.answerOrLog(cb.ID, "Something went wrong.")
		return
	}
	if !ok {
		h.answerOrLog(cb.ID, "Platform not found.")
		return
	}
	count, err := h.Platforms.StockCount(platform.Name)
	if err != nil {
		log.Printf("Failed to count stock for %s: %v", platform.Name, err)
		h.answerOrLog(cb.ID, "Something went wrong.")
		return
	}

	h.answerOrLog(cb.ID, "")
	h.editOrLog(cb.Message.Chat.ID, cb.Message.MessageID,
		platformPageText(platform.Name, count), platformPageMarkup(platform.Slug, count))
}

func (h *BotHandler) handleClaim(cb *services.TgCallbackQuery, telegramID, slug string) {
	platform, ok, err := h.Platforms.GetPlatformBySlug(slug)
	if err != nil {
		log.Printf("Failed to resolve platform %s: %v", slug, err)
		h.answerOrLog(cb.ID, "Something went wrong.")
		return
	}
	if !ok {
		h.answerOrLog(cb.ID, "Platform not found.")
		return
	}

	result, err := h.Claims.ClaimAccount(telegramID, platform.Name)
	if err != nil {
		log.Printf("Claim failed for %s on %s: %v", telegramID, platform.Name, err)
		h.answerOrLog(cb.ID, "Something went wrong, please try again.")
		return
	}

	h.answerOrLog(cb.ID, claimNoticeText(result))
	if result.Status == services.ClaimSuccess {
		h.sendOrLog(cb.Message.Chat.ID, claimSuccessText(platform.Name, result), nil)
	}
}

func (h *BotHandler) finalizePendingReferral(user models.User) {
	if user.PendingReferrer == nil {
		return
	}
	referrer := *user.PendingReferrer
	if referrer != user.TelegramID {
		if _, err := h.Referrals.RecordReferral(referrer, user.TelegramID); err != nil {
			log.Printf("Failed to record referral %s -> %s: %v", referrer, user.TelegramID, err)
			return
		}
	}
	if err := h.Users.ClearPendingReferrer(user.TelegramID); err != nil {
		log.Printf("Failed to clear pending referrer for %s: %v", user.TelegramID, err)
	}
}

// --- Transport helpers (delivery is best-effort) ---

func (h *BotHandler) sendOrLog(chatID int64, text string, markup *services.InlineKeyboardMarkup) {
	if err := h.Bot.SendMessage(chatID, text, markup); err != nil {
		log.Printf("Failed to send message to %d: %v", chatID, err)
	}
}

func (h *BotHandler) editOrLog(chatID int64, messageID int, text string, markup *services.InlineKeyboardMarkup) {
	if err := h.Bot.EditMessageText(chatID, messageID, text, markup); err != nil {
		log.Printf("Failed to edit message %d in %d: %v", messageID, chatID, err)
	}
}

func (h *BotHandler) answerOrLog(callbackID, text string) {
	if err := h.Bot.AnswerCallbackQuery(callbackID, text); err != nil {
		log.Printf("Failed to answer callback %s: %v", callbackID, err)
	}
}

// --- Rendering ---

func mainMenuText() string {
	return "<b>📋 Main Menu 📋</b>\nPlease choose an option:"
}

func mainMenuMarkup(channels []models.Channel) *services.InlineKeyboardMarkup {
	rows := [][]services.InlineKeyboardButton{
		{
			{Text: "💳 Rewards", CallbackData: "menu_rewards"},
			{Text: "👤 Account Info", CallbackData: "menu_account"},
		},
		{
			{Text: "🔗 Referral System", CallbackData: "menu_referral"},
			{Text: "💬 Review", CallbackData: "menu_review"},
		},
	}
	for _, channel := range channels {
		rows = append(rows, []services.InlineKeyboardButton{
			{Text: "📢 Our Channel", URL: channel.Link},
		})
	}
	return &services.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func backToMainMarkup() *services.InlineKeyboardMarkup {
	return &services.InlineKeyboardMarkup{
		InlineKeyboard: [][]services.InlineKeyboardButton{
			{{Text: "🔙 Back", CallbackData: "back_main"}},
		},
	}
}

func rewardsMenuMarkup(platforms []services.PlatformSummary) *services.InlineKeyboardMarkup {
	rows := make([][]services.InlineKeyboardButton, 0, len(platforms)+1)
	for _, p := range platforms {
		rows = append(rows, []services.InlineKeyboardButton{
			{Text: "📺 " + p.Name, CallbackData: "reward_" + p.Slug},
		})
	}
	rows = append(rows, []services.InlineKeyboardButton{
		{Text: "🔙 Back", CallbackData: "back_main"},
	})
	return &services.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func platformPageText(name string, count int64) string {
	if count == 0 {
		return fmt.Sprintf("<b>📺 %s</b>:\n😞 No accounts available at the moment.", name)
	}
	return fmt.Sprintf("<b>📺 %s</b>:\n✅ <b>%d accounts available!</b>", name, count)
}

func platformPageMarkup(slug string, count int64) *services.InlineKeyboardMarkup {
	var rows [][]services.InlineKeyboardButton
	if count > 0 {
		rows = append(rows, []services.InlineKeyboardButton{
			{Text: "🎁 Claim Account", CallbackData: "claim_" + slug},
		})
	}
	rows = append(rows, []services.InlineKeyboardButton{
		{Text: "🔙 Back", CallbackData: "menu_rewards"},
	})
	return &services.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func claimNoticeText(result services.ClaimResult) string {
	switch result.Status {
	case services.ClaimUserNotFound:
		return "User not found."
	case services.ClaimInsufficientPoints:
		return fmt.Sprintf("Insufficient points (each account costs %d points). Earn more by referring or redeeming a key.", services.AccountCost)
	case services.ClaimOutOfStock:
		return "😞 No accounts available."
	default:
		return "🎉 Account claimed!"
	}
}

func claimSuccessText(platform string, result services.ClaimResult) string {
	return fmt.Sprintf("<b>Your account for %s:</b>\n<code>%s</code>\nRemaining points: %d",
		platform, result.Account, result.RemainingPoints)
}

func redeemResultText(result services.RedeemResult) string {
	switch result.Status {
	case services.RedeemNotFound:
		return "Key not found."
	case services.RedeemAlreadyClaimed:
		return "Key already claimed."
	default:
		return fmt.Sprintf("Key redeemed successfully. You've been awarded %d points.", result.PointsAwarded)
	}
}

func accountInfoText(user models.User) string {
	return fmt.Sprintf(
		"<b>👤 Account Info 😁</b>\n"+
			"• <b>Username:</b> %s\n"+
			"• <b>User ID:</b> %s\n"+
			"• <b>Join Date:</b> %s\n"+
			"• <b>Balance:</b> %d points\n"+
			"• <b>Total Referrals:</b> %d",
		user.Username, user.TelegramID, user.JoinDate.Format("2006-01-02"), user.Points, user.ReferralCount)
}

func referralInfoText(botUsername string, user models.User) string {
	return fmt.Sprintf(
		"<b>🔗 Referral System</b>\n"+
			"Share your link and earn <b>%d points</b> for every friend who joins:\n"+
			"<code>https://t.me/%s?start=ref_%s</code>\n"+
			"Referrals so far: <b>%d</b>",
		services.ReferralReward, botUsername, user.TelegramID, user.ReferralCount)
}
