// Package bot provides middleware for the Telegram bot.
// Property-based tests for the permission and whitelist checks.
package bot

import (
	"testing"

	"pgregory.net/rapid"

	"telegram-betting-bot/internal/config"
)

// TestAdminPermissionCheckProperty tests the admin permission check logic:
// a user is an admin if and only if their id is in the configured list.
func TestAdminPermissionCheckProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		numAdmins := rapid.IntRange(1, 10).Draw(t, "numAdmins")
		adminIDs := make([]int64, numAdmins)
		adminSet := make(map[int64]bool)
		for i := 0; i < numAdmins; i++ {
			adminIDs[i] = rapid.Int64Range(1, 1000000000).Draw(t, "adminID")
			adminSet[adminIDs[i]] = true
		}

		cfg := &config.Config{
			Admin: config.AdminConfig{
				IDs: adminIDs,
			},
		}

		userID := rapid.Int64Range(1, 1000000000).Draw(t, "userID")
		if cfg.IsAdmin(userID) != adminSet[userID] {
			t.Fatalf("Admin check mismatch: userID=%d, adminIDs=%v, expected=%v",
				userID, adminIDs, adminSet[userID])
		}

		// A known admin must always be recognized
		adminIndex := rapid.IntRange(0, numAdmins-1).Draw(t, "adminIndex")
		if !cfg.IsAdmin(adminIDs[adminIndex]) {
			t.Fatalf("Known admin ID %d should be recognized as admin, adminIDs=%v",
				adminIDs[adminIndex], adminIDs)
		}
	})
}

// TestWhitelistEnforcementProperty tests the whitelist check: a chat is
// allowed if and only if it is in the configured list, and an empty
// whitelist allows every chat.
func TestWhitelistEnforcementProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		numChats := rapid.IntRange(0, 10).Draw(t, "numChats")
		chatIDs := make([]int64, numChats)
		chatSet := make(map[int64]bool)
		for i := 0; i < numChats; i++ {
			// Group chat IDs are typically negative
			chatIDs[i] = -rapid.Int64Range(1, 1000000000).Draw(t, "chatID")
			chatSet[chatIDs[i]] = true
		}

		cfg := &config.Config{
			Whitelist: config.WhitelistConfig{
				Chats: chatIDs,
			},
		}

		chatID := -rapid.Int64Range(1, 1000000000).Draw(t, "probeChatID")
		expected := chatSet[chatID] || numChats == 0
		if cfg.IsChatAllowed(chatID) != expected {
			t.Fatalf("Whitelist check mismatch: chatID=%d, chatIDs=%v, expected=%v",
				chatID, chatIDs, expected)
		}
	})
}
