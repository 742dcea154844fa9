package platform

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mymmrac/telego"

	"banshare/internal/config"
	"banshare/internal/logger"
)

// Telegram implements Platform on top of the Telegram Bot API
type Telegram struct {
	bot     *telego.Bot
	timeout time.Duration
}

// NewTelegram initializes the bot client and verifies the token
func NewTelegram(ctx context.Context, cfg *config.Config) (*Telegram, error) {
	if cfg.Platform.Token == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	bot, err := telego.NewBot(cfg.Platform.Token, telego.WithDefaultDebugLogger())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize bot: %w", err)
	}

	botUser, err := bot.GetMe(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get bot info: %w", err)
	}
	logger.Infof("Authorized on account %s", botUser.Username)

	timeout := time.Duration(cfg.Platform.APITimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Telegram{bot: bot, timeout: timeout}, nil
}

func (t *Telegram) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, t.timeout)
}

// ApplyBan bans the user on the given chat
func (t *Telegram) ApplyBan(ctx context.Context, serverID, userID int64, reason string) error {
	callCtx, cancel := t.callCtx(ctx)
	defer cancel()

	err := t.bot.BanChatMember(callCtx, &telego.BanChatMemberParams{
		ChatID: telego.ChatID{ID: serverID},
		UserID: userID,
	})
	return classifyAPIError(err)
}

// RemoveBan lifts the user's ban on the given chat
func (t *Telegram) RemoveBan(ctx context.Context, serverID, userID int64, reason string) error {
	callCtx, cancel := t.callCtx(ctx)
	defer cancel()

	err := t.bot.UnbanChatMember(callCtx, &telego.UnbanChatMemberParams{
		ChatID:       telego.ChatID{ID: serverID},
		UserID:       userID,
		OnlyIfBanned: true,
	})
	return classifyAPIError(err)
}

// Notify sends a message to the chat or user identified by target
func (t *Telegram) Notify(ctx context.Context, serverID int64, target string, message string) error {
	chatID, err := strconv.ParseInt(target, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid notification target %q: %w", target, err)
	}

	callCtx, cancel := t.callCtx(ctx)
	defer cancel()

	_, err = t.bot.SendMessage(callCtx, &telego.SendMessageParams{
		ChatID:    telego.ChatID{ID: chatID},
		Text:      message,
		ParseMode: "HTML",
	})
	return classifyAPIError(err)
}

// LookupChannel resolves a well-known channel on the server. Telegram
// groups have no named-channel namespace, so the group chat itself is
// the only resolvable target.
func (t *Telegram) LookupChannel(ctx context.Context, serverID int64, name string) (string, error) {
	callCtx, cancel := t.callCtx(ctx)
	defer cancel()

	_, err := t.bot.GetChat(callCtx, &telego.GetChatParams{
		ChatID: telego.ChatID{ID: serverID},
	})
	if err != nil {
		return "", fmt.Errorf("channel %q not resolvable on server %d: %w", name, serverID, err)
	}
	return strconv.FormatInt(serverID, 10), nil
}

// ServerOwner returns the chat creator's user id
func (t *Telegram) ServerOwner(ctx context.Context, serverID int64) (int64, error) {
	admins, err := t.chatAdministrators(ctx, serverID)
	if err != nil {
		return 0, err
	}

	for _, admin := range admins {
		if admin.MemberStatus() == telego.MemberStatusCreator {
			if creator, ok := admin.(*telego.ChatMemberOwner); ok {
				return creator.User.ID, nil
			}
		}
	}
	return 0, fmt.Errorf("no owner found for server %d", serverID)
}

// ServerAdmins returns administrator user ids, creator first, then
// admins with promotion rights, then the rest
func (t *Telegram) ServerAdmins(ctx context.Context, serverID int64) ([]int64, error) {
	admins, err := t.chatAdministrators(ctx, serverID)
	if err != nil {
		return nil, err
	}

	botID := t.bot.ID()
	var creators, promoters, others []int64
	for _, admin := range admins {
		user := admin.MemberUser()
		if user.ID == botID || user.IsBot {
			continue
		}
		switch admin.MemberStatus() {
		case telego.MemberStatusCreator:
			creators = append(creators, user.ID)
		case telego.MemberStatusAdministrator:
			if adminMember, ok := admin.(*telego.ChatMemberAdministrator); ok && adminMember.CanPromoteMembers {
				promoters = append(promoters, user.ID)
			} else {
				others = append(others, user.ID)
			}
		}
	}

	ordered := append(creators, promoters...)
	return append(ordered, others...), nil
}

func (t *Telegram) chatAdministrators(ctx context.Context, serverID int64) ([]telego.ChatMember, error) {
	callCtx, cancel := t.callCtx(ctx)
	defer cancel()

	admins, err := t.bot.GetChatAdministrators(callCtx, &telego.GetChatAdministratorsParams{
		ChatID: telego.ChatID{ID: serverID},
	})
	if err != nil {
		return nil, fmt.Errorf("error getting chat administrators for chat %d: %w", serverID, err)
	}
	return admins, nil
}

// classifyAPIError maps Telegram API failures onto the platform's
// sentinel errors where the description allows it
func classifyAPIError(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "not enough rights"), strings.Contains(msg, "chat_admin_required"):
		return fmt.Errorf("%w: %s", ErrNoPermission, err.Error())
	case strings.Contains(msg, "user is already banned"):
		return fmt.Errorf("%w: %s", ErrAlreadyApplied, err.Error())
	default:
		return err
	}
}
