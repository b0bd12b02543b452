package infrastructure

import (
	"context"
	"fmt"
	"strings"
	"time"

	"clanwallet/events"
	"clanwallet/models"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const (
	giveawayEmbedColor = 0x2ECC71
	// maxAnnouncedCodes keeps the codes field under Discord's 1024 character limit
	maxAnnouncedCodes = 50
)

// WebhookExecutor is the part of the discordgo session the announcer needs
type WebhookExecutor interface {
	WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordAnnouncer posts public giveaways to the clan's Discord channel through a webhook
type DiscordAnnouncer struct {
	executor  WebhookExecutor
	webhookID string
	token     string
}

// NewDiscordAnnouncer creates an announcer backed by a token-less discordgo session;
// webhook execution only needs the webhook's own token.
func NewDiscordAnnouncer(webhookID, token string) (*DiscordAnnouncer, error) {
	session, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	return newDiscordAnnouncer(session, webhookID, token), nil
}

func newDiscordAnnouncer(executor WebhookExecutor, webhookID, token string) *DiscordAnnouncer {
	return &DiscordAnnouncer{
		executor:  executor,
		webhookID: webhookID,
		token:     token,
	}
}

// Attach announces every committed public giveaway
func (a *DiscordAnnouncer) Attach(bus *events.Bus) {
	bus.Subscribe(events.EventTypeGiveawayCreated, func(ctx context.Context, event events.Event) {
		e, ok := event.(events.GiveawayCreatedEvent)
		if !ok {
			return
		}
		if err := a.AnnounceGiveaway(ctx, e.Giveaway, e.CreatorIGN); err != nil {
			log.WithError(err).WithField("giveawayID", e.Giveaway.ID).Error("Failed to announce giveaway on Discord")
		}
	})
}

// AnnounceGiveaway posts the giveaway embed. Private giveaways are never announced.
func (a *DiscordAnnouncer) AnnounceGiveaway(ctx context.Context, giveaway *models.Giveaway, creatorIGN string) error {
	if giveaway == nil || giveaway.IsPrivate {
		return nil
	}

	_, err := a.executor.WebhookExecute(a.webhookID, a.token, false, &discordgo.WebhookParams{
		Username: "Clan Wallet",
		Embeds:   []*discordgo.MessageEmbed{CreateGiveawayEmbed(giveaway, creatorIGN)},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to execute discord webhook: %w", err)
	}

	log.WithFields(log.Fields{
		"giveawayID": giveaway.ID,
		"codes":      giveaway.TotalCodes,
	}).Info("Announced giveaway on Discord")
	return nil
}

// CreateGiveawayEmbed builds the announcement embed of a giveaway
func CreateGiveawayEmbed(giveaway *models.Giveaway, creatorIGN string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       "🎁 " + giveaway.Title,
		Description: giveaway.Message,
		Color:       giveawayEmbedColor,
		Timestamp:   time.Now().Format(time.RFC3339),
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Giveaway ID: %s", giveaway.ID),
		},
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Value per code",
				Value:  fmt.Sprintf("**₦%s**", giveaway.CodeValue.StringFixed(2)),
				Inline: true,
			},
			{
				Name:   "Codes",
				Value:  fmt.Sprintf("**%d**", giveaway.TotalCodes),
				Inline: true,
			},
			{
				Name:   "Expires",
				Value:  fmt.Sprintf("<t:%d:R>", giveaway.ExpiresAt.Unix()),
				Inline: true,
			},
		},
	}

	if creatorIGN != "" {
		embed.Author = &discordgo.MessageEmbedAuthor{Name: "From " + creatorIGN}
	}

	if len(giveaway.Codes) > 0 {
		codes := giveaway.Codes
		suffix := ""
		if len(codes) > maxAnnouncedCodes {
			suffix = fmt.Sprintf("\n…and %d more in the app", len(codes)-maxAnnouncedCodes)
			codes = codes[:maxAnnouncedCodes]
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Redeem in the app",
			Value: "`" + strings.Join(codes, "` `") + "`" + suffix,
		})
	}

	return embed
}
