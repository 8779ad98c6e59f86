package relay

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/oklahomer/go-kasumi/logger"
)

const (
	colorRed    = 0xE74C3C
	colorGreen  = 0x2ECC71
	colorOrange = 0xE67E22
)

// Poster is the subset of *discordgo.Session the Gate needs to deliver a relay.
type Poster interface {
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

var _ Poster = (*discordgo.Session)(nil)

// Verdict tells what the Gate did with a message.
type Verdict int

const (
	// VerdictIgnored means the message did not come from a person via direct message.
	VerdictIgnored Verdict = iota
	// VerdictNotConfigured means no target channel has been set up yet.
	VerdictNotConfigured
	// VerdictOnCooldown means the sender must wait before relaying again.
	VerdictOnCooldown
	// VerdictRejected means the message is not plain text.
	VerdictRejected
	// VerdictUndelivered means the message passed every check but could not be posted.
	VerdictUndelivered
	// VerdictRelayed means the message was posted to the target channel.
	VerdictRelayed
)

// String returns a human-readable name of the verdict.
func (v Verdict) String() string {
	switch v {
	case VerdictIgnored:
		return "ignored"
	case VerdictNotConfigured:
		return "not configured"
	case VerdictOnCooldown:
		return "on cooldown"
	case VerdictRejected:
		return "rejected"
	case VerdictUndelivered:
		return "undelivered"
	case VerdictRelayed:
		return "relayed"
	default:
		return fmt.Sprintf("Verdict(%d)", int(v))
	}
}

// Outcome is the result of Gate.Handle.
type Outcome struct {
	Verdict Verdict

	// Reply is what should be sent back to the sender, or nil when the sender gets no reply.
	Reply *discordgo.MessageSend
}

// settingsReader supplies the current Settings.
// *SettingsManager satisfies this interface.
type settingsReader interface {
	Current() Settings
}

// GateOption defines a function signature for Gate's functional options.
type GateOption func(gate *Gate)

// WithClock replaces the time source used for cooldown calculation.
func WithClock(now func() time.Time) GateOption {
	return func(gate *Gate) {
		gate.now = now
	}
}

// WithColor replaces the function that picks the embed color of each relayed message.
func WithColor(color func() int) GateOption {
	return func(gate *Gate) {
		gate.color = color
	}
}

// Gate validates direct messages and relays the acceptable ones to the configured channel.
type Gate struct {
	settings  settingsReader
	cooldowns *CooldownTracker
	poster    Poster
	now       func() time.Time
	color     func() int
}

// NewGate creates a new Gate.
func NewGate(settings settingsReader, cooldowns *CooldownTracker, poster Poster, options ...GateOption) *Gate {
	gate := &Gate{
		settings:  settings,
		cooldowns: cooldowns,
		poster:    poster,
		now:       time.Now,
		color: func() int {
			return rand.Intn(0xFFFFFF + 1)
		},
	}

	for _, opt := range options {
		opt(gate)
	}

	return gate
}

// Handle runs the given message through the intake checks in order and stops at the first failing one.
// The sender's cooldown is refreshed only when the message was actually posted.
func (g *Gate) Handle(ctx context.Context, m *discordgo.Message) *Outcome {
	if m == nil || m.Author == nil || m.Author.Bot || m.GuildID != "" {
		return &Outcome{Verdict: VerdictIgnored}
	}

	settings := g.settings.Current()
	if !settings.Configured() {
		return &Outcome{
			Verdict: VerdictNotConfigured,
			Reply:   &discordgo.MessageSend{Content: "Sorry, the bot has not been configured by a server administrator yet."},
		}
	}

	userID := m.Author.ID
	release := g.cooldowns.Hold(userID)
	defer release()

	now := g.now()
	if active, remaining := g.cooldowns.IsOnCooldown(userID, now); active {
		seconds := int64(remaining.Round(time.Second) / time.Second)
		return &Outcome{
			Verdict: VerdictOnCooldown,
			Reply: &discordgo.MessageSend{
				Content: fmt.Sprintf("❌ You are on cooldown. Please wait **%dm %ds**.", seconds/60, seconds%60),
			},
		}
	}

	if !isPlainText(m) {
		return &Outcome{
			Verdict: VerdictRejected,
			Reply: &discordgo.MessageSend{
				Embeds: []*discordgo.MessageEmbed{
					{
						Title:       "❌ Message Rejected",
						Description: "Your message was not sent because it contains a link or an attachment. Please send **text only**.",
						Color:       colorRed,
					},
				},
			},
		}
	}

	relayID := uuid.NewString()
	if err := g.post(ctx, settings.ChannelID, m.Content); err != nil {
		switch {
		case errors.Is(err, errUnresolvedChannel):
			logger.Errorf("Relay %s: could not resolve channel %s: %+v", relayID, settings.ChannelID, err)
		case isPermissionError(err):
			logger.Errorf("Relay %s: bot lacks permissions for channel %s: %+v", relayID, settings.ChannelID, err)
		default:
			logger.Errorf("Relay %s: unexpected error while posting to channel %s: %+v", relayID, settings.ChannelID, err)
		}

		return &Outcome{
			Verdict: VerdictUndelivered,
			Reply: &discordgo.MessageSend{
				Embeds: []*discordgo.MessageEmbed{
					{
						Title:       "⚠️ Message Not Delivered",
						Description: "Your message could not be delivered to the server. Please try again later or contact a server administrator.",
						Color:       colorOrange,
					},
				},
			},
		}
	}

	g.cooldowns.Refresh(userID, now, settings.CooldownDuration)
	logger.Infof("Relay %s: message posted to channel %s", relayID, settings.ChannelID)

	return &Outcome{
		Verdict: VerdictRelayed,
		Reply: &discordgo.MessageSend{
			Embeds: []*discordgo.MessageEmbed{
				{
					Title: "✅ Message Sent Successfully!",
					Color: colorGreen,
					Footer: &discordgo.MessageEmbedFooter{
						Text: "~No one will ever know it was you.",
					},
				},
			},
		},
	}
}

var errUnresolvedChannel = errors.New("target channel could not be resolved")

// post sends content to the target channel without any trace of its author.
func (g *Gate) post(ctx context.Context, channelID string, content string) error {
	channel, err := g.poster.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("%w: %w", errUnresolvedChannel, err)
	}
	if channel == nil {
		return errUnresolvedChannel
	}

	_, err = g.poster.ChannelMessageSendComplex(channel.ID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{
			{
				Author:      &discordgo.MessageEmbedAuthor{Name: "Secret Message"},
				Description: content,
				Color:       g.color(),
			},
		},
	}, discordgo.WithContext(ctx))
	return err
}

// isPlainText tells if the message carries nothing but text without links.
// The link check is a plain substring match, not URL parsing.
func isPlainText(m *discordgo.Message) bool {
	if len(m.Attachments) > 0 || len(m.StickerItems) > 0 {
		return false
	}

	if strings.TrimSpace(m.Content) == "" {
		return false
	}

	return !strings.Contains(m.Content, "http://") && !strings.Contains(m.Content, "https://")
}

func isPermissionError(err error) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return false
	}

	if restErr.Response != nil && restErr.Response.StatusCode == http.StatusForbidden {
		return true
	}

	return restErr.Message != nil &&
		(restErr.Message.Code == discordgo.ErrCodeMissingPermissions || restErr.Message.Code == discordgo.ErrCodeMissingAccess)
}
