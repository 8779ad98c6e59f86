package relay

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/oklahomer/go-kasumi/logger"
)

// SetupCommandName is the name of the slash command that opens the setup panel.
const SetupCommandName = "setup"

// Custom IDs of the setup panel components.
const (
	setChannelButtonID     = "setup:channel"
	setCooldownButtonID    = "setup:cooldown"
	infoButtonID           = "setup:info"
	channelSelectID        = "setup:channel_select"
	cooldownModalID        = "setup:cooldown_modal"
	cooldownMinutesInputID = "setup:cooldown_minutes"
)

const (
	colorPanel = 0x2F3136
	colorBlue  = 0x3498DB
)

// maxCooldownMinutes is the largest cooldown, in minutes, that fits in a time.Duration.
const maxCooldownMinutes = math.MaxInt64 / int64(time.Minute)

// InfoLink is a titled link shown in the setup panel's information embed.
type InfoLink struct {
	Name  string `json:"name" yaml:"name"`
	Label string `json:"label" yaml:"label"`
	URL   string `json:"url" yaml:"url"`
}

// DefaultInfoLinks returns the links shown when no others are given.
func DefaultInfoLinks() []InfoLink {
	return []InfoLink{
		{Name: "GitHub Profile", Label: "AdityaLF", URL: "https://github.com/AdityaLF"},
		{Name: "Support Me", Label: "Buy Me a Coffee", URL: "https://ko-fi.com/adityaf"},
	}
}

// settingsEditor reads and updates Settings.
// *SettingsManager satisfies this interface.
type settingsEditor interface {
	settingsReader
	SetChannel(channelID string) error
	SetCooldown(d time.Duration) error
}

// SetupCommand returns the /setup application command definition.
// Only administrators see it by default and it cannot be used in direct messages.
func SetupCommand() *discordgo.ApplicationCommand {
	permissions := int64(discordgo.PermissionAdministrator)
	dmPermission := false

	return &discordgo.ApplicationCommand{
		Name:                     SetupCommandName,
		Description:              "Configure the secret message bot.",
		DefaultMemberPermissions: &permissions,
		DMPermission:             &dmPermission,
	}
}

// SetupPanel builds the administrator-facing configuration panel and applies its changes.
type SetupPanel struct {
	settings settingsEditor
	links    []InfoLink
}

// NewSetupPanel creates a new SetupPanel.
// When no links are given, DefaultInfoLinks is used.
func NewSetupPanel(settings settingsEditor, links ...InfoLink) *SetupPanel {
	if len(links) == 0 {
		links = DefaultInfoLinks()
	}

	return &SetupPanel{
		settings: settings,
		links:    links,
	}
}

// Open shows the current configuration along with the three panel actions.
// ErrMissingPermissions is returned unless the invoking guild member is an administrator.
func (p *SetupPanel) Open(member *discordgo.Member) (*discordgo.InteractionResponse, error) {
	if member == nil || member.Permissions&discordgo.PermissionAdministrator == 0 {
		return nil, ErrMissingPermissions
	}

	settings := p.settings.Current()

	channelText := "Not set"
	if settings.Configured() {
		channelText = channelMention(settings.ChannelID)
	}
	cooldownText := fmt.Sprintf("%d minutes", int64(settings.CooldownDuration/time.Minute))

	return ephemeral(&discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{
			{
				Title:       "⚙️ Secret Message Bot Setup",
				Description: "Use the buttons below to configure the bot for this server.",
				Color:       colorPanel,
				Fields: []*discordgo.MessageEmbedField{
					{Name: "Current Channel", Value: channelText, Inline: false},
					{Name: "Current Cooldown", Value: cooldownText, Inline: false},
				},
			},
		},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    "Set Channel",
						Style:    discordgo.SuccessButton,
						CustomID: setChannelButtonID,
						Emoji:    &discordgo.ComponentEmoji{Name: "🔧"},
					},
					discordgo.Button{
						Label:    "Set Cooldown",
						Style:    discordgo.DangerButton,
						CustomID: setCooldownButtonID,
						Emoji:    &discordgo.ComponentEmoji{Name: "⏱️"},
					},
					discordgo.Button{
						Label:    "Info & Help",
						Style:    discordgo.PrimaryButton,
						CustomID: infoButtonID,
						Emoji:    &discordgo.ComponentEmoji{Name: "📜"},
					},
				},
			},
		},
	}), nil
}

// ChannelPicker offers a select menu limited to text channels.
func (p *SetupPanel) ChannelPicker() *discordgo.InteractionResponse {
	return ephemeral(&discordgo.InteractionResponseData{
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.SelectMenu{
						MenuType:     discordgo.ChannelSelectMenu,
						CustomID:     channelSelectID,
						Placeholder:  "Select a channel to send messages to...",
						ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
					},
				},
			},
		},
	})
}

// SelectChannel stores the chosen channel as the relay target.
func (p *SetupPanel) SelectChannel(channelID string) (*discordgo.InteractionResponse, error) {
	if err := p.settings.SetChannel(channelID); err != nil {
		return nil, err
	}

	logger.Infof("Relay target channel set to %s", channelID)
	return ephemeralText(fmt.Sprintf("✅ Secret messages will now be sent to %s.", channelMention(channelID))), nil
}

// CooldownForm asks for the cooldown in minutes.
func (p *SetupPanel) CooldownForm() *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: cooldownModalID,
			Title:    "Set Message Cooldown",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:    cooldownMinutesInputID,
							Label:       "Cooldown Duration (in minutes)",
							Style:       discordgo.TextInputShort,
							Placeholder: "e.g., 60 for 1 hour",
						},
					},
				},
			},
		},
	}
}

// SubmitCooldown validates the submitted number of minutes and stores it.
// Invalid input is reported back without touching the settings.
func (p *SetupPanel) SubmitCooldown(raw string) (*discordgo.InteractionResponse, error) {
	minutes, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || minutes > maxCooldownMinutes {
		return ephemeralText("❌ Please enter a valid number for minutes."), nil
	}
	if minutes < 0 {
		return ephemeralText("❌ Duration cannot be negative."), nil
	}

	if err := p.settings.SetCooldown(time.Duration(minutes) * time.Minute); err != nil {
		return nil, err
	}

	logger.Infof("Relay cooldown set to %d minutes", minutes)
	return ephemeralText(fmt.Sprintf("✅ Cooldown has been set to **%d minutes**.", minutes)), nil
}

// Info shows the attribution and help links.
func (p *SetupPanel) Info() *discordgo.InteractionResponse {
	fields := make([]*discordgo.MessageEmbedField, 0, len(p.links))
	for _, link := range p.links {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   link.Name,
			Value:  fmt.Sprintf("[%s](%s)", link.Label, link.URL),
			Inline: false,
		})
	}

	return ephemeral(&discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{
			{
				Title:       "Information & Help",
				Description: "Here's some important information and useful links for you",
				Color:       colorBlue,
				Fields:      fields,
			},
		},
	})
}

// ErrorResponse renders an error raised while handling the panel.
// Missing administrator permission gets its own message.
func (p *SetupPanel) ErrorResponse(err error) *discordgo.InteractionResponse {
	if errors.Is(err, ErrMissingPermissions) {
		return ephemeralText("❌ You must be an administrator to use this command.")
	}

	return ephemeralText(fmt.Sprintf("An unexpected error occurred: %s", err.Error()))
}

func channelMention(channelID string) string {
	return "<#" + channelID + ">"
}

func ephemeral(data *discordgo.InteractionResponseData) *discordgo.InteractionResponse {
	data.Flags = discordgo.MessageFlagsEphemeral
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	}
}

func ephemeralText(content string) *discordgo.InteractionResponse {
	return ephemeral(&discordgo.InteractionResponseData{Content: content})
}
