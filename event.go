package relay

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/oklahomer/go-kasumi/logger"
)

// Event is something the bot has to react to.
// The set of implementations is closed; see the types below.
type Event interface {
	event()
}

// MessageReceived is a message that arrived over the gateway.
type MessageReceived struct {
	Message *discordgo.Message
}

// SetupInvoked is an invocation of the /setup command.
type SetupInvoked struct {
	Member *discordgo.Member
}

// ChannelPickerRequested is a click on the panel's "Set Channel" button.
type ChannelPickerRequested struct{}

// ChannelSelected is a pick in the panel's channel select menu.
type ChannelSelected struct {
	ChannelID string
}

// CooldownFormRequested is a click on the panel's "Set Cooldown" button.
type CooldownFormRequested struct{}

// CooldownSubmitted is a submission of the cooldown form.
type CooldownSubmitted struct {
	Minutes string
}

// InfoRequested is a click on the panel's "Info & Help" button.
type InfoRequested struct{}

func (MessageReceived) event()        {}
func (SetupInvoked) event()           {}
func (ChannelPickerRequested) event() {}
func (ChannelSelected) event()        {}
func (CooldownFormRequested) event()  {}
func (CooldownSubmitted) event()      {}
func (InfoRequested) event()          {}

// InteractionToEvent converts a Discord interaction to the corresponding Event.
// ErrUnknownInteraction is returned for interactions this bot does not own.
func InteractionToEvent(i *discordgo.Interaction) (Event, error) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		if i.ApplicationCommandData().Name == SetupCommandName {
			return SetupInvoked{Member: i.Member}, nil
		}

	case discordgo.InteractionMessageComponent:
		data := i.MessageComponentData()
		switch data.CustomID {
		case setChannelButtonID:
			return ChannelPickerRequested{}, nil

		case setCooldownButtonID:
			return CooldownFormRequested{}, nil

		case infoButtonID:
			return InfoRequested{}, nil

		case channelSelectID:
			if len(data.Values) == 0 {
				return nil, fmt.Errorf("%w: no channel selected", ErrUnknownInteraction)
			}
			return ChannelSelected{ChannelID: data.Values[0]}, nil
		}

	case discordgo.InteractionModalSubmit:
		data := i.ModalSubmitData()
		if data.CustomID == cooldownModalID {
			value, ok := textInputValue(data.Components, cooldownMinutesInputID)
			if !ok {
				return nil, fmt.Errorf("%w: cooldown form has no %s input", ErrUnknownInteraction, cooldownMinutesInputID)
			}
			return CooldownSubmitted{Minutes: value}, nil
		}
	}

	return nil, ErrUnknownInteraction
}

func textInputValue(components []discordgo.MessageComponent, customID string) (string, bool) {
	for _, component := range components {
		switch c := component.(type) {
		case *discordgo.ActionsRow:
			if value, ok := textInputValue(c.Components, customID); ok {
				return value, true
			}

		case *discordgo.TextInput:
			if c.CustomID == customID {
				return c.Value, true
			}
		}
	}

	return "", false
}

// Reply is what the bot answers to an Event.
// Direct is set for direct messages and Interaction for interactions.
type Reply struct {
	Direct      *discordgo.MessageSend
	Interaction *discordgo.InteractionResponse
}

// Router dispatches each Event to the Gate or the SetupPanel.
type Router struct {
	gate  *Gate
	panel *SetupPanel
}

// NewRouter creates a new Router.
func NewRouter(gate *Gate, panel *SetupPanel) *Router {
	return &Router{
		gate:  gate,
		panel: panel,
	}
}

// Route handles the given Event and returns the reply to deliver, if any.
// Errors raised by the setup panel are rendered as replies rather than returned.
func (r *Router) Route(ctx context.Context, ev Event) *Reply {
	switch e := ev.(type) {
	case MessageReceived:
		outcome := r.gate.Handle(ctx, e.Message)
		if outcome.Verdict != VerdictIgnored {
			logger.Debugf("Direct message handled: %s", outcome.Verdict)
		}
		if outcome.Reply == nil {
			return nil
		}
		return &Reply{Direct: outcome.Reply}

	case SetupInvoked:
		return r.interaction(r.panel.Open(e.Member))

	case ChannelPickerRequested:
		return &Reply{Interaction: r.panel.ChannelPicker()}

	case ChannelSelected:
		return r.interaction(r.panel.SelectChannel(e.ChannelID))

	case CooldownFormRequested:
		return &Reply{Interaction: r.panel.CooldownForm()}

	case CooldownSubmitted:
		return r.interaction(r.panel.SubmitCooldown(e.Minutes))

	case InfoRequested:
		return &Reply{Interaction: r.panel.Info()}

	default:
		logger.Warnf("Unexpected event %#v", ev)
		return nil
	}
}

func (r *Router) interaction(resp *discordgo.InteractionResponse, err error) *Reply {
	if err != nil {
		logger.Warnf("Setup panel failed: %+v", err)
		return &Reply{Interaction: r.panel.ErrorResponse(err)}
	}

	return &Reply{Interaction: resp}
}
