package relay

import (
	"context"

	"github.com/oklahomer/go-sarah/v4"
)

// RelayCommandIdentifier is the identifier of the relay command.
const RelayCommandIdentifier = "relay"

// NewRelayCommandProps builds the go-sarah command that runs every direct message through the Router.
// The command's reply is delivered to the sender's private channel.
func NewRelayCommandProps(router *Router) *sarah.CommandProps {
	return sarah.NewCommandPropsBuilder().
		BotType(DISCORD).
		Identifier(RelayCommandIdentifier).
		MatchFunc(isDirectMessage).
		Func(relayFunc(router)).
		Instruction("Send me a direct message and I will post it anonymously.").
		MustBuild()
}

func relayFunc(router *Router) func(context.Context, sarah.Input) (*sarah.CommandResponse, error) {
	return func(ctx context.Context, input sarah.Input) (*sarah.CommandResponse, error) {
		if !isDirectMessage(input) {
			return nil, nil
		}
		in := input.(*Input)

		reply := router.Route(ctx, MessageReceived{Message: in.Event.Message})
		if reply == nil || reply.Direct == nil {
			return nil, nil
		}

		return NewResponse(input, reply.Direct)
	}
}

func isDirectMessage(input sarah.Input) bool {
	in, ok := input.(*Input)
	if !ok || in.Event == nil || in.Event.Message == nil {
		return false
	}

	return in.Event.GuildID == ""
}
