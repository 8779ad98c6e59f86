package relay

import "github.com/bwmarrin/discordgo"

// Config contains configuration variables for the relay Adapter.
type Config struct {
	// Token is the Discord bot token used for authentication.
	Token string `json:"token" yaml:"token"`

	// Intents declares the Gateway Intents the bot requires.
	// Direct messages and their content are required to relay anything.
	Intents discordgo.Intent `json:"intents" yaml:"intents"`

	// CommandGuildID limits the /setup command registration to a single guild.
	// An empty value registers the command globally.
	CommandGuildID string `json:"command_guild_id" yaml:"command_guild_id"`

	// Presence is the "playing" status shown once the bot is ready.
	// An empty value leaves the presence untouched.
	Presence string `json:"presence" yaml:"presence"`
}

// NewConfig creates and returns a new Config instance with default settings.
// Token is empty and must be set before use.
func NewConfig() *Config {
	return &Config{
		Token:          "",
		Intents:        discordgo.IntentsGuilds | discordgo.IntentsDirectMessages | discordgo.IntentsMessageContent,
		CommandGuildID: "",
		Presence:       "Receiving Secret Messages | DM me!",
	}
}
