// Command secret-relay runs the anonymous message relay bot.
//
// Usage:
//
//	export BOT_TOKEN="your-bot-token"
//	go run ./cmd/secret-relay
//
// Variables may also be placed in a .env file in the working directory.
// SETTINGS_PATH selects the settings file; it defaults to config.json.
//
// Then, as a server administrator, run /setup to pick the target channel.
// Anyone can now DM the bot to post anonymously.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	"github.com/oklahomer/go-kasumi/logger"
	"github.com/oklahomer/go-sarah/v4"

	relay "github.com/oklahomer/go-sarah-secret-relay"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Debugf("No .env file loaded: %+v", err)
	}

	token := os.Getenv("BOT_TOKEN")
	if token == "" {
		token = os.Getenv("DISCORD_TOKEN")
	}
	if token == "" {
		fmt.Fprintln(os.Stderr, "BOT_TOKEN environment variable is required")
		os.Exit(1)
	}

	settingsPath := os.Getenv("SETTINGS_PATH")
	if settingsPath == "" {
		settingsPath = "config.json"
	}

	// A broken settings file is fatal. There is nothing sensible to fall back to.
	settings, err := relay.NewSettingsManager(relay.NewFileStore(settingsPath))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load settings: %s\n", err)
		os.Exit(1)
	}

	config := relay.NewConfig()
	config.Token = token
	config.CommandGuildID = os.Getenv("COMMAND_GUILD_ID")

	session, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create Discord session: %s\n", err)
		os.Exit(1)
	}
	session.Identify.Intents = config.Intents

	gate := relay.NewGate(settings, relay.NewCooldownTracker(), session)
	router := relay.NewRouter(gate, relay.NewSetupPanel(settings))

	adapter, err := relay.NewAdapter(config, router, relay.WithSession(session))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create adapter: %s\n", err)
		os.Exit(1)
	}

	bot := sarah.NewBot(adapter)
	sarah.RegisterBot(bot)
	sarah.RegisterCommandProps(relay.NewRelayCommandProps(router))

	// Set up a context that cancels on SIGINT or SIGTERM.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	err = sarah.Run(ctx, sarah.NewConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to run: %s\n", err)
		os.Exit(1)
	}

	logger.Infof("Bot is running. Press Ctrl+C to stop.")

	<-ctx.Done()

	logger.Infof("Shutting down...")
}
