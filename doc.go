// Package relay provides an anonymous message relay bot for Discord built on go-sarah.
//
// Users send the bot a direct message; the text is posted to a single
// configured server channel without revealing who wrote it. Each sender
// is subject to a cooldown between successful relays, and messages that
// carry attachments or links are refused. Server administrators choose
// the target channel and the cooldown with the /setup command.
//
// The Adapter bridges go-sarah and discordgo: direct messages become
// sarah.Input and are dispatched to the relay command, while slash
// commands and panel interactions are converted to Event values and
// handled by a Router.
package relay
