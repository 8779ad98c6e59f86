package relay

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
)

func newTestPanel(t *testing.T, settings *Settings, saveFunc func(*Settings) error) (*SetupPanel, *SettingsManager) {
	t.Helper()

	store := &mockSettingsStore{
		loadFunc: func() (*Settings, error) {
			copied := *settings
			return &copied, nil
		},
		saveFunc: saveFunc,
	}
	manager, err := NewSettingsManager(store)
	if err != nil {
		t.Fatalf("Unexpected error: %+v", err)
	}

	return NewSetupPanel(manager), manager
}

func admin() *discordgo.Member {
	return &discordgo.Member{
		User:        &discordgo.User{ID: "admin-1"},
		Permissions: discordgo.PermissionAdministrator | discordgo.PermissionManageChannels,
	}
}

func TestSetupCommand(t *testing.T) {
	command := SetupCommand()

	if command.Name != "setup" {
		t.Errorf("Expected name %q, got %q", "setup", command.Name)
	}

	if command.DefaultMemberPermissions == nil || *command.DefaultMemberPermissions != discordgo.PermissionAdministrator {
		t.Error("Expected the command to default to administrators only")
	}

	if command.DMPermission == nil || *command.DMPermission {
		t.Error("Expected the command to be unavailable in direct messages")
	}
}

func TestSetupPanel_Open(t *testing.T) {
	t.Run("fresh settings", func(t *testing.T) {
		panel, _ := newTestPanel(t, NewSettings(), nil)

		resp, err := panel.Open(admin())
		if err != nil {
			t.Fatalf("Unexpected error: %+v", err)
		}

		if resp.Data.Flags != discordgo.MessageFlagsEphemeral {
			t.Error("Expected the panel to be ephemeral")
		}

		fields := resp.Data.Embeds[0].Fields
		if fields[0].Value != "Not set" {
			t.Errorf("Expected channel %q, got %q", "Not set", fields[0].Value)
		}
		if fields[1].Value != "60 minutes" {
			t.Errorf("Expected cooldown %q, got %q", "60 minutes", fields[1].Value)
		}

		row, ok := resp.Data.Components[0].(discordgo.ActionsRow)
		if !ok {
			t.Fatalf("Expected an ActionsRow, got %T", resp.Data.Components[0])
		}

		var ids []string
		for _, c := range row.Components {
			ids = append(ids, c.(discordgo.Button).CustomID)
		}
		expected := []string{setChannelButtonID, setCooldownButtonID, infoButtonID}
		if strings.Join(ids, ",") != strings.Join(expected, ",") {
			t.Errorf("Expected buttons %v, got %v", expected, ids)
		}
	})

	t.Run("configured settings", func(t *testing.T) {
		panel, _ := newTestPanel(t, &Settings{ChannelID: "123", CooldownDuration: 90 * time.Minute}, nil)

		resp, err := panel.Open(admin())
		if err != nil {
			t.Fatalf("Unexpected error: %+v", err)
		}

		fields := resp.Data.Embeds[0].Fields
		if fields[0].Value != "<#123>" {
			t.Errorf("Expected channel %q, got %q", "<#123>", fields[0].Value)
		}
		if fields[1].Value != "90 minutes" {
			t.Errorf("Expected cooldown %q, got %q", "90 minutes", fields[1].Value)
		}
	})

	t.Run("non-administrator", func(t *testing.T) {
		panel, _ := newTestPanel(t, NewSettings(), nil)

		member := &discordgo.Member{Permissions: discordgo.PermissionManageChannels}
		_, err := panel.Open(member)
		if !errors.Is(err, ErrMissingPermissions) {
			t.Errorf("Expected ErrMissingPermissions, got %+v", err)
		}
	})

	t.Run("outside a guild", func(t *testing.T) {
		panel, _ := newTestPanel(t, NewSettings(), nil)

		_, err := panel.Open(nil)
		if !errors.Is(err, ErrMissingPermissions) {
			t.Errorf("Expected ErrMissingPermissions, got %+v", err)
		}
	})
}

func TestSetupPanel_ChannelPicker(t *testing.T) {
	panel, _ := newTestPanel(t, NewSettings(), nil)

	resp := panel.ChannelPicker()

	menu, ok := resp.Data.Components[0].(discordgo.ActionsRow).Components[0].(discordgo.SelectMenu)
	if !ok {
		t.Fatal("Expected a select menu")
	}
	if menu.MenuType != discordgo.ChannelSelectMenu {
		t.Errorf("Expected a channel select menu, got %d", menu.MenuType)
	}
	if len(menu.ChannelTypes) != 1 || menu.ChannelTypes[0] != discordgo.ChannelTypeGuildText {
		t.Errorf("Expected text channels only, got %v", menu.ChannelTypes)
	}
	if menu.CustomID != channelSelectID {
		t.Errorf("Expected custom id %q, got %q", channelSelectID, menu.CustomID)
	}
}

func TestSetupPanel_SelectChannel(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		panel, manager := newTestPanel(t, NewSettings(), nil)

		resp, err := panel.SelectChannel("123")
		if err != nil {
			t.Fatalf("Unexpected error: %+v", err)
		}

		if manager.Current().ChannelID != "123" {
			t.Errorf("Expected channel %q, got %q", "123", manager.Current().ChannelID)
		}
		if resp.Data.Content != "✅ Secret messages will now be sent to <#123>." {
			t.Errorf("Unexpected confirmation %q", resp.Data.Content)
		}
	})

	t.Run("save failure", func(t *testing.T) {
		panel, manager := newTestPanel(t, NewSettings(), func(*Settings) error {
			return errors.New("read-only file system")
		})

		if _, err := panel.SelectChannel("123"); err == nil {
			t.Fatal("Expected save error to be returned")
		}
		if manager.Current().Configured() {
			t.Error("Channel must not change when saving fails")
		}
	})
}

func TestSetupPanel_CooldownForm(t *testing.T) {
	panel, _ := newTestPanel(t, NewSettings(), nil)

	resp := panel.CooldownForm()

	if resp.Type != discordgo.InteractionResponseModal {
		t.Errorf("Expected a modal, got %d", resp.Type)
	}
	if resp.Data.CustomID != cooldownModalID {
		t.Errorf("Expected custom id %q, got %q", cooldownModalID, resp.Data.CustomID)
	}

	input, ok := resp.Data.Components[0].(discordgo.ActionsRow).Components[0].(discordgo.TextInput)
	if !ok {
		t.Fatal("Expected a text input")
	}
	if input.CustomID != cooldownMinutesInputID || input.Style != discordgo.TextInputShort {
		t.Errorf("Unexpected text input %#v", input)
	}
}

func TestSetupPanel_SubmitCooldown(t *testing.T) {
	tests := []struct {
		input    string
		reply    string
		expected time.Duration
	}{
		{input: "60", reply: "✅ Cooldown has been set to **60 minutes**.", expected: 3600 * time.Second},
		{input: " 5 ", reply: "✅ Cooldown has been set to **5 minutes**.", expected: 5 * time.Minute},
		{input: "0", reply: "✅ Cooldown has been set to **0 minutes**.", expected: 0},
		{input: "-1", reply: "❌ Duration cannot be negative.", expected: DefaultCooldownDuration},
		{input: "abc", reply: "❌ Please enter a valid number for minutes.", expected: DefaultCooldownDuration},
		{input: "1.5", reply: "❌ Please enter a valid number for minutes.", expected: DefaultCooldownDuration},
		{input: "", reply: "❌ Please enter a valid number for minutes.", expected: DefaultCooldownDuration},
		{input: "999999999999999", reply: "❌ Please enter a valid number for minutes.", expected: DefaultCooldownDuration},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			saved := false
			panel, manager := newTestPanel(t, NewSettings(), func(*Settings) error {
				saved = true
				return nil
			})

			resp, err := panel.SubmitCooldown(tt.input)
			if err != nil {
				t.Fatalf("Unexpected error: %+v", err)
			}

			if resp.Data.Content != tt.reply {
				t.Errorf("Expected reply %q, got %q", tt.reply, resp.Data.Content)
			}
			if manager.Current().CooldownDuration != tt.expected {
				t.Errorf("Expected cooldown %s, got %s", tt.expected, manager.Current().CooldownDuration)
			}
			if strings.HasPrefix(tt.reply, "❌") && saved {
				t.Error("Invalid input must not be saved")
			}
		})
	}

	t.Run("save failure", func(t *testing.T) {
		panel, _ := newTestPanel(t, NewSettings(), func(*Settings) error {
			return errors.New("read-only file system")
		})

		if _, err := panel.SubmitCooldown("10"); err == nil {
			t.Error("Expected save error to be returned")
		}
	})
}

func TestSetupPanel_Info(t *testing.T) {
	t.Run("default links", func(t *testing.T) {
		panel, _ := newTestPanel(t, NewSettings(), nil)

		embed := panel.Info().Data.Embeds[0]
		if embed.Title != "Information & Help" {
			t.Errorf("Unexpected title %q", embed.Title)
		}
		if len(embed.Fields) != 2 || embed.Fields[0].Value != "[AdityaLF](https://github.com/AdityaLF)" {
			t.Errorf("Unexpected fields %#v", embed.Fields)
		}
	})

	t.Run("custom links", func(t *testing.T) {
		manager, _ := NewSettingsManager(&mockSettingsStore{})
		panel := NewSetupPanel(manager, InfoLink{Name: "Docs", Label: "Read me", URL: "https://example.com"})

		embed := panel.Info().Data.Embeds[0]
		if len(embed.Fields) != 1 || embed.Fields[0].Value != "[Read me](https://example.com)" {
			t.Errorf("Unexpected fields %#v", embed.Fields)
		}
	})
}

func TestSetupPanel_ErrorResponse(t *testing.T) {
	panel, _ := newTestPanel(t, NewSettings(), nil)

	t.Run("missing permissions", func(t *testing.T) {
		resp := panel.ErrorResponse(ErrMissingPermissions)
		if resp.Data.Content != "❌ You must be an administrator to use this command." {
			t.Errorf("Unexpected content %q", resp.Data.Content)
		}
	})

	t.Run("other error", func(t *testing.T) {
		resp := panel.ErrorResponse(errors.New("disk full"))
		if resp.Data.Content != "An unexpected error occurred: disk full" {
			t.Errorf("Unexpected content %q", resp.Data.Content)
		}
		if resp.Data.Flags != discordgo.MessageFlagsEphemeral {
			t.Error("Expected the error to be ephemeral")
		}
	})
}
