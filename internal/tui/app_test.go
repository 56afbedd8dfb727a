package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/loopwire/acpbridge/internal/adminauth"
)

func TestPassphraseGateRejectsWrongPassphrase(t *testing.T) {
	hash, err := adminauth.HashPassphrase("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassphrase() error = %v", err)
	}
	app := NewApp("http://127.0.0.1:0", hash)

	for _, r := range "wrong" {
		app.handlePassphraseKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	app.handlePassphraseKey(tea.KeyMsg{Type: tea.KeyEnter})

	if app.authenticated {
		t.Error("expected authentication to fail on a wrong passphrase")
	}
	if app.err == nil {
		t.Error("expected an error to be set after a failed attempt")
	}
}

func TestPassphraseGateAcceptsCorrectPassphrase(t *testing.T) {
	hash, err := adminauth.HashPassphrase("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassphrase() error = %v", err)
	}
	app := NewApp("http://127.0.0.1:0", hash)

	for _, r := range "correct horse battery staple" {
		app.handlePassphraseKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	app.handlePassphraseKey(tea.KeyMsg{Type: tea.KeyEnter})

	if !app.authenticated {
		t.Error("expected authentication to succeed on the correct passphrase")
	}
	if app.screen != ScreenMain {
		t.Errorf("screen = %v, want ScreenMain", app.screen)
	}
}

func TestPassphraseBackspace(t *testing.T) {
	hash, _ := adminauth.HashPassphrase("x")
	app := NewApp("http://127.0.0.1:0", hash)

	app.handlePassphraseKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})
	app.handlePassphraseKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'b'}})
	app.handlePassphraseKey(tea.KeyMsg{Type: tea.KeyBackspace})

	if app.passphraseInput != "a" {
		t.Errorf("passphraseInput = %q, want %q", app.passphraseInput, "a")
	}
}
