package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTerminalNavigator(t *testing.T) {
	out := &bytes.Buffer{}
	navigator := &terminalNavigator{out: out, location: "whoami"}
	require.Equal(t, "whoami", navigator.Location())

	navigator.Navigate(loginLocation)
	require.Equal(t, loginLocation, navigator.Location())
	require.Contains(t, out.String(), "bizdesk login")

	// Already there; nothing more is printed
	out.Reset()
	navigator.Navigate(loginLocation)
	require.Empty(t, out.String())
}
