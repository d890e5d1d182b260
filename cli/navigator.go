package main

import (
	"fmt"
	"io"
	"os"

	"github.com/krancour/bizdesk/sdk/authx"
	"golang.org/x/crypto/ssh/terminal"
)

const loginLocation = "login"

// terminalNavigator treats the terminal as the client's only "page". Being
// sent to the login location means telling the human at the keyboard to log
// in again.
type terminalNavigator struct {
	out      io.Writer
	location string
}

func (t *terminalNavigator) Location() string {
	return t.location
}

func (t *terminalNavigator) Navigate(location string) {
	if location == t.location {
		return
	}
	t.location = location
	if location == loginLocation {
		fmt.Fprintln(
			t.out,
			"Your session has ended. Please use `bizdesk login` to continue.",
		)
	}
}

// getNavigator returns a Navigator only when a human is attached to the
// terminal. Scripts get none and see API errors instead.
func getNavigator(location string) authx.Navigator {
	if !terminal.IsTerminal(int(os.Stdin.Fd())) {
		return nil
	}
	return &terminalNavigator{
		out:      os.Stderr,
		location: location,
	}
}
