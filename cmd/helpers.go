package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/manav03panchal/creatorbook/internal/errors"
	"github.com/manav03panchal/creatorbook/internal/report"
)

// nowFunc is the clock used to resolve relative dates.
var nowFunc = time.Now

// promptConfirmation asks a yes/no question on the terminal. Without a
// terminal the answer must be given with --yes.
func promptConfirmation(prompt string, yes bool) (bool, error) {
	if yes {
		return true, nil
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, errors.ErrConfirmRequired
	}
	fmt.Fprint(os.Stderr, prompt)
	response, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		// Empty input means no
		return false, nil
	}
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes", nil
}

// resolveID matches a full id or a unique suffix or prefix of one, as
// printed in list output.
func resolveID(input string, ids []string, notFound *errors.NotFoundError) (string, error) {
	input = strings.TrimSpace(input)
	var match string
	for _, id := range ids {
		if id == input {
			return id, nil
		}
		if len(input) >= 4 && (strings.HasSuffix(id, input) || strings.HasPrefix(id, input)) {
			if match != "" {
				return "", errors.NewUserErrorWithField("id", input, "ambiguous id",
					"Use more characters of the id.")
			}
			match = id
		}
	}
	if match == "" {
		return "", errors.NewNotFoundError(notFound.Kind, input)
	}
	return match, nil
}

// parseDay resolves a date flag relative to now.
func parseDay(field, s string) (string, error) {
	return report.ParseDay(field, s, nowFunc())
}

// changed reports whether a flag was set on the command line.
func changed(cmd *cobra.Command, name string) bool {
	return cmd.Flags().Changed(name)
}

// stringPtr returns &s when the flag was set.
func stringPtr(cmd *cobra.Command, name, s string) *string {
	if !changed(cmd, name) {
		return nil
	}
	return &s
}

// printDeleted reports a completed deletion.
func printDeleted(kind, id string) error {
	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintStatus("deleted", id, nil)
	}
	ctx.CLIFormatter().Success(kind + " deleted")
	return nil
}
