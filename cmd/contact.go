package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Zachkp/portfolio/internal/config"
	"github.com/Zachkp/portfolio/internal/contact"
	"github.com/Zachkp/portfolio/internal/metrics"
)

//nolint:gochecknoglobals // Cobra boilerplate
var contactName string

//nolint:gochecknoglobals // Cobra boilerplate
var contactEmail string

//nolint:gochecknoglobals // Cobra boilerplate
var contactMessage string

//nolint:gochecknoglobals // Cobra boilerplate
var contactRelayURL string

//nolint:gochecknoglobals // Cobra boilerplate
var contactCmd = &cobra.Command{
	Use:   "contact",
	Short: "Send a contact message through the relay",
	Long: `Send a contact message the way the site's contact form does.

The message goes to --relay-url (default CONTACT_RELAY_URL). Without a relay URL
it is delivered in process with the configured mail provider.

Example:
  portfolio contact --name "Ada" --email ada@example.com --message "Hello"`,
	Args: cobra.NoArgs,
	RunE: runContact,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(contactCmd)
	contactCmd.Flags().StringVar(&contactName, "name", "", "Sender name")
	contactCmd.Flags().StringVar(&contactEmail, "email", "", "Sender email address")
	contactCmd.Flags().StringVar(&contactMessage, "message", "", "Message body")
	contactCmd.Flags().StringVar(&contactRelayURL, "relay-url", "", "Relay base URL (default CONTACT_RELAY_URL)")
}

func runContact(cmd *cobra.Command, args []string) (err error) {
	var cfg config.Config
	cfg, err = loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	relayURL := contactRelayURL
	if relayURL == "" {
		relayURL = cfg.ContactRelayURL
	}

	var submitter contact.Submitter
	if relayURL != "" {
		submitter = contact.NewRelayClient(relayURL, cfg.ContentRESTKey)
	} else {
		err = cfg.ValidateMail()
		if err != nil {
			return err
		}
		submitter, _, err = newRelay(cfg, logger, metrics.NewNop())
		if err != nil {
			return err
		}
	}

	form := contact.NewForm(submitter, logger, nil)
	form.SetAll(contact.Submission{Name: contactName, Email: contactEmail, Message: contactMessage})

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	err = form.Submit(ctx)
	if errors.Is(err, contact.ErrInvalidSubmission) {
		err = errors.Wrap(err, "name, a valid email, and message are required")
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), form.StatusMessage())
	return err
}
