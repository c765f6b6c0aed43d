// Package cli wires the console controllers to a cobra command tree.
package cli

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"hradmin/internal/client"
	"hradmin/internal/platform/config"
	"hradmin/internal/platform/logging"
	"hradmin/internal/platform/money"
)

// session holds what every subcommand needs once flags and env are parsed.
type session struct {
	cfg       config.Console
	logger    *zap.Logger
	api       *client.Client
	formatter *money.Formatter
	jsonOut   bool
}

func NewRootCmd() *cobra.Command {
	s := &session{}
	var (
		apiURL string
		token  string
		locale string
	)

	cmd := &cobra.Command{
		Use:           "hradmin",
		Short:         "HR admin console",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConsole()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("api-url") {
				cfg.APIURL = apiURL
			}
			if flags.Changed("token") {
				cfg.Token = token
			}
			if flags.Changed("locale") {
				cfg.Locale = locale
			}
			return s.init(cfg)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if s.logger != nil {
				_ = s.logger.Sync()
			}
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&apiURL, "api-url", "", "API base URL (overrides HRADMIN_API_URL)")
	pf.StringVar(&token, "token", "", "Bearer token (overrides HRADMIN_TOKEN)")
	pf.StringVar(&locale, "locale", "", "Locale for amounts (overrides HRADMIN_LOCALE)")
	pf.BoolVar(&s.jsonOut, "json", false, "Print JSON instead of text")

	cmd.AddCommand(newEmployeeCmd(s), newPaymentsCmd(s), newTokenCmd())
	return cmd
}

func (s *session) init(cfg config.Console) error {
	logger, err := logging.New("development", cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	s.cfg = cfg
	s.logger = logger
	s.formatter = money.NewFormatter(cfg.Locale)
	s.api = client.New(client.Options{
		BaseURL:         cfg.APIURL,
		Token:           cfg.Token,
		HTTPClient:      &http.Client{Timeout: cfg.Timeout},
		RetryMaxElapsed: cfg.RetryMaxElapsed,
		Logger:          logger,
	})
	return nil
}
