package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/indicators/internal/config"
	"github.com/JonMunkholm/indicators/internal/store/pgstore"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the PostgreSQL schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.loadConfig()
			if err != nil {
				return err
			}
			if !strings.EqualFold(cfg.Database.Driver, config.DriverPostgres) {
				return fmt.Errorf("migrate needs STORE_DRIVER=postgres, got %q", cfg.Database.Driver)
			}

			ctx := cmd.Context()
			st, err := pgstore.Open(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Migrate(ctx); err != nil {
				return err
			}
			rootOpts.printer(cmd.OutOrStdout()).line("schema applied")
			return nil
		},
	}
}
