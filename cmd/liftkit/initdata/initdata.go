package initdata

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/liftkit/crane"
	"github.com/kbukum/liftkit/storage"
)

// NewCmd creates `liftkit init`, which writes a sample initial data file.
func NewCmd() *cobra.Command {
	var (
		dataDir string
		key     string
		format  string
		force   bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a sample initial data file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := storage.Config{BasePath: dataDir, Format: format}
			cfg.ApplyDefaults()
			if err := cfg.Validate(); err != nil {
				return err
			}
			store, err := storage.NewStore(cfg)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			exists, err := store.Exists(ctx, key)
			if err != nil {
				return err
			}
			if exists && !force {
				return fmt.Errorf("initial data %q already exists in %s (use --force to overwrite)", key, store.BasePath())
			}
			if err := store.Save(ctx, key, crane.SampleData()); err != nil {
				return err
			}
			path, _ := store.Path(key)
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s.%s\n", path, cfg.Format)
			return err
		},
	}
	cmd.Flags().StringVarP(&dataDir, "data", "d", storage.DefaultBasePath, "Directory holding data files")
	cmd.Flags().StringVar(&key, "key", crane.DefaultInitialKey, "Storage key of the initial data")
	cmd.Flags().StringVar(&format, "format", storage.DefaultFormat, "File format: json or yaml")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}
