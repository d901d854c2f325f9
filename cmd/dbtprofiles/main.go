package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/robfreedy/dbtprofiles/pkg/adapter"
	"github.com/robfreedy/dbtprofiles/pkg/configs"
	"github.com/robfreedy/dbtprofiles/pkg/json"
	"github.com/robfreedy/dbtprofiles/pkg/logger"

	// Import all available adapters to register them
	_ "github.com/robfreedy/dbtprofiles/pkg/adapter/bigquery"
	_ "github.com/robfreedy/dbtprofiles/pkg/adapter/mysql"
	_ "github.com/robfreedy/dbtprofiles/pkg/adapter/postgres"
	_ "github.com/robfreedy/dbtprofiles/pkg/adapter/snowflake"
)

var version = "0.1.0"

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	viper.SetDefault("profiles_dir", defaultProfilesDir())
	_ = viper.BindEnv("profiles_dir", "DBT_PROFILES_DIR")

	var logLevel string

	root := &cobra.Command{
		Use:   "dbtprofiles",
		Short: "dbtprofiles - typed dbt connection profiles",
		Long: `dbtprofiles turns typed warehouse target configs and global flags into the
profiles.yml document dbt reads its connection profiles from. Target configs
are validated at construction and flattened with duplicate-key detection, so
authoring mistakes surface before dbt ever runs.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logger.Init(logger.Config{Level: logLevel, Encoding: "console"})
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("dbtprofiles v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	root.AddCommand(newListCmd())
	root.AddCommand(newRenderCmd())
	root.AddCommand(newDebugCmd())

	err := root.Execute()
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newListCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available warehouse adapters",
		RunE: func(cmd *cobra.Command, args []string) error {
			if asJSON {
				data, err := json.Marshal(adapter.List())
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}

			fmt.Println("Available adapters:")
			for _, name := range adapter.List() {
				fmt.Printf("  - %s\n", name)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the adapter list as JSON")
	return cmd
}

func newRenderCmd() *cobra.Command {
	var targetFile, globalFile, profileName, targetName, outDir, format string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render profiles.yml from target and global config files",
		Long: `Render a profiles.yml document from a target configs YAML file and an
optional global configs YAML file.

Example:
  dbtprofiles render --target target.yml --global global.yml --profile analytics`,
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := adapter.LoadTargetConfigs(targetFile)
			if err != nil {
				return fmt.Errorf("target configs error: %w", err)
			}

			profile := configs.NewProfile(profileName, targetName, target)
			if globalFile != "" {
				globals, err := configs.LoadGlobalConfigs(globalFile)
				if err != nil {
					return fmt.Errorf("global configs error: %w", err)
				}
				profile.Globals = globals
			}

			ctx := context.WithValue(cmd.Context(), logger.ProfileKey, profileName)
			ctx = context.WithValue(ctx, logger.AdapterKey, target.Type)
			log := logger.WithContext(ctx)
			log.Debug("rendering profile", zap.String("target", targetName))

			if dryRun {
				switch format {
				case "json":
					doc, err := profile.Render()
					if err != nil {
						return err
					}
					data, err := json.MarshalIndent(doc, "", "  ")
					if err != nil {
						return err
					}
					fmt.Println(string(data))
				case "yaml":
					data, err := profile.RenderYAML()
					if err != nil {
						return err
					}
					fmt.Print(string(data))
				default:
					return fmt.Errorf("unknown format %q, want yaml or json", format)
				}
				return nil
			}

			path, err := configs.WriteProfiles(outDir, profile)
			if err != nil {
				return err
			}
			log.Info("profiles written", zap.String("path", path))
			fmt.Printf("wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetFile, "target", "t", "", "Path to target configs YAML file (required)")
	cmd.Flags().StringVarP(&globalFile, "global", "g", "", "Path to global configs YAML file (optional)")
	cmd.Flags().StringVar(&profileName, "profile", "default", "Profile name to render under")
	cmd.Flags().StringVar(&targetName, "target-name", "dev", "Output name for the target")
	cmd.Flags().StringVarP(&outDir, "out", "o", viper.GetString("profiles_dir"), "Directory to write profiles.yml into")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the rendered document instead of writing it")
	cmd.Flags().StringVar(&format, "format", "yaml", "Output format for --dry-run (yaml or json)")
	_ = cmd.MarkFlagRequired("target")

	return cmd
}

func newDebugCmd() *cobra.Command {
	var targetFile string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "debug",
		Short: "Test the connection defined by a target configs file",
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := adapter.LoadTargetConfigs(targetFile)
			if err != nil {
				return fmt.Errorf("target configs error: %w", err)
			}

			// Credentials marshal with secrets redacted.
			if target.Credentials != nil {
				summary, err := yaml.Marshal(target.Credentials)
				if err == nil {
					fmt.Printf("connection:\n%s", summary)
				}
			}

			ctx, cancel := context.WithTimeout(
				context.WithValue(cmd.Context(), logger.AdapterKey, target.Type), timeout)
			defer cancel()

			logger.WithContext(ctx).Debug("checking warehouse connection",
				zap.Duration("timeout", timeout))

			if err := adapter.Ping(ctx, target); err != nil {
				return fmt.Errorf("connection check failed: %w", err)
			}

			fmt.Printf("connection ok: %s\n", target.Type)
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetFile, "target", "t", "", "Path to target configs YAML file (required)")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Connection check timeout")
	_ = cmd.MarkFlagRequired("target")

	return cmd
}

// defaultProfilesDir is where dbt looks for profiles.yml unless overridden.
func defaultProfilesDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".dbt")
	}
	return "."
}
