package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "plantscan",
	Short: "Command line client for the plant backend",
	Long: `plantscan talks to a running plant backend: it uploads photos for a full scan,
lists and removes stored scans, and calls the Plant.id proxy routes directly.

Settings are read from flags, PLANTSCAN_* environment variables or $HOME/.plantscan.yaml.`,
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.plantscan.yaml)")
	rootCmd.PersistentFlags().String("server", "http://localhost:5000", "Base URL of the plant backend")
	rootCmd.PersistentFlags().String("token", "", "Supabase access token used for the scan routes")
	rootCmd.PersistentFlags().Int("retries", 3, "Retries for idempotent requests")
	rootCmd.PersistentFlags().Duration("timeout", defaultTimeout, "Per request timeout")

	_ = viper.BindPFlag("server", rootCmd.PersistentFlags().Lookup("server"))
	_ = viper.BindPFlag("token", rootCmd.PersistentFlags().Lookup("token"))
	_ = viper.BindPFlag("retries", rootCmd.PersistentFlags().Lookup("retries"))
	_ = viper.BindPFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".plantscan")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("plantscan")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Error reading config file: %s\n", err)
		}
	}
}

// newClientFromConfig builds an API client from the merged flag, env and file settings.
func newClientFromConfig() *apiClient {
	return newAPIClient(clientConfig{
		BaseURL:  viper.GetString("server"),
		Token:    viper.GetString("token"),
		RetryMax: viper.GetInt("retries"),
		Timeout:  viper.GetDuration("timeout"),
	})
}
