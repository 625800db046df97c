package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tidelake/lakeacl/internal/config"
	"github.com/tidelake/lakeacl/internal/lakesdk"
	"github.com/tidelake/lakeacl/internal/session"
	"github.com/tidelake/lakeacl/internal/utils"
)

func init() {
	rootCmd.AddCommand(newLoginCmd())
}

func newLoginCmd() *cobra.Command {
	var account string
	var serverURL string
	var quiet bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to a Tidelake analytics account",
		Run: func(cmd *cobra.Command, args []string) {
			// fetched from main/rootCmd/persistentFlags
			configPath := cmd.Flag("config").Value.String()

			if cfg, err := config.LoadValid(configPath); err == nil {
				if !quiet {
					fmt.Println(green.Render("**Already logged in**"))
					logConfig(cfg)
				}
				os.Exit(0)
			}

			if err := utils.ValidateURL(serverURL); err != nil {
				fmt.Printf("%s: %s\n", red.Render("ERROR"), err)
				os.Exit(1)
			}

			var accessKey string

			onAccountSubmit := func(accountInput string) error {
				// The key step validates the account itself; this one just
				// confirms the endpoint answers before asking for a secret.
				return lakesdk.Ping(cmd.Context(), serverURL)
			}

			onKeySubmit := func(accountInput, keyInput string) error {
				_, err := lakesdk.ExchangeKey(cmd.Context(), serverURL, &lakesdk.TokenRequest{
					Account: accountInput,
					Key:     keyInput,
				})
				if err != nil {
					return err
				}
				account = accountInput
				accessKey = keyInput

				time.Sleep(500 * time.Millisecond)
				return nil
			}

			if err := RunLoginTUI(LoginTUIOpts{
				Account:              account,
				ServerURL:            serverURL,
				ConfigPath:           configPath,
				AccountSubmitHandler: onAccountSubmit,
				KeySubmitHandler:     onKeySubmit,
				AccountValidator:     isValidAccount,
				KeyValidator:         isValidKey,
			}); err != nil {
				fmt.Printf("%s: %s\n", red.Render("ERROR"), err)
				os.Exit(1)
			}

			if accessKey == "" {
				fmt.Printf("%s: %s\n", red.Render("ERROR"), "no access key captured")
				os.Exit(1)
			}

			cfg := &config.Config{
				Account:   account,
				ServerURL: serverURL,
				AccessKey: accessKey,
				Path:      configPath,
			}

			if err := cfg.Validate(); err != nil {
				fmt.Printf("%s: %s\n", red.Render("ERROR"), err)
				os.Exit(1)
			}

			if err := cfg.Save(); err != nil {
				fmt.Printf("%s: %s\n", red.Render("ERROR"), err)
				os.Exit(1)
			}

			// Prime the session artifact so the first revoke does not pay
			// for another exchange. Best effort; revoke can mint its own.
			if err := session.Clear(); err == nil {
				_, _ = session.Ensure(cmd.Context(), &session.Options{
					Endpoint: serverURL,
					Account:  account,
					Key:      accessKey,
				})
			}

			if !quiet {
				fmt.Println(green.Render("Logged in"))
				logConfig(cfg)
			}
		},
	}

	cmd.Flags().SortFlags = false
	cmd.Flags().StringVarP(&account, "account", "a", "", "Tidelake analytics account")
	cmd.Flags().StringVarP(&serverURL, "server", "s", config.DefaultServerURL, "url of the Tidelake server")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "disable output")

	return cmd
}

func isValidAccount(account string) bool {
	account = strings.TrimSpace(account)
	return account != "" && !strings.ContainsAny(account, " :,/")
}

func isValidKey(key string) bool {
	return strings.TrimSpace(key) != ""
}
