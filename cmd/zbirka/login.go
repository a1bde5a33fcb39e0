package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func (c *cli) newLoginCmd() *cobra.Command {
	var key string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Exchange the access key for a token on a server",
		Long: `Log in to the server given by --remote (or remote in config.yaml).
The token is saved to config.yaml so later commands act on the server.`,
		Args: args(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			remote := c.cfg.GetString(cfgKeyRemote)
			if remote == "" {
				return errNeedsRemote
			}

			if key == "" {
				fmt.Fprint(c.errOut, "Access key: ")
				line, err := bufio.NewReader(c.in).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("reading access key: %w", err)
				}
				key = strings.TrimSpace(line)
			}
			if key == "" {
				return usageError{fmt.Errorf("access key required")}
			}

			cl, err := c.newClient(remote)
			if err != nil {
				return err
			}
			token, err := cl.Login(cmd.Context(), c.cfg.GetString(cfgKeyClientName), key)
			if err != nil {
				return err
			}

			if err := saveCredentials(c.cfg, c.configDir, remote, token); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Logged in to %s\n", remote)
			return nil
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "access key (prompted for when omitted)")
	return cmd
}

func (c *cli) newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the saved token and forget it",
		Args:  args(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			remote := c.cfg.GetString(cfgKeyRemote)
			if remote == "" {
				return errNeedsRemote
			}

			cl, err := c.newClient(remote)
			if err != nil {
				return err
			}
			if err := cl.Logout(cmd.Context()); err != nil {
				return err
			}

			if err := saveCredentials(c.cfg, c.configDir, remote, ""); err != nil {
				return err
			}
			fmt.Fprintln(c.out, "Logged out")
			return nil
		},
	}
}
