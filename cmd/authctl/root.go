package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/userauth/userauth-go/internal/client"
)

const defaultServer = "http://localhost:3000"

// rootConfig holds the flags shared by every subcommand.
type rootConfig struct {
	server      string
	sessionPath string
	timeout     time.Duration
}

// NewRootCmd creates the root command for the authctl CLI.
func NewRootCmd() *cobra.Command {
	cfg := &rootConfig{}

	cmd := &cobra.Command{
		Use:          "authctl",
		Short:        "Register, log in and log out against the auth API",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfg.server, "server", defaultServer, "auth API base URL")
	cmd.PersistentFlags().StringVar(&cfg.sessionPath, "session", "", "session file path (default: user config dir)")
	cmd.PersistentFlags().DurationVar(&cfg.timeout, "timeout", 10*time.Second, "request timeout")

	cmd.AddCommand(newRegisterCmd(cfg))
	cmd.AddCommand(newLoginCmd(cfg))
	cmd.AddCommand(newLogoutCmd(cfg))
	cmd.AddCommand(newStatusCmd(cfg))

	return cmd
}

func (cfg *rootConfig) client() (*client.Client, error) {
	path := cfg.sessionPath
	if path == "" {
		p, err := client.DefaultSessionPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return client.New(cfg.server, client.NewFileSessionStore(path)), nil
}

func (cfg *rootConfig) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, cfg.timeout)
}

// credentials holds the flags of register and login.
type credentials struct {
	email    string
	password string
}

func (c *credentials) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&c.email, "email", "", "account email")
	cmd.Flags().StringVar(&c.password, "password", "", "account password (read from stdin when empty)")
	_ = cmd.MarkFlagRequired("email")
}

// resolve reads the password from in when the flag was not given.
func (c *credentials) resolve(in io.Reader) error {
	if c.password != "" {
		return nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("reading password: %w", err)
	}
	c.password = strings.TrimRight(line, "\r\n")
	if c.password == "" {
		return errors.New("password is required")
	}
	return nil
}

func newRegisterCmd(cfg *rootConfig) *cobra.Command {
	creds := &credentials{}

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := creds.resolve(cmd.InOrStdin()); err != nil {
				return err
			}
			c, err := cfg.client()
			if err != nil {
				return err
			}
			ctx, cancel := cfg.context(cmd)
			defer cancel()

			resp, err := c.Register(ctx, creds.email, creds.password)
			if err != nil {
				return describe(err)
			}
			cmd.Printf("%s: %s\n", resp.Message, resp.User.Email)
			return nil
		},
	}
	creds.bind(cmd)
	return cmd
}

func newLoginCmd(cfg *rootConfig) *cobra.Command {
	creds := &credentials{}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := creds.resolve(cmd.InOrStdin()); err != nil {
				return err
			}
			c, err := cfg.client()
			if err != nil {
				return err
			}
			ctx, cancel := cfg.context(cmd)
			defer cancel()

			resp, err := c.Login(ctx, creds.email, creds.password)
			if err != nil {
				return describe(err)
			}
			cmd.Println(resp.Message)
			return nil
		},
	}
	creds.bind(cmd)
	return cmd
}

func newLogoutCmd(cfg *rootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and discard the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := cfg.client()
			if err != nil {
				return err
			}
			ctx, cancel := cfg.context(cmd)
			defer cancel()

			resp, err := c.Logout(ctx)
			if err != nil {
				return describe(err)
			}
			cmd.Println(resp.Message)
			return nil
		},
	}
}

func newStatusCmd(cfg *rootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether a session is stored and who it belongs to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := cfg.client()
			if err != nil {
				return err
			}
			sess, err := c.Session()
			if err != nil {
				return err
			}
			if !sess.IsAuthenticated() {
				cmd.Println("not logged in")
				return nil
			}

			ctx, cancel := cfg.context(cmd)
			defer cancel()

			me, err := c.Me(ctx)
			if err != nil {
				var apiErr *client.APIError
				if errors.As(err, &apiErr) {
					cmd.Printf("session for %s is no longer valid: %s\n", sess.Email, apiErr.Message)
					return nil
				}
				return err
			}
			cmd.Printf("logged in as %s (registered %s)\n", me.Email, me.CreatedAt.Format(time.RFC3339))
			return nil
		},
	}
}

// describe appends per-field validation messages to API errors.
func describe(err error) error {
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || len(apiErr.Fields) == 0 {
		return err
	}
	parts := make([]string, 0, len(apiErr.Fields))
	for _, field := range slices.Sorted(maps.Keys(apiErr.Fields)) {
		parts = append(parts, field+": "+apiErr.Fields[field])
	}
	return fmt.Errorf("%s (%s)", apiErr.Message, strings.Join(parts, ", "))
}
