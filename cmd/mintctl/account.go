package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/GoSim-25-26J-441/go-mint-studio/internal/artists/domain"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/availability"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/bootstrap"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/session"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/views"
)

// dashboardSession is a dashboard view bound to the CLI's saved session.
type dashboardSession struct {
	*views.Dashboard
	rdb *redis.Client
}

func (d *dashboardSession) Close() {
	d.Dashboard.Close()
	_ = d.rdb.Close()
}

func openDashboard(ctx context.Context) (*dashboardSession, error) {
	sid, err := sessionID()
	if err != nil {
		return nil, err
	}
	rdb, err := bootstrap.OpenRedis(ctx, bootstrap.RedisOptions{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, err
	}

	store := session.NewRedisStore(rdb, cfg.Redis.SessionTTL)
	sess, err := store.Load(ctx, sid)
	if err != nil {
		_ = rdb.Close()
		return nil, err
	}

	dir := newDirectory()
	limiter := rate.NewLimiter(rate.Limit(cfg.Backend.AvailabilityRPS), cfg.Backend.AvailabilityBurst)
	d := views.NewDashboard(sess, store, bootstrap.DirectoryForToken(dir), availability.NewChecker(dir, limiter))
	return &dashboardSession{Dashboard: d, rdb: rdb}, nil
}

// requireLogin fails like the web dashboard does for anonymous sessions.
func requireLogin(d *dashboardSession) error {
	if d.State() != views.Authenticated {
		return fmt.Errorf("please log in to continue (mintctl login)")
	}
	return nil
}

var loginForm domain.LoginForm

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in as an artist",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDashboard(cmd.Context())
		if err != nil {
			return err
		}
		defer d.Close()

		if err := d.Login(cmd.Context(), loginForm); err != nil {
			return userError(d.Snapshot().Message, err)
		}
		return printJSON(cmd.OutOrStdout(), d.Snapshot())
	},
}

var registerForm domain.RegisterForm

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an artist account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDashboard(cmd.Context())
		if err != nil {
			return err
		}
		defer d.Close()

		if err := d.Register(cmd.Context(), registerForm); err != nil {
			return userError(d.Snapshot().Message, err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), d.Snapshot().Message)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the logged-in artist",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDashboard(cmd.Context())
		if err != nil {
			return err
		}
		defer d.Close()

		return d.Logout(cmd.Context())
	},
}

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List or create the logged-in artist's projects",
}

var projectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every project of the logged-in artist",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDashboard(cmd.Context())
		if err != nil {
			return err
		}
		defer d.Close()
		if err := requireLogin(d); err != nil {
			return err
		}

		projects, err := d.Projects(cmd.Context())
		if err != nil {
			return userError(domain.UserMessage(err, "Failed to load projects"), err)
		}
		return printJSON(cmd.OutOrStdout(), projects)
	},
}

var (
	createForm      domain.ProjectForm
	createImagePath string
)

var projectsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Submit a new project for review",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDashboard(cmd.Context())
		if err != nil {
			return err
		}
		defer d.Close()
		if err := requireLogin(d); err != nil {
			return err
		}

		form := createForm
		if createImagePath != "" {
			if form.Image, err = readImage(createImagePath); err != nil {
				return err
			}
		}

		if err := d.CreateProject(cmd.Context(), form); err != nil {
			return userError(d.Snapshot().Message, err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), d.Snapshot().Message)
		return nil
	},
}

func readImage(path string) (*domain.Upload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return &domain.Upload{
		Filename:    filepath.Base(path),
		ContentType: http.DetectContentType(data),
		Data:        data,
	}, nil
}

func init() {
	loginCmd.Flags().StringVar(&loginForm.Email, "email", "", "account email")
	loginCmd.Flags().StringVar(&loginForm.Password, "password", "", "account password")

	registerCmd.Flags().StringVar(&registerForm.Name, "name", "", "artist name")
	registerCmd.Flags().StringVar(&registerForm.Email, "email", "", "account email")
	registerCmd.Flags().StringVar(&registerForm.Mobile, "mobile", "", "mobile number")
	registerCmd.Flags().StringVar(&registerForm.Password, "password", "", "account password")

	f := projectsCreateCmd.Flags()
	f.StringVar(&createForm.ProjectName, "name", "", "project name")
	f.StringVar(&createForm.ProjectSymbol, "symbol", "", "token symbol")
	f.StringVar(&createForm.TotalSupply, "supply", "", "total supply")
	f.StringVar(&createForm.MintPrice, "price", "", "mint price in ETH")
	f.StringVar(&createForm.Royalties, "royalties", "", "royalty percentage")
	f.StringVar(&createForm.ContractOwner, "owner", "", "contract owner address")
	f.StringVar(&createImagePath, "image", "", "path to the project image")

	projectsCmd.AddCommand(projectsListCmd)
	projectsCmd.AddCommand(projectsCreateCmd)
}
