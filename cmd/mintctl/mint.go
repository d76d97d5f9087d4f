package main

import (
	"errors"
	"fmt"

	"github.com/asaskevich/EventBus"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/GoSim-25-26J-441/go-mint-studio/internal/bootstrap"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/mint"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/views"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/wallet"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/wallet/contract"
)

type mintFlags struct {
	Amount      int64
	DisplayName string
	QuoteOnly   bool
}

var mintOpts mintFlags

var mintCmd = &cobra.Command{
	Use:   "mint <path> | mint <artist> <project>",
	Short: "Mint tokens of a live project with the configured wallet",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		w, err := newWallet()
		if err != nil {
			return err
		}
		defer w.Close()

		dir := newDirectory()
		bus := EventBus.New()
		settings := bootstrap.MintSettings{
			TargetChainID:   cfg.Chain.TargetChainID,
			TargetChainName: cfg.Chain.TargetChainName,
			ConfirmTimeout:  cfg.Mint.ConfirmTimeout,
		}

		g := views.NewGallery(uuid.NewString(), dir, bootstrap.NewMintFactory(bootstrap.SharedWallet(w), dir, bus, settings))
		defer g.Close()

		progress := func(ev mint.Event) {
			line := ev.State.String()
			if ev.TxHash != "" {
				line += " " + ev.TxHash
			}
			if ev.Message != "" {
				line += ": " + ev.Message
			}
			fmt.Fprintln(cmd.ErrOrStderr(), line)
		}
		if err := bus.Subscribe(mint.Topic(g.ID()), progress); err != nil {
			return fmt.Errorf("subscribe to mint events: %w", err)
		}
		defer func() { _ = bus.Unsubscribe(mint.Topic(g.ID()), progress) }()

		if err := g.Mount(ctx, projectPath(args)); err != nil {
			return errors.New(g.Snapshot().Message)
		}
		page := g.Page()
		if page == nil {
			return errors.New("not a project page")
		}
		ctrl := page.Mint()
		if ctrl == nil {
			return fmt.Errorf("project is not mintable (panel: %s)", page.Panel())
		}

		if err := ctrl.Connect(ctx); err != nil {
			return userError(ctrl.Snapshot().Message, err)
		}
		if err := ctrl.SetAmount(mintOpts.Amount); err != nil {
			return err
		}

		if mintOpts.QuoteOnly {
			return printJSON(cmd.OutOrStdout(), ctrl.Quote(ctx))
		}

		mintErr := ctrl.Mint(ctx, mintOpts.DisplayName)
		snap := ctrl.Snapshot()
		if err := printJSON(cmd.OutOrStdout(), snap); err != nil {
			return err
		}
		return userError(snap.Message, mintErr)
	},
}

func init() {
	mintCmd.Flags().Int64VarP(&mintOpts.Amount, "amount", "n", 1, "number of tokens to mint")
	mintCmd.Flags().StringVar(&mintOpts.DisplayName, "name", "", "display name recorded with the mint")
	mintCmd.Flags().BoolVar(&mintOpts.QuoteOnly, "quote", false, "print the price for --amount and exit")
}

func newWallet() (*wallet.EthereumAdapter, error) {
	mintABI, err := contract.ParseMintABI()
	if err != nil {
		return nil, fmt.Errorf("parse mint ABI: %w", err)
	}
	return wallet.NewEthereumAdapter(wallet.Options{
		RPCURLs:        cfg.Chain.RPCURLs,
		InitialChainID: cfg.Chain.TargetChainID,
		KeystorePath:   cfg.Chain.KeystorePath,
		Passphrase:     cfg.Chain.Passphrase,
		ContractABI:    mintABI,
	}), nil
}

// userError prefers the message the view shows over the raw error.
func userError(message string, err error) error {
	if err == nil {
		return nil
	}
	if message != "" {
		return errors.New(message)
	}
	return err
}
