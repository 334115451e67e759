package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mezonai/poldrop/client"
	"github.com/mezonai/poldrop/config"
	"github.com/mezonai/poldrop/distributor"
	"github.com/mezonai/poldrop/errors"
	"github.com/mezonai/poldrop/exception"
	"github.com/mezonai/poldrop/logx"
	"github.com/mezonai/poldrop/monitoring"
	"github.com/mezonai/poldrop/utils"
	"github.com/spf13/cobra"
)

type DistributeConfig struct {
	Amount         float64
	Wallets        string
	Test           bool
	PrivateKeyFile string
	RPCURL         string
	LogDir         string
	MetricsAddr    string
}

var distributeConfig DistributeConfig

var distributeCmd = &cobra.Command{
	Use:   "distribute [flags]",
	Short: "Send the same amount of native token to every address in a wallet file",
	Long: `Sends --amount of the native token to each address listed in --wallets,
which is either an all_wallets_*.json or a public_addresses_*.json file.
The sender key is read from the private key file. Before anything is sent
the sender balance must cover every transfer plus gas; with --test the
transfers are only simulated and logged.`,
	Example: `  poldrop distribute --amount 0.25 --wallets public_addresses_20240101_120000.json [--test]`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := distributeConfig
		cfg.applyDefaults(appConfig)
		if !cmd.Flags().Changed("amount") {
			return errors.NewError(errors.ErrCodeInvalidAmount, errors.ErrMsgAmountRequired)
		}
		return distribute(cmd.Context(), cmd, cfg)
	},
}

func init() {
	rootCmd.AddCommand(distributeCmd)

	distributeCmd.Flags().Float64VarP(&distributeConfig.Amount, "amount", "a", 0, "amount of native token to send to each wallet (required)")
	distributeCmd.Flags().StringVarP(&distributeConfig.Wallets, "wallets", "w", "", "recipient file: aggregate or addresses-only JSON (required)")
	distributeCmd.Flags().BoolVarP(&distributeConfig.Test, "test", "t", false, "simulate transfers without sending")
	distributeCmd.Flags().StringVarP(&distributeConfig.PrivateKeyFile, "private-key-file", "f", "", "sender private key file (default from config)")
	distributeCmd.Flags().StringVarP(&distributeConfig.RPCURL, "rpc-url", "u", "", "JSON-RPC endpoint (default from config)")
	distributeCmd.Flags().StringVar(&distributeConfig.LogDir, "log-dir", "", "directory for the distribution log (default from config)")
	distributeCmd.Flags().StringVar(&distributeConfig.MetricsAddr, "metrics-addr", "", "serve prometheus metrics on this address, e.g. :9100")
}

func (c *DistributeConfig) applyDefaults(cfg *config.Config) {
	if c.PrivateKeyFile == "" {
		c.PrivateKeyFile = cfg.Files.PrivateKeyFile
	}
	if c.RPCURL == "" {
		c.RPCURL = cfg.Network.RPCURL
	}
	if c.LogDir == "" {
		c.LogDir = cfg.Files.LogDir
	}
	if c.MetricsAddr == "" {
		c.MetricsAddr = cfg.Metrics.ListenAddr
	}
}

func distribute(parent context.Context, cmd *cobra.Command, cfg DistributeConfig) error {
	symbol := appConfig.Network.Symbol
	if cfg.Amount <= 0 {
		return errors.Newf(errors.ErrCodeInvalidAmount, errors.ErrMsgAmountNotPositive, symbol)
	}
	amount, err := utils.FloatToWei(cfg.Amount)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidAmount, err, "Invalid amount")
	}
	if amount.IsZero() {
		return errors.Newf(errors.ErrCodeInvalidAmount, errors.ErrMsgAmountNotPositive, symbol)
	}

	key, err := distributor.LoadPrivateKey(cfg.PrivateKeyFile)
	if err != nil {
		return err
	}
	recipients, err := distributor.LoadRecipients(cfg.Wallets)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Using wallet file: %s (%d recipients)\n", cfg.Wallets, len(recipients))

	// Interrupting the process is the only way to stop a run; the journal
	// already holds every completed item.
	ctx := parent
	if ctx == nil {
		ctx = context.Background()
	}

	if cfg.MetricsAddr != "" {
		srv := startMetricsServer(cfg.MetricsAddr)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	cli, err := client.NewClient(ctx, client.Config{
		Endpoint:             cfg.RPCURL,
		ReceiptTimeout:       appConfig.Network.ReceiptTimeout,
		ReceiptPollInterval:  appConfig.Network.ReceiptPollInterval,
		MaxRequestsPerSecond: appConfig.Network.MaxRequestsPerSecond,
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeNetworkUnreachable, err, fmt.Sprintf(errors.ErrMsgNetworkUnreachable, cfg.RPCURL))
	}
	defer cli.Close()

	d := distributor.New(cli, distributor.Config{
		ChainID:     uint64(appConfig.Network.ChainID),
		GasLimit:    appConfig.Network.GasLimit,
		Symbol:      symbol,
		LogDir:      cfg.LogDir,
		CallTimeout: appConfig.Network.CallTimeout,
	}, out)

	report, err := d.Run(ctx, &distributor.Request{
		Key:        key,
		Recipients: recipients,
		Source:     cfg.Wallets,
		Amount:     amount,
		Simulate:   cfg.Test,
	})
	if err != nil {
		return err
	}

	logx.Info("DISTRIBUTE", fmt.Sprintf("Run %s finished: sent=%d simulated=%d failed=%d log=%s",
		report.RunID, report.Sent, report.Simulated, report.Failed, report.LogPath))
	if report.Failed > 0 {
		fmt.Fprintf(out, "%d of %d transfers failed, see the log for details.\n", report.Failed, len(report.Records))
	}
	return nil
}

func startMetricsServer(addr string) *http.Server {
	monitoring.InitMetrics()
	mux := http.NewServeMux()
	monitoring.RegisterMetrics(mux)
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	exception.SafeGo("MetricsServer", func() {
		logx.Info("METRICS", "Serving metrics on ", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Error("METRICS", "Metrics server stopped: ", err)
		}
	})
	return srv
}
