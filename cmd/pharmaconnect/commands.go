package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"pharmaconnect_core/internal/app"
	"pharmaconnect_core/internal/config"
	"pharmaconnect_core/internal/logger"
	"pharmaconnect_core/internal/orchestrator"
)

// annotationNoRestore - команде не нужна восстановленная сессия
const annotationNoRestore = "no-restore"

var (
	client *app.App

	rootCmd = &cobra.Command{
		Use:           "pharmaconnect",
		Short:         "PharmaConnect client: locum shifts for pharmacists and pharmacies",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			logger.Init(cfg.App.Env)

			notifier := orchestrator.NotifierFunc(func(n orchestrator.Notice) {
				fmt.Fprintf(cmd.ErrOrStderr(), "[%s] %s: %s\n", n.Level, n.Title, n.Message)
			})
			client, err = app.New(cfg, orchestrator.WithNotifier(notifier))
			if err != nil {
				return err
			}
			if cmd.Annotations[annotationNoRestore] == "" {
				client.Start(cmd.Context())
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return closeClient()
		},
	}
)

func init() {
	rootCmd.AddCommand(
		loginCmd, signupCmd, logoutCmd, statusCmd, retryCmd, watchCmd, metricsCmd,
		jobsCmd, applicantsCmd, rateCmd,
		documentsCmd, contactCmd, verifyCmd, addressCmd, verifyLicenseCmd,
		messagesCmd,
	)
}

func closeClient() error {
	if client == nil {
		return nil
	}
	err := client.Close()
	client = nil
	return err
}

// ============================================
// Вывод
// ============================================

var errWorkflowFailed = errors.New("workflow failed")

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printResult выводит v и возвращает ошибку, если сценарий оставил
// сообщение об ошибке в состоянии
func printResult(cmd *cobra.Command, v interface{}) error {
	if err := writeJSON(cmd.OutOrStdout(), v); err != nil {
		return err
	}
	if msg := client.Store.Snapshot().Error; msg != nil {
		return fmt.Errorf("%w: %s", errWorkflowFailed, *msg)
	}
	return nil
}

func printState(cmd *cobra.Command) error {
	return printResult(cmd, client.Store.Snapshot())
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
