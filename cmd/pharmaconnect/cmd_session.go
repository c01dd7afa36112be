package main

import (
	"github.com/spf13/cobra"

	"pharmaconnect_core/internal/models"
	"pharmaconnect_core/internal/state"
)

var (
	loginEmail    string
	loginPassword string

	signupRole string
	signupName string

	loginCmd = &cobra.Command{
		Use:         "login",
		Short:       "Log in and load the session for the account role",
		Annotations: map[string]string{annotationNoRestore: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Orchestrator.Login(cmd.Context(), loginEmail, loginPassword); err != nil {
				_ = printState(cmd)
				return err
			}
			return printState(cmd)
		},
	}

	signupCmd = &cobra.Command{
		Use:         "signup",
		Short:       "Create an account (pharmacist or pharmacy)",
		Annotations: map[string]string{annotationNoRestore: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			err := client.Orchestrator.Signup(cmd.Context(), models.UserRole(signupRole), signupName, loginEmail, loginPassword)
			if err != nil {
				_ = printState(cmd)
				return err
			}
			return printState(cmd)
		},
	}

	logoutCmd = &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			client.Orchestrator.Logout(cmd.Context())
			return printState(cmd)
		},
	}

	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Print the restored session state",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printState(cmd)
		},
	}

	retryCmd = &cobra.Command{
		Use:   "retry",
		Short: "Clear the offline flag and reload user data",
		RunE: func(cmd *cobra.Command, args []string) error {
			client.Orchestrator.RetryConnection(cmd.Context())
			return printState(cmd)
		},
	}

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Keep the session fresh and print every state change until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			unsubscribe := client.Store.Subscribe(func(s state.State) {
				_ = writeJSON(out, s)
			})
			defer unsubscribe()

			client.Orchestrator.OnAppForeground(cmd.Context())
			<-client.Worker.Start(cmd.Context())
			return nil
		},
	}

	metricsCmd = &cobra.Command{
		Use:   "metrics",
		Short: "Print client metrics collected during session restore",
		RunE: func(cmd *cobra.Command, args []string) error {
			return client.Metrics.WriteText(cmd.OutOrStdout())
		},
	}
)

func init() {
	for _, cmd := range []*cobra.Command{loginCmd, signupCmd} {
		cmd.Flags().StringVar(&loginEmail, "email", "", "account email")
		cmd.Flags().StringVar(&loginPassword, "password", "", "account password")
		_ = cmd.MarkFlagRequired("email")
		_ = cmd.MarkFlagRequired("password")
	}
	signupCmd.Flags().StringVar(&signupRole, "role", string(models.UserRolePharmacist), "pharmacist or pharmacy")
	signupCmd.Flags().StringVar(&signupName, "name", "", "full name or pharmacy name")
	_ = signupCmd.MarkFlagRequired("name")
}
