package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"pharmaconnect_core/internal/models"
	"pharmaconnect_core/internal/services/dto"
)

type documentsReport struct {
	Required []models.DocumentKey     `json:"required"`
	Uploaded models.UploadedDocuments `json:"uploaded"`
	Complete bool                     `json:"complete"`
}

var (
	contactPhone string
	contactEmail string
	otpMethod    string

	documentsCmd = &cobra.Command{
		Use:   "documents",
		Short: "Verification documents",
	}

	documentsListCmd = &cobra.Command{
		Use:   "list",
		Short: "List required and approved documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := client.Store.Snapshot()
			return printResult(cmd, documentsReport{
				Required: models.DocumentsForRole(s.UserRole),
				Uploaded: s.UploadedDocuments,
				Complete: s.UploadedDocuments.CompleteFor(s.UserRole),
			})
		},
	}

	documentsUploadCmd = &cobra.Command{
		Use:   "upload [type=path]...",
		Short: "Upload documents that are not uploaded yet, e.g. psz=./psz.pdf",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs := make([]dto.UploadDocumentRequest, 0, len(args))
			for _, arg := range args {
				key, path, ok := strings.Cut(arg, "=")
				if !ok {
					return fmt.Errorf("expected type=path, got %q", arg)
				}
				data, err := readFile(path)
				if err != nil {
					return err
				}
				docs = append(docs, dto.UploadDocumentRequest{
					DocumentType: models.DocumentKey(key),
					FileName:     filepath.Base(path),
					Data:         data,
				})
			}
			client.Orchestrator.UploadDocuments(cmd.Context(), docs)
			return printState(cmd)
		},
	}

	contactCmd = &cobra.Command{
		Use:   "contact",
		Short: "Save contact details and send a verification code",
		RunE: func(cmd *cobra.Command, args []string) error {
			err := client.Orchestrator.CompleteContactInfo(cmd.Context(), contactPhone, contactEmail, models.VerificationMethod(otpMethod))
			if err != nil {
				_ = printState(cmd)
				return err
			}
			return printState(cmd)
		},
	}

	verifyCmd = &cobra.Command{
		Use:   "verify [code]",
		Short: "Confirm the contact with the received code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Orchestrator.VerifyOTP(cmd.Context(), args[0], models.VerificationMethod(otpMethod)); err != nil {
				_ = printState(cmd)
				return err
			}
			return printState(cmd)
		},
	}

	addressCmd = &cobra.Command{
		Use:   "address [address]",
		Short: "Save the pharmacy address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Orchestrator.CompleteAddress(cmd.Context(), args[0]); err != nil {
				_ = printState(cmd)
				return err
			}
			return printState(cmd)
		},
	}

	verifyLicenseCmd = &cobra.Command{
		Use:   "verify-license",
		Short: "Mark the pharmacist license as verified on this device",
		RunE: func(cmd *cobra.Command, args []string) error {
			client.Orchestrator.VerifyLicense(cmd.Context())
			return printState(cmd)
		},
	}
)

func init() {
	documentsCmd.AddCommand(documentsListCmd, documentsUploadCmd)

	contactCmd.Flags().StringVar(&contactPhone, "phone", "", "phone number")
	contactCmd.Flags().StringVar(&contactEmail, "email", "", "email address")
	for _, cmd := range []*cobra.Command{contactCmd, verifyCmd} {
		cmd.Flags().StringVar(&otpMethod, "method", string(models.VerificationMethodEmail), "email or phone")
	}
}
