package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"pharmaconnect_core/internal/models"
	"pharmaconnect_core/internal/services/dto"
)

var (
	newJob   dto.CreateJobRequest
	feedback string

	jobsCmd = &cobra.Command{
		Use:   "jobs",
		Short: "Browse, apply to and manage shifts",
	}

	jobsSearchCmd = &cobra.Command{
		Use:   "search",
		Short: "List open shifts (pharmacist) or posted shifts (pharmacy)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printResult(cmd, client.Store.Snapshot().AllJobs)
		},
	}

	jobsMineCmd = &cobra.Command{
		Use:   "mine",
		Short: "List shifts confirmed for the pharmacist",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printResult(cmd, client.Store.Snapshot().MyJobs)
		},
	}

	jobsApplyCmd = &cobra.Command{
		Use:   "apply [job-id]",
		Short: "Apply to a shift",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client.Orchestrator.ApplyToJob(cmd.Context(), args[0])
			return printState(cmd)
		},
	}

	jobsSaveCmd = &cobra.Command{
		Use:   "save [job-id]",
		Short: "Bookmark a shift",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client.Orchestrator.SaveJob(cmd.Context(), args[0])
			return printState(cmd)
		},
	}

	jobsUnsaveCmd = &cobra.Command{
		Use:   "unsave [job-id]",
		Short: "Remove a bookmark",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client.Orchestrator.UnsaveJob(cmd.Context(), args[0])
			return printState(cmd)
		},
	}

	jobsPostCmd = &cobra.Command{
		Use:   "post",
		Short: "Publish a new shift (pharmacy)",
		RunE: func(cmd *cobra.Command, args []string) error {
			client.Orchestrator.PostJob(cmd.Context(), newJob)
			return printState(cmd)
		},
	}

	jobsCompleteCmd = &cobra.Command{
		Use:   "complete [job-id]",
		Short: "Mark a confirmed shift as completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client.Orchestrator.MarkJobCompleted(cmd.Context(), args[0])
			return printState(cmd)
		},
	}

	applicantsCmd = &cobra.Command{
		Use:   "applicants",
		Short: "Manage applicants of a posted shift (pharmacy)",
	}

	applicantsConfirmCmd = &cobra.Command{
		Use:   "confirm [job-id] [applicant-id]",
		Short: "Confirm an applicant and open a conversation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			applicant, err := findApplicant(args[0], args[1])
			if err != nil {
				return err
			}
			client.Orchestrator.ConfirmApplicant(cmd.Context(), args[0], applicant)
			return printState(cmd)
		},
	}

	applicantsDeclineCmd = &cobra.Command{
		Use:   "decline [job-id] [applicant-id]",
		Short: "Decline an applicant",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client.Orchestrator.DeclineApplicant(cmd.Context(), args[0], args[1])
			return printState(cmd)
		},
	}

	applicantsSaveCmd = &cobra.Command{
		Use:   "save [job-id] [applicant-id]",
		Short: "Move an applicant to the saved list",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			applicant, err := findApplicant(args[0], args[1])
			if err != nil {
				return err
			}
			client.Orchestrator.SaveApplicantForLater(cmd.Context(), args[0], applicant)
			return printState(cmd)
		},
	}

	rateCmd = &cobra.Command{
		Use:   "rate",
		Short: "Rate the other side of a completed shift",
	}

	ratePharmacistCmd = &cobra.Command{
		Use:   "pharmacist [job-id] [1-5]",
		Short: "Rate the pharmacist (pharmacy)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rating, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid rating %q: %w", args[1], err)
			}
			client.Orchestrator.RatePharmacist(cmd.Context(), args[0], rating, optional(feedback))
			return printState(cmd)
		},
	}

	ratePharmacyCmd = &cobra.Command{
		Use:   "pharmacy [job-id] [1-5]",
		Short: "Rate the pharmacy (pharmacist)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rating, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid rating %q: %w", args[1], err)
			}
			client.Orchestrator.RatePharmacy(cmd.Context(), args[0], rating, optional(feedback))
			return printState(cmd)
		},
	}
)

func init() {
	jobsCmd.AddCommand(jobsSearchCmd, jobsMineCmd, jobsApplyCmd, jobsSaveCmd, jobsUnsaveCmd, jobsPostCmd, jobsCompleteCmd)
	applicantsCmd.AddCommand(applicantsConfirmCmd, applicantsDeclineCmd, applicantsSaveCmd)
	rateCmd.AddCommand(ratePharmacistCmd, ratePharmacyCmd)

	f := jobsPostCmd.Flags()
	f.StringVar(&newJob.Role, "role", "Locum Pharmacist", "position title")
	f.StringVar(&newJob.Date, "date", "", "shift date, YYYY-MM-DD")
	f.StringVar(&newJob.Time, "time", "", "shift hours, e.g. \"08:00 - 16:00\"")
	f.StringVar(&newJob.Rate, "rate", "", "pay rate, e.g. \"$25/hr\"")
	f.StringVar((*string)(&newJob.FacilityType), "facility", string(models.FacilityTypeRetail), "Retail, Hospital or Clinic")
	f.StringVar((*string)(&newJob.ShiftType), "shift", string(models.ShiftTypeMorning), "Morning, Afternoon, Evening or Night")
	f.StringVar(&newJob.Description, "description", "", "free text")
	f.StringVar(&newJob.LocationAddress, "address", "", "defaults to the pharmacy address")
	f.StringVar(&newJob.LocationCity, "city", "", "defaults to the city part of the address")

	for _, cmd := range []*cobra.Command{ratePharmacistCmd, ratePharmacyCmd} {
		cmd.Flags().StringVar(&feedback, "feedback", "", "optional comment")
	}
}

// findApplicant ищет кандидата среди откликов и сохранённых
func findApplicant(jobID, applicantID string) (models.Applicant, error) {
	job, ok := client.Store.Snapshot().FindJob(jobID)
	if !ok {
		return models.Applicant{}, fmt.Errorf("job %s not found", jobID)
	}
	for _, list := range [][]models.Applicant{job.Applicants, job.SavedApplicants} {
		for _, a := range list {
			if a.ID == applicantID {
				return a, nil
			}
		}
	}
	return models.Applicant{}, fmt.Errorf("applicant %s not found for job %s", applicantID, jobID)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
