// path: volunteer_cmd.go
package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/AWS-First-Cloud-Journey/Disaster-Rescue-Relief-Platform/database"
	"github.com/AWS-First-Cloud-Journey/Disaster-Rescue-Relief-Platform/models"
)

var (
	volEmail string
	volName  string
	volPhone string
	volAdmin bool
)

var volunteerCmd = &cobra.Command{
	Use:   "volunteer",
	Short: "Manage volunteer records",
}

var volunteerAddCmd = &cobra.Command{
	Use:   "add <user-id>",
	Short: "Create or update a volunteer profile",
	Long: `Writes the profile of the user with the given id, as set by the upstream
authenticator. New volunteers start unverified; --admin grants the admin role.`,
	Args: cobra.ExactArgs(1),
	RunE: runVolunteerAdd,
}

func init() {
	volunteerAddCmd.Flags().StringVar(&volEmail, "email", "", "Email address (required)")
	volunteerAddCmd.Flags().StringVar(&volName, "name", "", "Full name")
	volunteerAddCmd.Flags().StringVar(&volPhone, "phone", "", "Phone number")
	volunteerAddCmd.Flags().BoolVar(&volAdmin, "admin", false, "Grant the admin role")

	volunteerCmd.AddCommand(volunteerAddCmd)
	rootCmd.AddCommand(volunteerCmd)
}

func runVolunteerAdd(cmd *cobra.Command, args []string) error {
	v, err := newVolunteer(args[0], volEmail, volName, volPhone, volAdmin)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := database.Connect(ctx, cfg.Mongo, logger); err != nil {
		return fmt.Errorf("db connect failed: %w", err)
	}
	defer func() { _ = database.Disconnect(context.Background()) }()

	wctx, cancel := context.WithTimeout(ctx, cfg.StoreTimeout)
	defer cancel()
	if err := database.Volunteers().Upsert(wctx, v); err != nil {
		return err
	}
	logger.Info("volunteer saved", zap.String("volunteer_id", v.ID), zap.Bool("admin", volAdmin))
	fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", v.ID)
	return nil
}

func newVolunteer(id, email, name, phone string, admin bool) (models.Volunteer, error) {
	id, email = strings.TrimSpace(id), strings.TrimSpace(email)
	if id == "" {
		return models.Volunteer{}, fmt.Errorf("user id is required")
	}
	if email == "" {
		return models.Volunteer{}, fmt.Errorf("--email is required")
	}
	v := models.Volunteer{
		ID:          id,
		Email:       email,
		FullName:    strings.TrimSpace(name),
		PhoneNumber: strings.TrimSpace(phone),
	}
	if admin {
		v.Groups = []string{models.AdminGroup}
	}
	return v, nil
}
