package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/warp/timesheet-engine/api"
	"github.com/warp/timesheet-engine/timesheet"
)

var (
	tokenUser   string
	tokenTenant string
	tokenRole   string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token",
	Long: `token signs an access token with the configured secret. It does not
check that the user exists; the API does that on every request that
touches the user.`,
	Args: cobra.NoArgs,
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().StringVar(&tokenUser, "user", "", "User id (token subject)")
	tokenCmd.Flags().StringVar(&tokenTenant, "tenant", "", "Tenant id (optional for SUPER_ADMIN)")
	tokenCmd.Flags().StringVar(&tokenRole, "role", string(timesheet.RoleEmployee), "EMPLOYEE, COMPANY_ADMIN or SUPER_ADMIN")
	_ = tokenCmd.MarkFlagRequired("user")
}

func runToken(cmd *cobra.Command, _ []string) error {
	cfg, _, err := bootstrap()
	if err != nil {
		return err
	}

	role, ok := timesheet.ParseRole(tokenRole)
	if !ok {
		return fmt.Errorf("unknown role %q", tokenRole)
	}
	if tokenTenant == "" && !role.CrossTenant() {
		return fmt.Errorf("--tenant is required for role %s", role)
	}

	tokens := api.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL, nil)
	tok, err := tokens.Issue(api.Identity{UserID: tokenUser, TenantID: tokenTenant, Role: role})
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), tok)
	return nil
}
