package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/warp/timesheet-engine/timesheet"
)

var seedTenant string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create a demo tenant",
	Long: `seed upserts an admin, an employee, a workspace and a project for one
tenant so the API can be tried out right away. Running it twice is safe.`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedTenant, "tenant", "demo", "Tenant id")
}

// directoryWriter is the part of the sqlite store seed needs.
type directoryWriter interface {
	SaveUser(ctx context.Context, u timesheet.User) error
	SaveWorkspace(ctx context.Context, w timesheet.Workspace) error
	SaveProject(ctx context.Context, p timesheet.Project) error
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}

	store, err := openStore(cfg.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	users, err := seedDirectory(cmd.Context(), store, seedTenant, cfg.Tenant.DefaultBackdateDays)
	if err != nil {
		return err
	}

	log.Info("seeded tenant", slog.String("tenant_id", seedTenant), slog.Int("users", len(users)))
	for _, u := range users {
		fmt.Fprintf(cmd.OutOrStdout(), "%-14s %-24s %s\n", u.Role, u.ID, u.Name)
	}
	return nil
}

func seedDirectory(ctx context.Context, w directoryWriter, tenantID string, backdateDays int) ([]timesheet.User, error) {
	ws := timesheet.Workspace{
		ID:       tenantID + "-warehouse",
		TenantID: tenantID,
		Name:     "Warehouse",
		Status:   timesheet.RecordActive,
	}
	if err := w.SaveWorkspace(ctx, ws); err != nil {
		return nil, fmt.Errorf("seed workspace: %w", err)
	}

	projects := []timesheet.Project{
		{ID: tenantID + "-inventory", TenantID: tenantID, Name: "Inventory", WorkspaceID: ws.ID, Status: timesheet.RecordActive},
		{ID: tenantID + "-general", TenantID: tenantID, Name: "General", Status: timesheet.RecordActive},
	}
	for _, p := range projects {
		if err := w.SaveProject(ctx, p); err != nil {
			return nil, fmt.Errorf("seed project %s: %w", p.ID, err)
		}
	}

	users := []timesheet.User{
		{ID: tenantID + "-admin", TenantID: tenantID, Name: "Demo Admin", Email: "admin@" + tenantID + ".test", Role: timesheet.RoleCompanyAdmin},
		{ID: tenantID + "-employee", TenantID: tenantID, Name: "Demo Employee", Email: "employee@" + tenantID + ".test", Role: timesheet.RoleEmployee},
	}
	for i := range users {
		users[i].Status = timesheet.RecordActive
		users[i].BackdateLimitDays = backdateDays
		if err := w.SaveUser(ctx, users[i]); err != nil {
			return nil, fmt.Errorf("seed user %s: %w", users[i].ID, err)
		}
	}
	return users, nil
}
