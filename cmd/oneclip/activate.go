package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"oneclip/internal/license"
)

func newActivateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "activate <license-key>",
		Short: "Activate a license on this machine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			email, _ := cmd.Flags().GetString("email")
			if email == "" {
				return fmt.Errorf("--email is required")
			}

			mgr, err := licenseManager(cfg.LicenseServer(), cfg.LicenseAPIKey())
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			act, err := mgr.Activate(ctx, email, args[0], Version, deviceName(), deviceID())
			if err != nil {
				return fmt.Errorf("activation failed: %w", err)
			}

			fmt.Printf("Activated (%s license)", act.LicenseType)
			if act.ExpiresAt != "" {
				fmt.Printf(", expires %s", act.ExpiresAt)
			}
			fmt.Println(".")
			return nil
		},
	}
	cmd.Flags().String("email", "", "email the license was issued to")
	addConfigFlag(cmd)
	return cmd
}

func newLicenseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "license",
		Short: "Show or remove the stored license activation",
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show the stored activation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			mgr, err := licenseManager(cfg.LicenseServer(), cfg.LicenseAPIKey())
			if err != nil {
				return err
			}
			act, err := mgr.Current()
			if err != nil {
				return err
			}
			if act == nil {
				fmt.Println("Not activated.")
				return nil
			}
			fmt.Printf("License:  %s\n", act.LicenseType)
			fmt.Printf("Email:    %s\n", act.Email)
			if act.ExpiresAt != "" {
				fmt.Printf("Expires:  %s\n", act.ExpiresAt)
			}
			return nil
		},
	}

	deactivate := &cobra.Command{
		Use:   "deactivate",
		Short: "Remove the stored activation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			mgr, err := licenseManager(cfg.LicenseServer(), cfg.LicenseAPIKey())
			if err != nil {
				return err
			}
			if err := mgr.Deactivate(); err != nil {
				return err
			}
			fmt.Println("Deactivated.")
			return nil
		},
	}

	addConfigFlag(status)
	addConfigFlag(deactivate)
	cmd.AddCommand(status, deactivate)
	return cmd
}

func licenseManager(serverURL, apiKey string) (*license.Manager, error) {
	dir, err := stateDir()
	if err != nil {
		return nil, err
	}
	return license.NewManager(license.NewClient(serverURL, apiKey), dir), nil
}

func stateDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	dir := filepath.Join(home, ".oneclip")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create state directory: %w", err)
	}
	return dir, nil
}

// deviceID returns a stable per-machine identifier, generated once and kept
// in the state directory.
func deviceID() string {
	dir, err := stateDir()
	if err != nil {
		return uuid.NewString()
	}
	path := filepath.Join(dir, "device_id")
	if data, err := os.ReadFile(path); err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			return id
		}
	}
	id := uuid.NewString()
	_ = os.WriteFile(path, []byte(id+"\n"), 0600)
	return id
}
