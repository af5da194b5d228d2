package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"oneclip/internal/autostart"
)

func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Manage launch-at-login registration",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "enable",
			Short: "Start the daemon automatically on login",
			Args:  cobra.NoArgs,
			RunE: func(_ *cobra.Command, _ []string) error {
				ctrl, err := loginController()
				if err != nil {
					return err
				}
				if err := ctrl.Enable(); err != nil {
					return err
				}
				fmt.Println("Launch at login enabled.")
				return nil
			},
		},
		&cobra.Command{
			Use:   "disable",
			Short: "Stop launching the daemon on login",
			Args:  cobra.NoArgs,
			RunE: func(_ *cobra.Command, _ []string) error {
				ctrl, err := loginController()
				if err != nil {
					return err
				}
				if err := ctrl.Disable(); err != nil {
					return err
				}
				fmt.Println("Launch at login disabled.")
				return nil
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show launch-at-login state",
			Args:  cobra.NoArgs,
			RunE: func(_ *cobra.Command, _ []string) error {
				ctrl, err := loginController()
				if err != nil {
					return err
				}
				if ctrl.IsEnabled() {
					fmt.Println("Launch at login: enabled")
				} else {
					fmt.Println("Launch at login: disabled")
				}
				return nil
			},
		},
	)
	return cmd
}

func loginController() (autostart.Autostart, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable path: %w", err)
	}
	return autostart.New(exe)
}
