package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an admin account",
	Run: func(cmd *cobra.Command, args []string) {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		firstName, _ := cmd.Flags().GetString("first-name")
		lastName, _ := cmd.Flags().GetString("last-name")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		a, err := newApp(ctx)
		if err != nil {
			log.Fatalf("Failed to initialize: %v", err)
		}
		defer a.close(ctx)

		user, err := a.serviceManager.Auth().CreateAdmin(ctx, email, password, firstName, lastName)
		if err != nil {
			log.Fatalf("Failed to create admin: %v", err)
		}
		fmt.Printf("Created admin %s (%s)\n", user.Email, user.ID)
	},
}

func init() {
	createAdminCmd.Flags().StringP("email", "e", "", "Admin email")
	createAdminCmd.Flags().StringP("password", "p", "", "Admin password")
	createAdminCmd.Flags().String("first-name", "", "First name")
	createAdminCmd.Flags().String("last-name", "", "Last name")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")
	rootCmd.AddCommand(createAdminCmd)
}
