package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/aethra/catalog-admin/internal/auth"
	"github.com/aethra/catalog-admin/internal/database"
	"github.com/aethra/catalog-admin/internal/models"
	"github.com/aethra/catalog-admin/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	operatorEmail    string
	operatorPassword string
	operatorRole     string
	operatorName     string
)

var operatorCmd = &cobra.Command{
	Use:   "operator",
	Short: "Manage panel operators",
}

var operatorCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an operator",
	Example: `  catalog-admin operator create --email ops@example.com --role editor
  catalog-admin operator create --email root@example.com --role admin --password s3cret-pass`,
	RunE: func(cmd *cobra.Command, args []string) error {
		role := models.Role(strings.ToLower(operatorRole))
		if !role.Valid() {
			return fmt.Errorf("unknown role %q (admin, editor or viewer)", operatorRole)
		}

		password := operatorPassword
		if password == "" {
			password = prompt(bufio.NewReader(os.Stdin), "Password", "")
		}
		if len(password) < 8 {
			return fmt.Errorf("password must be at least 8 characters")
		}

		hash, err := auth.HashPassword(password)
		if err != nil {
			return err
		}

		ops, done, err := openOperators()
		if err != nil {
			return err
		}
		defer done()

		op := &models.Operator{
			Email:        operatorEmail,
			PasswordHash: hash,
			DisplayName:  operatorName,
			Role:         role,
			IsActive:     true,
		}
		if err := ops.Create(cmd.Context(), op); err != nil {
			return err
		}
		logger.Info("operator created", zap.String("operator", op.Email), zap.String("role", string(op.Role)))
		fmt.Printf("Operator created: %s (%s)\n", op.Email, op.Role)
		return nil
	},
}

var operatorListCmd = &cobra.Command{
	Use:   "list",
	Short: "List operators",
	RunE: func(cmd *cobra.Command, args []string) error {
		ops, done, err := openOperators()
		if err != nil {
			return err
		}
		defer done()

		list, err := ops.List(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "EMAIL\tROLE\tACTIVE\tLAST LOGIN")
		for _, op := range list {
			last := "never"
			if op.LastLoginAt != nil {
				last = op.LastLoginAt.Format("2006-01-02 15:04")
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", op.Email, op.Role, models.YesNo(op.IsActive), last)
		}
		return w.Flush()
	},
}

var operatorDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete an operator",
	RunE: func(cmd *cobra.Command, args []string) error {
		ops, done, err := openOperators()
		if err != nil {
			return err
		}
		defer done()

		if err := ops.Delete(cmd.Context(), operatorEmail); err != nil {
			return err
		}
		logger.Info("operator deleted", zap.String("operator", operatorEmail))
		fmt.Printf("Operator deleted: %s\n", operatorEmail)
		return nil
	},
}

func init() {
	operatorCreateCmd.Flags().StringVar(&operatorEmail, "email", "", "operator email (required)")
	operatorCreateCmd.Flags().StringVar(&operatorPassword, "password", "", "password; prompted when empty")
	operatorCreateCmd.Flags().StringVar(&operatorRole, "role", string(models.RoleEditor), "admin, editor or viewer")
	operatorCreateCmd.Flags().StringVar(&operatorName, "name", "", "display name")
	_ = operatorCreateCmd.MarkFlagRequired("email")

	operatorDeleteCmd.Flags().StringVar(&operatorEmail, "email", "", "operator email (required)")
	_ = operatorDeleteCmd.MarkFlagRequired("email")

	operatorCmd.AddCommand(operatorCreateCmd, operatorListCmd, operatorDeleteCmd)
}

// openOperators connects, applies migrations and returns the operator store
func openOperators() (*store.OperatorStore, func(), error) {
	db, err := openDatabase()
	if err != nil {
		return nil, nil, err
	}
	if _, err := database.RunMigrations(db, logger); err != nil {
		closeDatabase(db)
		return nil, nil, fmt.Errorf("migration failed: %w", err)
	}
	return store.NewOperatorStore(db), func() { closeDatabase(db) }, nil
}
