package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hassan123789/go-companion/internal/companion"
)

func init() {
	companionCmd := &cobra.Command{
		Use:   "companion",
		Short: "Manage companions",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a companion",
		RunE:  runCompanionCreate,
	}
	createCmd.Flags().String("user", "", "Owner user id (required)")
	createCmd.Flags().String("name", "", "Companion name (required)")
	createCmd.Flags().String("description", "", "Short description (required)")
	createCmd.Flags().String("category", "", "Category name (required)")
	createCmd.Flags().String("instructions-file", "", "File with persona instructions (required)")
	createCmd.Flags().String("seed-file", "", "File with the seed conversation (required)")
	createCmd.Flags().String("src", "", "Avatar image URL")
	for _, name := range []string{"user", "name", "description", "category", "instructions-file", "seed-file"} {
		_ = createCmd.MarkFlagRequired(name)
	}

	companionCmd.AddCommand(createCmd)
	rootCmd.AddCommand(companionCmd)
}

func runCompanionCreate(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	userID, _ := flags.GetString("user")
	name, _ := flags.GetString("name")
	description, _ := flags.GetString("description")
	categoryName, _ := flags.GetString("category")
	instructionsFile, _ := flags.GetString("instructions-file")
	seedFile, _ := flags.GetString("seed-file")
	src, _ := flags.GetString("src")

	instructions, err := os.ReadFile(instructionsFile)
	if err != nil {
		return fmt.Errorf("read instructions: %w", err)
	}
	seed, err := os.ReadFile(seedFile)
	if err != nil {
		return fmt.Errorf("read seed: %w", err)
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	category, err := a.Companions.CreateCategory(ctx, categoryName)
	if err != nil {
		return err
	}

	created, err := a.Companions.Create(ctx, &companion.Companion{
		UserID:       userID,
		Src:          src,
		Name:         name,
		Description:  description,
		Instructions: string(instructions),
		Seed:         string(seed),
		CategoryID:   category.ID,
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(created)
}
