package main

import (
	"context"
	"fmt"

	"github.com/jonathan/cv-builder/internal/config"
	"github.com/jonathan/cv-builder/internal/logging"
	"github.com/jonathan/cv-builder/internal/store"
	"github.com/spf13/cobra"
)

// openWorkspace opens the local document store. The caller closes it.
func openWorkspace(ctx context.Context, cfg *config.Config, logger logging.Logger) (*store.Service, func() error, error) {
	repo, err := store.OpenSQLite(ctx, cfg.Workspace.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open workspace %s: %w", cfg.Workspace.Path, err)
	}
	svc := store.NewService(repo, store.ServiceConfig{CacheTTL: cfg.Cache.TTL, Logger: logger})
	return svc, repo.Close, nil
}

var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save a CV document to the local workspace",
	RunE:  runSave,
}

var (
	saveDoc  documentFlags
	saveName string
	saveID   string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the CVs in the local workspace",
	RunE:  runList,
}

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a CV from the local workspace",
	RunE:  runDelete,
}

var deleteID string

func init() {
	addDocumentFlags(saveCmd, &saveDoc)
	saveCmd.Flags().StringVarP(&saveName, "name", "n", "", "Document name (default: the contact's name)")
	saveCmd.Flags().StringVar(&saveID, "id", "", "Overwrite the document with this id")

	deleteCmd.Flags().StringVar(&deleteID, "id", "", "Document id (required)")
	_ = deleteCmd.MarkFlagRequired("id")

	rootCmd.AddCommand(saveCmd, listCmd, deleteCmd)
}

func runSave(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cv, err := readDocument(saveDoc.in)
	if err != nil {
		return err
	}
	settings, err := readSettings(saveDoc.settings, saveDoc.template)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	svc, closeFn, err := openWorkspace(ctx, cfg, newLogger(cfg))
	if err != nil {
		return err
	}
	defer closeFn()

	id, err := svc.Save(ctx, store.LocalUser, saveName, *cv, settings, saveID)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", labelStyle.Render("Saved"), valueStyle.Render(id))
	return nil
}

func runList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	svc, closeFn, err := openWorkspace(ctx, cfg, newLogger(cfg))
	if err != nil {
		return err
	}
	defer closeFn()

	cvs, err := svc.List(ctx, store.LocalUser)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if len(cvs) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No saved CVs. Use 'cv_builder save --in cv.json' to add one."))
		return nil
	}
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Saved CVs (%d)", len(cvs))))
	for _, cv := range cvs {
		fmt.Fprintf(w, "%s %s %s\n",
			labelStyle.Render(cv.ID),
			valueStyle.Render(cv.Name),
			mutedStyle.Render(cv.Settings.Template+", updated "+cv.UpdatedAt.Local().Format("2006-01-02 15:04")))
	}
	return nil
}

func runDelete(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	svc, closeFn, err := openWorkspace(ctx, cfg, newLogger(cfg))
	if err != nil {
		return err
	}
	defer closeFn()

	if err := svc.Delete(ctx, store.LocalUser, deleteID); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", labelStyle.Render("Deleted"), valueStyle.Render(deleteID))
	return nil
}
