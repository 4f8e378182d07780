package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"solifin/internal/models"
	"solifin/internal/submission"
)

func addSubmitCommands(root *cobra.Command) {
	publishCmd := &cobra.Command{
		Use:   "publish TYPE",
		Short: "Creates a publication from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE:  wrapClientMain(publishMain),
	}
	publishCmd.Flags().StringP("file", "f", "", "publication file, - for stdin")
	_ = publishCmd.MarkFlagRequired("file")
	root.AddCommand(publishCmd)

	editCmd := &cobra.Command{
		Use:   "edit TYPE ID",
		Short: "Edits a pending or rejected publication from a YAML file",
		Long: "Values in the file replace the current ones; fields not mentioned keep their value.\n" +
			"Attachments listed under files replace the current asset, those under remove are deleted.",
		Args: cobra.ExactArgs(2),
		RunE: wrapClientMain(editMain),
	}
	editCmd.Flags().StringP("file", "f", "", "publication file, - for stdin")
	_ = editCmd.MarkFlagRequired("file")
	root.AddCommand(editCmd)
}

func publishMain(ctx *cliContext) error {
	t, err := models.ParsePublicationType(ctx.Args[0])
	if err != nil {
		return err
	}
	s, err := ctx.Dashboard.NewSession(t)
	if err != nil {
		return err
	}
	return submitFromFile(ctx, s)
}

func editMain(ctx *cliContext) error {
	t, err := models.ParsePublicationType(ctx.Args[0])
	if err != nil {
		return err
	}
	if err := ctx.Dashboard.Refresh(ctx.Ctx); err != nil {
		return fmt.Errorf("unable to load page: %w", err)
	}
	s, err := ctx.Dashboard.EditSession(t, ctx.Args[1])
	if err != nil {
		return err
	}
	return submitFromFile(ctx, s)
}

func submitFromFile(ctx *cliContext, s *submission.Session) error {
	path, _ := ctx.Cmd.Flags().GetString("file")
	pf, err := readPublicationFile(path)
	if err != nil {
		return err
	}
	sc, err := ctx.Dashboard.Registry().Schema(s.Type)
	if err != nil {
		return err
	}
	if err := pf.apply(s, sc); err != nil {
		return err
	}

	p, err := ctx.Dashboard.Submit(ctx.Ctx, s)
	if err != nil {
		describeError(ctx.Cmd.ErrOrStderr(), err)
		return err
	}
	fmt.Fprintf(ctx.Out, "%s %s: %s, %s\n", p.Type, p.ID, p.ApprovalStatus, p.Availability)
	return nil
}
