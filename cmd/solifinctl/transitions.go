package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"solifin/internal/models"
)

type transition func(ctx *cliContext, t models.PublicationType, id string) error

func addTransitionCommands(root *cobra.Command) {
	add := func(use, short string, fn transition) *cobra.Command {
		cmd := &cobra.Command{
			Use:   use + " TYPE ID",
			Short: short,
			Args:  cobra.ExactArgs(2),
			RunE:  wrapClientMain(runTransition(fn)),
		}
		root.AddCommand(cmd)
		return cmd
	}

	add("delete", "Deletes a publication", func(ctx *cliContext, t models.PublicationType, id string) error {
		return ctx.Dashboard.Delete(ctx.Ctx, t, id)
	})
	add("complete", "Marks an approved publication as completed", func(ctx *cliContext, t models.PublicationType, id string) error {
		return ctx.Dashboard.Complete(ctx.Ctx, t, id)
	})
	add("reopen", "Makes a completed publication available again", func(ctx *cliContext, t models.PublicationType, id string) error {
		return ctx.Dashboard.Reopen(ctx.Ctx, t, id)
	})
	add("approve", "Approves a pending publication (moderators)", func(ctx *cliContext, t models.PublicationType, id string) error {
		return ctx.Dashboard.Approve(ctx.Ctx, t, id)
	})
	rejectCmd := add("reject", "Rejects a pending publication with a reason (moderators)", func(ctx *cliContext, t models.PublicationType, id string) error {
		reason, _ := ctx.Cmd.Flags().GetString("reason")
		return ctx.Dashboard.Reject(ctx.Ctx, t, id, reason)
	})
	rejectCmd.Flags().String("reason", "", "rejection reason shown to the owner")
	_ = rejectCmd.MarkFlagRequired("reason")
}

func runTransition(fn transition) func(*cliContext) error {
	return func(ctx *cliContext) error {
		t, err := models.ParsePublicationType(ctx.Args[0])
		if err != nil {
			return err
		}
		if err := ctx.Dashboard.Refresh(ctx.Ctx); err != nil {
			return fmt.Errorf("unable to load page: %w", err)
		}
		return fn(ctx, t, ctx.Args[1])
	}
}
