package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"solifin/internal/client"
	"solifin/internal/lifecycle"
	"solifin/internal/models"
)

func addModerationCommands(root *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "moderation TYPE",
		Short: "Lists publications of every owner (moderators)",
		Args:  cobra.ExactArgs(1),
		RunE:  wrapClientMain(moderationMain),
	}
	cmd.Flags().String("statut", string(models.ApprovalStatusPending), "pending, approved, rejected or all")
	cmd.Flags().String("etat", "", "disponible or termine")
	cmd.Flags().String("search", "", "search term")
	cmd.Flags().Int("page", 1, "page number")
	cmd.Flags().StringP("output", "o", outputText, "text, json or yaml")
	root.AddCommand(cmd)
}

func moderationMain(ctx *cliContext) error {
	t, err := models.ParsePublicationType(ctx.Args[0])
	if err != nil {
		return err
	}
	flags := ctx.Cmd.Flags()
	opts := client.ListOptions{}
	opts.Status, _ = flags.GetString("statut")
	opts.State, _ = flags.GetString("etat")
	opts.Search, _ = flags.GetString("search")
	opts.Page, _ = flags.GetInt("page")
	opts.PageSize, _ = flags.GetInt("page-size")
	format, _ := flags.GetString("output")

	res, err := ctx.Client.List(ctx.Ctx, t, opts)
	if err != nil {
		return err
	}
	if format != outputText {
		return writeStructured(ctx.Out, format, res)
	}
	fmt.Fprintf(ctx.Out, "== %s (page %d/%d, %d)\n", typeTitle(t), res.Pagination.Page, max(res.Pagination.TotalPages, 1), res.Pagination.Total)
	return printPublicationTable(ctx.Out, res.Data, func(p *models.Publication) []lifecycle.Action {
		return lifecycle.Actions(ctx.Actor, p)
	})
}
