package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"solifin/internal/models"
	"solifin/internal/query"
)

func addPageCommands(root *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "my-page",
		Short: "Shows your page and publications, filtered and paginated",
		Args:  cobra.NoArgs,
		RunE:  wrapClientMain(myPageMain),
	}
	cmd.Flags().String("search", "", "search in title, description, contacts and address")
	cmd.Flags().String("statut", query.All, "pending, approved, rejected or all")
	cmd.Flags().String("etat", query.All, "disponible, termine or all")
	cmd.Flags().String("date", query.All, "today, week, month or all")
	cmd.Flags().StringSlice("type", nil, "collections to show (default all)")
	cmd.Flags().Int("page", 1, "page of each shown collection")
	cmd.Flags().StringP("output", "o", outputText, "text, json or yaml")
	root.AddCommand(cmd)
}

func filterFromFlags(cmd *cobra.Command) (query.FilterState, error) {
	f := query.DefaultFilter()
	f.SearchTerm, _ = cmd.Flags().GetString("search")

	statut, _ := cmd.Flags().GetString("statut")
	statut = strings.ToLower(strings.TrimSpace(statut))
	if statut != "" && statut != query.All {
		if !models.ApprovalStatus(statut).Valid() {
			return f, fmt.Errorf("unknown statut %q", statut)
		}
		f.ApprovalStatus = statut
	}

	etat, _ := cmd.Flags().GetString("etat")
	if etat = strings.TrimSpace(etat); etat != "" && etat != query.All {
		s, err := models.ParseAvailability(etat)
		if err != nil {
			return f, err
		}
		f.Availability = string(s)
	}

	date, _ := cmd.Flags().GetString("date")
	r, err := query.ParseDateRange(date)
	if err != nil {
		return f, err
	}
	f.DateRange = r
	return f, nil
}

func selectedTypes(cmd *cobra.Command) ([]models.PublicationType, error) {
	names, _ := cmd.Flags().GetStringSlice("type")
	if len(names) == 0 {
		return models.PublicationTypes, nil
	}
	out := make([]models.PublicationType, 0, len(names))
	for _, n := range names {
		t, err := models.ParsePublicationType(n)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

type pageView struct {
	Page        models.Page                                                `json:"page" yaml:"page"`
	Filter      query.FilterState                                          `json:"filter" yaml:"filter"`
	Collections map[models.PublicationType]query.Page[models.Publication] `json:"collections" yaml:"collections"`
}

func myPageMain(ctx *cliContext) error {
	filter, err := filterFromFlags(ctx.Cmd)
	if err != nil {
		return err
	}
	types, err := selectedTypes(ctx.Cmd)
	if err != nil {
		return err
	}
	page, _ := ctx.Cmd.Flags().GetInt("page")
	format, _ := ctx.Cmd.Flags().GetString("output")

	d := ctx.Dashboard
	if err := d.Refresh(ctx.Ctx); err != nil {
		return fmt.Errorf("unable to load page: %w", err)
	}
	d.SetFilter(filter)
	for _, t := range types {
		d.SetPage(t, page)
	}

	if format != outputText {
		view := pageView{Page: d.Page(), Filter: d.Filter(), Collections: map[models.PublicationType]query.Page[models.Publication]{}}
		for _, t := range types {
			view.Collections[t] = d.View(t)
		}
		return writeStructured(ctx.Out, format, view)
	}

	meta := d.Page()
	fmt.Fprintf(ctx.Out, "Page %s: %d abonnés, %d likes\n", meta.ID, meta.Subscribers, meta.Likes)
	for _, t := range types {
		if err := printCollection(ctx.Out, t, d.View(t), d.Actions); err != nil {
			return err
		}
	}
	return nil
}
