package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"solifin/internal/attachment"
	"solifin/internal/client"
	"solifin/internal/lifecycle"
	"solifin/internal/models"
	"solifin/internal/query"
	"solifin/internal/schema"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

func writeStructured(w io.Writer, format string, v any) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	}
	return fmt.Errorf("unknown output format %q", format)
}

func typeTitle(t models.PublicationType) string {
	switch t {
	case models.PublicationTypeAdvertisement:
		return "Publicités"
	case models.PublicationTypeJobOffer:
		return "Offres d'emploi"
	case models.PublicationTypeBusinessOpportunity:
		return "Opportunités d'affaires"
	}
	return string(t)
}

func joinActions(actions []lifecycle.Action) string {
	parts := make([]string, 0, len(actions))
	for _, a := range actions {
		parts = append(parts, string(a))
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ",")
}

func printPublicationTable(w io.Writer, items []models.Publication, actions func(*models.Publication) []lifecycle.Action) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITRE\tSTATUT\tETAT\tCREE LE\tACTIONS")
	for i := range items {
		p := &items[i]
		acts := "-"
		if actions != nil {
			acts = joinActions(actions(p))
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			p.ID, p.Title, p.ApprovalStatus, p.Availability, p.CreatedAt.Format("2006-01-02"), acts)
	}
	return tw.Flush()
}

func printCollection(w io.Writer, t models.PublicationType, page query.Page[models.Publication], actions func(*models.Publication) []lifecycle.Action) error {
	fmt.Fprintf(w, "== %s (page %d/%d, %d)\n", typeTitle(t), page.Number, max(page.TotalPages, 1), page.TotalItems)
	if len(page.Items) == 0 {
		fmt.Fprintln(w, "  aucune publication")
		return nil
	}
	return printPublicationTable(w, page.Items, actions)
}

func printFields(w io.Writer, fields []schema.FieldSpec) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FIELD\tKIND\tREQUIRED\tDETAILS")
	for _, f := range fields {
		details := ""
		switch {
		case len(f.Options) > 0:
			vals := make([]string, 0, len(f.Options))
			for _, o := range f.Options {
				vals = append(vals, o.Value)
			}
			details = strings.Join(vals, "|")
		case f.Kind == schema.KindFile:
			if c, ok := attachment.ConstraintFor(f.Slot); ok {
				details = c.Help()
			}
		case f.PayloadKey != "":
			details = "sent as " + f.PayloadKey
		}
		fmt.Fprintf(tw, "%s\t%s\t%t\t%s\n", f.Name, f.Kind, f.Required, details)
	}
	return tw.Flush()
}

// describeError expands field-scoped errors onto one line per field.
func describeError(w io.Writer, err error) {
	var fields map[string][]string

	var verrs schema.ValidationErrors
	var terr *client.TransportError
	switch {
	case errors.As(err, &verrs):
		fields = verrs.Fields()
	case errors.As(err, &terr) && len(terr.Fields) > 0:
		fields = terr.Fields
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s: %s\n", name, strings.Join(fields[name], "; "))
	}

	for _, aerr := range attachmentErrors(err) {
		fmt.Fprintf(w, "  %s: %v\n", aerr.Slot, aerr.Err)
	}
}

func attachmentErrors(err error) []*attachment.Error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []*attachment.Error
		for _, e := range joined.Unwrap() {
			out = append(out, attachmentErrors(e)...)
		}
		return out
	}
	var aerr *attachment.Error
	if errors.As(err, &aerr) {
		return []*attachment.Error{aerr}
	}
	return nil
}
