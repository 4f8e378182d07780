package main

import (
	"github.com/spf13/cobra"

	"solifin/internal/models"
)

func addSchemaCommand(root *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "schema TYPE",
		Short: "Prints the form fields of a publication type",
		Long:  "Without --file every field is listed, conditional ones included. With --file, only\nthe fields visible for the values of that file are printed.",
		Args:  cobra.ExactArgs(1),
		RunE:  wrapClientMain(schemaMain),
	}
	cmd.Flags().StringP("file", "f", "", "publication file whose values decide visibility")
	root.AddCommand(cmd)
}

func schemaMain(ctx *cliContext) error {
	t, err := models.ParsePublicationType(ctx.Args[0])
	if err != nil {
		return err
	}
	sc, err := ctx.Dashboard.Registry().Schema(t)
	if err != nil {
		return err
	}
	path, _ := ctx.Cmd.Flags().GetString("file")
	if path == "" {
		return printFields(ctx.Out, sc.Fields)
	}
	pf, err := readPublicationFile(path)
	if err != nil {
		return err
	}
	s, err := ctx.Dashboard.NewSession(t)
	if err != nil {
		return err
	}
	pf.Files = nil
	if err := pf.apply(s, sc); err != nil {
		return err
	}
	return printFields(ctx.Out, s.Fields())
}
