package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kb-dk/ds-cumulus-export/internal/adapters/driven/config/file"
	"github.com/kb-dk/ds-cumulus-export/internal/converters"
	"github.com/kb-dk/ds-cumulus-export/internal/core/domain"
)

var (
	convertersMapping string
	convertersMapName string
)

var convertersCmd = &cobra.Command{
	Use:   "converters",
	Short: "List the destination types usable in a mapping",
	Long: `List the destination types usable in a mapping.

With --mapping the mapping document is checked instead: every entry whose
destination type is unknown is reported, and otherwise each converter is
built and listed in mapping order.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if cmd.Flags().Changed("mapping") {
			return checkMapping(cmd)
		}
		registry, err := converters.NewDefaultRegistry(converters.Dependencies{})
		if err != nil {
			return err
		}
		for _, name := range registry.Names() {
			cmd.Println(name)
		}
		return nil
	},
}

func checkMapping(cmd *cobra.Command) error {
	settings, err := settingsService.Get()
	if err != nil {
		return err
	}
	name := settings.Mapping.Name
	if cmd.Flags().Changed("map") {
		name = convertersMapName
	}

	registry, err := newRegistry(settings)
	if err != nil {
		return err
	}
	specs, err := file.LoadMapping(convertersMapping, name)
	if err != nil {
		return err
	}

	var unknown []string
	for _, spec := range specs {
		if !registry.Has(spec.DestType) {
			unknown = append(unknown, fmt.Sprintf("%s (%s)", spec.Name(), spec.DestType))
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("%s: unknown destination types: %s: %w",
			convertersMapping, strings.Join(unknown, ", "), domain.ErrUnsupportedType)
	}

	entries, err := registry.BuildAll(specs)
	if err != nil {
		return fmt.Errorf("%s: %w", convertersMapping, err)
	}
	for _, e := range entries {
		spec := e.Spec()
		cmd.Printf("%-14s %s\n", spec.DestType, spec.Name())
	}
	return nil
}

func init() {
	rootCmd.AddCommand(convertersCmd)

	convertersCmd.Flags().StringVar(&convertersMapping, "mapping", "", "check this mapping document")
	convertersCmd.Flags().StringVar(&convertersMapName, "map", "", "map name within the mapping document")
}
