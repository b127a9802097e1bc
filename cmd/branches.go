package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/delivery-cli/internal/branch"
	"github.com/sells-group/delivery-cli/internal/geo"
)

var (
	branchesFormat   string
	branchesNearLat  float64
	branchesNearLng  float64
	branchesRadiusKm float64
)

var branchesCmd = &cobra.Command{
	Use:   "branches",
	Short: "List branches, optionally those near a point",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := cfg.Registry()
		if err != nil {
			return err
		}

		list := reg.List()
		flags := cmd.Flags()
		if flags.Changed("near-lat") || flags.Changed("near-lng") {
			if !flags.Changed("near-lat") || !flags.Changed("near-lng") {
				return eris.New("--near-lat and --near-lng must be given together")
			}
			radius := branchesRadiusKm
			if radius <= 0 {
				radius = cfg.ServiceArea.MaxDeliveryRadiusKm
			}
			list, err = reg.Within(geo.Coordinate{Lat: branchesNearLat, Lng: branchesNearLng}, radius)
			if err != nil {
				return err
			}
		}
		return renderBranches(cmd.OutOrStdout(), branchesFormat, list)
	},
}

func renderBranches(w io.Writer, format string, list []branch.Branch) error {
	switch format {
	case "", "table":
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "KEY\tNAME\tLAT\tLNG\tADDRESS")
		for _, b := range list {
			fmt.Fprintf(tw, "%s\t%s\t%.5f\t%.5f\t%s\n", b.Key, b.Name, b.Location.Lat, b.Location.Lng, b.Address)
		}
		return tw.Flush()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(list); err != nil {
			return eris.Wrap(err, "encode yaml")
		}
		return enc.Close()
	case "geojson":
		reg, err := branch.NewRegistry(list)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reg.FeatureCollection())
	default:
		return eris.Errorf("unknown format %q (want table, json, yaml or geojson)", format)
	}
}

func init() {
	branchesCmd.Flags().StringVar(&branchesFormat, "format", "table", "output format: table, json, yaml or geojson")
	branchesCmd.Flags().Float64Var(&branchesNearLat, "near-lat", 0, "only branches near this latitude")
	branchesCmd.Flags().Float64Var(&branchesNearLng, "near-lng", 0, "only branches near this longitude")
	branchesCmd.Flags().Float64Var(&branchesRadiusKm, "radius-km", 0, "search radius for --near-lat/--near-lng (default: max delivery radius)")
	rootCmd.AddCommand(branchesCmd)
}
