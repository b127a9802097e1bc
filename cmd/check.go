package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/delivery-cli/internal/delivery"
	"github.com/sells-group/delivery-cli/internal/geo"
	"github.com/sells-group/delivery-cli/internal/location"
	"github.com/sells-group/delivery-cli/pkg/geocode"
)

var (
	checkLat     float64
	checkLng     float64
	checkAddress string
	checkFormat  string
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check whether a location can receive deliveries",
	Example: `  delivery-cli check --lat -24.6544 --lng 25.9079
  delivery-cli check --address "Plot 1234, Block 9"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ev, err := cfg.Evaluator()
		if err != nil {
			return err
		}

		provider, err := checkProvider(cmd)
		if err != nil {
			return err
		}

		timeout := time.Duration(cfg.Location.TimeoutSecs) * time.Second
		point, err := location.Request(cmd.Context(), provider, timeout)
		if err != nil {
			return err
		}

		res, err := ev.CheckAvailability(point)
		if err != nil {
			return eris.Wrap(err, "check availability")
		}
		return renderCheck(cmd.OutOrStdout(), checkFormat, point, res)
	},
}

func checkProvider(cmd *cobra.Command) (location.Provider, error) {
	flags := cmd.Flags()
	switch {
	case checkAddress != "":
		return location.NewGeocoded(newGeocoder(), geocode.AddressInput{
			Street: checkAddress,
			City:   cfg.ServiceArea.CityName,
		}), nil
	case flags.Changed("lat") && flags.Changed("lng"):
		return location.Static{Coordinate: geo.Coordinate{Lat: checkLat, Lng: checkLng}}, nil
	default:
		return nil, eris.New("provide --lat and --lng, or --address")
	}
}

func renderCheck(w io.Writer, format string, point geo.Coordinate, res delivery.Result) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Location geo.Coordinate `json:"location"`
			delivery.Result
		}{point, res})
	case "", "text":
		fmt.Fprintf(w, "Location:   %s\n", point)
		fmt.Fprintf(w, "City area:  %s (%s km from centre)\n",
			yesNo(res.InCityArea), delivery.FormatKm(res.DistanceToCityKm))
		if res.NearestBranch != nil {
			fmt.Fprintf(w, "Nearest:    %s (%s km)\n",
				res.NearestBranch.Name, delivery.FormatKm(res.NearestBranch.DistanceKm))
		}
		fmt.Fprintf(w, "Delivery:   %s\n", yesNo(res.InDeliveryRange))
		fmt.Fprintln(w, res.Reason)
		return nil
	default:
		return eris.Errorf("unknown format %q (want text or json)", format)
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func init() {
	checkCmd.Flags().Float64Var(&checkLat, "lat", 0, "latitude in decimal degrees")
	checkCmd.Flags().Float64Var(&checkLng, "lng", 0, "longitude in decimal degrees")
	checkCmd.Flags().StringVar(&checkAddress, "address", "", "street address to geocode instead of --lat/--lng")
	checkCmd.Flags().StringVar(&checkFormat, "format", "text", "output format: text or json")
	rootCmd.AddCommand(checkCmd)
}
