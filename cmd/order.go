package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/delivery-cli/internal/cart"
	"github.com/sells-group/delivery-cli/internal/checkout"
	"github.com/sells-group/delivery-cli/internal/geo"
	"github.com/sells-group/delivery-cli/internal/menu"
)

var (
	orderName   string
	orderPhone  string
	orderMode   string
	orderBranch string
	orderLat    float64
	orderLng    float64
	orderItems  []string
	orderKey    string
)

var orderCmd = &cobra.Command{
	Use:   "order",
	Short: "Place an order for delivery or pickup",
	Example: `  delivery-cli order --name Kago --phone 71234567 --lat -24.6418 --lng 25.9213 \
    --item margherita:small --item margherita:small --item pepperoni:large
  delivery-cli order --name Kago --phone 71234567 --mode pickup --branch bontleng --item seswaa:medium`,
	RunE: func(cmd *cobra.Command, args []string) error {
		items, err := parseItems(menu.Default(), orderItems)
		if err != nil {
			return err
		}

		req := checkout.Request{
			CustomerName:   orderName,
			Phone:          orderPhone,
			Mode:           checkout.Mode(orderMode),
			BranchKey:      orderBranch,
			Items:          items,
			IdempotencyKey: orderKey,
		}
		if cmd.Flags().Changed("lat") || cmd.Flags().Changed("lng") {
			req.Location = &geo.Coordinate{Lat: orderLat, Lng: orderLng}
		}

		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		placed, err := env.Checkout.PlaceOrder(cmd.Context(), req)
		if err != nil {
			var oor *checkout.OutOfRangeError
			if errors.As(err, &oor) {
				return eris.New(oor.Result.Reason)
			}
			return err
		}
		renderPlaced(cmd.OutOrStdout(), cart.New(items...), placed)
		return nil
	},
}

// parseItems turns "item:size" arguments into cart items priced from m.
func parseItems(m *menu.Menu, args []string) ([]cart.Item, error) {
	state := cart.New()
	for _, raw := range args {
		itemKey, sizeKey, ok := strings.Cut(raw, ":")
		if !ok {
			return nil, eris.Errorf("item %q: want item:size, e.g. margherita:large", raw)
		}
		sel, err := m.SelectSize(strings.TrimSpace(itemKey), strings.TrimSpace(sizeKey))
		if err != nil {
			return nil, err
		}
		state = cart.Reduce(state, cart.Add{Item: cart.Item{Name: sel.Name, Size: sel.Size, Price: sel.Price}})
	}
	return state.Items(), nil
}

func renderPlaced(w io.Writer, state cart.State, placed *checkout.Placed) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, l := range state.Lines() {
		fmt.Fprintf(tw, "%dx\t%s\t%s\t%s\n", l.Quantity, l.Name, l.Size, cart.FormatPula(l.Subtotal()))
	}
	fmt.Fprintf(tw, "\tTotal\t\t%s\n", cart.FormatPula(state.Total()))
	_ = tw.Flush()

	r := placed.Receipt
	fmt.Fprintf(w, "\nOrder %s %s at %s (key %s)\n", r.OrderID, r.Status, placed.Branch, r.IdempotencyKey)
	if placed.Eligibility != nil {
		fmt.Fprintln(w, placed.Eligibility.Reason)
	}
}

func init() {
	orderCmd.Flags().StringVar(&orderName, "name", "", "customer name (required)")
	orderCmd.Flags().StringVar(&orderPhone, "phone", "", "contact phone (required)")
	orderCmd.Flags().StringVar(&orderMode, "mode", string(checkout.Delivery), "delivery or pickup")
	orderCmd.Flags().StringVar(&orderBranch, "branch", "", "branch key (required for pickup; nearest for delivery)")
	orderCmd.Flags().Float64Var(&orderLat, "lat", 0, "delivery latitude")
	orderCmd.Flags().Float64Var(&orderLng, "lng", 0, "delivery longitude")
	orderCmd.Flags().StringArrayVar(&orderItems, "item", nil, "item:size to add, repeatable")
	orderCmd.Flags().StringVar(&orderKey, "idempotency-key", "", "reuse a key to retry a previous order safely")
	rootCmd.AddCommand(orderCmd)
}
