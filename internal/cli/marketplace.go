package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"murmax-onboarding/internal/marketplace"
)

func newMarketplaceCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "marketplace",
		Short: "Work the load board: dispatch, instant booking and rate confirmations",
	}
	cmd.AddCommand(
		newLoadsCommand(app),
		newDispatchCommand(app),
		newInstantCommand(app),
		newPostCommand(app),
		newRateConCommand(app),
	)
	return cmd
}

func newLoadsCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "loads",
		Short: "List the load board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("LOAD", "LANE", "EQUIP", "MI", "RATE", "BROKER")
			for _, l := range marketplace.SampleLoads() {
				t.Row(l.ID, l.Origin+" → "+l.Destination, l.Equipment,
					strconv.Itoa(l.DistanceMiles), "$"+strconv.Itoa(l.RateUSD), l.Broker)
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.String())
			return nil
		},
	}
}

// roster prefers driver profiles from the directory over the sample roster.
func (app *App) roster(ctx context.Context) ([]marketplace.Driver, error) {
	records, err := app.Store.List(ctx)
	if err != nil {
		return nil, err
	}
	if drivers := marketplace.DriversFromRecords(records); len(drivers) > 0 {
		return drivers, nil
	}
	return marketplace.SampleDrivers(), nil
}

func newDispatchCommand(app *App) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "dispatch <load-id>",
		Short: "Auto-dispatch a load to an available driver",
		Long: `Auto-dispatch a load to the first Available driver with matching
equipment, falling back to any Available driver. Driver profiles in the
directory form the roster; without any the sample roster is used.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			load, ok := marketplace.FindLoad(marketplace.SampleLoads(), args[0])
			if !ok {
				return fmt.Errorf("no load %q on the board", args[0])
			}
			drivers, err := app.roster(cmd.Context())
			if err != nil {
				return err
			}
			a, err := marketplace.AutoDispatch(load, drivers)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeIndented(out, a)
			}
			fmt.Fprintln(out, app.Styles.OK.Render(a.Notice()))
			if !a.EquipmentMatch {
				fmt.Fprintln(out, app.Styles.Muted.Render("no available driver with "+load.Equipment+"; first available driver assigned"))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the assignment as JSON")
	return cmd
}

func newInstantCommand(app *App) *cobra.Command {
	req := marketplace.NewLoadRequest()
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "instant",
		Short: "Run a No-Strings instant booking",
		Long: `Run a No-Strings instant booking: in-house capacity first, then the
partner network at the lowest rate per mile within budget.

Example:
  murmaxctl marketplace instant --origin "Tampa, FL" --destination "Atlanta, GA" --budget 680`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := marketplace.InstantBook(req, marketplace.InHouseOffers(), marketplace.PartnerOffers())
			out := cmd.OutOrStdout()
			if asJSON && err == nil {
				return writeIndented(out, b)
			}
			for _, line := range b.Log {
				fmt.Fprintln(out, app.Styles.Muted.Render(line))
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(out, app.Styles.OK.Render(fmt.Sprintf("Instant Booked: %s ($%d)", b.Carrier, b.RateCon.RateUSD)))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&req.Origin, "origin", "", "pickup city")
	f.StringVar(&req.Destination, "destination", "", "delivery city")
	f.StringVar(&req.Equipment, "equipment", req.Equipment, "equipment type")
	f.IntVar(&req.BudgetUSD, "budget", req.BudgetUSD, "budget in USD")
	f.IntVar(&req.WeightLbs, "weight", req.WeightLbs, "weight in lbs")
	f.BoolVar(&asJSON, "json", false, "print the booking as JSON")
	return cmd
}

func newPostCommand(app *App) *cobra.Command {
	req := marketplace.NewLoadRequest()
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Post a shipper load to the board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := marketplace.PostLoad(req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), app.Styles.OK.Render(msg))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&req.Origin, "origin", "", "pickup city")
	f.StringVar(&req.Destination, "destination", "", "delivery city")
	f.StringVar(&req.Equipment, "equipment", req.Equipment, "equipment type")
	f.StringVar(&req.PickupDate, "pickup", "", "pickup date")
	f.StringVar(&req.DeliveryDate, "delivery", "", "delivery date")
	f.StringVar(&req.Notes, "notes", "", "notes for carriers")
	return cmd
}

func newRateConCommand(app *App) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "ratecon <load-id>",
		Short: "Generate the rate confirmation for a board load",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			load, ok := marketplace.FindLoad(marketplace.SampleLoads(), args[0])
			if !ok {
				return fmt.Errorf("no load %q on the board", args[0])
			}
			rc := marketplace.RateConFor(load)
			if err := rc.Validate(); err != nil {
				return err
			}
			if outPath == "" {
				fmt.Fprintln(cmd.OutOrStdout(), rc.Render())
				return nil
			}
			if err := os.WriteFile(outPath, []byte(rc.Render()), 0o644); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), app.Styles.OK.Render("wrote "+outPath))
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the confirmation to this file (e.g. MMX-1042_RateCon.txt)")
	return cmd
}

func writeIndented(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
