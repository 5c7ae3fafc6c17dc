package nav

import (
	"errors"
	"fmt"

	"github.com/delving/itemnav/lib/nav"
	"github.com/spf13/cobra"
)

var (
	lastPage int

	rememberCmd = &cobra.Command{
		Use:   "remember [results-url] [id]...",
		Short: "Stores the result list to navigate through",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := nav.Remember(profile.Store, args[0], args[1:], lastPage); err != nil {
				return err
			}
			fmt.Printf("remembered %d items of %s (%s storage)\n", len(args)-1, args[0], profile.Store.Backend())
			return nil
		},
	}
	showCmd = &cobra.Command{
		Use:   "show [detail-url]",
		Short: "Shows the navigation controls of a detail page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			controls, err := loadControls(args[0])
			if err != nil {
				return err
			}
			printControls(controls)
			return nil
		},
	}
	nextCmd = &cobra.Command{
		Use:   "next [detail-url]",
		Short: "Prints the detail page of the next item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return step(cmd, args[0], nav.Next)
		},
	}
	prevCmd = &cobra.Command{
		Use:     "prev [detail-url]",
		Aliases: []string{"previous"},
		Short:   "Prints the detail page of the previous item",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return step(cmd, args[0], nav.Previous)
		},
	}
	forgetCmd = &cobra.Command{
		Use:   "forget",
		Short: "Removes the stored result list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := nav.Forget(profile.Store); err != nil {
				return err
			}
			fmt.Println("forgot results")
			return nil
		},
	}
)

func init() {
	rememberCmd.Flags().IntVar(&lastPage, "last-page", 0, "Last page of the result list (0 = unknown)")
}

// loadControls returns the controls of the detail page at current.
// Disabled navigation is not an error.
func loadControls(current string) (nav.Controls, error) {
	nc, err := nav.Load(profile.Store, current)
	switch {
	case errors.Is(err, nav.ErrNoResultsContext):
		return nav.DisabledControls(err, nil), nil
	case errors.Is(err, nav.ErrUnsupportedContext):
		return nav.DisabledControls(err, nc.Query), nil
	case err != nil:
		return nav.Controls{}, err
	}
	return nc.Controls(), nil
}

func printControls(c nav.Controls) {
	state := func(control nav.Control) string {
		switch {
		case control.Disabled:
			return "disabled"
		case control.Target != "":
			return control.Target
		default:
			return "next page"
		}
	}
	fmt.Printf("enabled=%t\n", c.Enabled)
	if c.Reason != "" {
		fmt.Printf("reason=%s\n", c.Reason)
	}
	fmt.Printf("previous=%s\n", state(c.Previous))
	fmt.Printf("next=%s\n", state(c.Next))
	if c.ReturnTo != "" {
		fmt.Printf("return-to=%s\n", c.ReturnTo)
	}
}

// step prints the detail page reached from current, or current itself when
// the step does not move
func step(cmd *cobra.Command, current string, dir nav.Direction) error {
	nc, err := nav.Load(profile.Store, current)
	if errors.Is(err, nav.ErrNoResultsContext) || errors.Is(err, nav.ErrUnsupportedContext) {
		fmt.Printf("navigation unavailable: %v\n", err)
		return nil
	}
	if err != nil {
		return err
	}

	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	result, err := nav.NewCursor(profile.Store, client).Step(cmd.Context(), nc, dir)
	if err != nil {
		// the state is restored, the user stays on the current item
		return err
	}
	if !result.Moved() {
		fmt.Printf("no %s item, staying on %s\n", dir, nc.CurrentID)
		return nil
	}
	fmt.Println(result.Target)
	return nil
}
