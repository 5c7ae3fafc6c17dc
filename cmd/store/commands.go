package store

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	asJSON bool

	getCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Reads the value for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value, ok, err := profile.Store.Get(key)
			if err != nil {
				return err
			}
			if structured, isMap := value.(map[string]any); isMap {
				data, err := json.Marshal(structured)
				if err != nil {
					return err
				}
				value = string(data)
			}
			fmt.Printf("key=%s, found=%v, backend=%s, value=%v\n", key, ok, profile.Store.Backend(), value)
			return nil
		},
	}
	setCmd = &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Sets the value for a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			var value any = args[1]
			if asJSON {
				if err := json.Unmarshal([]byte(args[1]), &value); err != nil {
					return fmt.Errorf("value is not valid JSON: %w", err)
				}
			}
			if err := profile.Store.Set(key, value); err != nil {
				return err
			}
			fmt.Println("set successfully")
			return nil
		},
	}
	rmCmd = &cobra.Command{
		Use:     "rm [key]",
		Aliases: []string{"remove"},
		Short:   "Removes the value for a key",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := profile.Store.Remove(args[0]); err != nil {
				return err
			}
			fmt.Println("removed successfully")
			return nil
		},
	}
)

func init() {
	setCmd.Flags().BoolVar(&asJSON, "json", false, "Store the value as structured data instead of text")
}
