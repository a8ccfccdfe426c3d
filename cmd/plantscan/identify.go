package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/mirai-garden/plant-backend/internal/imagedata"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
)

var identifyCmd = &cobra.Command{
	Use:   "identify <image>",
	Short: "Identify a photo through the proxy without storing anything",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		image, err := imagedata.Encode(data)
		if err != nil {
			return err
		}

		raw, err := newClientFromConfig().Identify(cmd.Context(), image.DataURL)
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			_, err := cmd.OutOrStdout().Write(append(raw, '\n'))
			return err
		}
		return printSuggestions(cmd, raw)
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <name>",
	Short: "Search the Plant.id knowledge base by name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		raw, err := newClientFromConfig().Search(cmd.Context(), args[0], limit)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tMATCHED IN\tACCESS TOKEN")
		gjson.GetBytes(raw, "entities").ForEach(func(_, e gjson.Result) bool {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Get("entity_name").String(), e.Get("matched_in").String(), e.Get("access_token").String())
			return true
		})
		return tw.Flush()
	},
}

func printSuggestions(cmd *cobra.Command, raw []byte) error {
	suggestions := gjson.GetBytes(raw, "result.classification.suggestions")
	if len(suggestions.Array()) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no suggestions")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tPROBABILITY")
	suggestions.ForEach(func(_, s gjson.Result) bool {
		fmt.Fprintf(tw, "%s\t%.1f%%\n", s.Get("name").String(), s.Get("probability").Float()*100)
		return true
	})
	if plant := gjson.GetBytes(raw, "result.is_plant.binary"); plant.Exists() && !plant.Bool() {
		fmt.Fprintln(tw, "(the image may not contain a plant)")
	}
	return tw.Flush()
}

func init() {
	identifyCmd.Flags().Bool("json", false, "Print the raw provider reply")
	searchCmd.Flags().Int("limit", 10, "Maximum results")

	rootCmd.AddCommand(identifyCmd)
	rootCmd.AddCommand(searchCmd)
}
