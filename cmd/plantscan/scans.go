package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/mirai-garden/plant-backend/internal/dto"
	"github.com/spf13/cobra"
)

// watchGrace bounds how long the progress stream may lag behind the scan reply.
const watchGrace = 2 * time.Second

var scanCmd = &cobra.Command{
	Use:   "scan <image>",
	Short: "Upload a plant photo and run a full scan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		image, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		watch, _ := cmd.Flags().GetBool("watch")

		client := newClientFromConfig()
		scanID := uuid.NewString()
		ctx := cmd.Context()

		var wg sync.WaitGroup
		watchCtx, stopWatch := context.WithCancel(ctx)
		defer stopWatch()
		if watch {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := client.Watch(watchCtx, scanID, func(p dto.ScanProgressResponse) {
					line := p.State
					if p.Error != "" {
						line += ": " + p.Error
					}
					fmt.Fprintln(cmd.ErrOrStderr(), line)
				})
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "progress stream: %s\n", err)
				}
			}()
		}

		res, err := client.Scan(ctx, scanID, args[0], image)
		if watch {
			drain(&wg, stopWatch, watchGrace)
		}
		if err != nil {
			return err
		}
		return printJSON(cmd, res)
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List your scans, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := newClientFromConfig().List(cmd.Context())
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tPLANT\tSCIENTIFIC NAME\tHEALTH\tSCANNED")
		for _, s := range res.Scans {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", s.ID, s.PlantName, s.ScientificName, s.OverallHealth, s.LastScanDate)
		}
		return tw.Flush()
	},
}

var getCmd = &cobra.Command{
	Use:   "get <scan-id>",
	Short: "Show one stored scan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := newClientFromConfig().Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, res)
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <scan-id>",
	Short: "Delete a stored scan and its image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newClientFromConfig().Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch <scan-id>",
	Short: "Follow the progress of a running scan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return newClientFromConfig().Watch(cmd.Context(), args[0], func(p dto.ScanProgressResponse) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", p.UpdatedAt, p.State, p.Error)
		})
	},
}

func drain(wg *sync.WaitGroup, stop context.CancelFunc, grace time.Duration) {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(grace):
		stop()
		<-done
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	scanCmd.Flags().BoolP("watch", "w", false, "Print progress transitions while the scan runs")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(watchCmd)
}
