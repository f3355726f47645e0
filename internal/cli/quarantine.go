package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sdejongh/casemover/pkg/move"
)

// NewQuarantineCommand creates the quarantine command
func NewQuarantineCommand() *cobra.Command {
	var dest string
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "quarantine",
		Short: "List quarantined duplicate folders under a destination",
		Long: `List the folders a previous migration placed under the destination's
_DUPLICATES directory, grouped by CaseID with the oldest entries first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			folders, err := move.ScanQuarantined(dest)
			if err != nil {
				return err
			}

			if outputFormat == "json" {
				return printQuarantineJSON(cmd, folders)
			}
			printQuarantineHuman(cmd, dest, folders)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dest, "dest", "d", "", "destination directory path (required)")
	cmd.MarkFlagRequired("dest")
	cmd.Flags().StringVarP(&outputFormat, "output", "o", "human", "output format: human, json")

	return cmd
}

// quarantineEntryData is one quarantined folder in the JSON listing.
type quarantineEntryData struct {
	CaseID   string `json:"case_id"`
	Name     string `json:"name"`
	Path     string `json:"path"`
	Modified string `json:"modified"`
}

func printQuarantineJSON(cmd *cobra.Command, folders []move.QuarantinedFolder) error {
	entries := make([]quarantineEntryData, 0, len(folders))
	for _, f := range folders {
		entries = append(entries, quarantineEntryData{
			CaseID:   f.CaseID,
			Name:     f.Name,
			Path:     f.Path,
			Modified: f.ModTime.Format(time.RFC3339),
		})
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(entries)
}

func printQuarantineHuman(cmd *cobra.Command, dest string, folders []move.QuarantinedFolder) {
	w := cmd.OutOrStdout()

	if len(folders) == 0 {
		fmt.Fprintln(w, "No quarantined folders.")
		return
	}

	// Group by CaseID; the scan is oldest-first, so the first entry seen
	// for a CaseID is its oldest and fixes the group order.
	grouped := make(map[string][]move.QuarantinedFolder)
	var order []string
	for _, f := range folders {
		if _, seen := grouped[f.CaseID]; !seen {
			order = append(order, f.CaseID)
		}
		grouped[f.CaseID] = append(grouped[f.CaseID], f)
	}

	fmt.Fprintf(w, "Quarantined folders under %s (%d total):\n\n", dest, len(folders))
	for _, caseID := range order {
		entries := grouped[caseID]
		fmt.Fprintf(w, "  CaseID %s (%d):\n", caseID, len(entries))
		for _, f := range entries {
			fmt.Fprintf(w, "    %-40s %s\n", f.Name, f.ModTime.Format("2006-01-02 15:04"))
		}
	}
}
