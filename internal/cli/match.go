package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sdejongh/casemover/pkg/migrate"
	"github.com/sdejongh/casemover/pkg/models"
)

// NewMatchCommand creates the match command
func NewMatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Match CaseIDs against folder names without moving anything",
		Long: `Load the CaseID list, scan the source directory and report which
folders each CaseID matches. Nothing is moved, no lock is taken and no
report file is written.`,
		RunE: runMatch,
	}

	// Reuse move flags for the analysis inputs
	cmd.Flags().StringVarP(&moveFlags.Source, "source", "s", "", "source directory path (required)")
	cmd.Flags().StringVarP(&moveFlags.CaseIDFile, "caseids", "i", "", "CaseID list: .txt, .csv or .xlsx file (required)")
	cmd.MarkFlagRequired("source")
	cmd.MarkFlagRequired("caseids")

	cmd.Flags().StringVar(&moveFlags.Column, "column", "", "column holding CaseIDs in tabular files (name or letter)")
	cmd.Flags().IntVar(&moveFlags.MaxFolders, "max-folders", 0, "scan at most this many folders (0 = unlimited)")
	cmd.Flags().IntVar(&moveFlags.CaseIDLimit, "caseid-limit", 0, "load at most this many CaseIDs (0 = unlimited)")
	cmd.Flags().BoolVar(&moveFlags.CaseSensitive, "case-sensitive", false, "match CaseIDs case-sensitively")
	cmd.Flags().StringVar(&moveFlags.Strategy, "strategy", "", "matching strategy: auto, bucket, automaton")
	cmd.Flags().StringVarP(&moveFlags.Output, "output", "o", "human", "output format: human, json")

	return cmd
}

// matchResultData is the JSON document the match command emits.
type matchResultData struct {
	CaseIDsLoaded  int              `json:"caseids_loaded"`
	FoldersScanned int              `json:"folders_scanned"`
	Strategy       string           `json:"strategy"`
	Matches        []matchEntryData `json:"matches"`
	Unmatched      []string         `json:"unmatched_caseids,omitempty"`
}

type matchEntryData struct {
	CaseID  string   `json:"case_id"`
	Folders []string `json:"folders"`
}

func runMatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Validate the analysis inputs
	normalizeInputPaths()
	if _, err := os.Stat(moveFlags.Source); os.IsNotExist(err) {
		return fmt.Errorf("source path does not exist: %s", moveFlags.Source)
	}
	if _, err := os.Stat(moveFlags.CaseIDFile); os.IsNotExist(err) {
		return fmt.Errorf("CaseID file does not exist: %s", moveFlags.CaseIDFile)
	}

	op := &models.MigrationOperation{
		SourcePath:    moveFlags.Source,
		CaseIDFile:    moveFlags.CaseIDFile,
		CaseIDColumn:  moveFlags.Column,
		MaxFolders:    moveFlags.MaxFolders,
		CaseIDLimit:   moveFlags.CaseIDLimit,
		CaseSensitive: moveFlags.CaseSensitive,
		Strategy:      models.MatcherStrategy(moveFlags.Strategy),
	}

	runner := migrate.NewRunner(nil, nil, migrate.Events{})
	an, err := runner.Analyze(ctx, op)
	if err != nil {
		return err
	}

	if moveFlags.Output == "json" {
		return printMatchJSON(cmd, an)
	}
	printMatchHuman(cmd, an)
	return nil
}

func printMatchJSON(cmd *cobra.Command, an *migrate.Analysis) error {
	data := matchResultData{
		CaseIDsLoaded:  len(an.CaseIDs.IDs),
		FoldersScanned: an.FoldersScanned,
		Strategy:       string(an.Strategy),
		Matches:        []matchEntryData{},
		Unmatched:      an.UnmatchedIDs,
	}

	for _, id := range an.CaseIDs.IDs {
		folders := an.ByID[id]
		if len(folders) == 0 {
			continue
		}
		entry := matchEntryData{CaseID: id}
		for _, f := range folders {
			entry.Folders = append(entry.Folders, f.Path)
		}
		data.Matches = append(data.Matches, entry)
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func printMatchHuman(cmd *cobra.Command, an *migrate.Analysis) {
	w := cmd.OutOrStdout()

	matched := len(an.CaseIDs.IDs) - len(an.UnmatchedIDs)
	fmt.Fprintf(w, "Matched %d of %d CaseIDs against %d folders (strategy: %s)\n",
		matched, len(an.CaseIDs.IDs), an.FoldersScanned, an.Strategy)

	if len(an.CaseIDs.Duplicated) > 0 {
		fmt.Fprintf(w, "Input contained %d duplicate CaseIDs, first occurrence kept\n", len(an.CaseIDs.Duplicated))
	}
	if an.Truncated {
		fmt.Fprintf(w, "Scan stopped at the folder cap, results may be incomplete\n")
	}
	fmt.Fprintln(w)

	for _, id := range an.CaseIDs.IDs {
		folders := an.ByID[id]
		if len(folders) == 0 {
			continue
		}
		noun := "matches"
		if len(folders) == 1 {
			noun = "match"
		}
		fmt.Fprintf(w, "  %s  %d %s\n", id, len(folders), noun)
		for _, f := range folders {
			fmt.Fprintf(w, "    %s\n", f.Path)
		}
	}

	if len(an.UnmatchedIDs) > 0 {
		fmt.Fprintf(w, "\nCaseIDs without a matching folder (%d):\n", len(an.UnmatchedIDs))
		for _, id := range an.UnmatchedIDs {
			fmt.Fprintf(w, "  %s\n", id)
		}
	}
}
