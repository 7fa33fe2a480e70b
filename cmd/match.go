package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/careerlink/job-matcher/internal/domain"
	"github.com/careerlink/job-matcher/internal/matching"
	"github.com/careerlink/job-matcher/internal/store"
)

const (
	PromptYes                 = "Yes"
	PromptNo                  = "No"
	PromptReportByBand        = "Report by band"
	PromptResultsToFile       = "Dump results to file"
	PromptAppendToExcludeFile = "Append low matches to exclude file"
)

var errExit = errors.New("exit requested")

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Score every active job for a user and store the matches",
	Run: func(cmd *cobra.Command, _ []string) {
		match(cmd)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().StringP("user", "u", "", "id of the user to match")
	matchCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for confirmation before storing matches")
	matchCmd.Flags().Bool("dry-run", false, "report what would be stored without writing anything")

	matchCmd.MarkFlagRequired("user")
}

func match(cmd *cobra.Command) {
	ctx := context.Background()

	rt := setup(ctx)
	defer rt.Close()

	userID, _ := cmd.Flags().GetString("user")
	autoApprove, _ := cmd.Flags().GetBool("auto-approve")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	var source matching.Source = rt.store
	var pending *store.DryRun
	if dryRun {
		pending = store.NewDryRun(rt.store)
		source = pending
	}
	engine := rt.engine(source)

	ev, err := engine.Evaluate(ctx, userID)
	if err != nil {
		rt.logger.Fatal("evaluating jobs", zap.String("user_id", userID), zap.Error(err))
	}

	if len(ev.Persistable()) == 0 {
		rt.logger.Info("exiting", zap.String("reason", "no job scored above the persistence threshold"))
		return
	}

	action := PromptYes
	for {
		if !autoApprove {
			prompt := promptui.Select{
				Label: "Store matches?",
				Items: menuItems(rt.config),
			}
			_, action, err = prompt.Run()
			if err != nil {
				rt.logger.Fatal("exiting", zap.Error(err))
			}
		}

		rt.logger.Info("current list of scored jobs", zap.Int("count", len(ev.Results)))

		if err := handleAction(ctx, action, rt, engine, ev); err != nil {
			if errors.Is(err, errExit) {
				if pending != nil {
					rt.logger.Info("dry run, nothing was written", zap.Int("pending writes", len(pending.Pending())))
				}
				return
			}
			rt.logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func menuItems(cfg *Config) []string {
	items := []string{PromptYes, PromptNo, PromptReportByBand, PromptResultsToFile}
	if cfg.Matching != nil && cfg.Matching.ExcludeFile != "" {
		items = append(items, PromptAppendToExcludeFile)
	}
	return items
}

func handleAction(ctx context.Context, action string, rt *runtime, engine *matching.Engine, ev *matching.Evaluation) error {
	switch action {
	case PromptYes:
		summary, err := engine.Persist(ctx, ev)
		if err != nil {
			return fmt.Errorf("persisting matches: %w", err)
		}
		pretty, _ := json.MarshalIndent(summary, "", "  ")
		fmt.Println(string(pretty))
		return errExit
	case PromptNo:
		rt.logger.Info("exiting", zap.String("reason", "got no from prompt"))
		return errExit
	case PromptReportByBand:
		pretty, _ := json.MarshalIndent(ev.ReportByLabel(), "", "  ")
		rt.logger.Info(string(pretty), zap.Int("jobs count", len(ev.Results)))
		return nil
	case PromptResultsToFile:
		filename, err := ev.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		rt.logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptAppendToExcludeFile:
		return excludeLowMatches(rt, ev)
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

// excludeLowMatches appends every low-band job to the exclude file and drops
// it from the evaluation.
func excludeLowMatches(rt *runtime, ev *matching.Evaluation) error {
	excludeFile := rt.config.Matching.ExcludeFile

	low := &domain.JobPostings{}
	kept := ev.Results[:0]
	for _, r := range ev.Results {
		if r.Result.Label == domain.LabelLow {
			low.Items = append(low.Items, r.Job)
			continue
		}
		kept = append(kept, r)
	}
	ev.Results = kept

	if low.Len() == 0 {
		rt.logger.Info("no low matches to exclude")
		return nil
	}

	excluded, err := domain.GetExcludedJobsFromFile(excludeFile)
	if err != nil {
		return err
	}

	excluded.Append(low.ToExcluded(time.Now()))

	if err := excluded.ToFile(excludeFile); err != nil {
		return err
	}

	ids := make([]string, 0, low.Len())
	for _, job := range low.Items {
		ids = append(ids, job.ID)
	}
	ev.Jobs.Exclude(domain.JobIDField, ids)

	rt.logger.Info("appended to exclude file", zap.String("filename", excludeFile), zap.Int("count", low.Len()))
	return nil
}
