package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/careerlink/job-matcher/internal/logger"
)

var explainCmd = &cobra.Command{
	Use:   "explain",
	Short: "Print the score breakdown of one user and job pair",
	Run: func(cmd *cobra.Command, _ []string) {
		explain(cmd)
	},
}

func init() {
	rootCmd.AddCommand(explainCmd)

	explainCmd.Flags().StringP("user", "u", "", "id of the user")
	explainCmd.Flags().String("job", "", "id of the job")

	explainCmd.MarkFlagRequired("user")
	explainCmd.MarkFlagRequired("job")
}

func explain(cmd *cobra.Command) {
	ctx := context.Background()

	rt := setup(ctx)
	defer rt.Close()

	userID, _ := cmd.Flags().GetString("user")
	jobID, _ := cmd.Flags().GetString("job")

	res, err := rt.engine(rt.store).Explain(ctx, userID, jobID)
	if err != nil {
		rt.logger.Fatal("explaining match", append(logger.MatchFields(userID, jobID), zap.Error(err))...)
	}

	pretty, _ := json.MarshalIndent(res, "", "  ")
	fmt.Println(string(pretty))
}
