/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Answer a question from the uploaded documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		question, _ := cmd.Flags().GetString("question")
		documentID, _ := cmd.Flags().GetString("document-id")
		asJSON, _ := cmd.Flags().GetBool("json")

		ctx := cmd.Context()
		a, err := buildApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.rag.AnswerQuestion(ctx, question, documentID)
		if err != nil {
			return err
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}
		fmt.Println(res.Answer)
		fmt.Printf("\n(%d fragmentos, %d tokens)\n", res.RetrievedChunksCount, res.TokensUsed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().StringP("question", "q", "", "Question to answer")
	askCmd.Flags().String("document-id", "", "Restrict the search to one document")
	askCmd.Flags().Bool("json", false, "Print the full response as JSON")
}
