package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/couchcryptid/disaster-response-service/internal/domain"
	"github.com/spf13/cobra"
)

func newClassifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "classify [post...]",
		Short: "Tag social report text with its urgency",
		Long:  "Classify each argument as a post. With no arguments, each non-empty line of stdin is a post.",
		RunE: func(cmd *cobra.Command, args []string) error {
			posts := args
			if len(posts) == 0 {
				scanner := bufio.NewScanner(cmd.InOrStdin())
				for scanner.Scan() {
					if line := strings.TrimSpace(scanner.Text()); line != "" {
						posts = append(posts, line)
					}
				}
				if err := scanner.Err(); err != nil {
					return fmt.Errorf("read posts: %w", err)
				}
			}
			if len(posts) == 0 {
				return fmt.Errorf("%w: no posts to classify", domain.ErrInvalidInput)
			}

			rows := make([][]string, 0, len(posts))
			for _, p := range posts {
				rows = append(rows, []string{string(domain.ClassifyUrgency(p)), p})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Priority", "Post"}, rows, nil))
			return nil
		},
	}
}
