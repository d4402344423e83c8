package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abelbrown/campaignwatch/internal/api"
	"github.com/abelbrown/campaignwatch/internal/format"
	"github.com/abelbrown/campaignwatch/internal/pager"
	"github.com/abelbrown/campaignwatch/internal/ui"
)

func newPostsCmd() *cobra.Command {
	var (
		sortBy string
		order  string
		limit  int
		offset int
	)

	cmd := &cobra.Command{
		Use:   "posts",
		Short: "List posts sorted by the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch sortBy {
			case ui.SortLikes, ui.SortComments, ui.SortPositive, ui.SortNegative, ui.SortSentiment:
			default:
				return fmt.Errorf("invalid --sort %q", sortBy)
			}
			if order != string(pager.Asc) && order != string(pager.Desc) {
				return fmt.Errorf("invalid --order %q", order)
			}

			e, err := setup(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			id, err := e.resolveCandidate(cmd.Context())
			if err != nil {
				return err
			}
			resp, err := e.client.Posts(cmd.Context(), api.PostsParams{
				CandidateID: id,
				SortBy:      sortBy,
				Order:       order,
				Limit:       limit,
				Offset:      offset,
			})
			if err != nil {
				return fmt.Errorf("posts: %w", err)
			}

			w := cmd.OutOrStdout()
			if len(resp.Posts) == 0 {
				fmt.Fprintln(w, "Nenhum post encontrado.")
				return nil
			}
			fmt.Fprintf(w, "%-10s %-22s %-34s %9s %11s %6s %6s %6s\n",
				"DATA", "PERFIL", "LEGENDA", "CURTIDAS", "COMENTÁRIOS", "%POS", "%NEG", "SENT")
			fmt.Fprintln(w, strings.Repeat("-", 112))
			for _, p := range resp.Posts {
				fmt.Fprintf(w, "%-10s %-22s %-34s %9s %11s %6s %6s %6s\n",
					format.DateMedium(p.PostedAt.Time),
					format.Truncate("@"+p.CandidateUsername, 22),
					format.Truncate(strings.ReplaceAll(p.Caption, "\n", " "), 34),
					format.Number(p.LikeCount),
					format.Number(p.CommentCount),
					format.Percent(p.PositiveRatio),
					format.Percent(p.NegativeRatio),
					format.Score(p.AverageSentimentScore),
				)
			}
			fmt.Fprintf(w, "\n%d-%d de %s posts\n", resp.Offset+1, resp.Offset+len(resp.Posts), format.Number(resp.Total))
			return nil
		},
	}

	cmd.Flags().StringVar(&sortBy, "sort", ui.SortComments, "Sort column: like_count, comment_count, positive_ratio, negative_ratio, sentiment_score")
	cmd.Flags().StringVar(&order, "order", string(pager.Desc), "Sort order: asc or desc")
	cmd.Flags().IntVar(&limit, "limit", pager.DefaultPageSize, "Page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "Rows to skip")
	return cmd
}
