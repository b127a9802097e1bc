package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/delivery-cli/internal/review"
)

var (
	reviewsRating int
	reviewsLimit  int
	reviewsNewest bool
	reviewName    string
	reviewStars   int
	reviewComment string
)

var reviewsCmd = &cobra.Command{
	Use:   "reviews",
	Short: "List and submit customer reviews",
}

var reviewsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List reviews, highest rated first",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		reviews, err := env.Checkout.Reviews(cmd.Context(), review.Filter{
			Rating: reviewsRating,
			Limit:  reviewsLimit,
			Newest: reviewsNewest,
		})
		if err != nil {
			return err
		}
		renderReviews(cmd.OutOrStdout(), reviews)
		return nil
	},
}

var reviewsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Submit a review",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		r, err := env.Checkout.SubmitReview(cmd.Context(), review.Submission{
			CustomerName: reviewName,
			Rating:       reviewStars,
			Comment:      reviewComment,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Thank you, %s! Review #%d saved (%s)\n", r.CustomerName, r.ID, r.Stars())
		return nil
	},
}

func renderReviews(w io.Writer, reviews []review.Review) {
	if len(reviews) == 0 {
		fmt.Fprintln(w, "No reviews yet.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RATING\tNAME\tDATE\tCOMMENT")
	for _, r := range reviews {
		comment := ""
		if r.Comment != nil {
			comment = strings.ReplaceAll(*r.Comment, "\n", " ")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Stars(), r.CustomerName, r.CreatedAt.Format("2006-01-02"), comment)
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "\n%d reviews, average %.1f\n", len(reviews), review.Average(reviews))
}

func init() {
	reviewsListCmd.Flags().IntVar(&reviewsRating, "rating", 0, "only reviews with this many stars (1-5)")
	reviewsListCmd.Flags().IntVar(&reviewsLimit, "limit", 0, "max reviews to show (0 = all)")
	reviewsListCmd.Flags().BoolVar(&reviewsNewest, "newest", false, "order by date instead of rating")

	reviewsAddCmd.Flags().StringVar(&reviewName, "name", "", "customer name (required)")
	reviewsAddCmd.Flags().IntVar(&reviewStars, "rating", 0, "stars, 1-5 (required)")
	reviewsAddCmd.Flags().StringVar(&reviewComment, "comment", "", "optional comment")

	reviewsCmd.AddCommand(reviewsListCmd, reviewsAddCmd)
	rootCmd.AddCommand(reviewsCmd)
}
