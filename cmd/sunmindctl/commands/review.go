package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/sunmind/sunmind/pkg/sunmind"
)

// NewReviewCommand creates the review command group.
func NewReviewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "review",
		Short:   "Read and write product reviews",
		Aliases: []string{"reviews"},
	}

	cmd.AddCommand(
		newReviewListCommand(),
		newReviewAddCommand(),
		newReviewDeleteCommand(),
	)

	return cmd
}

func stars(rating int) string {
	rating = max(0, min(rating, 5))
	return strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating)
}

func newReviewListCommand() *cobra.Command {
	var parseable bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List reviews, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := getClient(cmd)
			if err != nil {
				return err
			}
			reviews, err := c.GetReviews()
			if err != nil {
				return fmt.Errorf("failed to list reviews: %w", err)
			}

			if len(reviews) == 0 {
				if !parseable {
					pterm.Info.Println("No reviews found.")
				}
				return nil
			}

			if parseable {
				for _, r := range reviews {
					fmt.Println(ReviewParseable(r))
				}
				return nil
			}

			table := pterm.TableData{{"ID", "Date", "Author", "Rating", "Review"}}
			for _, r := range reviews {
				table = append(table, []string{r.ID, r.Date, r.Author, stars(r.Rating), r.Text})
			}
			pterm.DefaultTable.WithHasHeader().WithData(table).Render()
			return nil
		},
	}
	cmd.Flags().BoolVarP(&parseable, "parseable", "p", false, "Output in parseable format (key=value)")
	return cmd
}

func newReviewAddCommand() *cobra.Command {
	var author, date string
	var rating int
	cmd := &cobra.Command{
		Use:   "add [text]",
		Short: "Submit a review",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := getClient(cmd)
			if err != nil {
				return err
			}
			var text string
			if len(args) > 0 {
				text = args[0]
			}
			if text, err = prompt(text, "Review", false); err != nil {
				return err
			}
			if author, err = prompt(author, "Author", false); err != nil {
				return err
			}
			if rating == 0 {
				value, err := prompt("", "Rating (1-5)", false)
				if err != nil {
					return err
				}
				if rating, err = strconv.Atoi(value); err != nil {
					return fmt.Errorf("invalid rating: %w", err)
				}
			}
			if rating < 1 || rating > 5 {
				return fmt.Errorf("rating must be between 1 and 5, got %d", rating)
			}

			saved, err := c.AddReview(sunmind.NewReview{Author: author, Text: text, Rating: rating, Date: date})
			if err != nil {
				return fmt.Errorf("failed to add review: %w", err)
			}
			pterm.Success.Printf("Review %s added\n", saved.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&author, "author", "", "Author name (prompted when omitted)")
	cmd.Flags().IntVar(&rating, "rating", 0, "Rating from 1 to 5 (prompted when omitted)")
	cmd.Flags().StringVar(&date, "date", "", "Review date as YYYY-MM-DD (default: today)")
	return cmd
}

func newReviewDeleteCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:     "delete <id>",
		Short:   "Delete a review",
		Aliases: []string{"rm"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := getClient(cmd)
			if err != nil {
				return err
			}
			if !force {
				ok, err := pterm.DefaultInteractiveConfirm.Show(fmt.Sprintf("Delete review %s?", args[0]))
				if err != nil {
					return fmt.Errorf("failed to confirm: %w", err)
				}
				if !ok {
					pterm.Info.Println("Aborted")
					return nil
				}
			}
			if err := c.DeleteReview(args[0]); err != nil {
				return fmt.Errorf("failed to delete review: %w", err)
			}
			pterm.Success.Printf("Review %s deleted\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "yes", "y", false, "Delete without confirmation")
	return cmd
}
