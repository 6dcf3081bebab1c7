package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/readinglog/readinglog-server/internal/domain"
	"github.com/readinglog/readinglog-server/internal/service"
	"github.com/readinglog/readinglog-server/internal/store"
)

var (
	moderatorEmail string
	pendingPage    int
	pendingSize    int
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Work the review moderation queue",
}

var reviewPendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List reviews awaiting moderation, oldest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(func(i do.Injector) error {
			moderatorID, err := resolveModerator(cmd.Context(), i)
			if err != nil {
				return err
			}
			page, err := do.MustInvoke[*service.ReviewService](i).ListPendingReviews(cmd.Context(), moderatorID,
				store.PageRequest{Page: pendingPage, Size: pendingSize})
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(page)
			}
			rows := make([][]string, 0, len(page.Items))
			for _, r := range page.Items {
				rows = append(rows, []string{r.ID, r.BookTitle, r.Username, strconv.Itoa(r.Rating), truncate(r.Text, 60)})
			}
			if err := printTable(os.Stdout, []string{"ID", "BOOK", "USER", "RATING", "TEXT"}, rows); err != nil {
				return err
			}
			fmt.Printf("\npage %d of %d, %d pending\n", page.Page, max(page.TotalPages, 1), page.Total)
			return nil
		})
	},
}

var reviewApproveCmd = &cobra.Command{
	Use:   "approve <review-id>",
	Short: "Approve a pending review",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return moderate(cmd.Context(), args[0], (*service.ReviewService).ApproveReview)
	},
}

var reviewRejectCmd = &cobra.Command{
	Use:   "reject <review-id>",
	Short: "Reject a pending review",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return moderate(cmd.Context(), args[0], (*service.ReviewService).RejectReview)
	},
}

func init() {
	rootCmd.AddCommand(reviewCmd)
	reviewCmd.AddCommand(reviewPendingCmd, reviewApproveCmd, reviewRejectCmd)

	reviewCmd.PersistentFlags().StringVar(&moderatorEmail, "as", "", "Email of the acting moderator (default: the first admin)")
	reviewPendingCmd.Flags().IntVar(&pendingPage, "page", 1, "Page number")
	reviewPendingCmd.Flags().IntVar(&pendingSize, "size", 20, "Page size")
}

type moderateFunc func(s *service.ReviewService, ctx context.Context, moderatorID, reviewID string) (*domain.Review, error)

func moderate(ctx context.Context, reviewID string, fn moderateFunc) error {
	return withServices(func(i do.Injector) error {
		moderatorID, err := resolveModerator(ctx, i)
		if err != nil {
			return err
		}
		review, err := fn(do.MustInvoke[*service.ReviewService](i), ctx, moderatorID, reviewID)
		if err != nil {
			return err
		}
		fmt.Printf("Review %s is %s\n", review.ID, review.Status)
		return nil
	})
}

// resolveModerator returns the --as user, or the longest-standing admin.
func resolveModerator(ctx context.Context, i do.Injector) (string, error) {
	admin := do.MustInvoke[*service.AdminService](i)
	if moderatorEmail != "" {
		return resolveUser(ctx, admin, moderatorEmail)
	}
	users, err := admin.ListUsers(ctx)
	if err != nil {
		return "", err
	}
	for _, u := range users {
		if u.IsAdmin() {
			return u.ID, nil
		}
	}
	return "", errors.New("no admin exists; pass --as with a moderator's email")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
