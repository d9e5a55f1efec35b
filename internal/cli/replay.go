package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/storefront/internal/cart"
	"github.com/roach88/storefront/internal/journal"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Journal string
	Session string // optional, one session only
}

// ReplaySessionResult is the replay outcome of one session.
type ReplaySessionResult struct {
	Session       string   `json:"session"`
	Entries       int      `json:"entries"`
	LastSeq       int64    `json:"last_seq"`
	CartTotal     int64    `json:"cart_total"`
	CartDistinct  int      `json:"cart_distinct"`
	Deterministic bool     `json:"deterministic"`
	Mismatches    []string `json:"mismatches,omitempty"`
}

// ReplayResult is the overall replay outcome.
type ReplayResult struct {
	Sessions         []ReplaySessionResult `json:"sessions"`
	TotalSessions    int                   `json:"total_sessions"`
	AllDeterministic bool                  `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Rebuild carts from the journal and verify them",
		Long: `Replay journaled sessions through the cart reducer and check that every
step reproduces the cart total and line count recorded at the time.

Exit codes:
  0 - All sessions are deterministic
  1 - A replayed cart differs from the journal
  2 - Command error (journal missing, unreadable entry, etc.)

Examples:
  storefront replay --journal ./storefront.db
  storefront replay --journal ./storefront.db --session 0192...
  storefront replay --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "journal database (default from config)")
	cmd.Flags().StringVar(&opts.Session, "session", "", "replay one session only")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	path := firstNonEmpty(opts.Journal, opts.Config.JournalPath)
	if path == "" {
		return NewExitError(ExitCommandError, "no journal: pass --journal or set journal_path")
	}

	j, err := journal.Open(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer j.Close()

	ctx := commandContext(cmd)
	sessions := []string{opts.Session}
	if opts.Session == "" {
		sessions, err = j.Sessions(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list sessions", err)
		}
	}

	result := ReplayResult{
		Sessions:         make([]ReplaySessionResult, 0, len(sessions)),
		TotalSessions:    len(sessions),
		AllDeterministic: true,
	}
	for _, session := range sessions {
		r, err := replaySession(ctx, j, session)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay session %s", session), err)
		}
		result.Sessions = append(result.Sessions, r)
		if !r.Deterministic {
			result.AllDeterministic = false
		}
	}

	f := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	switch {
	case f.JSON() && !result.AllDeterministic:
		if err := f.Error(CodeReplayDiverged, "replay differs from the journal", result); err != nil {
			return err
		}
	case f.JSON():
		if err := f.Success(result); err != nil {
			return err
		}
	default:
		printReplayText(f, result)
	}

	if !result.AllDeterministic {
		return NewExitError(ExitFailure, "replay differs from the journal")
	}
	return nil
}

func replaySession(ctx context.Context, j *journal.Journal, session string) (ReplaySessionResult, error) {
	r, err := j.Replay(ctx, session)
	if err != nil {
		return ReplaySessionResult{}, err
	}
	out := ReplaySessionResult{
		Session:       session,
		Entries:       r.Entries,
		LastSeq:       r.LastSeq,
		CartTotal:     cart.Total(r.Cart),
		CartDistinct:  cart.DistinctCount(r.Cart),
		Deterministic: r.Deterministic(),
	}
	for _, m := range r.Mismatches {
		out.Mismatches = append(out.Mismatches, m.String())
	}
	return out, nil
}

func printReplayText(f *OutputFormatter, result ReplayResult) {
	w := f.Writer
	if result.TotalSessions == 0 {
		fmt.Fprintln(w, "No sessions found in journal.")
		return
	}
	for _, s := range result.Sessions {
		mark := "✓"
		if !s.Deterministic {
			mark = "✗"
		}
		fmt.Fprintf(w, "%s %s  entries=%d last_seq=%d total=%d distinct=%d\n",
			mark, s.Session, s.Entries, s.LastSeq, s.CartTotal, s.CartDistinct)
		for _, m := range s.Mismatches {
			fmt.Fprintf(w, "    %s\n", m)
		}
	}
	fmt.Fprintf(w, "\nReplay Summary: %d session(s), deterministic=%t\n", result.TotalSessions, result.AllDeterministic)
}
