package main

import (
	"fmt"
	"log/slog"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/conjecture"
	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/indexset"
	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/matrix"
	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/permanent"
	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/search"
	"github.com/SoraBroadbeans/PlusMinusOneMatrixPermanentMinimumProblem/store"
)

func newPermCmd() *cobra.Command {
	var (
		method  string
		verbose bool
	)
	cmd := &cobra.Command{
		Use:   "perm <notation>",
		Short: "Build a matrix from notation such as T_3{-1,0,2} and compute its permanent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, f, set, err := matrix.ParseNotation(args[0])
			if err != nil {
				return err
			}
			m, err := matrix.Build(n, f, set)
			if err != nil {
				return err
			}
			meth, err := permanent.ParseMethod(method)
			if err != nil {
				return err
			}
			opts := []permanent.Option{permanent.WithMethod(meth)}
			if verbose {
				opts = append(opts, permanent.WithLogger(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(),
					&slog.HandlerOptions{Level: slog.LevelDebug}))))
			}
			p, err := permanent.ComputeContext(cmd.Context(), m, opts...)
			if err != nil {
				return err
			}
			k, err := conjecture.Krauter(n)
			if err != nil {
				return err
			}
			v, err := conjecture.Compare(n, p)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, matrix.FormatNotation(n, f, set))
			fmt.Fprint(out, m.String())
			fmt.Fprintf(out, "permanent = %s\n", p)
			fmt.Fprintf(out, "ratio     = %.4f\n", m.OnesRatio())
			fmt.Fprintf(out, "kräuter   = %s (%s)\n", k, v)
			return nil
		},
	}
	cmd.Flags().StringVar(&method, "method", "ryser", "ryser or naive")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "trace the computation on stderr")

	return cmd
}

func newConjectureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "conjecture <n>...",
		Short: "Print Kräuter's conjectured minimum positive permanent",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "n\texponent\tvalue")
			for _, a := range args {
				n, err := strconv.Atoi(a)
				if err != nil {
					return fmt.Errorf("conjecture: %q: %w", a, err)
				}
				e, err := conjecture.Exponent(n)
				if err != nil {
					return err
				}
				k, err := conjecture.Krauter(n)
				if err != nil {
					return err
				}
				fmt.Fprintf(tw, "%d\t%d\t%s\n", n, e, k)
			}
			return tw.Flush()
		},
	}
}

func newCountCmd() *cobra.Command {
	var (
		list     int
		subspace string
	)
	cmd := &cobra.Command{
		Use:   "count <family> <n>",
		Short: "Describe the index-set space of a family",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, n, err := familyOrder(args)
			if err != nil {
				return err
			}
			sp, err := indexset.NewSpace(n, f)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			lo, hi := f.Domain(n)
			fmt.Fprintf(out, "family     %s (%c)\n", f, f.Symbol())
			fmt.Fprintf(out, "domain     [%d, %d]\n", lo, hi)
			fmt.Fprintf(out, "mandatory  %v\n", f.Mandatory(n))
			fmt.Fprintf(out, "free       %d\n", sp.FreeSize())
			if subspace != "" {
				k, err := indexset.ParseSubspace(subspace)
				if err != nil {
					return err
				}
				c, err := k.Count(n, f)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "subspace   %s %d\n", k, c)
			}
			size, err := sp.Size()
			if err != nil {
				fmt.Fprintf(out, "sets       2^%d (not enumerable)\n", sp.FreeSize())
				return nil
			}
			fmt.Fprintf(out, "sets       %d\n", size)
			if list <= 0 {
				return nil
			}
			ws, err := sp.Window(0, min(uint64(list), size))
			if err != nil {
				return err
			}
			for rank, s := range ws {
				fmt.Fprintf(out, "%6d  %s\n", rank, matrix.FormatNotation(n, f, s))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&list, "list", 0, "also print the first k sets in rank order")
	cmd.Flags().StringVar(&subspace, "subspace", "", "also count a toeplitz subspace: sparse, symmetric or continuous")

	return cmd
}

func newEstimateCmd() *cobra.Command {
	var (
		samples int
		seed    int64
	)
	cmd := &cobra.Command{
		Use:   "estimate <family> <n>",
		Short: "Project the runtime of an exhaustive search from timed samples",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, n, err := familyOrder(args)
			if err != nil {
				return err
			}
			est, err := search.EstimateExhaustive(cmd.Context(), n, f, samples, seed)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "per matrix  %s (%d samples)\n", est.PerMatrix, est.Samples)
			if est.SpaceSize == 0 {
				fmt.Fprintln(out, "space       not enumerable")
				return nil
			}
			fmt.Fprintf(out, "space       %d sets\n", est.SpaceSize)
			fmt.Fprintf(out, "projected   %s\n", search.HumanDuration(est.Projected))
			return nil
		},
	}
	cmd.Flags().IntVar(&samples, "samples", 20, "matrices to time")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed")

	return cmd
}

func newHistoryCmd() *cobra.Command {
	var (
		path   string
		family string
		n      int
		limit  int
		best   bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := store.Open(path)
			if err != nil {
				return err
			}
			defer st.Close()

			filter := store.Filter{N: n, Limit: limit}
			if family != "" {
				f, err := matrix.ParseFamily(family)
				if err != nil {
					return err
				}
				filter.Family = &f
			}
			var runs []store.Run
			if best {
				if filter.Family == nil || n == 0 {
					return fmt.Errorf("history: --best needs --family and --n")
				}
				r, err := st.BestKnown(cmd.Context(), n, *filter.Family)
				if err != nil {
					return err
				}
				runs = []store.Run{r}
			} else if runs, err = st.ListRuns(cmd.Context(), filter); err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "run\tfamily\tn\tstrategy\tstop\tbest\tset\texamined\tstarted")
			for _, r := range runs {
				b := "-"
				if r.BestPermanent != nil {
					b = r.BestPermanent.String()
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\t%s\t%d\t%s\n", r.RunID, r.Family, r.N, r.Strategy, r.Stop,
					b, r.BestSet, r.Examined, r.Started.Format("2006-01-02 15:04:05"))
			}
			return tw.Flush()
		},
	}
	f := cmd.Flags()
	f.StringVar(&path, "store", "result/runs.db", "SQLite run history database")
	f.StringVarP(&family, "family", "f", "", "only this family")
	f.IntVarP(&n, "n", "n", 0, "only this order")
	f.IntVar(&limit, "limit", 20, "maximum rows (0 = all)")
	f.BoolVar(&best, "best", false, "show only the best known run for --family and --n")

	return cmd
}

// familyOrder parses "<family> <n>".
func familyOrder(args []string) (matrix.Family, int, error) {
	f, err := matrix.ParseFamily(args[0])
	if err != nil {
		return 0, 0, err
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, 0, fmt.Errorf("order %q: %w", args[1], err)
	}

	return f, n, nil
}
