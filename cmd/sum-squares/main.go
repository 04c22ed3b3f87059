package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	sumsquares "github.com/chemandante/sum-squares/pkg/sum-squares"
)

// cli holds flag values and the state built in PersistentPreRunE
type cli struct {
	two, three, four bool
	digest           bool
	verify           bool
	verbose          bool
	configPath       string

	config *sumsquares.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "sum-squares (-2|-3|-4) <N>",
		Short: "Decompose N into sums of 2, 3 or 4 squares",
		Long: `Calculating all possible decompositions of integer N by sum of 2, 3 or 4 squares.

Every decomposition is printed once with its terms in non-ascending order.
Zero terms are omitted. N may be arbitrarily large.`,
		Args:              cobra.ExactArgs(1),
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
		RunE: c.runDecompose,
	}

	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "Path to a YAML config file")

	root.Flags().BoolVarP(&c.two, "two", "2", false, "Sum of two squares")
	root.Flags().BoolVarP(&c.three, "three", "3", false, "Sum of three squares")
	root.Flags().BoolVarP(&c.four, "four", "4", false, "Sum of four squares")
	root.Flags().BoolVar(&c.digest, "digest", false, "Print a digest of the decomposition set")
	root.Flags().BoolVar(&c.verify, "verify", false, "Check four-square results against Jacobi's theorem")
	root.MarkFlagsMutuallyExclusive("two", "three", "four")
	root.MarkFlagsOneRequired("two", "three", "four")

	root.AddCommand(newServeCmd(c))
	return root
}

// setup loads the configuration and builds the logger
func (c *cli) setup(cmd *cobra.Command, args []string) error {
	config, err := sumsquares.LoadConfig(c.configPath)
	if err != nil {
		return err
	}
	c.config = config

	level, err := config.LogLevel()
	if err != nil {
		return err
	}
	if c.verbose {
		level = zapcore.DebugLevel
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	c.logger, err = zc.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

func (c *cli) arity() sumsquares.Arity {
	switch {
	case c.two:
		return sumsquares.TwoSquares
	case c.three:
		return sumsquares.ThreeSquares
	default:
		return sumsquares.FourSquares
	}
}

func (c *cli) runDecompose(cmd *cobra.Command, args []string) error {
	n, ok := new(big.Int).SetString(args[0], 10)
	if !ok {
		return fmt.Errorf("invalid integer N: %q", args[0])
	}
	arity := c.arity()
	if c.verify && arity != sumsquares.FourSquares {
		return fmt.Errorf("--verify requires --four")
	}
	cmd.SilenceUsage = true

	out := cmd.OutOrStdout()
	if n.Sign() < 1 {
		fmt.Fprintln(out, "Number must be natural, i.e. N >= 1")
		return nil
	}

	engine, err := sumsquares.NewEngine(c.config, sumsquares.WithLogger(c.logger))
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	result, err := engine.Decompose(ctx, n, arity)
	if err != nil {
		return err
	}

	if !result.Feasible {
		fmt.Fprintf(out, "%s can not be expressed as sum of %s squares due to %s.\n",
			n, arity, infeasibleText(result.Reason))
		return nil
	}

	fmt.Fprintf(out, "Total %d decompositions found:\n", result.Count())
	for _, d := range result.Decompositions {
		if d.SumOfSquares().Cmp(n) == 0 {
			fmt.Fprintln(out, d.String())
		} else {
			fmt.Fprintf(out, "Error in decomposition of %s as %s\n", n, d.Tuple())
		}
	}

	if c.digest {
		fmt.Fprintf(out, "Digest (%s): %s\n", engine.DigestFunction(), engine.Digest(result))
	}

	if c.verify {
		v, err := engine.Verify(n, result.Decompositions)
		if err != nil {
			return err
		}
		status := "complete"
		if !v.Complete {
			status = "INCOMPLETE"
		}
		fmt.Fprintf(out, "Jacobi check: expected %s signed representations, found %s: %s\n",
			v.Expected, v.Actual, status)
		if !v.Complete {
			return &sumsquares.SquaresError{
				Code:    sumsquares.ErrIncomplete,
				Message: "decomposition set failed the Jacobi check",
			}
		}
	}
	return nil
}

func infeasibleText(reason string) string {
	if reason == sumsquares.ReasonFermat {
		return "corresponding theorem"
	}
	return reason
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
