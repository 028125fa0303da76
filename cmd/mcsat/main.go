// Command mcsat is the CLI entry point: reads a DIMACS CNF file, builds a
// core.Solver wired with the Boolean theory, and reports SAT/UNSAT plus
// search statistics. Grounded on gophersat's main.go (the "c solving
// <path>" banner and verbose stats dump) but rebuilt on
// github.com/spf13/cobra per SPEC_FULL.md §9, the ecosystem CLI library
// the rest of the retrieval pack reaches for. The theory/lra plugin has
// no DIMACS-level encoding for bound atoms, so this command only
// exercises the pure-Boolean path; theory/lra is driven directly from
// its own tests and from core's driver-level tests instead.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/crillab/yaga/core"
	"github.com/crillab/yaga/internal/dimacs"
	"github.com/crillab/yaga/metrics"
	"github.com/crillab/yaga/policy"
	"github.com/crillab/yaga/theory/boolean"
)

var (
	verbose     bool
	useLuby     bool
	useHeap     bool
	metricsCSV  string
	metricsAddr string
	logLevel    string
)

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcsat <file.cnf>",
		Short: "mcsat solves a DIMACS CNF problem using the MCSat search core",
		Args:  cobra.ExactArgs(1),
		RunE:  runSolve,
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print search statistics after solving")
	cmd.Flags().BoolVar(&useLuby, "luby-restarts", false, "enable Luby-sequence restarts (default: never restart)")
	cmd.Flags().BoolVar(&useHeap, "activity-order", false, "use the activity-ordered (VSIDS-style) variable order instead of first-unassigned")
	cmd.Flags().StringVar(&metricsCSV, "metrics-csv", "", "write a metrics record for every search event to this CSV file")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090) while solving")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "logrus level: debug, info, warn, error")
	return cmd
}

func runSolve(cmd *cobra.Command, args []string) error {
	path := args[0]
	fmt.Printf("c solving %s\n", path)

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	pb, err := dimacs.Parse(f)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	log := logrus.New()
	if lvl, lerr := logrus.ParseLevel(logLevel); lerr == nil {
		log.SetLevel(lvl)
	}

	opts := []core.Option{core.WithLogger(log)}
	if useLuby {
		opts = append(opts, core.WithRestartPolicy(policy.NewLubyRestart()))
	}
	if metricsCSV != "" {
		sink, serr := metrics.NewFileSink(metricsCSV)
		if serr != nil {
			return fmt.Errorf("opening metrics file: %w", serr)
		}
		defer sink.Close()
		opts = append(opts, core.WithSink(sink))
	} else if metricsAddr != "" {
		reg := prometheus.NewRegistry()
		sink := metrics.NewPrometheusSink(reg)
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		go http.ListenAndServe(metricsAddr, mux)
		opts = append(opts, core.WithSink(sink))
	}

	var varOrder core.VariableOrder
	if useHeap {
		varOrder = policy.NewActivityOrder(core.KindBool, core.KindRational)
	} else {
		varOrder = policy.NewFirstUnassigned(core.KindBool, core.KindRational)
	}
	opts = append(opts, core.WithVariableOrder(varOrder))

	s, err := core.NewSolver(opts...)
	if err != nil {
		return fmt.Errorf("building solver: %w", err)
	}
	s.RegisterTheory(boolean.New())
	s.SetNumVars(core.KindBool, pb.NumVars)

	for _, lits := range pb.Clauses {
		clauseLits := make([]core.Literal, len(lits))
		for i, lit := range lits {
			ord := int32(lit)
			neg := lit < 0
			if neg {
				ord = -ord
			}
			clauseLits[i] = core.NewLiteral(ord-1, neg)
		}
		s.Database().Assert(core.NewClause(clauseLits))
	}

	status, err := s.Check(context.Background())
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	fmt.Println(status)

	if verbose {
		fmt.Printf("c nb decisions: %d\nc nb backtracks: %d\nc nb conflicts: %d\nc nb learned: %d\nc nb restarts: %d\n",
			s.Stats.Decisions, s.Stats.Backtracks, s.Stats.Conflicts, s.Stats.LearnedClauses, s.Stats.Restarts)
	}
	return nil
}
