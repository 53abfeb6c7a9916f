package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var cfgFile string

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tasteprice",
		Short:         "Find the best-value dishes from a crowdsourced price and taste table",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")

	root.AddCommand(recommendCmd())
	root.AddCommand(rateCmd())
	root.AddCommand(submitCmd())
	root.AddCommand(suggestCmd())
	root.AddCommand(collectCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(runCmd())

	return root
}

func recommendCmd() *cobra.Command {
	var opts recommendOpts

	cmd := &cobra.Command{
		Use:   "recommend <dish>",
		Short: "Rank the best-value places for a dish",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecommend(cmd.Context(), args, opts)
		},
	}

	cmd.Flags().Float64Var(&opts.bias, "bias", -1, "0 = taste only, 1 = price only (default: from config)")
	cmd.Flags().IntVar(&opts.topK, "top-k", 0, "max results (default: from config)")
	cmd.Flags().IntVar(&opts.cutoff, "cutoff", -1, "minimum fuzzy match score 0-100 (default: from config)")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "output as JSON")
	return cmd
}

func rateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rate <restaurant> <food> <rating>",
		Short: "Add a 1-10 taste rating to a dish",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRate(cmd.Context(), args[0], args[1], args[2])
		},
	}
}

func submitCmd() *cobra.Command {
	var (
		sub          submitOpts
		price, taste float64
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Add a new dish to the table",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("price") {
				sub.price = &price
			}
			if cmd.Flags().Changed("taste") {
				sub.taste = &taste
			}
			return runSubmit(cmd.Context(), sub)
		},
	}

	cmd.Flags().StringVar(&sub.restaurant, "restaurant", "", "restaurant name")
	cmd.Flags().StringVar(&sub.food, "food", "", "dish name")
	cmd.Flags().Float64Var(&price, "price", 0, "price in cedis")
	cmd.Flags().StringVar(&sub.location, "location", "", "area or branch")
	cmd.Flags().Float64Var(&taste, "taste", 0, "initial taste rating 1-10")
	cmd.Flags().StringVar(&sub.portion, "portion", "", "portion size")
	cmd.Flags().StringVar(&sub.category, "category", "", "dish category")
	cmd.Flags().StringVar(&sub.description, "description", "", "short description")
	return cmd
}

func suggestCmd() *cobra.Command {
	var (
		restaurant, food string
		limit            int
	)

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Autocomplete restaurant and dish names",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSuggest(cmd.Context(), restaurant, food, limit)
		},
	}

	cmd.Flags().StringVar(&restaurant, "restaurant", "", "partial restaurant name")
	cmd.Flags().StringVar(&food, "food", "", "partial dish name")
	cmd.Flags().IntVar(&limit, "limit", 5, "max suggestions")
	return cmd
}

func collectCmd() *cobra.Command {
	var sources []string

	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Run menu collectors and merge their rows into the table",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCollect(cmd.Context(), sources)
		},
	}

	cmd.Flags().StringSliceVar(&sources, "source", nil, "specific sources to collect (e.g., chowdeck,menu,feed)")
	return cmd
}

func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "server port (default: from config)")
	return cmd
}

func runCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start daemon with scheduler and HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(cmd.Context(), port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "server port (default: from config)")
	return cmd
}
