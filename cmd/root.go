package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/livetable/livetable/internal/config"
	"github.com/livetable/livetable/internal/fetch"
	"github.com/livetable/livetable/internal/poll"
	"github.com/livetable/livetable/internal/view"
)

const (
	appName    = "livetable"
	appVersion = "0.1.0"
)

var (
	ltFlags *config.Flags
	rootCmd = &cobra.Command{
		Use:   appName + " [url]",
		Short: "Keep a terminal table in sync with a polled JSON endpoint",
		Long: `livetable polls a JSON endpoint on a fixed cadence, diffs each payload
against the previously rendered dataset by a stable row key, and applies
only the resulting row creations, updates and deletions to the table.`,
		Args: cobra.MaximumNArgs(1),
		RunE: run,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s\n", appName, appVersion)
		},
	}
	endpointsCmd = &cobra.Command{
		Use:   "endpoints",
		Short: "List endpoints configured in the endpoints file",
		RunE:  listEndpoints,
	}
)

func init() {
	ltFlags = config.NewFlags()
	initFlags()
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(endpointsCmd)
}

func initFlags() {
	rootCmd.Flags().Float32VarP(ltFlags.RefreshRate, "refresh", "r", config.DefaultRefreshRate, "Refresh rate in seconds")
	rootCmd.Flags().StringVarP(ltFlags.RowKey, "row-key", "k", "", "Row key field used to diff snapshots")
	rootCmd.Flags().StringVarP(ltFlags.DataField, "data-field", "d", "", "Envelope field holding the row collection (default \"data\")")
	rootCmd.Flags().StringVarP(ltFlags.Method, "method", "m", "GET", "HTTP method")
	rootCmd.Flags().StringVarP(ltFlags.Profile, "profile", "p", "", "Named endpoint from the endpoints file")
	rootCmd.Flags().StringSliceVar(ltFlags.AbortOn, "abort-on", nil, "Failure categories that stop polling (network,timeout,malformed,cancelled,unknown)")
	rootCmd.Flags().BoolVar(ltFlags.ResetPaging, "reset-paging", false, "Reset table position when a patch is applied")
	rootCmd.Flags().BoolVar(ltFlags.Headless, "headless", false, "Emit JSON events instead of the terminal UI")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if err := config.InitLocs(); err != nil {
		return fmt.Errorf("failed to initialize locations: %w", err)
	}

	cfg := config.NewConfig()
	if err := cfg.Load(config.AppConfigFile, false); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg.LiveTable.Override(ltFlags)

	ep, err := resolveEndpoint(cmd, args, cfg)
	if err != nil {
		return err
	}

	opts, err := ep.Options()
	if err != nil {
		return err
	}

	fetcher, err := fetch.NewHTTPFetcher(ep.URL, ep.Method, nil)
	if err != nil {
		return err
	}

	if cfg.LiveTable.Headless {
		return runHeadless(opts, fetcher)
	}
	return runUI(ep, opts, fetcher)
}

// resolveEndpoint merges the endpoints file, flags and positional URL
// into one polling target. Flags win over the profile entry.
func resolveEndpoint(cmd *cobra.Command, args []string, cfg *config.Config) (*config.Endpoint, error) {
	mgr, err := config.NewEndpointManager(config.AppEndpointsFile)
	if err != nil {
		return nil, err
	}

	ep := &config.Endpoint{
		Method:  "GET",
		AbortOn: fetch.NewCategorySet(),
	}

	profile := cfg.LiveTable.DefaultProfile
	if config.IsStringSet(ltFlags.Profile) {
		profile = *ltFlags.Profile
	}
	if profile != "" {
		loaded, err := mgr.Get(profile)
		if err != nil {
			return nil, err
		}
		*ep = *loaded
	}

	if len(args) > 0 {
		ep.URL = args[0]
	}
	if ep.URL == "" {
		return nil, fmt.Errorf("no endpoint url: pass one as an argument or via --profile")
	}

	if cmd.Flags().Changed("method") {
		ep.Method = *ltFlags.Method
	}
	if config.IsStringSet(ltFlags.RowKey) {
		ep.RowKey = *ltFlags.RowKey
	}
	if config.IsStringSet(ltFlags.DataField) {
		ep.DataField = *ltFlags.DataField
	}
	if cmd.Flags().Changed("refresh") {
		ep.Interval = time.Duration(float64(*ltFlags.RefreshRate) * float64(time.Second))
	} else if ep.Interval == 0 {
		ep.Interval = time.Duration(float64(cfg.LiveTable.RefreshRate) * float64(time.Second))
	}
	if config.IsBoolSet(ltFlags.ResetPaging) || cfg.LiveTable.ResetPaging {
		ep.ResetPaging = true
	}
	if ltFlags.AbortOn != nil {
		for _, name := range *ltFlags.AbortOn {
			cat, err := fetch.ParseCategory(name)
			if err != nil {
				return nil, err
			}
			ep.AbortOn[cat] = struct{}{}
		}
	}
	if ep.Name == "" {
		ep.Name = ep.URL
	}
	return ep, nil
}

func runUI(ep *config.Endpoint, opts config.Options, fetcher fetch.Fetcher) error {
	table := view.NewLiveTable(ep.Name, ep.RowKey)
	app := view.NewApp(table)

	session, err := poll.NewSession(opts, fetcher, table)
	if err != nil {
		return err
	}
	app.SetSession(session)
	session.Start()

	return app.Run()
}

func runHeadless(opts config.Options, fetcher fetch.Fetcher) error {
	printer := view.NewPrinter(os.Stdout, opts.RowKeyField)

	session, err := poll.NewSession(opts, fetcher, printer)
	if err != nil {
		return err
	}
	session.AddListener(printer)
	session.Start()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	printer.Teardown()
	return nil
}

func listEndpoints(cmd *cobra.Command, args []string) error {
	if err := config.InitLocs(); err != nil {
		return err
	}
	mgr, err := config.NewEndpointManager(config.AppEndpointsFile)
	if err != nil {
		return err
	}
	names := mgr.Names()
	if len(names) == 0 {
		fmt.Printf("no endpoints configured in %s\n", config.AppEndpointsFile)
		return nil
	}
	fmt.Println(strings.Join(names, "\n"))
	return nil
}
