// Command diligence runs LLM-backed due-diligence analyses for a company
// and assembles the results into a markdown report.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/venturelens/diligence/pkg/config"
	"github.com/venturelens/diligence/pkg/engine"
	"github.com/venturelens/diligence/pkg/logger"
	"github.com/venturelens/diligence/pkg/model"
	"github.com/venturelens/diligence/pkg/report"
	"github.com/venturelens/diligence/pkg/server"
	"github.com/venturelens/diligence/pkg/storage"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "diligence",
		Short:         "Company due-diligence report generator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "path to the configuration file")

	root.AddCommand(newRunCmd(), newRenderCmd(), newServeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", configPath, err)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.File); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, nil
}

func newRunCmd() *cobra.Command {
	var (
		companyID  string
		name       string
		domains    []string
		docs       []string
		synthesize bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the analysis pipeline for one company",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			store, err := storage.NewStore(cfg.Output.Dir)
			if err != nil {
				return err
			}
			eng, err := engine.New(cfg, store)
			if err != nil {
				return err
			}

			if len(domains) == 0 {
				domains = cfg.Analysis.Domains
			}

			meta, err := eng.Run(cmd.Context(), engine.RunOptions{
				CompanyID:         companyID,
				CompanyName:       name,
				Domains:           domains,
				DocumentRefs:      docs,
				SynthesizeSummary: synthesize,
				Progress: func(status string, pct int) {
					logger.Log.Infof("[%3d%%] %s", pct, status)
				},
			})
			if err != nil {
				return err
			}

			fmt.Printf("run %s complete, verdict: %s\n", meta.ID, meta.Recommendation)
			return nil
		},
	}

	cmd.Flags().StringVar(&companyID, "company", "", "company identifier (required)")
	cmd.Flags().StringVar(&name, "name", "", "company display name, defaults to the identifier")
	cmd.Flags().StringSliceVar(&domains, "domains", nil, "analysis domains to run, e.g. market,financial (default: all)")
	cmd.Flags().StringArrayVar(&docs, "doc", nil, "supporting document: file path or URL (repeatable)")
	cmd.Flags().BoolVar(&synthesize, "synthesize-summary", false, "ask the model to write the executive summary")
	_ = cmd.MarkFlagRequired("company")

	return cmd
}

func newRenderCmd() *cobra.Command {
	var (
		out            string
		summary        string
		recommendation string
	)

	cmd := &cobra.Command{
		Use:   "render <findings.json>",
		Short: "Merge a saved findings file and render the markdown report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			findings, err := storage.ReadFindings(args[0])
			if err != nil {
				return err
			}

			verdict := model.Recommendation(strings.ToLower(recommendation))
			switch verdict {
			case "", model.Proceed, model.ProceedWithCaution, model.DoNotProceed:
			default:
				return fmt.Errorf("invalid recommendation %q", recommendation)
			}

			rep, err := report.Merge(findings, report.MergeOptions{
				ExecutiveSummary:      summary,
				OverallRecommendation: verdict,
			})
			if err != nil {
				return err
			}
			markdown, err := report.RenderMarkdown(rep)
			if err != nil {
				return err
			}

			if out == "" {
				fmt.Print(markdown)
				return nil
			}
			return os.WriteFile(out, []byte(markdown), 0o644)
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "write the document to a file instead of stdout")
	cmd.Flags().StringVar(&summary, "summary", "", "executive summary override")
	cmd.Flags().StringVar(&recommendation, "recommendation", "", "overall recommendation override")

	return cmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve stored reports over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := storage.NewStore(cfg.Output.Dir)
			if err != nil {
				return err
			}

			logger.Log.Infof("serving reports from %s on %s", cfg.Output.Dir, cfg.Server.Addr)
			return server.NewApp(cfg.Server, store).Run()
		},
	}
}
