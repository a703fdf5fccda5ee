package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/ahrav/namesmith/internal/config"
	"github.com/ahrav/namesmith/internal/domain"
	"github.com/ahrav/namesmith/internal/logging"
)

type runOptions struct {
	configPath string
	topic      string
	prompt     string
	tlds       string
	categories string
	count      int
	entryPath  string
}

func parseRunFlags(args []string, stderr io.Writer) (runOptions, error) {
	var o runOptions
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.configPath, "config", "", "path to the YAML config file")
	fs.StringVar(&o.topic, "topic", "", "topic the names should evoke")
	fs.StringVar(&o.prompt, "prompt", "", "free-form guidance for the generator")
	fs.StringVar(&o.tlds, "tlds", "com", "comma-separated TLDs")
	fs.StringVar(&o.categories, "categories", "", "comma-separated business categories")
	fs.IntVar(&o.count, "count", 10, "number of candidates to keep")
	fs.StringVar(&o.entryPath, "entry-path", string(domain.EntryPathBusiness), "investor or business")
	if err := fs.Parse(args); err != nil {
		return runOptions{}, errUsage
	}
	return o, nil
}

func (o runOptions) inputs() domain.GenerationInputs {
	return domain.GenerationInputs{
		JobID:      uuid.New(),
		EntryPath:  domain.EntryPath(o.entryPath),
		Topic:      o.topic,
		Prompt:     o.prompt,
		Categories: splitList(o.categories),
		TLDs:       splitList(o.tlds),
		Count:      o.count,
	}
}

// runResult is one printed candidate.
type runResult struct {
	Domain       string                    `json:"domain"`
	Overall      float64                   `json:"overall"`
	Scores       map[string]float64        `json:"scores"`
	Availability domain.AvailabilityStatus `json:"availability,omitempty"`
	Rationale    string                    `json:"rationale,omitempty"`
}

func runCommand(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	o, err := parseRunFlags(args, stderr)
	if err != nil {
		return err
	}
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	return runPipeline(ctx, cfg, o, stdout)
}

// runPipeline executes one ad hoc run. The job id is fresh, so no job row is
// touched; results still land in the configured store.
func runPipeline(ctx context.Context, cfg config.Config, o runOptions, stdout io.Writer) error {
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	inputs := o.inputs()
	if err := inputs.Validate(); err != nil {
		return err
	}
	st, err := a.executor.Run(ctx, inputs)
	if err != nil {
		return err
	}

	status := make(map[string]domain.AvailabilityStatus, len(st.Availability))
	for _, r := range st.Availability {
		status[r.FullDomain] = r.Status
	}
	out := make([]runResult, 0, len(st.Scored))
	for _, sc := range st.Scored {
		out = append(out, runResult{
			Domain:  sc.FullDomain(),
			Overall: sc.Overall,
			Scores: map[string]float64{
				"memorability":     sc.Memorability,
				"pronounceability": sc.Pronounceability,
				"brandability":     sc.Brandability,
			},
			Availability: status[sc.FullDomain()],
			Rationale:    sc.Rationale,
		})
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
