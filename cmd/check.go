package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/megharajeev28/resume-matcher/internal/config"
	"github.com/megharajeev28/resume-matcher/internal/document"
	"github.com/megharajeev28/resume-matcher/internal/relevance"
	"github.com/megharajeev28/resume-matcher/internal/scoring"
)

const (
	OutputText = "text"
	OutputJSON = "json"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Score a résumé against a job description",
	Long: "Score a résumé against a job description. Both documents may be PDF, DOCX or plain text.\n" +
		"Missing paths are asked for interactively.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runCheck(cmd)
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringP("resume", "r", "", "path to the résumé (.pdf, .docx, .txt)")
	checkCmd.Flags().StringP("job", "t", "", "path to the job description (.pdf, .docx, .txt)")
	checkCmd.Flags().StringP("output", "o", OutputText, "output format: text or json")
}

func runCheck(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := newLogger()
	defer logger.Sync()

	output, _ := cmd.Flags().GetString("output")
	if output != OutputText && output != OutputJSON {
		return fmt.Errorf("unsupported output format %q", output)
	}

	cfg, err := getConfig()
	if err != nil {
		return fmt.Errorf("getting a config: %w", err)
	}

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(cfg.Redacted(), "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	resumePath, err := pathFlagOrPrompt(cmd, "resume", "Path to the résumé")
	if err != nil {
		return err
	}
	jobPath, err := pathFlagOrPrompt(cmd, "job", "Path to the job description")
	if err != nil {
		return err
	}

	verdict := check(ctx, cfg, resumePath, jobPath, logger)

	return writeVerdict(cmd.OutOrStdout(), verdict, output)
}

func check(ctx context.Context, cfg *config.Config, resumePath, jobPath string, logger *zap.Logger) scoring.Verdict {
	catalog, err := cfg.Catalog()
	if err != nil {
		// Load has validated the catalog already.
		logger.Fatal("building skill catalog", zap.Error(err))
	}

	extractor := document.NewExtractor(logger)
	checker := relevance.NewChecker(catalog, newJudge(ctx, cfg, logger), logger)

	logger.Info("checking relevance",
		zap.String("resume", resumePath),
		zap.String("job_description", jobPath),
	)

	return checker.Check(ctx, extractor.ReadFile(resumePath), extractor.ReadFile(jobPath))
}

func pathFlagOrPrompt(cmd *cobra.Command, flag, label string) (string, error) {
	path, _ := cmd.Flags().GetString(flag)
	if path = strings.TrimSpace(path); path != "" {
		return path, nil
	}

	prompt := promptui.Prompt{
		Label:    label,
		Validate: validateDocumentPath,
	}

	path, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("reading %s path: %w", flag, err)
	}

	return strings.TrimSpace(path), nil
}

func validateDocumentPath(input string) error {
	path := strings.TrimSpace(input)
	if path == "" {
		return errors.New("path is required")
	}

	if !document.Supported(filepath.Ext(path)) {
		return fmt.Errorf("expected one of %s", strings.Join(document.Extensions(), ", "))
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return errors.New("path is a directory")
	}

	return nil
}

func writeVerdict(w io.Writer, verdict scoring.Verdict, format string) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(verdict)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Overall Relevance: %s\n", verdict.Band)
	fmt.Fprintf(&b, "Final Score: %.2f%%\n", float64(verdict.Score))

	if len(verdict.MissingSkills) == 0 {
		b.WriteString("All Key Skills Found!\n")
	} else {
		fmt.Fprintf(&b, "Missing Key Skills: %s\n", strings.Join(verdict.MissingSkills, ", "))
	}

	if bd := verdict.Breakdown; bd != nil {
		fmt.Fprintf(&b, "Hard Match: %.2f/50\n", bd.HardSubScore)
		switch {
		case bd.SemanticSkipped:
			b.WriteString("Semantic Match: skipped\n")
		case bd.Semantic != nil:
			fmt.Fprintf(&b, "Semantic Match: %.2f/100 (%s)\n", bd.SemanticSubScore, bd.Semantic.Reasoning)
			for _, s := range bd.Semantic.Scores {
				fmt.Fprintf(&b, "  - %s: %.0f", s.Qualification, s.Score)
				if s.Reasoning != "" {
					fmt.Fprintf(&b, " (%s)", s.Reasoning)
				}
				b.WriteString("\n")
			}
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
