// Command lexmem is a CLI for the lexmem indexing and retrieval engine.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/liliang-cn/lexmem/internal/config"
	"github.com/liliang-cn/lexmem/internal/logging"
	"github.com/liliang-cn/lexmem/pkg/learner"
)

var (
	cfgPath  string
	storeDir string
	backend  string
	scaffold string
	topk     int
	verbose  bool
	tagsFlag string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "lexmem",
	Short: "Incremental TF-IDF/PMI text index",
	Long: `lexmem maintains an incremental TF-IDF index with PMI term associations
over a directory-scoped store, and answers similarity queries against it.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		if cmd.Flags().Changed("store") || cfg.StoreDir == "" {
			cfg.StoreDir = storeDir
		}
		if cmd.Flags().Changed("backend") {
			cfg.Backend = backend
		}
		if cmd.Flags().Changed("scaffold") {
			cfg.Scaffold = scaffold
		}
		if cmd.Flags().Changed("topk") {
			cfg.TopK = topk
		}
		return nil
	},
}

func learnerConfig() learner.Config {
	lc := learner.DefaultConfig(cfg.StoreDir)
	lc.Backend = learner.BackendKind(cfg.Backend)
	level := logging.LevelWarn
	if verbose {
		level = logging.LevelDebug
	}
	lc.Logger = logging.New(os.Stderr, level)
	return lc
}

// requireScaffold rejects scaffold-specific commands when the configured
// scaffold differs.
func requireScaffold(want string) error {
	if cfg.Scaffold != want {
		return fmt.Errorf("%w: command requires scaffold %q, configured %q",
			learner.ErrScaffoldMismatch, want, cfg.Scaffold)
	}
	return nil
}

var addCmd = &cobra.Command{
	Use:   "add [text...]",
	Short: "Ingest documents (args, or one per line on stdin)",
	RunE: func(cmd *cobra.Command, args []string) error {
		texts := args
		if len(texts) == 0 {
			scanner := bufio.NewScanner(os.Stdin)
			scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
			for scanner.Scan() {
				if line := strings.TrimSpace(scanner.Text()); line != "" {
					texts = append(texts, line)
				}
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
		}
		if len(texts) == 0 {
			return fmt.Errorf("no documents to add")
		}
		var tags [][]string
		if tagsFlag != "" {
			shared := strings.Split(tagsFlag, ",")
			tags = make([][]string, len(texts))
			for i := range tags {
				tags[i] = shared
			}
		}
		l, err := learner.Open(learnerConfig())
		if err != nil {
			return err
		}
		defer l.Close()
		ids, err := l.AddDocs(texts, tags)
		if err != nil {
			return fmt.Errorf("failed to add documents: %w", err)
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Rank indexed documents against a query",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := learner.Open(learnerConfig())
		if err != nil {
			return err
		}
		defer l.Close()
		for _, r := range l.Retrieve(args[0], cfg.TopK) {
			fmt.Printf("%.4f  %s  %s\n", r.Score, r.ID, r.Doc.Text)
		}
		return nil
	},
}

var explainCmd = &cobra.Command{
	Use:   "explain <query>",
	Short: "Show query tokens, PMI associations and top documents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := learner.Open(learnerConfig())
		if err != nil {
			return err
		}
		defer l.Close()
		out, err := json.MarshalIndent(l.Explain(args[0], cfg.TopK), "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

var assocCmd = &cobra.Command{
	Use:   "assoc <term>",
	Short: "Show top PMI associations for a term",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := learner.Open(learnerConfig())
		if err != nil {
			return err
		}
		defer l.Close()
		for _, a := range l.Associations(args[0], cfg.TopK) {
			fmt.Printf("%.4f  %s\n", a.Score, a.Term)
		}
		return nil
	},
}

var getCmd = &cobra.Command{
	Use:   "get <doc-id>",
	Short: "Print one indexed document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := learner.Open(learnerConfig())
		if err != nil {
			return err
		}
		defer l.Close()
		doc, ok := l.GetDoc(args[0])
		if !ok {
			return fmt.Errorf("%w: %s", learner.ErrNotFound, args[0])
		}
		out, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print corpus statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := learner.Open(learnerConfig())
		if err != nil {
			return err
		}
		defer l.Close()
		s := l.Stats()
		fmt.Printf("documents:     %d\n", s.Docs)
		fmt.Printf("vocabulary:    %d\n", len(s.DocFreq))
		fmt.Printf("cooccurrences: %d\n", len(s.Cooccur))
		fmt.Printf("window:        %d\n", s.Window())
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Discard all state and persisted artifacts",
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := learner.Open(learnerConfig())
		if err != nil {
			return err
		}
		defer l.Close()
		if err := l.Clear(); err != nil {
			return fmt.Errorf("failed to clear store: %w", err)
		}
		fmt.Println("store cleared")
		return nil
	},
}

var trainCmd = &cobra.Command{
	Use:   "train <doc-id> <label>",
	Short: "Label a document (classifier scaffold)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireScaffold("classifier"); err != nil {
			return err
		}
		c, err := learner.OpenClassifier(learnerConfig())
		if err != nil {
			return err
		}
		defer c.Close()
		if err := c.Train(args[0], args[1]); err != nil {
			return fmt.Errorf("failed to train: %w", err)
		}
		return nil
	},
}

var predictCmd = &cobra.Command{
	Use:   "predict <text>",
	Short: "Predict labels for a text (classifier scaffold)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireScaffold("classifier"); err != nil {
			return err
		}
		c, err := learner.OpenClassifier(learnerConfig())
		if err != nil {
			return err
		}
		defer c.Close()
		for _, p := range c.Predict(args[0], cfg.TopK) {
			fmt.Printf("%.4f  %s\n", p.Score, p.Label)
		}
		return nil
	},
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score top-1 accuracy over tab-separated text/label lines on stdin",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireScaffold("classifier"); err != nil {
			return err
		}
		var samples []learner.Sample
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := scanner.Text()
			text, label, ok := strings.Cut(line, "\t")
			if !ok {
				return fmt.Errorf("invalid sample line (want text<TAB>label): %q", line)
			}
			samples = append(samples, learner.Sample{Text: text, Label: label})
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		c, err := learner.OpenClassifier(learnerConfig())
		if err != nil {
			return err
		}
		defer c.Close()
		fmt.Printf("%.4f\n", c.Evaluate(samples))
		return nil
	},
}

var qaCmd = &cobra.Command{
	Use:   "qa",
	Short: "Linked question/answer retrieval (qa scaffold)",
}

var qaAddCmd = &cobra.Command{
	Use:   "add <question> <answer>",
	Short: "Ingest a linked question/answer pair",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireScaffold("qa"); err != nil {
			return err
		}
		q, err := learner.OpenQA(learnerConfig())
		if err != nil {
			return err
		}
		defer q.Close()
		qID, aID, err := q.AddQA(args[0], args[1])
		if err != nil {
			return fmt.Errorf("failed to add qa pair: %w", err)
		}
		fmt.Printf("question: %s\nanswer:   %s\n", qID, aID)
		return nil
	},
}

var qaAskCmd = &cobra.Command{
	Use:   "ask <query>",
	Short: "Answer a query from the stored question/answer pairs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireScaffold("qa"); err != nil {
			return err
		}
		q, err := learner.OpenQA(learnerConfig())
		if err != nil {
			return err
		}
		defer q.Close()
		for _, a := range q.Answer(args[0], cfg.TopK) {
			fmt.Printf("%.4f  %s\n", a.Score, a.Answer)
		}
		return nil
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "lexmem.yaml", "config file path")
	rootCmd.PersistentFlags().StringVar(&storeDir, "store", "lexmem_store", "store directory")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "file", "persistence backend (file|sqlite)")
	rootCmd.PersistentFlags().StringVar(&scaffold, "scaffold", "none", "behavior scaffold (none|classifier|qa)")
	rootCmd.PersistentFlags().IntVar(&topk, "topk", 5, "result count for ranked output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	addCmd.Flags().StringVar(&tagsFlag, "tags", "", "comma-separated tags applied to every added document")

	qaCmd.AddCommand(qaAddCmd, qaAskCmd)
	rootCmd.AddCommand(addCmd, searchCmd, explainCmd, assocCmd, getCmd,
		statsCmd, clearCmd, trainCmd, predictCmd, evaluateCmd, qaCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
